package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/models"
	"github.com/sashabaranov/go-openai"
)

const MaxTokens = 512

type Config struct {
	APIKey string
	// BaseURL overrides the OpenAI API endpoint, e.g., for a compatible gateway.
	BaseURL string
	Model   string
}

// Client voices suspects with OpenAI chat completions.
type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo1106
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.With("source", "ai.Client"),
	}
}

// Generate asks the model for the suspect's reply. A suspect that must refuse answers with its final phrase without a
// round trip to the API.
func (c *Client) Generate(ctx context.Context, rc models.ReplyContext, player models.PlayerMessage) (string, error) {
	if rc.Rules.MustRefuse {
		return rc.FinalPhrase, nil
	}

	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: MaxTokens,
			Messages:  BuildPrompt(rc, player),
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion", slog.String("model", c.model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion has no choices", slog.String("model", c.model))
	}
	reply := strings.TrimSpace(completion.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("chat completion is empty", slog.String("model", c.model))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "reply generated",
		slog.String("model", c.model),
		slog.Int("prompt_tokens", completion.Usage.PromptTokens),
		slog.Int("completion_tokens", completion.Usage.CompletionTokens))
	return reply, nil
}

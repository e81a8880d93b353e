package ai

import (
	"fmt"
	"strings"

	"github.com/myrjola/interrogation/internal/models"
	"github.com/sashabaranov/go-openai"
)

// BuildPrompt turns the reply context into chat messages: a system prompt describing the suspect and the rules,
// the recent history and the player's message last.
func BuildPrompt(rc models.ReplyContext, player models.PlayerMessage) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(rc.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(rc),
	})
	for _, msg := range rc.History {
		role := openai.ChatMessageRoleUser
		if msg.Sender == models.SenderNPC {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Text,
		})
	}
	content := player.Text
	if player.Evidence != nil {
		content = fmt.Sprintf("[The detective shows you: %s. %s]\n%s",
			player.Evidence.Name, player.Evidence.Description, player.Text)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
	return messages
}

func systemPrompt(rc models.ReplyContext) string {
	var b strings.Builder
	b.WriteString("You are a suspect in a detective game being interrogated by the player.\n\n")
	fmt.Fprintf(&b, "== YOUR NAME ==\n%s\n\n", rc.Suspect.Name)
	fmt.Fprintf(&b, "== YOUR BACKGROUND ==\n%s\n\n", rc.Suspect.Backstory)
	fmt.Fprintf(&b, "== WHAT YOU TOLD THE POLICE ==\n%s\n\n", rc.Suspect.InitialStatement)
	fmt.Fprintf(&b, "== THE CASE AS YOU KNOW IT ==\n%s\n\n", rc.CaseSummary)

	b.WriteString("== FACTS ALREADY REVEALED TO THE DETECTIVE ==\n")
	if len(rc.Revealed) == 0 {
		b.WriteString("None yet.\n")
	}
	for _, secret := range rc.Revealed {
		fmt.Fprintf(&b, "- %s\n", secret.Content)
	}
	b.WriteString("\n")

	if len(rc.PressurePoints) > 0 {
		b.WriteString("== EVIDENCE THE DETECTIVE HAS CONFRONTED YOU WITH ==\n")
		for _, point := range rc.PressurePoints {
			fmt.Fprintf(&b, "- %s: %q\n", point.EvidenceName, point.Text)
		}
		b.WriteString("\n")
	}

	b.WriteString("== RULES ==\n")
	b.WriteString("- You may only state facts listed under FACTS ALREADY REVEALED.\n")
	b.WriteString("- Never invent new facts and never name the culprit.\n")
	b.WriteString("- Stay in character and answer in at most a few sentences.\n")
	switch rc.Rules.Effect {
	case models.EvidenceEffectRevealedSecret:
		b.WriteString("- The evidence just broke your story. Admit, reluctantly, what it proves:\n")
		for _, secret := range rc.RevealedNow {
			fmt.Fprintf(&b, "  - %s\n", secret.Content)
		}
	case models.EvidenceEffectDuplicate:
		b.WriteString("- The detective repeats evidence you already answered for. Show irritation, add nothing new.\n")
	case models.EvidenceEffectNone:
		if rc.Rules.EvidencePresented {
			b.WriteString("- The evidence proves nothing about you. Dismiss it.\n")
		}
	}
	fmt.Fprintf(&b, "- If you have nothing left to say, answer only with: %q\n", rc.FinalPhrase)
	return b.String()
}

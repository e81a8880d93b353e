package config_test

import (
	"testing"
	"time"

	"github.com/myrjola/interrogation/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		environ map[string]string
		want    func(t *testing.T, cfg config.Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			environ: map[string]string{},
			want: func(t *testing.T, cfg config.Config) {
				require.Equal(t, "localhost:4000", cfg.Addr)
				require.Equal(t, "./interrogation.sqlite", cfg.SqliteURL)
				require.Equal(t, "./scenarios", cfg.ScenarioDir)
				require.Equal(t, config.ReplyProviderScripted, cfg.ReplyProvider)
				require.Equal(t, 20*time.Second, cfg.ReplyTimeout)
				require.Equal(t, 10, cfg.HistoryLimit)
				require.Empty(t, cfg.PprofAddr)
			},
		},
		{
			name: "overrides",
			environ: map[string]string{
				"INTERROGATION_ADDR":           "localhost:0",
				"INTERROGATION_SQLITE_URL":     ":memory:",
				"INTERROGATION_REPLY_PROVIDER": "openai",
				"OPENAI_API_KEY":               "sk-test",
				"INTERROGATION_OPENAI_MODEL":   "gpt-4o-mini",
				"INTERROGATION_REPLY_TIMEOUT":  "1m",
				"INTERROGATION_HISTORY_LIMIT":  "4",
			},
			want: func(t *testing.T, cfg config.Config) {
				require.Equal(t, "localhost:0", cfg.Addr)
				require.Equal(t, ":memory:", cfg.SqliteURL)
				require.Equal(t, config.ReplyProviderOpenAI, cfg.ReplyProvider)
				require.Equal(t, "sk-test", cfg.OpenAIAPIKey)
				require.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
				require.Equal(t, time.Minute, cfg.ReplyTimeout)
				require.Equal(t, 4, cfg.HistoryLimit)
			},
		},
		{
			name:    "openai without key",
			environ: map[string]string{"INTERROGATION_REPLY_PROVIDER": "openai"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			environ: map[string]string{"INTERROGATION_REPLY_PROVIDER": "oracle"},
			wantErr: true,
		},
		{
			name:    "malformed duration",
			environ: map[string]string{"INTERROGATION_REPLY_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "zero history",
			environ: map[string]string{"INTERROGATION_HISTORY_LIMIT": "0"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := config.Parse(tt.environ)
			if tt.wantErr {
				require.ErrorIs(t, err, config.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}

func TestEnviron(t *testing.T) {
	t.Parallel()
	require.Equal(t, map[string]string{"A": "1", "B": "x=y"}, config.Environ([]string{"A=1", "B=x=y"}))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv は、テスト実行環境の変数に影響されないよう全ての設定変数を空にします。
// 空の環境変数は未設定として扱われます。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, b := range envBindings {
		t.Setenv(b.env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTargetURLs, "https://a.test")

	cfg, err := Load("", zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.test"}, cfg.TargetURLs)
	assert.Equal(t, DefaultSearchText, cfg.SearchText)
	assert.Equal(t, DefaultRecipient, cfg.Recipient)
	assert.Equal(t, DefaultSMTPPort, cfg.SMTP.Port)
	assert.Equal(t, 30*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, 20*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Second, cfg.RequestDelay)
	assert.Empty(t, cfg.CSSSelector)
	assert.Empty(t, cfg.SMTP.Host)
	assert.True(t, cfg.HasTargets())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTargetURLs, `["https://a.test", "https://b.test"]`)
	t.Setenv(EnvSearchText, "  Back in stock ")
	t.Setenv(EnvRecipient, "ops@example.com")
	t.Setenv(EnvSMTPServer, "smtp.example.com")
	t.Setenv(EnvSMTPPort, "2525")
	t.Setenv(EnvSMTPUser, "bot@example.com")
	t.Setenv(EnvSMTPPass, "secret")
	t.Setenv(EnvHTTPTimeout, "5")
	t.Setenv(EnvRequestDelay, "0.25")
	t.Setenv(EnvCSSSelector, " .stock-status ")

	cfg, err := Load("", zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.TargetURLs)
	assert.Equal(t, "Back in stock", cfg.SearchText)
	assert.Equal(t, "ops@example.com", cfg.Recipient)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "bot@example.com", cfg.SMTP.Username)
	assert.Equal(t, "secret", cfg.SMTP.Password)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestDelay)
	assert.Equal(t, ".stock-status", cfg.CSSSelector)
}

func TestLoad_EmptyTargets(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, cfg.TargetURLs)
	assert.False(t, cfg.HasTargets())
}

func TestLoad_InvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		env   string
		value string
	}{
		{"non_numeric_port", EnvSMTPPort, "abc"},
		{"non_numeric_timeout", EnvHTTPTimeout, "twenty"},
		{"zero_timeout", EnvHTTPTimeout, "0"},
		{"negative_delay", EnvRequestDelay, "-1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvTargetURLs, "https://a.test")
			t.Setenv(tc.env, tc.value)

			_, err := Load("", zerolog.Nop())
			assert.Error(t, err)
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "monitor.yaml")
	content := `target_urls:
  - https://a.test
  - "  https://b.test  "
  - ""
search_text: Back in stock
http_timeout: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Run("file_values", func(t *testing.T) {
		cfg, err := Load(path, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.TargetURLs)
		assert.Equal(t, "Back in stock", cfg.SearchText)
		assert.Equal(t, 7*time.Second, cfg.HTTPTimeout)
	})

	t.Run("env_wins_over_file", func(t *testing.T) {
		t.Setenv(EnvSearchText, "SOLD OUT")
		t.Setenv(EnvTargetURLs, "https://c.test")

		cfg, err := Load(path, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{"https://c.test"}, cfg.TargetURLs)
		assert.Equal(t, "SOLD OUT", cfg.SearchText)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), zerolog.Nop())
		assert.Error(t, err)
	})
}

func TestRunConfig_Redacted(t *testing.T) {
	cfg := RunConfig{TargetURLs: []string{"https://a.test"}}
	cfg.SMTP.Password = "secret"

	redacted := cfg.Redacted()
	assert.NotEqual(t, "secret", redacted.SMTP.Password)
	assert.Equal(t, "secret", cfg.SMTP.Password, "元の設定は変更されない")
}

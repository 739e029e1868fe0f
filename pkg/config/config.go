package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/shouni/go-web-monitor/pkg/notify"
)

// ----------------------------------------------------------------------
// 環境変数とデフォルト値
// ----------------------------------------------------------------------

const (
	EnvTargetURLs   = "TARGET_URLS"
	EnvFeedURL      = "TARGET_FEED_URL"
	EnvSearchText   = "SEARCH_TEXT"
	EnvRecipient    = "RECIPIENT_EMAIL"
	EnvSMTPServer   = "SMTP_SERVER"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUser     = "SMTP_USER"
	EnvSMTPPass     = "SMTP_PASS"
	EnvSMTPTimeout  = "SMTP_TIMEOUT"
	EnvHTTPTimeout  = "HTTP_TIMEOUT"
	EnvRequestDelay = "REQUEST_DELAY_SEC"
	EnvCSSSelector  = "CSS_SELECTOR"
)

const (
	DefaultSearchText      = "SOLD OUT"
	DefaultRecipient       = "monitor-alerts@example.com"
	DefaultSMTPPort        = 587
	DefaultSMTPTimeoutSec  = 30
	DefaultHTTPTimeoutSec  = 20
	DefaultRequestDelaySec = 1.0
)

// viper のキー
const (
	keyTargetURLs   = "target_urls"
	keyFeedURL      = "target_feed_url"
	keySearchText   = "search_text"
	keyRecipient    = "recipient_email"
	keySMTPServer   = "smtp_server"
	keySMTPPort     = "smtp_port"
	keySMTPUser     = "smtp_user"
	keySMTPPass     = "smtp_pass"
	keySMTPTimeout  = "smtp_timeout"
	keyHTTPTimeout  = "http_timeout"
	keyRequestDelay = "request_delay_sec"
	keyCSSSelector  = "css_selector"
)

// envBindings は、viper のキーと環境変数名の対応表です。
var envBindings = []struct{ key, env string }{
	{keyTargetURLs, EnvTargetURLs},
	{keyFeedURL, EnvFeedURL},
	{keySearchText, EnvSearchText},
	{keyRecipient, EnvRecipient},
	{keySMTPServer, EnvSMTPServer},
	{keySMTPPort, EnvSMTPPort},
	{keySMTPUser, EnvSMTPUser},
	{keySMTPPass, EnvSMTPPass},
	{keySMTPTimeout, EnvSMTPTimeout},
	{keyHTTPTimeout, EnvHTTPTimeout},
	{keyRequestDelay, EnvRequestDelay},
	{keyCSSSelector, EnvCSSSelector},
}

// ErrNoTargetURLs は、監視対象のURLが1つも決まらなかったことを示します。
var ErrNoTargetURLs = errors.New("監視対象のURLが設定されていません。TARGET_URLS を設定してください")

// ----------------------------------------------------------------------
// RunConfig
// ----------------------------------------------------------------------

// RunConfig は、1回の実行に必要な設定のスナップショットです。
// プロセス起動時に一度だけ生成され、以降は変更されません。
type RunConfig struct {
	TargetURLs   []string
	FeedURL      string
	SearchText   string
	Recipient    string            `validate:"required"`
	SMTP         notify.SMTPConfig `validate:"-"` // 送信時に Notifier が検証する
	HTTPTimeout  time.Duration     `validate:"gt=0"`
	RequestDelay time.Duration     `validate:"gte=0"`
	CSSSelector  string
}

// HasTargets は、URLリストかフィードのどちらかが設定されているかを返します。
func (c RunConfig) HasTargets() bool {
	return len(c.TargetURLs) > 0 || c.FeedURL != ""
}

// Validate は、値の範囲を検証します。
func (c RunConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("設定値が不正です: %w", err)
	}
	return nil
}

// Redacted は、パスワードを伏せたコピーを返します。表示用です。
func (c RunConfig) Redacted() RunConfig {
	if c.SMTP.Password != "" {
		c.SMTP.Password = "********"
	}
	c.TargetURLs = append([]string(nil), c.TargetURLs...)
	return c
}

// ----------------------------------------------------------------------
// 読み込み
// ----------------------------------------------------------------------

// Load は、環境変数 (および任意の設定ファイル) から RunConfig を構築します。
// 環境変数は設定ファイルより優先されます。空の環境変数は未設定として扱われます。
func Load(path string, logger zerolog.Logger) (RunConfig, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return RunConfig{}, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
		}
	}

	cfg := RunConfig{
		TargetURLs:  resolveTargetURLs(v, logger),
		FeedURL:     strings.TrimSpace(v.GetString(keyFeedURL)),
		SearchText:  strings.TrimSpace(v.GetString(keySearchText)),
		Recipient:   strings.TrimSpace(v.GetString(keyRecipient)),
		CSSSelector: strings.TrimSpace(v.GetString(keyCSSSelector)),
		SMTP: notify.SMTPConfig{
			Host:     strings.TrimSpace(v.GetString(keySMTPServer)),
			Username: strings.TrimSpace(v.GetString(keySMTPUser)),
			Password: v.GetString(keySMTPPass),
		},
	}

	var err error
	if cfg.SMTP.Port, err = getInt(v, keySMTPPort, EnvSMTPPort); err != nil {
		return RunConfig{}, err
	}
	if cfg.HTTPTimeout, err = getSeconds(v, keyHTTPTimeout, EnvHTTPTimeout); err != nil {
		return RunConfig{}, err
	}
	if cfg.SMTP.Timeout, err = getSeconds(v, keySMTPTimeout, EnvSMTPTimeout); err != nil {
		return RunConfig{}, err
	}
	if cfg.RequestDelay, err = getSeconds(v, keyRequestDelay, EnvRequestDelay); err != nil {
		return RunConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// newViper は、デフォルト値と環境変数のバインドを済ませた viper を返します。
func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(keySearchText, DefaultSearchText)
	v.SetDefault(keyRecipient, DefaultRecipient)
	v.SetDefault(keySMTPPort, DefaultSMTPPort)
	v.SetDefault(keySMTPTimeout, DefaultSMTPTimeoutSec)
	v.SetDefault(keyHTTPTimeout, DefaultHTTPTimeoutSec)
	v.SetDefault(keyRequestDelay, DefaultRequestDelaySec)

	for _, b := range envBindings {
		_ = v.BindEnv(b.key, b.env)
	}
	return v
}

// resolveTargetURLs は、文字列 (環境変数) とリスト (設定ファイル) の両方を受け付けます。
func resolveTargetURLs(v *viper.Viper, logger zerolog.Logger) []string {
	switch raw := v.Get(keyTargetURLs).(type) {
	case nil:
		return nil
	case string:
		return ParseURLs(raw, logger)
	case []any, []string:
		var urls []string
		for _, s := range v.GetStringSlice(keyTargetURLs) {
			urls = appendTrimmed(urls, s)
		}
		return urls
	default:
		return ParseURLs(fmt.Sprint(raw), logger)
	}
}

func getInt(v *viper.Viper, key, env string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s の値が整数ではありません (%q): %w", env, raw, err)
	}
	return n, nil
}

// getSeconds は、秒数 (小数可) を time.Duration に変換します。
func getSeconds(v *viper.Viper, key, env string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	sec, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s の値が数値ではありません (%q): %w", env, raw, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

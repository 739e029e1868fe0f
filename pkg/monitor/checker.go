package monitor

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-web-monitor/pkg/fetch"
	"github.com/shouni/go-web-monitor/pkg/types"
)

const (
	// DefaultRequestDelay は、URL間の既定の待機時間です。
	DefaultRequestDelay = 1 * time.Second

	// previewRunes は、デバッグログに出す検索対象テキストの最大文字数です。
	previewRunes = 200
)

// Fetcher は、URLからHTMLを取得する機能のインターフェースです。
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

// Matcher は、HTMLに検索テキストが含まれるかを判定する機能のインターフェースです。
type Matcher interface {
	Match(html string) bool
	SearchableText(html string) string
}

// SleepFunc は、URL間の待機を行う関数です。ctx がキャンセルされたら直ちに戻ります。
type SleepFunc func(ctx context.Context, d time.Duration)

// Checker は、URLリストを1件ずつ順番にチェックします。
// 同時に1リクエストしか送らず、各URLの後に必ず一定時間待機します。
type Checker struct {
	fetcher Fetcher
	matcher Matcher
	delay   time.Duration
	sleep   SleepFunc
	logger  zerolog.Logger
}

// Option は Checker の設定を行うための関数型です。
type Option func(*Checker)

// WithSleepFunc は待機処理を差し替えます。主にテスト用です。
func WithSleepFunc(fn SleepFunc) Option {
	return func(c *Checker) {
		c.sleep = fn
	}
}

// NewChecker は Checker を初期化します。
func NewChecker(fetcher Fetcher, matcher Matcher, delay time.Duration, logger zerolog.Logger, options ...Option) (*Checker, error) {
	if fetcher == nil || matcher == nil {
		return nil, fmt.Errorf("monitor.NewChecker: Fetcher and Matcher cannot be nil")
	}
	if delay < 0 {
		delay = DefaultRequestDelay
	}

	c := &Checker{
		fetcher: fetcher,
		matcher: matcher,
		delay:   delay,
		sleep:   sleepContext,
		logger:  logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Check は、URLリストを順番に取得・判定し、結果を集計します。
// 各URLの処理後は結果にかかわらず待機し、最後のURLの後も待機します。
// ctx がキャンセルされた場合は残りのURLを処理せずに戻ります。
func (c *Checker) Check(ctx context.Context, urls []string) Report {
	report := Report{Total: len(urls)}

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			c.logger.Warn().Err(err).Int("remaining", len(urls)-i).Msg("チェックを中断しました")
			break
		}

		c.logger.Info().Str("url", url).Int("index", i+1).Int("total", len(urls)).Msg("チェック中")
		report.add(c.checkOne(ctx, url))

		c.sleep(ctx, c.delay)
	}

	c.logger.Info().Int("hits", len(report.Hits)).Int("misses", len(report.Misses)).Msg("チェック完了")
	return report
}

// checkOne は、1つのURLを取得して分類します。
func (c *Checker) checkOne(ctx context.Context, url string) types.MatchOutcome {
	res := c.fetcher.Fetch(ctx, url)
	if !res.OK() {
		return types.MatchOutcome{URL: url, Status: types.StatusFetchError, Err: res.Err}
	}

	if c.matcher.Match(res.HTML) {
		c.logger.Info().Str("url", url).Msg("検索テキストが見つかりました")
		return types.MatchOutcome{URL: url, Status: types.StatusHit}
	}

	if e := c.logger.Debug(); e.Enabled() {
		e.Str("url", url).Str("preview", preview(c.matcher.SearchableText(res.HTML))).Msg("検索テキストは見つかりませんでした")
	}
	return types.MatchOutcome{URL: url, Status: types.StatusMiss}
}

// preview は、空白を正規化して先頭 previewRunes 文字に切り詰めます。
func preview(text string) string {
	text = textUtils.NormalizeText(text)
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	return string([]rune(text)[:previewRunes]) + "..."
}

// sleepContext は、d だけ待機します。ctx がキャンセルされたら直ちに戻ります。
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

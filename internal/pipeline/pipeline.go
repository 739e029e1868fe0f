package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shouni/go-web-monitor/pkg/config"
	"github.com/shouni/go-web-monitor/pkg/feed"
	"github.com/shouni/go-web-monitor/pkg/fetch"
	"github.com/shouni/go-web-monitor/pkg/match"
	"github.com/shouni/go-web-monitor/pkg/monitor"
	"github.com/shouni/go-web-monitor/pkg/notify"
)

// LinkDiscoverer は、フィードから監視対象URLを見つける機能のインターフェースです。
type LinkDiscoverer interface {
	DiscoverLinks(ctx context.Context, feedURL string) ([]string, error)
}

// Result は、1回の実行の結果です。
type Result struct {
	URLs      []string       // 実際にチェックしたURL (TARGET_URLS の後にフィードのリンク)
	Report    monitor.Report // 集計結果
	Notified  bool           // 通知メールを送信できたか
	NotifyErr error          // 通知に失敗した場合の原因
}

// Pipeline は、設定から組み立てた各コンポーネントで1回分のチェックを実行します。
type Pipeline struct {
	cfg      config.RunConfig
	checker  *monitor.Checker
	feed     LinkDiscoverer
	notifier *notify.Notifier
	logger   zerolog.Logger
}

type options struct {
	fetcher   monitor.Fetcher
	feed      LinkDiscoverer
	transport notify.Transport
	sleep     monitor.SleepFunc
}

// Option は New の依存関係を差し替えるための関数型です。主にテスト用です。
type Option func(*options)

// WithFetcher は、ページ取得の実装を差し替えます。
func WithFetcher(f monitor.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithLinkDiscoverer は、フィードからのURL取得の実装を差し替えます。
func WithLinkDiscoverer(d LinkDiscoverer) Option {
	return func(o *options) { o.feed = d }
}

// WithTransport は、メール送信の実装を差し替えます。
func WithTransport(t notify.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithSleepFunc は、URL間の待機処理を差し替えます。
func WithSleepFunc(fn monitor.SleepFunc) Option {
	return func(o *options) { o.sleep = fn }
}

// New は、RunConfig から Pipeline を組み立てます。
// CSSセレクタが不正な場合は、ネットワークに触れる前にエラーを返します。
func New(cfg config.RunConfig, logger zerolog.Logger, opts ...Option) (*Pipeline, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// 1. 共有HTTPクライアント (ページとフィードの両方で使う)
	client := fetch.NewClient(cfg.HTTPTimeout)

	if o.fetcher == nil {
		f, err := fetch.NewFetcher(client, logger)
		if err != nil {
			return nil, err
		}
		o.fetcher = f
	}
	if o.feed == nil {
		p, err := feed.NewParser(client)
		if err != nil {
			return nil, err
		}
		o.feed = p
	}
	if o.transport == nil {
		o.transport = notify.NewSMTPTransport()
	}

	// 2. Matcher (セレクタはここで一度だけコンパイルする)
	matcher, err := match.NewMatcher(cfg.SearchText, cfg.CSSSelector)
	if err != nil {
		return nil, fmt.Errorf("%s の値が不正です: %w", config.EnvCSSSelector, err)
	}

	// 3. Checker
	var checkerOpts []monitor.Option
	if o.sleep != nil {
		checkerOpts = append(checkerOpts, monitor.WithSleepFunc(o.sleep))
	}
	checkerLogger := logger.With().Str("search_text", cfg.SearchText).Logger()
	checker, err := monitor.NewChecker(o.fetcher, matcher, cfg.RequestDelay, checkerLogger, checkerOpts...)
	if err != nil {
		return nil, err
	}

	// 4. Notifier
	notifier, err := notify.NewNotifier(cfg.SMTP, cfg.Recipient, o.transport, logger)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		checker:  checker,
		feed:     o.feed,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Run は、URLの決定、チェック、通知を1回だけ実行します。
// 監視対象URLが1つもない場合は config.ErrNoTargetURLs を返し、何も取得しません。
// 通知の失敗はエラーとして返さず、Result に記録します。
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	// 1. 監視対象URLの決定
	urls := p.resolveURLs(ctx)
	if len(urls) == 0 {
		p.logger.Error().Err(config.ErrNoTargetURLs).Msg("チェックを中止します")
		return Result{}, config.ErrNoTargetURLs
	}

	p.logger.Info().
		Int("urls", len(urls)).
		Str("search_text", p.cfg.SearchText).
		Str("css_selector", p.cfg.CSSSelector).
		Msg("チェックを開始します")

	// 2. チェック
	report := p.checker.Check(ctx, urls)
	result := Result{URLs: urls, Report: report}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("チェックが中断されました: %w", err)
	}

	// 3. 通知
	if !report.HasHits() {
		p.logger.Info().Msg("どのURLにも検索テキストは見つかりませんでした。通知は送信しません")
		return result, nil
	}

	msg := notify.Compose(notify.Summary{
		SearchText: p.cfg.SearchText,
		Selector:   p.cfg.CSSSelector,
		Hits:       report.HitURLs(),
		Misses:     report.MissDisplayTexts(),
		Total:      report.Total,
	})
	if err := p.notifier.Notify(ctx, msg); err != nil {
		result.NotifyErr = err
		return result, nil
	}

	result.Notified = true
	return result, nil
}

// resolveURLs は、TARGET_URLS の後にフィードのリンクを連結します。
// フィードの取得に失敗しても警告を出して TARGET_URLS だけで続行します。
func (p *Pipeline) resolveURLs(ctx context.Context) []string {
	urls := append([]string(nil), p.cfg.TargetURLs...)
	if p.cfg.FeedURL == "" {
		return urls
	}

	links, err := p.feed.DiscoverLinks(ctx, p.cfg.FeedURL)
	if err != nil {
		p.logger.Warn().Err(err).Str("feed_url", p.cfg.FeedURL).Msg("フィードからURLを取得できませんでした")
		return urls
	}

	p.logger.Info().Str("feed_url", p.cfg.FeedURL).Int("links", len(links)).Msg("フィードからURLを取得しました")
	return append(urls, links...)
}

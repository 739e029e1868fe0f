package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// ----------------------------------------------------------------------
// 定数とインターフェース
// ----------------------------------------------------------------------

const (
	// DefaultTimeout は、タイムアウト未指定時のHTTPタイムアウトです。
	DefaultTimeout = 20 * time.Second

	// UserAgent は、監視ボットであることを明示するためのUser-Agentです。
	UserAgent = "Mozilla/5.0 (compatible; WebMonitor/1.1; +https://github.com/shouni/go-web-monitor)"
)

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// userAgentDoer は、全てのリクエストに User-Agent を付与してから次の Doer に委譲します。
type userAgentDoer struct {
	next      Doer
	userAgent string
}

func (d *userAgentDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", d.userAgent)
	resp, err := d.next.Do(req)
	if err == nil && resp != nil {
		if r, ok := req.Context().Value(contentTypeKey{}).(*contentTypeRecorder); ok {
			r.contentType = resp.Header.Get("Content-Type")
		}
	}
	return resp, err
}

// contentTypeRecorder は、1回の取得で受け取ったレスポンスの Content-Type を保持します。
// httpkit は本文しか返さないため、Doer からコンテキスト経由で受け渡します。
type contentTypeRecorder struct {
	contentType string
}

type contentTypeKey struct{}

func withContentTypeRecorder(ctx context.Context) (context.Context, *contentTypeRecorder) {
	r := &contentTypeRecorder{}
	return context.WithValue(ctx, contentTypeKey{}, r), r
}

// ----------------------------------------------------------------------
// 設定とコンストラクタ
// ----------------------------------------------------------------------

type clientOptions struct {
	doer      Doer
	userAgent string
}

// ClientOption は NewClient の設定を行うための関数型です。
type ClientOption func(*clientOptions)

// WithHTTPClient はカスタムのDoerを設定します。主にテスト用です。
func WithHTTPClient(doer Doer) ClientOption {
	return func(o *clientOptions) {
		o.doer = doer
	}
}

// WithUserAgent は User-Agent を上書きします。
func WithUserAgent(userAgent string) ClientOption {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// NewClient は、監視用の httpkit.Client を生成します。
// リトライは行わず、1回のGETの失敗はそのまま失敗として扱います。
func NewClient(timeout time.Duration, options ...ClientOption) *httpkit.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	o := clientOptions{
		doer:      &http.Client{Timeout: timeout},
		userAgent: UserAgent,
	}
	for _, opt := range options {
		opt(&o)
	}

	return httpkit.New(
		timeout,
		httpkit.WithHTTPClient(&userAgentDoer{next: o.doer, userAgent: o.userAgent}),
		httpkit.WithMaxRetries(0),
	)
}

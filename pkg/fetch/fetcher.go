package fetch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"golang.org/x/net/html/charset"
)

// BytesFetcher は、URLの生のバイト配列を取得する機能のインターフェースを定義します。
// *httpkit.Client はこのインターフェースを満たします。
type BytesFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Result は、1つのURLの取得結果です。HTMLか、失敗の原因のどちらかを保持します。
type Result struct {
	URL  string
	HTML string
	Err  error
}

// OK は、HTMLを取得できたかどうかを返します。
func (r Result) OK() bool {
	return r.Err == nil
}

// Fetcher は、URLからHTMLテキストを取得します。失敗は Result で報告し、エラーとして返しません。
type Fetcher struct {
	client BytesFetcher
	logger zerolog.Logger
}

// NewFetcher は、新しいFetcherのインスタンスを生成します。
func NewFetcher(client BytesFetcher, logger zerolog.Logger) (*Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("fetch.NewFetcher: BytesFetcher cannot be nil")
	}
	return &Fetcher{
		client: client,
		logger: logger,
	}, nil
}

// Fetch は、URLに1回だけGETリクエストを送り、デコード済みの本文を返します。
// ネットワークエラー、タイムアウト、2xx以外のステータスはいずれも失敗です。
func (f *Fetcher) Fetch(ctx context.Context, url string) Result {
	// NewClient の Doer が、このリクエストの Content-Type を recorder に書き込む
	ctx, recorder := withContentTypeRecorder(ctx)

	body, err := f.client.FetchBytes(ctx, url)
	if err != nil {
		kind := "network"
		if httpkit.IsNonRetryableError(err) {
			kind = "http_status"
		}
		f.logger.Error().Err(err).Str("url", url).Str("kind", kind).Msg("URLの取得に失敗しました")
		return Result{URL: url, Err: fmt.Errorf("URL(%s)の取得に失敗しました: %w", url, err)}
	}

	return Result{URL: url, HTML: decodeHTML(body, recorder.contentType)}
}

// decodeHTML は、BOM、Content-Type ヘッダー、meta 宣言の順で文字コードを決め、UTF-8 の文字列に変換します。
func decodeHTML(body []byte, contentType string) string {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

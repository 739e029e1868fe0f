package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// ErrStartTLSUnsupported は、SMTPサーバーが STARTTLS を広告しなかったことを示します。
// 平文のまま認証情報を送らないよう、この場合は送信を中止します。
var ErrStartTLSUnsupported = errors.New("SMTPサーバーが STARTTLS に対応していません")

// SMTPTransport は、net/smtp を使った Transport の実装です。
// 1回の Send につき1つのセッションを開き、STARTTLS, AUTH, 送信, QUIT の順に実行します。
type SMTPTransport struct {
	// TLSConfig は STARTTLS に使う設定です。nil の場合は接続先ホスト名で検証します。
	TLSConfig *tls.Config
}

// NewSMTPTransport は、既定のTLS設定を使う SMTPTransport を返します。
func NewSMTPTransport() *SMTPTransport {
	return &SMTPTransport{}
}

// Send は、メッセージを1通送信します。接続はどの経路でも必ず閉じられます。
func (t *SMTPTransport) Send(ctx context.Context, cfg SMTPConfig, from, to string, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	// 1. 接続 (タイムアウトはセッション全体のデッドラインとしても使う)
	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("SMTPサーバーへの接続に失敗しました (%s): %w", addr, err)
	}
	if cfg.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("SMTPセッションの開始に失敗しました: %w", err)
	}
	defer func() { _ = c.Close() }()

	// 2. 暗号化
	if ok, _ := c.Extension("STARTTLS"); !ok {
		return ErrStartTLSUnsupported
	}
	if err := c.StartTLS(t.tlsConfig(cfg.Host)); err != nil {
		return fmt.Errorf("STARTTLS に失敗しました: %w", err)
	}

	// 3. 認証
	if err := c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
		return fmt.Errorf("SMTP認証に失敗しました: %w", err)
	}

	// 4. 送信
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM に失敗しました: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO に失敗しました: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA に失敗しました: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("本文の書き込みに失敗しました: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("本文の送信に失敗しました: %w", err)
	}

	return c.Quit()
}

func (t *SMTPTransport) tlsConfig(host string) *tls.Config {
	if t.TLSConfig == nil {
		return &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	cfg := t.TLSConfig.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	return cfg
}

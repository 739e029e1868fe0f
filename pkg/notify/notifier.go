package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrIncompleteCredentials は、SMTPの接続情報が揃っていないことを示します。
var ErrIncompleteCredentials = errors.New("SMTPの接続情報が不足しています")

// SMTPConfig は、送信に使うSMTPサーバーの接続情報です。
// Host, Port, Username, Password の4つが揃っていなければ送信しません。
type SMTPConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	Username string `validate:"required"`
	Password string `validate:"required"`
	Timeout  time.Duration
}

// Transport は、組み立て済みのメッセージを1通送信する機能のインターフェースです。
// Notifier は、この抽象に依存します。
type Transport interface {
	Send(ctx context.Context, cfg SMTPConfig, from, to string, msg []byte) error
}

// Notifier は、設定された1人の宛先へメールで通知します。
type Notifier struct {
	smtp      SMTPConfig
	recipient string
	transport Transport
	validate  *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewNotifier は、新しいNotifierのインスタンスを生成します。
func NewNotifier(cfg SMTPConfig, recipient string, transport Transport, logger zerolog.Logger) (*Notifier, error) {
	if transport == nil {
		return nil, fmt.Errorf("notify.NewNotifier: Transport cannot be nil")
	}
	return &Notifier{
		smtp:      cfg,
		recipient: recipient,
		transport: transport,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Notify はメッセージを送信します。送信元は SMTP のユーザー名です。
// 接続情報が不足している場合は Transport を呼ばずに ErrIncompleteCredentials を返します。
// 失敗してもリトライはしません。
func (n *Notifier) Notify(ctx context.Context, msg Message) error {
	if err := n.validate.Struct(n.smtp); err != nil {
		n.logger.Error().Err(err).Msg("SMTPの接続情報が揃っていないため、メールを送信しません")
		return fmt.Errorf("%w: %v", ErrIncompleteCredentials, err)
	}

	msg.From = n.smtp.Username
	msg.To = n.recipient

	raw, err := msg.Bytes(n.now())
	if err != nil {
		n.logger.Error().Err(err).Msg("メールの組み立てに失敗しました")
		return err
	}

	if err := n.transport.Send(ctx, n.smtp, msg.From, msg.To, raw); err != nil {
		n.logger.Error().Err(err).
			Str("smtp_server", n.smtp.Host).
			Int("smtp_port", n.smtp.Port).
			Msg("メールの送信に失敗しました")
		return fmt.Errorf("メールの送信に失敗しました: %w", err)
	}

	n.logger.Info().Str("recipient", n.recipient).Msg("メールを送信しました")
	return nil
}

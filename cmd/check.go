package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-web-monitor/internal/pipeline"
	"github.com/shouni/go-web-monitor/pkg/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "監視対象のURLを1回チェックし、検出があればメールで通知します",
	Long: `環境変数 (TARGET_URLS, SEARCH_TEXT, CSS_SELECTOR など) から設定を読み込み、
各URLを順番に取得して検索テキストを探します。1件以上見つかった場合は RECIPIENT_EMAIL へ
1通だけ通知メールを送信して終了します。cron などの外部スケジューラから起動する想定です。`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runCheck,
}

// runCheck は、設定の読み込みから通知までを1回実行します。
// 監視対象URLがない場合はログに記録して正常終了します。
func runCheck(cmd *cobra.Command, args []string) error {
	defer appLogger.Close()
	logger := appLogger.Logger

	// 1. 中断シグナルを受けたら残りのURLを処理せずに終了する
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. 設定の読み込み
	cfg, err := config.Load(clibase.Flags.ConfigFile, logger)
	if err != nil {
		logger.Error().Err(err).Msg("設定の読み込みに失敗しました")
		return err
	}

	// 3. 依存性の初期化
	p, err := pipeline.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("初期化に失敗しました")
		return err
	}

	// 4. メインロジックの実行
	result, err := p.Run(ctx)
	if errors.Is(err, config.ErrNoTargetURLs) {
		// 監視対象なしは Run 内でログ済み。終了コードは 0 のまま
		return nil
	}
	if err != nil {
		logger.Error().Err(err).Msg("チェックを完了できませんでした")
		return err
	}

	logger.Info().
		Int("hits", len(result.Report.Hits)).
		Int("misses", len(result.Report.Misses)).
		Bool("notified", result.Notified).
		Msg("完了")
	return nil
}

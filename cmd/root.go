package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-web-monitor/internal/logging"
)

// --- グローバル定数 ---

const (
	appName        = "web-monitor"
	defaultEnvFile = ".env"
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
// NOTE: 設定ファイルのパス (--config/-C) は clibase.Flags.ConfigFile を使う
type AppFlags struct {
	EnvFile string // --env-file dotenv ファイル
}

var Flags AppFlags
var appLogger *logging.Logger // initAppPreRunE で初期化される

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(
		&Flags.EnvFile,
		"env-file",
		defaultEnvFile,
		"読み込む dotenv ファイル (既存の環境変数は上書きしません)",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	// 1. dotenv の読み込み (ロガーの設定も dotenv から読めるように先に行う)
	explicit := cmd.Flags().Changed("env-file")
	loaded, err := loadEnvFile(Flags.EnvFile, explicit)
	if err != nil {
		return err
	}

	// 2. ロガーの初期化
	logger, err := logging.New(logging.Options{
		Level:   os.Getenv(logging.EnvLogLevel),
		File:    os.Getenv(logging.EnvLogFile),
		Verbose: clibase.Flags.Verbose,
	})
	if err != nil {
		return err
	}
	logger.Logger = logger.With().Str("run_id", uuid.NewString()).Logger()
	appLogger = logger

	if loaded {
		appLogger.Debug().Str("env_file", Flags.EnvFile).Msg("dotenv ファイルを読み込みました")
	}
	return nil
}

// loadEnvFile は、dotenv ファイルがあれば読み込みます。既存の環境変数は上書きしません。
// 既定のファイルが存在しない場合は何もしませんが、明示的に指定されたファイルが無い場合はエラーです。
func loadEnvFile(path string, explicit bool) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return false, nil
		}
		return false, fmt.Errorf("dotenv ファイルを開けません (%s): %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("dotenv ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	return true, nil
}

// --- エントリポイント ---

// newRootCmd は、clibase のルートコマンドにサブコマンドを登録して返します。
// 引数なしで起動した場合は check と同じ処理を1回実行します (cron などからの起動用)。
func newRootCmd() *cobra.Command {
	rootCmd := clibase.NewRootCmd(appName, addAppPersistentFlags, initAppPreRunE)
	rootCmd.Short = "Webページを1回チェックし、検索テキストが見つかればメールで通知します"
	rootCmd.Long = `引数なしで起動すると check サブコマンドと同じ処理を1回実行して終了します。
設定は環境変数 (TARGET_URLS, SEARCH_TEXT, CSS_SELECTOR, SMTP_* など)、dotenv ファイル、
--config で指定した設定ファイルの順に解決されます。`
	rootCmd.Args = cobra.NoArgs
	rootCmd.SilenceUsage = true
	rootCmd.RunE = runCheck

	rootCmd.AddCommand(checkCmd, configCmd)
	return rootCmd
}

// Execute は、ルートコマンドを実行するメイン関数です。
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

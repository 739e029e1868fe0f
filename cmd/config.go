package cmd

import (
	"fmt"
	"io"
	"strings"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-web-monitor/pkg/config"
)

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "解決済みの設定を表示します (パスワードは伏せ字)",
	Long:         `環境変数、dotenv ファイル、設定ファイルから解決した設定を表示します。ネットワークには接続しません。`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		defer appLogger.Close()

		cfg, err := config.Load(clibase.Flags.ConfigFile, appLogger.Logger)
		if err != nil {
			return err
		}
		printConfig(cmd.OutOrStdout(), cfg.Redacted())
		return nil
	},
}

// printConfig は、RunConfig を1行1項目で出力します。
func printConfig(w io.Writer, cfg config.RunConfig) {
	orNone := func(s string) string {
		if s == "" {
			return "(none)"
		}
		return s
	}

	fmt.Fprintln(w, "--- 解決済みの設定 ---")
	fmt.Fprintf(w, "TARGET_URLS (%d 件):\n", len(cfg.TargetURLs))
	for _, u := range cfg.TargetURLs {
		fmt.Fprintf(w, "  - %s\n", u)
	}
	fmt.Fprintf(w, "TARGET_FEED_URL:   %s\n", orNone(cfg.FeedURL))
	fmt.Fprintf(w, "SEARCH_TEXT:       %q\n", cfg.SearchText)
	fmt.Fprintf(w, "CSS_SELECTOR:      %s\n", orNone(cfg.CSSSelector))
	fmt.Fprintf(w, "RECIPIENT_EMAIL:   %s\n", cfg.Recipient)
	fmt.Fprintf(w, "SMTP:              %s:%d (user: %s, pass: %s, timeout: %s)\n",
		orNone(cfg.SMTP.Host), cfg.SMTP.Port, orNone(cfg.SMTP.Username), orNone(cfg.SMTP.Password), cfg.SMTP.Timeout)
	fmt.Fprintf(w, "HTTP_TIMEOUT:      %s\n", cfg.HTTPTimeout)
	fmt.Fprintf(w, "REQUEST_DELAY_SEC: %s\n", cfg.RequestDelay)
	fmt.Fprintln(w, strings.Repeat("-", 22))
}

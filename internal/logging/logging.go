package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// 環境変数名
	EnvLogLevel = "LOG_LEVEL"
	EnvLogFile  = "LOG_FILE"

	fileMaxSizeMB  = 10
	fileMaxBackups = 3
)

// Options は、ロガーの構築方法を指定します。
type Options struct {
	Level   string    // debug|info|warn|error (空なら info)
	File    string    // 空でなければローテーション付きのファイルにも出力する
	Verbose bool      // true なら Level にかかわらず debug
	Out     io.Writer // コンソール出力先 (nil なら標準エラー出力)
	NoColor bool
}

// Logger は、zerolog のロガーと、ファイル出力を閉じるための Close をまとめたものです。
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// Close は、ファイル出力を使っている場合にそれを閉じます。
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// New は、Options に従ってロガーを構築します。
// 標準ライブラリの log パッケージの出力も、このロガーに流れるようにします。
func New(opts Options) (*Logger, error) {
	level, err := parseLevel(opts.Level, opts.Verbose)
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	writers := []io.Writer{consoleWriter(out, opts.NoColor)}

	var file *lumberjack.Logger
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("ログディレクトリの作成に失敗しました (%s): %w", opts.File, err)
		}
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			LocalTime:  true,
		}
		writers = append(writers, consoleWriter(file, true))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	stdlog.SetOutput(zl)
	stdlog.SetFlags(0)

	return &Logger{Logger: zl, file: file}, nil
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
}

// parseLevel は、LOG_LEVEL の値を zerolog のレベルに変換します。
func parseLevel(raw string, verbose bool) (zerolog.Level, error) {
	if verbose {
		return zerolog.DebugLevel, nil
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%s の値が不正です (%q): %w", EnvLogLevel, raw, err)
	}
	return level, nil
}

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName 滚动日志文件名
const LogFileName = "prodplan.log"

// Options 日志初始化参数
type Options struct {
	Verbose bool
	Dir     string    // 为空时只输出到控制台
	Console io.Writer // 默认 os.Stderr
}

// Init 初始化全局 logger：控制台 + 滚动文件
func Init(opts Options) error {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	out := opts.Console
	noColor := true
	if out == nil {
		out = os.Stderr
		noColor = !(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	}
	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}

	writers := []io.Writer{console}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory %q: %w", opts.Dir, err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, LogFileName),
			MaxSize:    16, // megabytes
			MaxBackups: 32,
			MaxAge:     365, // days
			Compress:   true,
		})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()
	return nil
}

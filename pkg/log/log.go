// Package log 提供基于 zerolog 的日志工具，支持 stderr 和文件输出（lumberjack 轮转）.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/clouddrive/pkg/configs"
)

var (
	mu     sync.RWMutex
	logger = newConsoleLogger(os.Stderr)
	closer io.Closer
)

// newConsoleLogger 未调用 Init 前使用的默认 logger.
func newConsoleLogger(out io.Writer) zerolog.Logger {
	console := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
		w.TimeFormat = time.Kitchen
	})

	return zerolog.New(console).With().Timestamp().Logger()
}

// Init 按配置初始化全局 logger，可重复调用（例如配置热重载后）.
func Init(logCfg configs.LogConfig, debug bool) error {
	// level
	lvl, err := zerolog.ParseLevel(strings.ToLower(logCfg.Level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logCfg.Level, err)
	}

	// outputs，stderr 总是输出，TimeFormat 为 time.Kitchen
	writers := []io.Writer{zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.Kitchen
	})}

	var lj *lumberjack.Logger
	if logCfg.EnableFile {
		lj = &lumberjack.Logger{
			Filename:   logCfg.FilePath,
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
			Compress:   logCfg.Compress,
		}
		writers = append(writers, lj)
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).Level(lvl).With()
	if debug {
		ctx = ctx.Caller().Stack()

		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	l := ctx.Timestamp().Logger()

	mu.Lock()
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}

	if lj != nil {
		closer = lj
	}

	logger = l
	mu.Unlock()

	zerolog.SetGlobalLevel(lvl)

	log.Logger = l
	zerolog.DefaultContextLogger = &l

	return nil
}

// Logger 返回全局 logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	l := logger

	return &l
}

// Close 关闭文件输出.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if closer == nil {
		return nil
	}

	err := closer.Close()
	closer = nil

	return err
}

// GinWriter 把 Gin 文本行转发为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

// NewGinWriter 创建 GinWriter，用于 gin.DefaultWriter 与 gin.DefaultErrorWriter.
func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	switch w.level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		w.logger.Error().Str("component", "gin").Msg(msg)
	case zerolog.WarnLevel:
		w.logger.Warn().Str("component", "gin").Msg(msg)
	default:
		w.logger.Debug().Str("component", "gin").Msg(msg)
	}

	return len(p), nil
}

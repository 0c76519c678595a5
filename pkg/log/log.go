// Package log 提供基于 zerolog 的日志工具，支持 stdout/stderr 和文件输出（lumberjack 轮转）.
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

	"github.com/yeisme/uploadvault/pkg/configs"
)

var (
	logger   zerolog.Logger
	mu       sync.RWMutex
	initOnce sync.Once
)

// Init 按配置初始化全局 logger，可重复调用（例如配置热重载后）.
func Init(cfg configs.LogConfig, debug bool) error {
	initOnce.Do(func() {})

	l, err := build(cfg, debug)

	mu.Lock()
	logger = l
	log.Logger = l
	mu.Unlock()

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	return err
}

// build 构造 logger；级别非法时退回 info 并返回错误.
func build(cfg configs.LogConfig, debug bool) (zerolog.Logger, error) {
	var levelErr error

	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		if cfg.Level != "" {
			levelErr = fmt.Errorf("invalid log level %q, defaulting to info", cfg.Level)
		}

		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	var writers []io.Writer

	if cfg.Format == "json" {
		writers = append(writers, os.Stderr)
	} else {
		writers = append(writers, zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = time.Kitchen
		}))
	}

	if cfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Str("app", configs.AppName)
	if debug {
		ctx = ctx.Caller().Stack()
	}

	return ctx.Timestamp().Logger(), levelErr
}

// Logger 返回全局 logger. 未调用 Init 时使用默认配置.
func Logger() *zerolog.Logger {
	initOnce.Do(func() {
		l, _ := build(configs.LogConfig{Level: configs.DefaultLogLevel}, false)

		mu.Lock()
		logger = l
		mu.Unlock()
	})

	mu.RLock()
	defer mu.RUnlock()

	l := logger

	return &l
}

// Component 返回带 component 字段的子 logger.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// GinWriter 把 Gin 文本行转发为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

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
		w.logger.Error().Msg(msg)
	case zerolog.WarnLevel:
		w.logger.Warn().Msg(msg)
	default:
		w.logger.Debug().Msg(msg)
	}

	return len(p), nil
}

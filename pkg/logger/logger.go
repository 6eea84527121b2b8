package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"agencydesk/pkg/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Logger   *logrus.Logger
	fallback sync.Once
)

// Initialize 初始化日志
func Initialize(cfg *config.Config) error {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out, err := output(cfg.Log)
	if err != nil {
		return err
	}
	log.SetOutput(out)

	Logger = log
	return nil
}

// output 配置了文件路径时同时写控制台和轮转文件
func output(cfg config.LogConfig) (io.Writer, error) {
	if cfg.FilePath == "" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}), nil
}

// GetLogger 获取日志实例，未初始化时返回输出到标准错误的默认实例
func GetLogger() *logrus.Logger {
	if Logger == nil {
		fallback.Do(func() {
			if Logger == nil {
				Logger = logrus.New()
			}
		})
	}
	return Logger
}

type entryKey struct{}

// WithFields 把字段挂到 ctx 上，之后 FromContext 取出的条目都带这些字段
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return context.WithValue(ctx, entryKey{}, FromContext(ctx).WithFields(fields))
}

// WithTenant 在 ctx 上记录当前租户
func WithTenant(ctx context.Context, tenantID uint) context.Context {
	return WithFields(ctx, logrus.Fields{"tenant_id": tenantID})
}

// FromContext 请求级日志条目（request_id、tenant_id 等），ctx 上没有时返回全局实例
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(entryKey{}).(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(GetLogger())
}

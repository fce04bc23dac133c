// Package logging 提供基于 zerolog 的全局结构化日志。
//
// 使用方式：
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Component("engine").Info().Int("rules", n).Msg("model built")
//
// 未调用 Init 时使用默认配置（info 级别，JSON 输出到 stderr）。
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 是日志配置。
type Config struct {
	// Level: trace / debug / info / warn / error / disabled，默认 info
	Level string `yaml:"level" json:"level"`

	// Format: json / console，默认 json
	Format string `yaml:"format" json:"format"`

	// Output 默认 os.Stderr
	Output io.Writer `yaml:"-" json:"-"`
}

// DefaultConfig 返回默认日志配置
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	initLogger(DefaultConfig())
}

// Init 重新配置全局 logger，可多次调用。
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	initLogger(cfg)
}

func initLogger(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339

	output := cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}
	log = zerolog.New(output).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel 把字符串转为 zerolog.Level，未知值视为 info。
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger 返回全局 logger
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

// Component 返回带 component 字段的子 logger
func Component(name string) *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log.With().Str("component", name).Logger()
	return &l
}

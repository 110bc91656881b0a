// Package logger 基于 zap 的结构化日志，文件输出通过 lumberjack 按大小滚动。
package logger

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志输出格式
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// 特殊输出目标，其他值视为文件路径
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

// ErrInvalidConfig 日志配置不合法
var ErrInvalidConfig = errors.New("invalid logger config")

// Config 日志配置
type Config struct {
	// Level 日志级别：debug、info、warn、error
	Level string `mapstructure:"level" json:"level"`
	// Format 输出格式：json、console
	Format string `mapstructure:"format" json:"format"`
	// Output 输出目标：stdout、stderr 或文件路径
	Output string `mapstructure:"output" json:"output"`
	// MaxSize 单个日志文件的最大大小（MB）
	MaxSize int `mapstructure:"max_size" json:"max_size"`
	// MaxBackups 保留的旧日志文件数量
	MaxBackups int `mapstructure:"max_backups" json:"max_backups"`
	// MaxAge 旧日志文件保留天数
	MaxAge int `mapstructure:"max_age" json:"max_age"`
	// Compress 是否压缩旧日志文件
	Compress bool `mapstructure:"compress" json:"compress"`
}

// DefaultConfig 默认日志配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     FormatJSON,
		Output:     OutputStdout,
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// New 按配置创建日志器
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("%w: level %q", ErrInvalidConfig, cfg.Level)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case FormatJSON, "":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case FormatConsole:
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("%w: format %q", ErrInvalidConfig, cfg.Format)
	}

	core := zapcore.NewCore(encoder, writeSyncer(cfg), level)
	return zap.New(core, zap.AddCaller()), nil
}

// writeSyncer 根据输出目标创建写入器
func writeSyncer(cfg Config) zapcore.WriteSyncer {
	switch cfg.Output {
	case OutputStdout, "":
		return zapcore.Lock(os.Stdout)
	case OutputStderr:
		return zapcore.Lock(os.Stderr)
	default:
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
}

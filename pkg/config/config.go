// Package config 使用 viper 加载验证组件的配置
// 加载顺序：默认值 < 配置文件 < 环境变量（前缀 KATYDID_，层级用下划线分隔）。
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"katydid-common-validation/pkg/gormplugin"
	"katydid-common-validation/pkg/logger"
	"katydid-common-validation/pkg/rule"
	"katydid-common-validation/pkg/validator"
)

// envPrefix 环境变量前缀
const envPrefix = "KATYDID"

// 空元数据策略配置值
const (
	EmptyMetadataReject = "reject"
	EmptyMetadataAccept = "accept"
)

// ErrInvalidConfig 配置不合法
var ErrInvalidConfig = errors.New("invalid config")

// Config 全部配置
type Config struct {
	Validator ValidatorConfig   `mapstructure:"validator" json:"validator"`
	Log       logger.Config     `mapstructure:"log" json:"log"`
	Database  gormplugin.Config `mapstructure:"database" json:"database"`
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	// AbortEarly 只报告第一个失败的属性
	AbortEarly bool `mapstructure:"abort_early" json:"abort_early"`
	// EmptyMetadata 元数据存在但为空时的策略：reject、accept
	EmptyMetadata string `mapstructure:"empty_metadata" json:"empty_metadata"`
	// TagKey 结构体规则标签名
	TagKey string `mapstructure:"tag_key" json:"tag_key"`
	// NameTag 错误消息中属性名取自的标签，为空时使用结构体字段名
	NameTag string `mapstructure:"name_tag" json:"name_tag"`
}

// Policy 转换为验证器的空元数据策略
func (c ValidatorConfig) Policy() validator.EmptyMetadataPolicy {
	if c.EmptyMetadata == EmptyMetadataAccept {
		return validator.EmptyMetadataAccept
	}
	return validator.EmptyMetadataReject
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	log := logger.DefaultConfig()

	v.SetDefault("validator.abort_early", true)
	v.SetDefault("validator.empty_metadata", EmptyMetadataReject)
	v.SetDefault("validator.tag_key", "validate")
	v.SetDefault("validator.name_tag", "json")

	v.SetDefault("log.level", log.Level)
	v.SetDefault("log.format", log.Format)
	v.SetDefault("log.output", log.Output)
	v.SetDefault("log.max_size", log.MaxSize)
	v.SetDefault("log.max_backups", log.MaxBackups)
	v.SetDefault("log.max_age", log.MaxAge)
	v.SetDefault("log.compress", log.Compress)

	v.SetDefault("database.driver", gormplugin.DriverSQLite)
	v.SetDefault("database.dsn", "file::memory:?cache=shared")
}

// Load 加载配置
// path 为空时在当前目录与 ./config 下查找 config.yaml，找不到则只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ============================================================================
// 配置自身的验证规则
// ============================================================================

var (
	configRegistry  = validator.NewRegistry()
	configValidator = validator.New(rule.NewEngine(rule.WithAbortEarly(false)), validator.WithRegistry(configRegistry))
)

func init() {
	validator.MustAnnotate[ValidatorConfig](configRegistry, "empty_metadata",
		rule.String().Valid(EmptyMetadataReject, EmptyMetadataAccept))
	validator.MustAnnotate[ValidatorConfig](configRegistry, "tag_key", rule.String().Regex(`^[a-zA-Z_][a-zA-Z0-9_]*$`))
	validator.MustAnnotate[ValidatorConfig](configRegistry, "name_tag", rule.String().Allow("").Alphanum())

	validator.MustAnnotate[logger.Config](configRegistry, "level", rule.String().Valid("debug", "info", "warn", "error"))
	validator.MustAnnotate[logger.Config](configRegistry, "format", rule.String().Valid(logger.FormatJSON, logger.FormatConsole))
	validator.MustAnnotate[logger.Config](configRegistry, "output", rule.String().Required())
	validator.MustAnnotate[logger.Config](configRegistry, "max_size", rule.Number().Integer().Positive())
	validator.MustAnnotate[logger.Config](configRegistry, "max_backups", rule.Number().Integer().Min(0))
	validator.MustAnnotate[logger.Config](configRegistry, "max_age", rule.Number().Integer().Min(0))

	validator.MustAnnotate[gormplugin.Config](configRegistry, "driver",
		rule.String().Valid(gormplugin.DriverSQLite, gormplugin.DriverMySQL, gormplugin.DriverPostgres))
	validator.MustAnnotate[gormplugin.Config](configRegistry, "dsn", rule.String().Required())
}

// Validate 验证配置的各个部分
func (c *Config) Validate() error {
	sections := []struct {
		name  string
		value any
	}{
		{name: "validator", value: c.Validator},
		{name: "log", value: c.Log},
		{name: "database", value: c.Database},
	}

	for _, section := range sections {
		result, err := configValidator.Validate(section.value)
		if err != nil {
			return err
		}
		if result.Error != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, section.name, result.Error)
		}
	}
	return nil
}

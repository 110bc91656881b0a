package gormplugin

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// 支持的数据库驱动
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// ErrUnsupportedDriver 不支持的数据库驱动
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Config 数据库配置
type Config struct {
	// Driver 驱动：sqlite、mysql、postgres
	Driver string `mapstructure:"driver" json:"driver"`
	// DSN 数据源
	DSN string `mapstructure:"dsn" json:"dsn"`
}

// Dialector 按驱动名称创建 gorm 方言
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "sqlite3":
		return sqlite.Open(cfg.DSN), nil
	case DriverMySQL:
		return mysql.Open(cfg.DSN), nil
	case DriverPostgres, "postgresql":
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// Open 打开数据库连接，plugin 不为 nil 时安装验证插件
func Open(cfg Config, plugin *Plugin, opts ...gorm.Option) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if plugin != nil {
		if err = db.Use(plugin); err != nil {
			return nil, fmt.Errorf("install %s plugin: %w", plugin.Name(), err)
		}
	}
	return db, nil
}

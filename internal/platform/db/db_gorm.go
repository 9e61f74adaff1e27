// Package db はデータベース接続の確立とマイグレーションを提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	holdingadapters "stock_portfolio/internal/feature/holdings/adapters"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// retryInterval は接続リトライの間隔です。
	retryInterval = 3 * time.Second
	// DefaultConnectTimeout は接続リトライを諦めるまでの時間です。
	DefaultConnectTimeout = 60 * time.Second
)

// Config はデータベース接続設定です。
type Config struct {
	Driver        string
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	InstanceName  string // Cloud SQL のインスタンス接続名（設定時はUnixソケットで接続）
	Path          string // SQLite のファイルパス
	RunMigrations bool
}

// LoadConfigFromEnv は環境変数からConfigを読み込みます。
// DB_DRIVER が未設定の場合は sqlite を使用します。
func LoadConfigFromEnv() Config {
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = DriverSQLite
	}
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "stock_portfolio.db"
	}
	return Config{
		Driver:        driver,
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		Host:          os.Getenv("DB_HOST"),
		Port:          os.Getenv("DB_PORT"),
		InstanceName:  os.Getenv("INSTANCE_CONNECTION_NAME"),
		Path:          path,
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// BuildDSN はMySQL用のDSNを生成します。
// InstanceName が設定されている場合はHost/Portより優先してCloud SQLのUnixソケットを使用します。
func BuildDSN(cfg Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	// 値が変わらないUPDATEでも一致した行数を返させ、存在しない行との区別に使う
	mc.ClientFoundRows = true
	mc.Params = map[string]string{"charset": "utf8mb4"}

	if cfg.InstanceName != "" {
		mc.Net = "unix"
		mc.Addr = "/cloudsql/" + cfg.InstanceName
	} else {
		mc.Net = "tcp"
		mc.Addr = cfg.Host + ":" + cfg.Port
	}
	return mc.FormatDSN()
}

// BuildPostgresDSN はPostgreSQL用のキーワード/値形式のDSNを生成します。
func BuildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, cfg.User, cfg.Password, cfg.Name, port)
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

func openerFor(driver string) (Opener, func(Config) string, error) {
	gcfg := &gorm.Config{}
	switch driver {
	case DriverMySQL:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(gmysql.Open(dsn), gcfg) }, BuildDSN, nil
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), gcfg) }, BuildPostgresDSN, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), gcfg) }, func(c Config) string { return c.Path }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// ConnectWithRetry は timeout が経過するまで retryInterval ごとに接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", min(retryInterval, remaining))
		time.Sleep(min(retryInterval, remaining))
	}
}

// Open は cfg.Driver に応じたドライバーで接続し、必要であればマイグレーションを実行します。
func Open(cfg Config) (*gorm.DB, error) {
	open, dsnFor, err := openerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(dsnFor(cfg), DefaultConnectTimeout, open)
	if err != nil {
		return nil, err
	}
	slog.Info("DB connection successful", "driver", cfg.Driver)

	// SQLiteは単一ファイルのためマイグレーションを常に実行する
	if cfg.RunMigrations || cfg.Driver == DriverSQLite {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate はholdingsテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database")
	}
	if err := db.AutoMigrate(&holdingadapters.HoldingModel{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

// Supported values of the DBDRIVER variable.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all settings of the contact book processes.
//
// Usage example on the command line:
// > PORT=8080 DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 GIN_LOGGING=off go run ./cmd/service
// > DBDRIVER=sqlite DBPATH=/tmp/contacts.db go run ./cmd/service
type Config struct {
	Port       int    `env:"PORT"        envDefault:"8080"`
	DBDriver   string `env:"DBDRIVER"    envDefault:"mysql"`
	DBUser     string `env:"DBUSER"`
	DBPassword string `env:"DBPWD"`
	DBHost     string `env:"DBHOST"      envDefault:"localhost:3306"`
	DBName     string `env:"DBNAME"      envDefault:"test"`
	DBPath     string `env:"DBPATH"      envDefault:"contacts.db"`
	GinLogging string `env:"GIN_LOGGING"`
	LogLevel   string `env:"LOG_LEVEL"   envDefault:"info"`
}

// Load parses the environment into a Config and checks the values.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if cfg.DBDriver != DriverMySQL && cfg.DBDriver != DriverSQLite {
		return Config{}, fmt.Errorf("unsupported DBDRIVER %q", cfg.DBDriver)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	return cfg, nil
}

// RequestLogging reports whether HTTP requests shall be logged.
func (c Config) RequestLogging() bool {
	return !strings.EqualFold(c.GinLogging, "off")
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.DBPath
	}
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = c.DBHost
	mc.DBName = c.DBName
	mc.ParseTime = true
	return mc.FormatDSN()
}

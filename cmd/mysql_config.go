package cmd

import (
	"fooddelivery/config"
	"fooddelivery/infrastructure/persistence/mysql"
)

// NewMySQLConfig maps the database section onto the persistence config.
// Type "sqlite" selects the embedded driver.
func NewMySQLConfig(cfg *config.Config) *mysql.Config {
	driver := "mysql"
	if cfg.Database.Type == "sqlite" {
		driver = "sqlite"
	}
	return &mysql.Config{
		Driver:          driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SQLitePath:      cfg.Database.SQLitePath,
		LogLevel:        cfg.Database.LogLevel,
		SlowQuery:       cfg.Database.SlowQuery,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog/log"

	"querydraft/config"
)

func NewSQLServerService(cfg config.SQLServerConfig, storage *ResultsStorage, format string) (*SQLExecutor, error) {
	if cfg.Server == "" || cfg.Database == "" {
		return nil, fmt.Errorf("SQL Server configuration is incomplete")
	}

	db, err := sql.Open("sqlserver", buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQL Server connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		// The server may come up later; queries will surface the error.
		log.Warn().Err(err).Str("component", "sqlserver").Str("dsn", redactedConnectionString(cfg)).
			Msg("failed to ping SQL Server during initialization")
	}

	return newSQLExecutor(db, "sqlserver", storage, format), nil
}

func buildConnectionString(cfg config.SQLServerConfig) string {
	connStr := fmt.Sprintf("server=%s;port=%s;database=%s",
		cfg.Server, cfg.Port, cfg.Database)

	if cfg.UserID != "" {
		connStr += fmt.Sprintf(";user id=%s;password=%s", cfg.UserID, cfg.Password)
	} else {
		connStr += ";trusted_connection=true"
	}

	if cfg.Encrypt {
		// TLS without CA verification so internal certificates work.
		connStr += ";encrypt=true;TrustServerCertificate=true"
	} else {
		connStr += ";encrypt=false"
	}

	return connStr
}

// redactedConnectionString is buildConnectionString with the password masked,
// for logs.
func redactedConnectionString(cfg config.SQLServerConfig) string {
	if cfg.Password != "" {
		cfg.Password = "****"
	}
	return buildConnectionString(cfg)
}

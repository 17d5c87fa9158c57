package database

import (
	"database/sql"
	"time"

	"cafe-backend/config"

	_ "github.com/go-sql-driver/mysql"
)

// Connect opens the MySQL pool and verifies connectivity. The handle is
// returned to the caller and passed into controllers explicitly; there is
// no package-level pool.
func Connect(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

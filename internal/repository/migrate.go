package repository

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/darkodi/link-shortener/internal/logger"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// goose keeps its base FS and dialect in package globals
var gooseMu sync.Mutex

// runMigrations applies the embedded migrations for dialect ("sqlite3" or "postgres")
func runMigrations(db *sql.DB, dialect string, log *logger.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{log: log})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations/"+dialect); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through the application logger
type gooseLogger struct {
	log *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	if g.log != nil {
		g.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
	}
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	if g.log != nil {
		g.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
	}
	os.Exit(1)
}

package cases

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// CreateTables ensures the cases table and its query indexes exist.
func CreateTables(db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS cases (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          case_id TEXT NOT NULL UNIQUE,
	          type TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          user_id TEXT NOT NULL,
	          user_name TEXT NOT NULL,
	          moderator_id TEXT NOT NULL,
	          moderator_name TEXT NOT NULL,
	          reason TEXT NOT NULL DEFAULT '',
	          issued_at INTEGER NOT NULL,
	          expires_at INTEGER NOT NULL DEFAULT -1,
	          visible INTEGER NOT NULL DEFAULT 1
	      );`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create cases table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_cases_guild_user ON cases (guild_id, user_id, visible)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_expiry ON cases (type, expires_at, visible)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create cases index: %w", err)
		}
	}
	return nil
}

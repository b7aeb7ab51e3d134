package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_chats",
		SQL: `CREATE TABLE IF NOT EXISTS chats (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title      TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  chat_id             UUID        NOT NULL REFERENCES chats (id),
  user_id             TEXT        NOT NULL,
  filename            TEXT        NOT NULL,
  mime_type           TEXT        NOT NULL,
  storage_path        TEXT        NOT NULL UNIQUE,
  size                BIGINT      NOT NULL CHECK (size >= 0),
  ocr_text            TEXT,
  content_fingerprint TEXT,
  verified_at         TIMESTAMPTZ,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_messages",
		SQL: `CREATE TABLE IF NOT EXISTS messages (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  chat_id      UUID        NOT NULL REFERENCES chats (id),
  role         TEXT        NOT NULL CHECK (role IN ('user', 'assistant')),
  content      TEXT        NOT NULL,
  content_type TEXT        NOT NULL DEFAULT '',
  file_id      UUID        REFERENCES files (id),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_file_verifications",
		SQL: `CREATE TABLE IF NOT EXISTS file_verifications (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  file_id             UUID        NOT NULL REFERENCES files (id),
  content_fingerprint TEXT        NOT NULL,
  chain_fingerprint   TEXT        NOT NULL,
  verified_by         TEXT        NOT NULL,
  status              TEXT        NOT NULL,
  metadata            JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_reports",
		SQL: `CREATE TABLE IF NOT EXISTS reports (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  chat_id       UUID        NOT NULL REFERENCES chats (id),
  title         TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL UNIQUE,
  message_count INT         NOT NULL DEFAULT 0,
  file_count    INT         NOT NULL DEFAULT 0,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_messages_chat_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages (chat_id, created_at);`,
	},
	{
		Name: "create_index_files_chat_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_chat_id ON files (chat_id);`,
	},
	{
		Name: "create_index_file_verifications_file_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_file_verifications_file_created ON file_verifications (file_id, created_at);`,
	},
	{
		Name: "create_index_reports_chat_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reports_chat_id ON reports (chat_id);`,
	},
}

// EnsureMigrated checks if the 'chats' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.chats') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the idempotent DDL for the selected driver.
func Migrate(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("db: migrate: unsupported driver %q", driver)
	}

	// Try the whole script first; if the driver rejects multiple statements,
	// fall back to one statement at a time (the DDL has no bodies with ';').
	if _, err := db.ExecContext(ctx, schema); err != nil {
		for _, stmt := range splitSQL(schema) {
			if _, e := db.ExecContext(ctx, stmt); e != nil {
				return fmt.Errorf("db: migrate failed at %q: %w", firstLine(stmt), e)
			}
		}
	}
	return nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  discipline TEXT NOT NULL,
  subjects_json TEXT NOT NULL DEFAULT '[]',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS question_subjects (
  question_id INTEGER NOT NULL REFERENCES questions(id),
  position INTEGER NOT NULL,
  subject TEXT NOT NULL,
  subject_key TEXT NOT NULL,
  PRIMARY KEY (question_id, position)
);
CREATE INDEX IF NOT EXISTS question_subjects_key_idx ON question_subjects (subject_key);

CREATE TABLE IF NOT EXISTS alternatives (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_id INTEGER NOT NULL REFERENCES questions(id),
  description TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS alternatives_question_idx ON alternatives (question_id);

CREATE TABLE IF NOT EXISTS exams (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  discipline TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS exam_questions (
  exam_id INTEGER NOT NULL REFERENCES exams(id),
  question_id INTEGER NOT NULL REFERENCES questions(id),
  position INTEGER NOT NULL,
  PRIMARY KEY (exam_id, position),
  UNIQUE (exam_id, question_id)
);
CREATE INDEX IF NOT EXISTS exam_questions_question_idx ON exam_questions (question_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  discipline TEXT NOT NULL,
  subjects_json TEXT NOT NULL DEFAULT '[]',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS question_subjects (
  question_id BIGINT NOT NULL REFERENCES questions(id),
  position INTEGER NOT NULL,
  subject TEXT NOT NULL,
  subject_key TEXT NOT NULL,
  PRIMARY KEY (question_id, position)
);
CREATE INDEX IF NOT EXISTS question_subjects_key_idx ON question_subjects (subject_key);

CREATE TABLE IF NOT EXISTS alternatives (
  id BIGSERIAL PRIMARY KEY,
  question_id BIGINT NOT NULL REFERENCES questions(id),
  description TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS alternatives_question_idx ON alternatives (question_id);

CREATE TABLE IF NOT EXISTS exams (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  discipline TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS exam_questions (
  exam_id BIGINT NOT NULL REFERENCES exams(id),
  question_id BIGINT NOT NULL REFERENCES questions(id),
  position INTEGER NOT NULL,
  PRIMARY KEY (exam_id, position),
  UNIQUE (exam_id, question_id)
);
CREATE INDEX IF NOT EXISTS exam_questions_question_idx ON exam_questions (question_id);
`

// splitSQL naively splits on ';' boundaries.
func splitSQL(s string) []string {
	raw := strings.Split(s, ";")
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part+";")
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

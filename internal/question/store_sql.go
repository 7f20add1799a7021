package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-qbank/internal/apperr"
	"github.com/mind-engage/mindengage-qbank/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(h *sql.DB) *SQLStore {
	return &SQLStore{db: h}
}

var _ Store = (*SQLStore)(nil)

func (s *SQLStore) Create(ctx context.Context, in Input) (Question, error) {
	if err := in.normalize(); err != nil {
		return Question{}, err
	}
	subjectsJSON, err := EncodeSubjects(in.Subjects)
	if err != nil {
		return Question{}, err
	}

	var out Question
	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var id int64
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO questions (title, discipline, subjects_json, created_at)
			 VALUES ($1,$2,$3,$4) RETURNING id`,
			in.Title, in.Discipline, subjectsJSON, time.Now().Unix(),
		).Scan(&id); err != nil {
			return fmt.Errorf("question: insert: %w", err)
		}
		if err := insertSubjects(ctx, tx, id, in.Subjects); err != nil {
			return err
		}
		alts, err := insertAlternatives(ctx, tx, id, in.Alternatives)
		if err != nil {
			return err
		}
		out = Question{
			Summary:      Summary{ID: id, Title: in.Title, Discipline: in.Discipline, Subjects: in.Subjects},
			Alternatives: alts,
		}
		return nil
	})
	if err != nil {
		return Question{}, err
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Question, error) {
	var q Question
	var subjectsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, discipline, subjects_json FROM questions WHERE id=$1`, id,
	).Scan(&q.ID, &q.Title, &q.Discipline, &subjectsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, fmt.Errorf("question %d: %w", id, apperr.ErrNotFound)
		}
		return Question{}, fmt.Errorf("question: get: %w", err)
	}
	if q.Subjects, err = DecodeSubjects(subjectsJSON); err != nil {
		return Question{}, err
	}
	if q.Alternatives, err = listAlternatives(ctx, s.db, id); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) List(ctx context.Context, f Filter) ([]Summary, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT q.id, q.title, q.discipline, q.subjects_json FROM questions q WHERE 1=1`)
	if d := strings.TrimSpace(f.Discipline); d != "" {
		args = append(args, d)
		fmt.Fprintf(&sb, ` AND q.discipline = $%d`, len(args))
	}
	if subj := strings.TrimSpace(f.Subject); subj != "" {
		args = append(args, SubjectKey(subj))
		fmt.Fprintf(&sb, ` AND EXISTS (SELECT 1 FROM question_subjects qs WHERE qs.question_id = q.id AND qs.subject_key = $%d)`, len(args))
	}
	sb.WriteString(` ORDER BY q.id`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("question: list: %w", err)
	}
	defer rows.Close()
	return ScanSummaries(rows)
}

func (s *SQLStore) Update(ctx context.Context, id int64, in Input) (Question, error) {
	if err := in.normalize(); err != nil {
		return Question{}, err
	}
	subjectsJSON, err := EncodeSubjects(in.Subjects)
	if err != nil {
		return Question{}, err
	}

	var out Question
	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE questions SET title=$1, discipline=$2, subjects_json=$3 WHERE id=$4`,
			in.Title, in.Discipline, subjectsJSON, id)
		if err != nil {
			return fmt.Errorf("question: update: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("question: update: %w", err)
		} else if n == 0 {
			return fmt.Errorf("question %d: %w", id, apperr.ErrNotFound)
		}
		if err := deleteChildren(ctx, tx, id); err != nil {
			return err
		}
		if err := insertSubjects(ctx, tx, id, in.Subjects); err != nil {
			return err
		}
		alts, err := insertAlternatives(ctx, tx, id, in.Alternatives)
		if err != nil {
			return err
		}
		out = Question{
			Summary:      Summary{ID: id, Title: in.Title, Discipline: in.Discipline, Subjects: in.Subjects},
			Alternatives: alts,
		}
		return nil
	})
	if err != nil {
		return Question{}, err
	}
	return out, nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM questions WHERE id=$1`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("question %d: %w", id, apperr.ErrNotFound)
			}
			return fmt.Errorf("question: delete: %w", err)
		}
		var links int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM exam_questions WHERE question_id=$1`, id,
		).Scan(&links); err != nil {
			return fmt.Errorf("question: delete: count exam links: %w", err)
		}
		if links > 0 {
			return fmt.Errorf("question %d is used by %d exam(s): %w", id, links, apperr.ErrConflict)
		}
		if err := deleteChildren(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id); err != nil {
			if db.IsForeignKeyViolation(err) {
				// an exam linked it after our count
				return fmt.Errorf("question %d is used by an exam: %w", id, apperr.ErrConflict)
			}
			return fmt.Errorf("question: delete: %w", err)
		}
		return nil
	})
}

// ScanSummaries reads (id, title, discipline, subjects_json) rows.
func ScanSummaries(rows *sql.Rows) ([]Summary, error) {
	out := []Summary{}
	for rows.Next() {
		var q Summary
		var subjectsJSON string
		if err := rows.Scan(&q.ID, &q.Title, &q.Discipline, &subjectsJSON); err != nil {
			return nil, fmt.Errorf("question: scan: %w", err)
		}
		subjects, err := DecodeSubjects(subjectsJSON)
		if err != nil {
			return nil, err
		}
		q.Subjects = subjects
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("question: rows: %w", err)
	}
	return out, nil
}

func listAlternatives(ctx context.Context, q db.Querier, questionID int64) ([]Alternative, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, description, is_correct FROM alternatives WHERE question_id=$1 ORDER BY id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("question: list alternatives: %w", err)
	}
	defer rows.Close()
	out := []Alternative{}
	for rows.Next() {
		var a Alternative
		if err := rows.Scan(&a.ID, &a.Description, &a.IsCorrect); err != nil {
			return nil, fmt.Errorf("question: scan alternative: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("question: alternatives rows: %w", err)
	}
	return out, nil
}

func insertSubjects(ctx context.Context, q db.Querier, questionID int64, subjects []string) error {
	for i, subj := range subjects {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO question_subjects (question_id, position, subject, subject_key) VALUES ($1,$2,$3,$4)`,
			questionID, i, subj, SubjectKey(subj)); err != nil {
			return fmt.Errorf("question: insert subject: %w", err)
		}
	}
	return nil
}

func insertAlternatives(ctx context.Context, q db.Querier, questionID int64, in []AlternativeInput) ([]Alternative, error) {
	out := make([]Alternative, 0, len(in))
	for _, a := range in {
		var id int64
		if err := q.QueryRowContext(ctx,
			`INSERT INTO alternatives (question_id, description, is_correct) VALUES ($1,$2,$3) RETURNING id`,
			questionID, a.Description, a.IsCorrect,
		).Scan(&id); err != nil {
			return nil, fmt.Errorf("question: insert alternative: %w", err)
		}
		out = append(out, Alternative{ID: id, Description: a.Description, IsCorrect: a.IsCorrect})
	}
	return out, nil
}

// deleteChildren removes the rows a question owns. Called inside the owning tx.
func deleteChildren(ctx context.Context, q db.Querier, questionID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM alternatives WHERE question_id=$1`, questionID); err != nil {
		return fmt.Errorf("question: delete alternatives: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM question_subjects WHERE question_id=$1`, questionID); err != nil {
		return fmt.Errorf("question: delete subjects: %w", err)
	}
	return nil
}

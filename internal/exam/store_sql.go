package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-qbank/internal/apperr"
	"github.com/mind-engage/mindengage-qbank/internal/db"
	"github.com/mind-engage/mindengage-qbank/internal/question"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(h *sql.DB) *SQLStore {
	return &SQLStore{db: h}
}

var _ Store = (*SQLStore)(nil)

func (s *SQLStore) Create(ctx context.Context, in Input) (Exam, error) {
	if err := in.normalize(); err != nil {
		return Exam{}, err
	}
	var id int64
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireQuestions(ctx, tx, in.QuestionIDs); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO exams (title, discipline, created_at) VALUES ($1,$2,$3) RETURNING id`,
			in.Title, in.Discipline, time.Now().Unix(),
		).Scan(&id); err != nil {
			return fmt.Errorf("exam: insert: %w", err)
		}
		return insertLinks(ctx, tx, id, in.QuestionIDs)
	})
	if err != nil {
		return Exam{}, err
	}
	return Exam{
		ID:            id,
		Title:         in.Title,
		Discipline:    in.Discipline,
		QuestionCount: len(in.QuestionIDs),
		QuestionIDs:   in.QuestionIDs,
	}, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Exam, error) {
	var e Exam
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, discipline FROM exams WHERE id=$1`, id,
	).Scan(&e.ID, &e.Title, &e.Discipline)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, fmt.Errorf("exam %d: %w", id, apperr.ErrNotFound)
		}
		return Exam{}, fmt.Errorf("exam: get: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.title, q.discipline, q.subjects_json
		FROM exam_questions eq
		JOIN questions q ON q.id = eq.question_id
		WHERE eq.exam_id = $1
		ORDER BY eq.position`, id)
	if err != nil {
		return Exam{}, fmt.Errorf("exam: get questions: %w", err)
	}
	defer rows.Close()
	if e.Questions, err = question.ScanSummaries(rows); err != nil {
		return Exam{}, err
	}
	e.QuestionCount = len(e.Questions)
	e.QuestionIDs = make([]int64, 0, len(e.Questions))
	for _, q := range e.Questions {
		e.QuestionIDs = append(e.QuestionIDs, q.ID)
	}
	return e, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Exam, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.title, e.discipline, COUNT(eq.question_id)
		FROM exams e
		LEFT JOIN exam_questions eq ON eq.exam_id = e.id
		GROUP BY e.id, e.title, e.discipline
		ORDER BY e.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("exam: list: %w", err)
	}
	defer rows.Close()

	out := []Exam{}
	for rows.Next() {
		var e Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.Discipline, &e.QuestionCount); err != nil {
			return nil, fmt.Errorf("exam: list scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("exam: list rows: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Update(ctx context.Context, id int64, in Input) (Exam, error) {
	if err := in.normalize(); err != nil {
		return Exam{}, err
	}
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE exams SET title=$1, discipline=$2 WHERE id=$3`, in.Title, in.Discipline, id)
		if err != nil {
			return fmt.Errorf("exam: update: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("exam: update: %w", err)
		} else if n == 0 {
			return fmt.Errorf("exam %d: %w", id, apperr.ErrNotFound)
		}
		if err := requireQuestions(ctx, tx, in.QuestionIDs); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM exam_questions WHERE exam_id=$1`, id); err != nil {
			return fmt.Errorf("exam: clear links: %w", err)
		}
		return insertLinks(ctx, tx, id, in.QuestionIDs)
	})
	if err != nil {
		return Exam{}, err
	}
	return Exam{
		ID:            id,
		Title:         in.Title,
		Discipline:    in.Discipline,
		QuestionCount: len(in.QuestionIDs),
		QuestionIDs:   in.QuestionIDs,
	}, nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM exam_questions WHERE exam_id=$1`, id); err != nil {
			return fmt.Errorf("exam: delete links: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM exams WHERE id=$1`, id)
		if err != nil {
			return fmt.Errorf("exam: delete: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("exam: delete: %w", err)
		} else if n == 0 {
			return fmt.Errorf("exam %d: %w", id, apperr.ErrNotFound)
		}
		return nil
	})
}

func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM questions), (SELECT COUNT(*) FROM exams)`,
	).Scan(&st.TotalQuestions, &st.TotalExams)
	if err != nil {
		return Stats{}, fmt.Errorf("exam: stats: %w", err)
	}
	return st, nil
}

func insertLinks(ctx context.Context, q db.Querier, examID int64, questionIDs []int64) error {
	for pos, qid := range questionIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, position) VALUES ($1,$2,$3)`,
			examID, qid, pos); err != nil {
			if db.IsForeignKeyViolation(err) {
				// deleted between the existence check and the insert
				return apperr.Invalid("questionIds", fmt.Sprintf("unknown question id %d", qid))
			}
			if db.IsUniqueViolation(err) {
				return apperr.Invalid("questionIds", fmt.Sprintf("duplicate question id %d", qid))
			}
			return fmt.Errorf("exam: insert link: %w", err)
		}
	}
	return nil
}

package exam

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-qbank/internal/apperr"
	"github.com/mind-engage/mindengage-qbank/internal/db"
)

func (in *Input) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Discipline = strings.TrimSpace(in.Discipline)
	if err := apperr.Struct(in); err != nil {
		return err
	}
	seen := make(map[int64]struct{}, len(in.QuestionIDs))
	for _, id := range in.QuestionIDs {
		if _, dup := seen[id]; dup {
			return apperr.Invalid("questionIds", "duplicate question id "+strconv.FormatInt(id, 10))
		}
		seen[id] = struct{}{}
	}
	return nil
}

// requireQuestions fails with a ValidationError naming the first id in ids
// that has no questions row. ids must already be free of duplicates.
func requireQuestions(ctx context.Context, q db.Querier, ids []int64) error {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		`SELECT id FROM questions WHERE id IN (`+db.Placeholders(1, len(ids))+`)`, args...)
	if err != nil {
		return fmt.Errorf("exam: check questions: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("exam: check questions: %w", err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("exam: check questions: %w", err)
	}
	if len(found) == len(ids) {
		return nil
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return apperr.Invalid("questionIds", "unknown question id "+strconv.FormatInt(id, 10))
		}
	}
	return nil
}

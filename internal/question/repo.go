package question

import "context"

type Store interface {
	Create(ctx context.Context, in Input) (Question, error)
	Get(ctx context.Context, id int64) (Question, error) // with alternatives
	List(ctx context.Context, f Filter) ([]Summary, error)
	Update(ctx context.Context, id int64, in Input) (Question, error)
	// Delete fails with apperr.ErrConflict while any exam still links the question.
	Delete(ctx context.Context, id int64) error
}

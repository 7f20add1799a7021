package exam

import "context"

type Store interface {
	Create(ctx context.Context, in Input) (Exam, error)
	Get(ctx context.Context, id int64) (Exam, error) // with linked questions, in link order
	List(ctx context.Context) ([]Exam, error)        // newest first
	Update(ctx context.Context, id int64, in Input) (Exam, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (Stats, error)
}

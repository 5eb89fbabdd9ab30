package medicalhistory

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, id string) (Record, error)
	ListByPet(ctx context.Context, petID string) ([]Record, error)
	ListByVet(ctx context.Context, vetID string) ([]Record, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Record, error)
}

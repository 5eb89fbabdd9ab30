package appointments

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a Appointment) error
	Update(ctx context.Context, a Appointment) error
	GetByID(ctx context.Context, id string) (Appointment, error)
	ListByPet(ctx context.Context, petID string) ([]Appointment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error)
	ListByVet(ctx context.Context, vetID string) ([]Appointment, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Appointment, error)
	ListAll(ctx context.Context) ([]Appointment, error)
	Delete(ctx context.Context, id string) error
}

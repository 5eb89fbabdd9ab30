package vaccinations

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, v Vaccination) error
	Update(ctx context.Context, v Vaccination) error
	GetByID(ctx context.Context, id string) (Vaccination, error)
	ListByPet(ctx context.Context, petID string) ([]Vaccination, error)
	ListByVet(ctx context.Context, vetID string) ([]Vaccination, error)

	// ListByNextDueRange: registros cuya due date (NextDueDate, o
	// ScheduledDate en su ausencia) cae en [start, end].
	ListByNextDueRange(ctx context.Context, start, end time.Time) ([]Vaccination, error)

	// ListOverdue: registros SCHEDULED con due date estrictamente anterior
	// a asOf.
	ListOverdue(ctx context.Context, asOf time.Time) ([]Vaccination, error)

	ListAll(ctx context.Context) ([]Vaccination, error)
	Delete(ctx context.Context, id string) error
}

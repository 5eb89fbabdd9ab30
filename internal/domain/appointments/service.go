package appointments

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict: el vet ya tiene una cita no cancelada que se cruza con el
	// slot pedido. Para el caller es reintentable con otro horario.
	ErrConflict = errors.New("scheduling conflict")
)

const DefaultDurationMinutes = 30

type Config struct {
	// Location para el corte de "hoy" [00:00, 24:00). nil = UTC.
	Location *time.Location

	// DefaultDurationMinutes cuando el input no trae duración. <=0 usa 30.
	DefaultDurationMinutes int
}

type Service struct {
	repo  Repository
	locks *vetLocks
	now   func() time.Time

	loc             *time.Location
	defaultDuration int
}

func NewService(repo Repository, cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	dur := cfg.DefaultDurationMinutes
	if dur <= 0 {
		dur = DefaultDurationMinutes
	}
	return &Service{
		repo:            repo,
		locks:           newVetLocks(),
		now:             time.Now,
		loc:             loc,
		defaultDuration: dur,
	}
}

type CreateInput struct {
	PetID   string
	OwnerID string
	VetID   string

	DateTime        time.Time
	DurationMinutes int
	Reason          string
	Notes           string
	Priority        Priority
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Appointment, error) {
	petID := strings.TrimSpace(in.PetID)
	ownerID := strings.TrimSpace(in.OwnerID)
	vetID := strings.TrimSpace(in.VetID)

	if petID == "" || ownerID == "" || vetID == "" {
		return Appointment{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Reason) == "" {
		return Appointment{}, ErrInvalidInput
	}
	if in.DurationMinutes < 0 {
		return Appointment{}, ErrInvalidInput
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = s.defaultDuration
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	if !ValidPriority(priority) {
		return Appointment{}, ErrInvalidInput
	}

	now := s.now()
	if !in.DateTime.After(now) {
		return Appointment{}, ErrInvalidInput
	}

	unlock := s.locks.acquire(vetID)
	defer unlock()

	if err := s.checkConflict(ctx, vetID, in.DateTime, duration, ""); err != nil {
		return Appointment{}, err
	}

	a := Appointment{
		ID:              uuid.NewString(),
		PetID:           petID,
		OwnerID:         ownerID,
		VetID:           vetID,
		DateTime:        in.DateTime,
		DurationMinutes: duration,
		Reason:          strings.TrimSpace(in.Reason),
		Notes:           strings.TrimSpace(in.Notes),
		Status:          StatusScheduled,
		Priority:        priority,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	DateTime        *time.Time
	DurationMinutes *int
	VetID           *string
	Reason          *string
	Notes           *string
	Priority        *Priority
	Status          *Status
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrInvalidInput
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, ErrNotFound
	}

	// Un registro terminal ya salió del ciclo de vida: no se reagenda ni se
	// retocan sus campos.
	if a.Status.Terminal() && (in.DateTime != nil || in.DurationMinutes != nil ||
		in.VetID != nil || in.Reason != nil || in.Notes != nil || in.Priority != nil) {
		return Appointment{}, ErrInvalidTransition
	}

	if in.Status != nil {
		to := *in.Status
		if !ValidStatus(to) {
			return Appointment{}, ErrInvalidInput
		}
		if to != a.Status {
			if !CanTransition(a.Status, to) {
				return Appointment{}, ErrInvalidTransition
			}
			a.Status = to
		}
	}

	rescheduled := false
	if in.DateTime != nil && !in.DateTime.Equal(a.DateTime) {
		a.DateTime = *in.DateTime
		rescheduled = true
	}
	if in.DurationMinutes != nil && *in.DurationMinutes != a.DurationMinutes {
		if *in.DurationMinutes <= 0 {
			return Appointment{}, ErrInvalidInput
		}
		a.DurationMinutes = *in.DurationMinutes
		rescheduled = true
	}
	if in.VetID != nil && strings.TrimSpace(*in.VetID) != a.VetID {
		if strings.TrimSpace(*in.VetID) == "" {
			return Appointment{}, ErrInvalidInput
		}
		a.VetID = strings.TrimSpace(*in.VetID)
		rescheduled = true
	}

	if in.Reason != nil {
		if strings.TrimSpace(*in.Reason) == "" {
			return Appointment{}, ErrInvalidInput
		}
		a.Reason = strings.TrimSpace(*in.Reason)
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.Priority != nil {
		if !ValidPriority(*in.Priority) {
			return Appointment{}, ErrInvalidInput
		}
		a.Priority = *in.Priority
	}

	if rescheduled {
		// Reagendar re-valida fecha futura y conflicto, como en alta.
		if !a.DateTime.After(s.now()) {
			return Appointment{}, ErrInvalidInput
		}

		unlock := s.locks.acquire(a.VetID)
		defer unlock()

		if err := s.checkConflict(ctx, a.VetID, a.DateTime, a.DurationMinutes, a.ID); err != nil {
			return Appointment{}, err
		}
	}

	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Cancel pasa cualquier estado no terminal a CANCELLED.
func (s *Service) Cancel(ctx context.Context, id string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Appointment{}, ErrNotFound
	}

	if !CanTransition(a.Status, StatusCancelled) {
		return Appointment{}, ErrInvalidTransition
	}

	a.Status = StatusCancelled
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Complete cierra la cita. Se permite desde SCHEDULED, CONFIRMED o
// IN_PROGRESS; las notas del cierre se anexan a las existentes.
func (s *Service) Complete(ctx context.Context, id, notes string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Appointment{}, ErrNotFound
	}

	if !CanTransition(a.Status, StatusCompleted) {
		return Appointment{}, ErrInvalidTransition
	}

	a.Status = StatusCompleted
	if notes = strings.TrimSpace(notes); notes != "" {
		if a.Notes != "" {
			a.Notes += "\n" + notes
		} else {
			a.Notes = notes
		}
	}
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// MarkNoShow registra inasistencia (solo desde SCHEDULED/CONFIRMED).
func (s *Service) MarkNoShow(ctx context.Context, id string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Appointment{}, ErrNotFound
	}

	if !CanTransition(a.Status, StatusNoShow) {
		return Appointment{}, ErrInvalidTransition
	}

	a.Status = StatusNoShow
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Delete borra físicamente la cita. Terminal y responsabilidad del store;
// el ciclo de vida normal nunca pasa por acá.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

// PetOf expone el petID de una cita (para el resolver de ownership).
func (s *Service) PetOf(ctx context.Context, id string) (string, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return a.PetID, nil
}

func (s *Service) List(ctx context.Context) ([]Appointment, error) {
	return sortByDate(s.repo.ListAll(ctx))
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Appointment, error) {
	return sortByDate(s.repo.ListByPet(ctx, strings.TrimSpace(petID)))
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error) {
	return sortByDate(s.repo.ListByOwner(ctx, strings.TrimSpace(ownerID)))
}

func (s *Service) ListByVet(ctx context.Context, vetID string) ([]Appointment, error) {
	return sortByDate(s.repo.ListByVet(ctx, strings.TrimSpace(vetID)))
}

func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, ErrInvalidInput
	}
	return sortByDate(s.repo.ListByDateRange(ctx, start, end))
}

// Today devuelve las citas del día de evaluación, [00:00, 24:00) en la
// timezone configurada.
func (s *Service) Today(ctx context.Context) ([]Appointment, error) {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)
	return sortByDate(s.repo.ListByDateRange(ctx, start, end))
}

// Upcoming devuelve citas futuras no canceladas, más próximas primero.
func (s *Service) Upcoming(ctx context.Context) ([]Appointment, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]Appointment, 0)
	for _, a := range all {
		if a.Status == StatusCancelled {
			continue
		}
		if a.DateTime.After(now) {
			out = append(out, a)
		}
	}
	return sortByDate(out, nil)
}

// Statistics cuenta citas por estado. Agregación pura, no muta nada.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		Total:    len(all),
		ByStatus: make(map[Status]int, len(AllStatuses)),
	}
	for _, st := range AllStatuses {
		stats.ByStatus[st] = 0
	}
	for _, a := range all {
		stats.ByStatus[a.Status]++
	}
	return stats, nil
}

// checkConflict busca citas del vet no canceladas cuyo intervalo se cruza
// con [start, start+duration). excludeID permite reagendar sin chocar con
// la propia cita.
func (s *Service) checkConflict(ctx context.Context, vetID string, start time.Time, durationMinutes int, excludeID string) error {
	existing, err := s.repo.ListByVet(ctx, vetID)
	if err != nil {
		return err
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if other.Status == StatusCancelled {
			continue
		}
		if other.Overlaps(start, end) {
			return ErrConflict
		}
	}
	return nil
}

func sortByDate(items []Appointment, err error) ([]Appointment, error) {
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].DateTime.Equal(items[j].DateTime) {
			return items[i].ID < items[j].ID
		}
		return items[i].DateTime.Before(items[j].DateTime)
	})
	return items, nil
}

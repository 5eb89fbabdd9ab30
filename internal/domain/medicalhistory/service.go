package medicalhistory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medical record not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	PetID string
	VetID string

	VisitDate    time.Time
	VisitReason  string
	Diagnosis    string
	Treatment    string
	Prescription string

	Symptoms []string
	Notes    string

	WeightKg      float64
	TemperatureC  float64
	BloodPressure string
	HeartRate     string

	Attachments []string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Record, error) {
	if strings.TrimSpace(in.PetID) == "" || strings.TrimSpace(in.VetID) == "" {
		return Record{}, ErrInvalidInput
	}
	if in.VisitDate.IsZero() {
		return Record{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Diagnosis) == "" {
		return Record{}, ErrInvalidInput
	}

	now := s.now()
	rec := Record{
		ID:            uuid.NewString(),
		PetID:         strings.TrimSpace(in.PetID),
		VetID:         strings.TrimSpace(in.VetID),
		VisitDate:     in.VisitDate,
		VisitReason:   strings.TrimSpace(in.VisitReason),
		Diagnosis:     strings.TrimSpace(in.Diagnosis),
		Treatment:     strings.TrimSpace(in.Treatment),
		Prescription:  strings.TrimSpace(in.Prescription),
		Symptoms:      in.Symptoms,
		Notes:         strings.TrimSpace(in.Notes),
		WeightKg:      in.WeightKg,
		TemperatureC:  in.TemperatureC,
		BloodPressure: strings.TrimSpace(in.BloodPressure),
		HeartRate:     strings.TrimSpace(in.HeartRate),
		Attachments:   in.Attachments,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// ListByPet devuelve el historial de una mascota, visita más reciente primero.
func (s *Service) ListByPet(ctx context.Context, petID string) ([]Record, error) {
	items, err := s.repo.ListByPet(ctx, strings.TrimSpace(petID))
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VisitDate.After(items[j].VisitDate)
	})
	return items, nil
}

func (s *Service) ListByVet(ctx context.Context, vetID string) ([]Record, error) {
	return s.repo.ListByVet(ctx, strings.TrimSpace(vetID))
}

func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time) ([]Record, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByDateRange(ctx, start, end)
}

// SearchDiagnosis filtra el historial de una mascota por texto en diagnosis
// o visit reason.
func (s *Service) SearchDiagnosis(ctx context.Context, petID, term string) ([]Record, error) {
	items, err := s.ListByPet(ctx, petID)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items, nil
	}

	out := make([]Record, 0)
	for _, rec := range items {
		hay := strings.ToLower(rec.Diagnosis + " " + rec.VisitReason)
		if strings.Contains(hay, term) {
			out = append(out, rec)
		}
	}
	return out, nil
}

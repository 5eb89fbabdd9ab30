package vets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("vet not found")
	ErrDuplicateLicense = errors.New("license number already registered")
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

type RegisterInput struct {
	UserID            string
	LicenseNumber     string
	Specialization    string
	YearsOfExperience int
	ClinicName        string
	ClinicAddress     string
	ClinicPhone       string
	AvailableDays     []string
	WorkingHours      string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Vet, error) {
	userID := strings.TrimSpace(in.UserID)
	license := strings.TrimSpace(in.LicenseNumber)

	if userID == "" || license == "" {
		return Vet{}, ErrInvalidInput
	}
	if in.YearsOfExperience < 0 {
		return Vet{}, ErrInvalidInput
	}

	// Licencia única: si ya existe un vet con ese número, rechazamos.
	if _, err := s.repo.GetByLicense(ctx, license); err == nil {
		return Vet{}, ErrDuplicateLicense
	}

	now := s.now()
	v := Vet{
		ID:                uuid.NewString(),
		UserID:            userID,
		LicenseNumber:     license,
		Specialization:    strings.TrimSpace(in.Specialization),
		YearsOfExperience: in.YearsOfExperience,
		ClinicName:        strings.TrimSpace(in.ClinicName),
		ClinicAddress:     strings.TrimSpace(in.ClinicAddress),
		ClinicPhone:       strings.TrimSpace(in.ClinicPhone),
		AvailableDays:     in.AvailableDays,
		WorkingHours:      strings.TrimSpace(in.WorkingHours),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return Vet{}, err
	}
	return v, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Vet, error) {
	v, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Vet{}, ErrNotFound
	}
	return v, nil
}

func (s *Service) GetByLicense(ctx context.Context, license string) (Vet, error) {
	v, err := s.repo.GetByLicense(ctx, strings.TrimSpace(license))
	if err != nil {
		return Vet{}, ErrNotFound
	}
	return v, nil
}

func (s *Service) List(ctx context.Context) ([]Vet, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListBySpecialization(ctx context.Context, specialization string) ([]Vet, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	specialization = strings.TrimSpace(specialization)
	if specialization == "" {
		return all, nil
	}

	out := make([]Vet, 0, len(all))
	for _, v := range all {
		if strings.EqualFold(v.Specialization, specialization) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Search busca por nombre de clínica o especialización (case-insensitive).
func (s *Service) Search(ctx context.Context, term string) ([]Vet, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return all, nil
	}

	out := make([]Vet, 0)
	for _, v := range all {
		hay := strings.ToLower(v.ClinicName + " " + v.Specialization)
		if strings.Contains(hay, term) {
			out = append(out, v)
		}
	}
	return out, nil
}

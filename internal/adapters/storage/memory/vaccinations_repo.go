package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"petcare-backend/internal/domain/vaccinations"
)

type vaccinationRepo struct {
	mu   sync.RWMutex
	byID map[string]vaccinations.Vaccination
}

func NewVaccinationRepo() vaccinations.Repository {
	return &vaccinationRepo{
		byID: make(map[string]vaccinations.Vaccination),
	}
}

func (r *vaccinationRepo) Create(ctx context.Context, v vaccinations.Vaccination) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" {
		return errors.New("vaccination id required")
	}
	if _, exists := r.byID[v.ID]; exists {
		return errors.New("vaccination already exists")
	}
	r.byID[v.ID] = v
	return nil
}

func (r *vaccinationRepo) Update(ctx context.Context, v vaccinations.Vaccination) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[v.ID]; !exists {
		return ErrNotFound
	}
	r.byID[v.ID] = v
	return nil
}

func (r *vaccinationRepo) GetByID(ctx context.Context, id string) (vaccinations.Vaccination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[id]
	if !ok {
		return vaccinations.Vaccination{}, ErrNotFound
	}
	return v, nil
}

func (r *vaccinationRepo) ListByPet(ctx context.Context, petID string) ([]vaccinations.Vaccination, error) {
	return r.list(func(v vaccinations.Vaccination) bool { return v.PetID == petID })
}

func (r *vaccinationRepo) ListByVet(ctx context.Context, vetID string) ([]vaccinations.Vaccination, error) {
	return r.list(func(v vaccinations.Vaccination) bool { return v.VetID == vetID })
}

func (r *vaccinationRepo) ListByNextDueRange(ctx context.Context, start, end time.Time) ([]vaccinations.Vaccination, error) {
	return r.list(func(v vaccinations.Vaccination) bool {
		due := v.DueDate()
		return !due.Before(start) && !due.After(end)
	})
}

func (r *vaccinationRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]vaccinations.Vaccination, error) {
	return r.list(func(v vaccinations.Vaccination) bool {
		return v.Status == vaccinations.StatusScheduled && v.DueDate().Before(asOf)
	})
}

func (r *vaccinationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *vaccinationRepo) ListAll(ctx context.Context) ([]vaccinations.Vaccination, error) {
	return r.list(func(vaccinations.Vaccination) bool { return true })
}

func (r *vaccinationRepo) list(keep func(vaccinations.Vaccination) bool) ([]vaccinations.Vaccination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vaccinations.Vaccination, 0)
	for _, v := range r.byID {
		if keep(v) {
			out = append(out, v)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].DueDate(), out[j].DueDate()
		if di.Equal(dj) {
			return out[i].ID < out[j].ID
		}
		return di.Before(dj)
	})

	return out, nil
}

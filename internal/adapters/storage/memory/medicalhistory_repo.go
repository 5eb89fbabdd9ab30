package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"petcare-backend/internal/domain/medicalhistory"
)

type medicalHistoryRepo struct {
	mu   sync.RWMutex
	byID map[string]medicalhistory.Record
}

func NewMedicalHistoryRepo() medicalhistory.Repository {
	return &medicalHistoryRepo{
		byID: make(map[string]medicalhistory.Record),
	}
}

func (r *medicalHistoryRepo) Create(ctx context.Context, rec medicalhistory.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("record already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *medicalHistoryRepo) GetByID(ctx context.Context, id string) (medicalhistory.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return medicalhistory.Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *medicalHistoryRepo) ListByPet(ctx context.Context, petID string) ([]medicalhistory.Record, error) {
	return r.list(func(rec medicalhistory.Record) bool { return rec.PetID == petID })
}

func (r *medicalHistoryRepo) ListByVet(ctx context.Context, vetID string) ([]medicalhistory.Record, error) {
	return r.list(func(rec medicalhistory.Record) bool { return rec.VetID == vetID })
}

func (r *medicalHistoryRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]medicalhistory.Record, error) {
	return r.list(func(rec medicalhistory.Record) bool {
		return !rec.VisitDate.Before(start) && !rec.VisitDate.After(end)
	})
}

func (r *medicalHistoryRepo) list(keep func(medicalhistory.Record) bool) ([]medicalhistory.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medicalhistory.Record, 0)
	for _, rec := range r.byID {
		if keep(rec) {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].VisitDate.Equal(out[j].VisitDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].VisitDate.Before(out[j].VisitDate)
	})

	return out, nil
}

package vaccinations

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
	ErrNotFound          = errors.New("vaccination not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrBadState: la operación no aplica al estado de los datos
	// (p.ej. certificar una dosis nunca administrada).
	ErrBadState = errors.New("invalid state")
)

const DefaultUpcomingWindowDays = 30

type Config struct {
	// Location para el corte de "hoy". nil = UTC.
	Location *time.Location

	// UpcomingWindowDays: ventana [hoy, hoy+N días] para upcoming. <=0 usa 30.
	UpcomingWindowDays int

	// BoosterSeries: tipo de vacuna -> días hasta la siguiente dosis.
	// Ausente o 0 = dosis única: completar pasa directo a COMPLETED.
	BoosterSeries map[string]int
}

type Service struct {
	repo Repository
	now  func() time.Time

	loc      *time.Location
	window   int
	boosters map[string]int
}

func NewService(repo Repository, cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	window := cfg.UpcomingWindowDays
	if window <= 0 {
		window = DefaultUpcomingWindowDays
	}
	return &Service{
		repo:     repo,
		now:      time.Now,
		loc:      loc,
		window:   window,
		boosters: cfg.BoosterSeries,
	}
}

// today devuelve la fecha de evaluación como día de calendario (medianoche UTC).
func (s *Service) today() time.Time {
	return dateOnly(s.now().In(s.loc))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type CreateInput struct {
	PetID string
	VetID string

	VaccineName   string
	VaccineType   string
	ScheduledDate time.Time

	Dosage               string
	AdministrationMethod string
	Notes                string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Vaccination, error) {
	petID := strings.TrimSpace(in.PetID)
	vetID := strings.TrimSpace(in.VetID)
	vtype := strings.TrimSpace(in.VaccineType)

	if petID == "" || vetID == "" || vtype == "" {
		return Vaccination{}, ErrInvalidInput
	}
	if in.ScheduledDate.IsZero() {
		return Vaccination{}, ErrInvalidInput
	}

	// La fecha agendada debe ser estrictamente futura (por día de calendario).
	if !dateOnly(in.ScheduledDate).After(s.today()) {
		return Vaccination{}, ErrInvalidInput
	}

	now := s.now()
	v := Vaccination{
		ID:                   uuid.NewString(),
		PetID:                petID,
		VetID:                vetID,
		VaccineName:          strings.TrimSpace(in.VaccineName),
		VaccineType:          vtype,
		ScheduledDate:        dateOnly(in.ScheduledDate),
		Dosage:               strings.TrimSpace(in.Dosage),
		AdministrationMethod: strings.TrimSpace(in.AdministrationMethod),
		Notes:                strings.TrimSpace(in.Notes),
		Status:               StatusScheduled,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return Vaccination{}, err
	}
	return v, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	VetID                *string
	VaccineName          *string
	VaccineType          *string
	ScheduledDate        *time.Time
	Dosage               *string
	AdministrationMethod *string
	Notes                *string
	Status               *Status
}

// Update edita los datos de agenda de la dosis. La administración pasa por
// Complete; acá los cambios de estado solo se validan contra la tabla.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Vaccination, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Vaccination{}, ErrInvalidInput
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Vaccination{}, ErrNotFound
	}

	// Un registro terminal ya salió del ciclo de vida: no se retocan sus
	// campos.
	if v.Status.Terminal() && (in.VetID != nil || in.VaccineName != nil ||
		in.VaccineType != nil || in.ScheduledDate != nil || in.Dosage != nil ||
		in.AdministrationMethod != nil || in.Notes != nil) {
		return Vaccination{}, ErrInvalidTransition
	}

	if in.Status != nil {
		to := *in.Status
		if !ValidStatus(to) {
			return Vaccination{}, ErrInvalidInput
		}
		if to != v.Status {
			if !CanTransition(v.Status, to) {
				return Vaccination{}, ErrInvalidTransition
			}
			v.Status = to
		}
	}

	if in.ScheduledDate != nil {
		sd := dateOnly(*in.ScheduledDate)
		if !sd.Equal(dateOnly(v.ScheduledDate)) {
			if v.Status != StatusScheduled {
				return Vaccination{}, ErrBadState
			}
			if !sd.After(s.today()) {
				return Vaccination{}, ErrInvalidInput
			}
			v.ScheduledDate = sd
		}
	}

	if in.VetID != nil {
		if strings.TrimSpace(*in.VetID) == "" {
			return Vaccination{}, ErrInvalidInput
		}
		v.VetID = strings.TrimSpace(*in.VetID)
	}
	if in.VaccineType != nil {
		if strings.TrimSpace(*in.VaccineType) == "" {
			return Vaccination{}, ErrInvalidInput
		}
		v.VaccineType = strings.TrimSpace(*in.VaccineType)
	}
	if in.VaccineName != nil {
		v.VaccineName = strings.TrimSpace(*in.VaccineName)
	}
	if in.Dosage != nil {
		v.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.AdministrationMethod != nil {
		v.AdministrationMethod = strings.TrimSpace(*in.AdministrationMethod)
	}
	if in.Notes != nil {
		v.Notes = strings.TrimSpace(*in.Notes)
	}

	v.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, v); err != nil {
		return Vaccination{}, err
	}
	return v, nil
}

type CompleteInput struct {
	AdministeredDate time.Time
	BatchNumber      string
	Manufacturer     string
	ExpiryDate       *time.Time
	SideEffects      string
	Notes            string
}

// Complete registra la administración de la dosis. Si el tipo de vacuna
// pertenece a una serie con refuerzos queda ADMINISTERED con NextDueDate;
// si es dosis única pasa directo a COMPLETED.
func (s *Service) Complete(ctx context.Context, id string, in CompleteInput) (Vaccination, error) {
	v, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Vaccination{}, ErrNotFound
	}

	if !CanTransition(v.Status, StatusAdministered) {
		return Vaccination{}, ErrInvalidTransition
	}

	if in.AdministeredDate.IsZero() {
		return Vaccination{}, ErrInvalidInput
	}
	administered := dateOnly(in.AdministeredDate)
	if administered.Before(dateOnly(v.ScheduledDate)) {
		return Vaccination{}, ErrInvalidInput
	}

	v.AdministeredDate = &administered
	v.BatchNumber = strings.TrimSpace(in.BatchNumber)
	v.Manufacturer = strings.TrimSpace(in.Manufacturer)
	if in.ExpiryDate != nil {
		exp := dateOnly(*in.ExpiryDate)
		v.ExpiryDate = &exp
	}
	if se := strings.TrimSpace(in.SideEffects); se != "" {
		v.SideEffects = se
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		if v.Notes != "" {
			v.Notes += "\n" + notes
		} else {
			v.Notes = notes
		}
	}

	if days := s.boosters[v.VaccineType]; days > 0 {
		next := administered.AddDate(0, 0, days)
		v.NextDueDate = &next
		v.Status = StatusAdministered
	} else {
		v.NextDueDate = nil
		v.Status = StatusCompleted
	}
	v.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, v); err != nil {
		return Vaccination{}, err
	}
	return v, nil
}

type ScheduleNextInput struct {
	ScheduledDate time.Time // zero = heredar NextDueDate del registro origen
	VaccineType   string    // vacío = heredar del registro origen
	Notes         string
}

// ScheduleNext crea el registro de la siguiente dosis como entidad
// independiente (ligada por petID/vaccineType, no por referencia directa).
func (s *Service) ScheduleNext(ctx context.Context, sourceID string, in ScheduleNextInput) (Vaccination, error) {
	src, err := s.repo.GetByID(ctx, strings.TrimSpace(sourceID))
	if err != nil {
		return Vaccination{}, ErrNotFound
	}

	if src.Status != StatusAdministered && src.Status != StatusCompleted {
		return Vaccination{}, ErrInvalidTransition
	}
	if src.AdministeredDate == nil {
		return Vaccination{}, ErrBadState
	}

	scheduled := in.ScheduledDate
	if scheduled.IsZero() {
		if src.NextDueDate == nil {
			return Vaccination{}, ErrInvalidInput
		}
		scheduled = *src.NextDueDate
	}
	scheduled = dateOnly(scheduled)

	if !scheduled.After(*src.AdministeredDate) {
		return Vaccination{}, ErrInvalidInput
	}

	vtype := strings.TrimSpace(in.VaccineType)
	if vtype == "" {
		vtype = src.VaccineType
	}

	now := s.now()
	next := Vaccination{
		ID:                   uuid.NewString(),
		PetID:                src.PetID,
		VetID:                src.VetID,
		VaccineName:          src.VaccineName,
		VaccineType:          vtype,
		ScheduledDate:        scheduled,
		Dosage:               src.Dosage,
		AdministrationMethod: src.AdministrationMethod,
		Notes:                strings.TrimSpace(in.Notes),
		Status:               StatusScheduled,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, next); err != nil {
		return Vaccination{}, err
	}
	return next, nil
}

// Cancel pasa cualquier estado no terminal a CANCELLED.
func (s *Service) Cancel(ctx context.Context, id string) (Vaccination, error) {
	v, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Vaccination{}, ErrNotFound
	}

	if !CanTransition(v.Status, StatusCancelled) {
		return Vaccination{}, ErrInvalidTransition
	}

	v.Status = StatusCancelled
	v.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, v); err != nil {
		return Vaccination{}, err
	}
	return v, nil
}

// Delete borra físicamente el registro. El ciclo de vida normal termina en
// COMPLETED/CANCELLED; esto es corrección de datos, no una transición.
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

func (s *Service) GetByID(ctx context.Context, id string) (Vaccination, error) {
	v, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Vaccination{}, ErrNotFound
	}
	return v, nil
}

func (s *Service) List(ctx context.Context) ([]Vaccination, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return sortByDue(items), nil
}

// PetOf expone el petID de una vacunación (para el resolver de ownership).
func (s *Service) PetOf(ctx context.Context, id string) (string, error) {
	v, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return v.PetID, nil
}

// Classify deriva el estado efectivo en lectura: un registro SCHEDULED cuya
// due date quedó atrás se reporta OVERDUE sin mutar el almacenado.
func Classify(v Vaccination, asOf time.Time) Status {
	if v.Status == StatusScheduled && dateOnly(v.DueDate()).Before(dateOnly(asOf)) {
		return StatusOverdue
	}
	return v.Status
}

// Overdue devuelve los registros SCHEDULED con due date estrictamente
// anterior a la fecha de evaluación.
func (s *Service) Overdue(ctx context.Context) ([]Vaccination, error) {
	today := s.today()
	items, err := s.repo.ListOverdue(ctx, today)
	if err != nil {
		return nil, err
	}

	// Re-clasificamos sobre lo que trajo el store: el filtro es del dominio,
	// el store solo es un índice.
	out := make([]Vaccination, 0, len(items))
	for _, v := range items {
		if Classify(v, today) == StatusOverdue {
			v.Status = StatusOverdue
			out = append(out, v)
		}
	}
	return sortByDue(out), nil
}

// Upcoming devuelve registros SCHEDULED con due date en [hoy, hoy+ventana].
func (s *Service) Upcoming(ctx context.Context) ([]Vaccination, error) {
	today := s.today()
	end := today.AddDate(0, 0, s.window)

	items, err := s.repo.ListByNextDueRange(ctx, today, end)
	if err != nil {
		return nil, err
	}

	out := make([]Vaccination, 0, len(items))
	for _, v := range items {
		if v.Status != StatusScheduled {
			continue
		}
		due := dateOnly(v.DueDate())
		if due.Before(today) || due.After(end) {
			continue
		}
		out = append(out, v)
	}
	return sortByDue(out), nil
}

// DueBetween devuelve los registros con due date dentro de [start, end],
// con el estado ya clasificado (las vencidas salen como OVERDUE).
func (s *Service) DueBetween(ctx context.Context, start, end time.Time) ([]Vaccination, error) {
	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return nil, ErrInvalidInput
	}

	items, err := s.repo.ListByNextDueRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	today := s.today()
	out := make([]Vaccination, 0, len(items))
	for _, v := range items {
		v.Status = Classify(v, today)
		out = append(out, v)
	}
	return sortByDue(out), nil
}

// RemindersForPets arma los recordatorios (vencidas + próximas) para un
// conjunto de mascotas. Orden determinista: due date asc, luego petID,
// luego vaccineType.
func (s *Service) RemindersForPets(ctx context.Context, petIDs []string) ([]Vaccination, error) {
	today := s.today()
	horizon := today.AddDate(0, 0, s.window)

	out := make([]Vaccination, 0)
	for _, petID := range petIDs {
		items, err := s.repo.ListByPet(ctx, petID)
		if err != nil {
			return nil, err
		}
		for _, v := range items {
			if v.Status != StatusScheduled {
				continue
			}
			due := dateOnly(v.DueDate())
			if due.After(horizon) {
				continue
			}
			if due.Before(today) {
				v.Status = StatusOverdue
			}
			out = append(out, v)
		}
	}
	return sortByDue(out), nil
}

// History devuelve las vacunaciones de una mascota, agendada más reciente
// primero.
func (s *Service) History(ctx context.Context, petID string) ([]Vaccination, error) {
	items, err := s.repo.ListByPet(ctx, strings.TrimSpace(petID))
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ScheduledDate.Equal(items[j].ScheduledDate) {
			return items[i].ID < items[j].ID
		}
		return items[i].ScheduledDate.After(items[j].ScheduledDate)
	})
	return items, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Vaccination, error) {
	items, err := s.repo.ListByPet(ctx, strings.TrimSpace(petID))
	if err != nil {
		return nil, err
	}
	return sortByDue(items), nil
}

func (s *Service) ListByVet(ctx context.Context, vetID string) ([]Vaccination, error) {
	items, err := s.repo.ListByVet(ctx, strings.TrimSpace(vetID))
	if err != nil {
		return nil, err
	}
	return sortByDue(items), nil
}

func (s *Service) ListByVaccineType(ctx context.Context, vtype string) ([]Vaccination, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	vtype = strings.TrimSpace(vtype)
	out := make([]Vaccination, 0)
	for _, v := range all {
		if strings.EqualFold(v.VaccineType, vtype) {
			out = append(out, v)
		}
	}
	return sortByDue(out), nil
}

// GenerateCertificate proyecta una vacunación administrada a certificado.
func (s *Service) GenerateCertificate(ctx context.Context, id string) (Certificate, error) {
	v, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Certificate{}, ErrNotFound
	}

	if v.Status != StatusAdministered && v.Status != StatusCompleted {
		return Certificate{}, ErrBadState
	}
	if v.AdministeredDate == nil {
		return Certificate{}, ErrBadState
	}

	return Certificate{
		VaccinationID:        v.ID,
		PetID:                v.PetID,
		VetID:                v.VetID,
		VaccineName:          v.VaccineName,
		VaccineType:          v.VaccineType,
		Manufacturer:         v.Manufacturer,
		BatchNumber:          v.BatchNumber,
		AdministeredDate:     *v.AdministeredDate,
		ExpiryDate:           v.ExpiryDate,
		NextDueDate:          v.NextDueDate,
		Dosage:               v.Dosage,
		AdministrationMethod: v.AdministrationMethod,
		IssuedAt:             s.now(),
	}, nil
}

// Statistics cuenta vacunaciones por estado almacenado. Agregación pura.
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
	for _, v := range all {
		stats.ByStatus[v.Status]++
	}
	return stats, nil
}

func sortByDue(items []Vaccination) []Vaccination {
	sort.Slice(items, func(i, j int) bool {
		di, dj := items[i].DueDate(), items[j].DueDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if items[i].PetID != items[j].PetID {
			return items[i].PetID < items[j].PetID
		}
		return items[i].VaccineType < items[j].VaccineType
	})
	return items
}

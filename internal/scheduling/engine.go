package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"petcare-backend/internal/domain/appointments"
	"petcare-backend/internal/domain/ownership"
	"petcare-backend/internal/domain/pets"
	"petcare-backend/internal/domain/vaccinations"
	"petcare-backend/internal/ports/auth"
)

// ErrAccessDenied: el chequeo de ownership/rol falló. Nunca se degrada a
// NotFound ni se reintenta.
var ErrAccessDenied = errors.New("access denied")

// Engine es la fachada que compone los managers de ciclo de vida con el
// resolver de ownership. Toda mutación sigue el mismo orden: validación de
// input, autorización, precondición de estado, validación de fecha/conflicto,
// persistencia y sellado de timestamps; el primer paso que falla corta el
// resto. Los roles ya vienen chequeados por el borde; acá se re-deriva
// ownership igual (defensa en profundidad).
type Engine struct {
	pets   *pets.Service
	appts  *appointments.Service
	vaccs  *vaccinations.Service
	owners *ownership.Resolver
}

func NewEngine(petsSvc *pets.Service, apptsSvc *appointments.Service, vaccsSvc *vaccinations.Service, owners *ownership.Resolver) *Engine {
	return &Engine{
		pets:   petsSvc,
		appts:  apptsSvc,
		vaccs:  vaccsSvc,
		owners: owners,
	}
}

func requireRole(c auth.Claims, roles ...auth.Role) error {
	if strings.TrimSpace(c.UserID) == "" {
		return ErrAccessDenied
	}
	if !c.HasAnyRole(roles...) {
		return ErrAccessDenied
	}
	return nil
}

// staffBypass: VET y ADMIN no pasan por el chequeo de ownership.
func staffBypass(c auth.Claims) bool {
	return c.HasAnyRole(auth.RoleVet, auth.RoleAdmin)
}

// ------------------------------------------------------------------
// Citas
// ------------------------------------------------------------------

type BookAppointmentInput struct {
	PetID string
	VetID string

	DateTime        time.Time
	DurationMinutes int
	Reason          string
	Notes           string
	Priority        appointments.Priority
}

// BookAppointment agenda una cita. Dueños solo para sus propias mascotas;
// el OwnerID de la cita siempre se deriva del dueño real de la mascota.
func (e *Engine) BookAppointment(ctx context.Context, c auth.Claims, in BookAppointmentInput) (appointments.Appointment, error) {
	if strings.TrimSpace(in.PetID) == "" || strings.TrimSpace(in.VetID) == "" {
		return appointments.Appointment{}, appointments.ErrInvalidInput
	}
	if err := requireRole(c, auth.RoleOwner, auth.RoleVet, auth.RoleAdmin); err != nil {
		return appointments.Appointment{}, err
	}
	if !staffBypass(c) && !e.owners.IsPetOwnedBy(ctx, in.PetID, c.UserID) {
		return appointments.Appointment{}, ErrAccessDenied
	}

	ownerID, err := e.pets.OwnerOf(ctx, in.PetID)
	if err != nil {
		return appointments.Appointment{}, appointments.ErrNotFound
	}

	return e.appts.Create(ctx, appointments.CreateInput{
		PetID:           in.PetID,
		OwnerID:         ownerID,
		VetID:           in.VetID,
		DateTime:        in.DateTime,
		DurationMinutes: in.DurationMinutes,
		Reason:          in.Reason,
		Notes:           in.Notes,
		Priority:        in.Priority,
	})
}

func (e *Engine) GetAppointment(ctx context.Context, c auth.Claims, id string) (appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleOwner, auth.RoleVet, auth.RoleAdmin); err != nil {
		return appointments.Appointment{}, err
	}
	if !staffBypass(c) && !e.owners.IsAppointmentOwnedBy(ctx, id, c.UserID) {
		return appointments.Appointment{}, ErrAccessDenied
	}
	return e.appts.GetByID(ctx, id)
}

func (e *Engine) UpdateAppointment(ctx context.Context, c auth.Claims, id string, in appointments.UpdateInput) (appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return appointments.Appointment{}, err
	}
	return e.appts.Update(ctx, id, in)
}

// CancelAppointment: el dueño puede cancelar sus propias citas; vet/admin
// cualquiera.
func (e *Engine) CancelAppointment(ctx context.Context, c auth.Claims, id string) (appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleOwner, auth.RoleVet, auth.RoleAdmin); err != nil {
		return appointments.Appointment{}, err
	}
	if !staffBypass(c) && !e.owners.IsAppointmentOwnedBy(ctx, id, c.UserID) {
		return appointments.Appointment{}, ErrAccessDenied
	}
	return e.appts.Cancel(ctx, id)
}

func (e *Engine) CompleteAppointment(ctx context.Context, c auth.Claims, id, notes string) (appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleVet); err != nil {
		return appointments.Appointment{}, err
	}
	return e.appts.Complete(ctx, id, notes)
}

func (e *Engine) MarkAppointmentNoShow(ctx context.Context, c auth.Claims, id string) (appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return appointments.Appointment{}, err
	}
	return e.appts.MarkNoShow(ctx, id)
}

func (e *Engine) DeleteAppointment(ctx context.Context, c auth.Claims, id string) error {
	if err := requireRole(c, auth.RoleAdmin); err != nil {
		return err
	}
	return e.appts.Delete(ctx, id)
}

// MyAppointments lista las citas del principal como dueño.
func (e *Engine) MyAppointments(ctx context.Context, c auth.Claims) ([]appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleOwner, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.appts.ListByOwner(ctx, c.UserID)
}

func (e *Engine) AppointmentsByVet(ctx context.Context, c auth.Claims, vetID string) ([]appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.appts.ListByVet(ctx, vetID)
}

func (e *Engine) AppointmentsByPet(ctx context.Context, c auth.Claims, petID string) ([]appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleOwner, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if !staffBypass(c) && !e.owners.IsPetOwnedBy(ctx, petID, c.UserID) {
		return nil, ErrAccessDenied
	}
	return e.appts.ListByPet(ctx, petID)
}

func (e *Engine) AllAppointments(ctx context.Context, c auth.Claims) ([]appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.appts.List(ctx)
}

func (e *Engine) AppointmentsByDateRange(ctx context.Context, c auth.Claims, start, end time.Time) ([]appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.appts.ListByDateRange(ctx, start, end)
}

func (e *Engine) TodayAppointments(ctx context.Context, c auth.Claims) ([]appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.appts.Today(ctx)
}

func (e *Engine) UpcomingAppointments(ctx context.Context, c auth.Claims) ([]appointments.Appointment, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.appts.Upcoming(ctx)
}

func (e *Engine) AppointmentStatistics(ctx context.Context, c auth.Claims) (appointments.Statistics, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return appointments.Statistics{}, err
	}
	return e.appts.Statistics(ctx)
}

// ------------------------------------------------------------------
// Vacunaciones
// ------------------------------------------------------------------

func (e *Engine) CreateVaccination(ctx context.Context, c auth.Claims, in vaccinations.CreateInput) (vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet); err != nil {
		return vaccinations.Vaccination{}, err
	}
	return e.vaccs.Create(ctx, in)
}

// UpdateVaccination: edición de agenda reservada al veterinario.
func (e *Engine) UpdateVaccination(ctx context.Context, c auth.Claims, id string, in vaccinations.UpdateInput) (vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet); err != nil {
		return vaccinations.Vaccination{}, err
	}
	return e.vaccs.Update(ctx, id, in)
}

func (e *Engine) DeleteVaccination(ctx context.Context, c auth.Claims, id string) error {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return err
	}
	return e.vaccs.Delete(ctx, id)
}

func (e *Engine) CompleteVaccination(ctx context.Context, c auth.Claims, id string, in vaccinations.CompleteInput) (vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet); err != nil {
		return vaccinations.Vaccination{}, err
	}
	return e.vaccs.Complete(ctx, id, in)
}

func (e *Engine) ScheduleNextVaccination(ctx context.Context, c auth.Claims, sourceID string, in vaccinations.ScheduleNextInput) (vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet); err != nil {
		return vaccinations.Vaccination{}, err
	}
	return e.vaccs.ScheduleNext(ctx, sourceID, in)
}

func (e *Engine) CancelVaccination(ctx context.Context, c auth.Claims, id string) (vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return vaccinations.Vaccination{}, err
	}
	return e.vaccs.Cancel(ctx, id)
}

func (e *Engine) GetVaccination(ctx context.Context, c auth.Claims, id string) (vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleOwner, auth.RoleVet, auth.RoleAdmin); err != nil {
		return vaccinations.Vaccination{}, err
	}
	if !staffBypass(c) && !e.owners.IsVaccinationOwnedBy(ctx, id, c.UserID) {
		return vaccinations.Vaccination{}, ErrAccessDenied
	}
	return e.vaccs.GetByID(ctx, id)
}

func (e *Engine) VaccinationsByPet(ctx context.Context, c auth.Claims, petID string) ([]vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleOwner, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if !staffBypass(c) && !e.owners.IsPetOwnedBy(ctx, petID, c.UserID) {
		return nil, ErrAccessDenied
	}
	return e.vaccs.ListByPet(ctx, petID)
}

func (e *Engine) VaccinationHistory(ctx context.Context, c auth.Claims, petID string) ([]vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleOwner, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if !staffBypass(c) && !e.owners.IsPetOwnedBy(ctx, petID, c.UserID) {
		return nil, ErrAccessDenied
	}
	return e.vaccs.History(ctx, petID)
}

func (e *Engine) VaccinationsByVet(ctx context.Context, c auth.Claims, vetID string) ([]vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.vaccs.ListByVet(ctx, vetID)
}

func (e *Engine) AllVaccinations(ctx context.Context, c auth.Claims) ([]vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.vaccs.List(ctx)
}

func (e *Engine) VaccinationsByType(ctx context.Context, c auth.Claims, vaccineType string) ([]vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.vaccs.ListByVaccineType(ctx, vaccineType)
}

func (e *Engine) OverdueVaccinations(ctx context.Context, c auth.Claims) ([]vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.vaccs.Overdue(ctx)
}

func (e *Engine) VaccinationsDueBetween(ctx context.Context, c auth.Claims, start, end time.Time) ([]vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.vaccs.DueBetween(ctx, start, end)
}

func (e *Engine) UpcomingVaccinations(ctx context.Context, c auth.Claims) ([]vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return e.vaccs.Upcoming(ctx)
}

// MyVaccinationReminders resuelve las mascotas del principal y devuelve sus
// vacunaciones vencidas + próximas, ordenadas por due date asc (empates por
// petID y vaccineType, para que el orden sea reproducible).
func (e *Engine) MyVaccinationReminders(ctx context.Context, c auth.Claims) ([]vaccinations.Vaccination, error) {
	if err := requireRole(c, auth.RoleOwner); err != nil {
		return nil, err
	}

	owned, err := e.pets.ListByOwner(ctx, c.UserID)
	if err != nil {
		return nil, err
	}

	petIDs := make([]string, 0, len(owned))
	for _, p := range owned {
		petIDs = append(petIDs, p.ID)
	}
	return e.vaccs.RemindersForPets(ctx, petIDs)
}

func (e *Engine) VaccinationCertificate(ctx context.Context, c auth.Claims, id string) (vaccinations.Certificate, error) {
	if err := requireRole(c, auth.RoleOwner, auth.RoleVet, auth.RoleAdmin); err != nil {
		return vaccinations.Certificate{}, err
	}
	if !staffBypass(c) && !e.owners.IsVaccinationOwnedBy(ctx, id, c.UserID) {
		return vaccinations.Certificate{}, ErrAccessDenied
	}
	return e.vaccs.GenerateCertificate(ctx, id)
}

func (e *Engine) VaccinationStatistics(ctx context.Context, c auth.Claims) (vaccinations.Statistics, error) {
	if err := requireRole(c, auth.RoleVet, auth.RoleAdmin); err != nil {
		return vaccinations.Statistics{}, err
	}
	return e.vaccs.Statistics(ctx)
}

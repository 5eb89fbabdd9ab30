package ownership

import (
	"context"
	"strings"
)

// PetOwnerLookup expone el dueño de una mascota (lo implementa pets.Service).
type PetOwnerLookup interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

// PetRefLookup expone la mascota referida por un registro (citas y
// vacunaciones lo implementan vía PetOf).
type PetRefLookup interface {
	PetOf(ctx context.Context, id string) (string, error)
}

// Resolver deriva ownership: un principal es dueño de una cita o vacunación
// transitivamente a través del OwnerID de la mascota referida.
//
// Fail-closed: cualquier fallo de resolución devuelve false, nunca error,
// para que los callers nieguen acceso por defecto.
type Resolver struct {
	pets         PetOwnerLookup
	appointments PetRefLookup
	vaccinations PetRefLookup
}

func NewResolver(pets PetOwnerLookup, appointments, vaccinations PetRefLookup) *Resolver {
	return &Resolver{
		pets:         pets,
		appointments: appointments,
		vaccinations: vaccinations,
	}
}

func (r *Resolver) IsPetOwnedBy(ctx context.Context, petID, userID string) bool {
	petID = strings.TrimSpace(petID)
	userID = strings.TrimSpace(userID)
	if petID == "" || userID == "" || r.pets == nil {
		return false
	}

	owner, err := r.pets.OwnerOf(ctx, petID)
	if err != nil {
		return false
	}
	return owner != "" && owner == userID
}

func (r *Resolver) IsAppointmentOwnedBy(ctx context.Context, appointmentID, userID string) bool {
	return r.ownsVia(ctx, r.appointments, appointmentID, userID)
}

func (r *Resolver) IsVaccinationOwnedBy(ctx context.Context, vaccinationID, userID string) bool {
	return r.ownsVia(ctx, r.vaccinations, vaccinationID, userID)
}

func (r *Resolver) ownsVia(ctx context.Context, lookup PetRefLookup, id, userID string) bool {
	if strings.TrimSpace(id) == "" || lookup == nil {
		return false
	}

	petID, err := lookup.PetOf(ctx, strings.TrimSpace(id))
	if err != nil {
		return false
	}
	return r.IsPetOwnedBy(ctx, petID, userID)
}

package vaccinations

import "time"

// Vaccination representa una inmunización agendada o administrada.
// Las fechas de dosis (Scheduled/Administered/NextDue/Expiry) son fechas de
// calendario: se normalizan a medianoche UTC y se comparan por día.
type Vaccination struct {
	ID    string
	PetID string
	VetID string

	VaccineName  string
	VaccineType  string
	Manufacturer string
	BatchNumber  string

	ScheduledDate    time.Time
	AdministeredDate *time.Time
	NextDueDate      *time.Time
	ExpiryDate       *time.Time

	Dosage               string
	AdministrationMethod string

	SideEffects string
	Notes       string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DueDate es la fecha que gobierna la clasificación overdue/upcoming:
// NextDueDate si existe, ScheduledDate si no.
func (v Vaccination) DueDate() time.Time {
	if v.NextDueDate != nil {
		return *v.NextDueDate
	}
	return v.ScheduledDate
}

// Certificate es la proyección de solo lectura de una vacunación
// administrada. No se puede certificar una dosis nunca aplicada.
type Certificate struct {
	VaccinationID string
	PetID         string
	VetID         string

	VaccineName  string
	VaccineType  string
	Manufacturer string
	BatchNumber  string

	AdministeredDate time.Time
	ExpiryDate       *time.Time
	NextDueDate      *time.Time

	Dosage               string
	AdministrationMethod string

	IssuedAt time.Time
}

// Statistics agrupa conteos de vacunaciones por estado almacenado.
type Statistics struct {
	Total    int
	ByStatus map[Status]int
}

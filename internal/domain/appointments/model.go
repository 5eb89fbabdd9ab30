package appointments

import "time"

// Appointment representa una visita agendada entre mascota, dueño y veterinario.
type Appointment struct {
	ID      string
	PetID   string
	OwnerID string
	VetID   string

	DateTime        time.Time
	DurationMinutes int

	Reason string
	Notes  string

	Status   Status
	Priority Priority

	CreatedAt time.Time
	UpdatedAt time.Time
}

// End es el fin del intervalo semiabierto [DateTime, End).
func (a Appointment) End() time.Time {
	return a.DateTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Overlaps aplica el test de intersección de intervalos semiabiertos:
// [a,b) y [c,d) se cruzan sii a < d y c < b.
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.DateTime.Before(end) && start.Before(a.End())
}

// Statistics agrupa conteos de citas por estado.
type Statistics struct {
	Total    int
	ByStatus map[Status]int
}

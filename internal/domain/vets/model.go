package vets

import "time"

// Vet representa el perfil profesional de un veterinario.
type Vet struct {
	ID     string
	UserID string

	LicenseNumber     string
	Specialization    string
	YearsOfExperience int

	ClinicName    string
	ClinicAddress string
	ClinicPhone   string

	AvailableDays []string
	WorkingHours  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

package pets

import "time"

// Species define las especies soportadas.
type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesBird   Species = "bird"
	SpeciesRabbit Species = "rabbit"
	SpeciesOther  Species = "other"
)

// Gender define el sexo de la mascota.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Pet representa el perfil de una mascota registrada en la clínica.
type Pet struct {
	ID      string
	OwnerID string

	Name    string
	Species Species
	Breed   string
	Gender  Gender

	DateOfBirth *time.Time
	WeightKg    float64
	Color       string

	MicrochipNumber string
	Neutered        bool
	SpecialNotes    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

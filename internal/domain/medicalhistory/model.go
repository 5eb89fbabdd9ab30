package medicalhistory

import "time"

// Record representa una visita clínica registrada para una mascota.
type Record struct {
	ID    string
	PetID string
	VetID string

	VisitDate    time.Time
	VisitReason  string
	Diagnosis    string
	Treatment    string
	Prescription string

	Symptoms []string
	Notes    string

	WeightKg      float64
	TemperatureC  float64
	BloodPressure string
	HeartRate     string

	Attachments []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

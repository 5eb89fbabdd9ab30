package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"petcare-backend/internal/domain/medicalhistory"
)

type MedicalHistoryRepo struct {
	db *sql.DB
}

func NewMedicalHistoryRepo(db *sql.DB) *MedicalHistoryRepo {
	return &MedicalHistoryRepo{db: db}
}

const recordCols = `
	id, pet_id, vet_id,
	visit_date, visit_reason, diagnosis, treatment, prescription,
	symptoms, notes,
	weight_kg, temperature_c, blood_pressure, heart_rate,
	attachments,
	created_at, updated_at
`

func (r *MedicalHistoryRepo) Create(ctx context.Context, rec medicalhistory.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_records (`+recordCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		rec.ID,
		rec.PetID,
		rec.VetID,
		rec.VisitDate,
		rec.VisitReason,
		rec.Diagnosis,
		rec.Treatment,
		rec.Prescription,
		joinCSV(rec.Symptoms),
		rec.Notes,
		rec.WeightKg,
		rec.TemperatureC,
		rec.BloodPressure,
		rec.HeartRate,
		joinCSV(rec.Attachments),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (r *MedicalHistoryRepo) GetByID(ctx context.Context, id string) (medicalhistory.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medicalhistory.Record{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordCols+`
		FROM medical_records
		WHERE id = $1
	`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return medicalhistory.Record{}, ErrNotFound
		}
		return medicalhistory.Record{}, err
	}
	return rec, nil
}

func (r *MedicalHistoryRepo) ListByPet(ctx context.Context, petID string) ([]medicalhistory.Record, error) {
	return r.listWhere(ctx, "pet_id = $1", petID)
}

func (r *MedicalHistoryRepo) ListByVet(ctx context.Context, vetID string) ([]medicalhistory.Record, error) {
	return r.listWhere(ctx, "vet_id = $1", vetID)
}

func (r *MedicalHistoryRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]medicalhistory.Record, error) {
	return r.listWhere(ctx, "visit_date >= $1 AND visit_date < $2", start, end)
}

func (r *MedicalHistoryRepo) listWhere(ctx context.Context, where string, args ...any) ([]medicalhistory.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordCols+`
		FROM medical_records
		WHERE `+where+`
		ORDER BY visit_date DESC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medicalhistory.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row rowScanner) (medicalhistory.Record, error) {
	var rec medicalhistory.Record
	var symptoms, attachments string

	if err := row.Scan(
		&rec.ID,
		&rec.PetID,
		&rec.VetID,
		&rec.VisitDate,
		&rec.VisitReason,
		&rec.Diagnosis,
		&rec.Treatment,
		&rec.Prescription,
		&symptoms,
		&rec.Notes,
		&rec.WeightKg,
		&rec.TemperatureC,
		&rec.BloodPressure,
		&rec.HeartRate,
		&attachments,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return medicalhistory.Record{}, err
	}

	rec.Symptoms = splitCSV(symptoms)
	rec.Attachments = splitCSV(attachments)
	return rec, nil
}

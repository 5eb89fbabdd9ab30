package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"petcare-backend/internal/domain/vaccinations"
)

type VaccinationsRepo struct {
	db *sql.DB
}

func NewVaccinationsRepo(db *sql.DB) *VaccinationsRepo {
	return &VaccinationsRepo{db: db}
}

const vaccinationCols = `
	id, pet_id, vet_id,
	vaccine_name, vaccine_type, manufacturer, batch_number,
	scheduled_date, administered_date, next_due_date, expiry_date,
	dosage, administration_method,
	side_effects, notes,
	status,
	created_at, updated_at
`

func (r *VaccinationsRepo) Create(ctx context.Context, v vaccinations.Vaccination) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccinations (`+vaccinationCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		v.ID,
		v.PetID,
		v.VetID,
		v.VaccineName,
		v.VaccineType,
		v.Manufacturer,
		v.BatchNumber,
		v.ScheduledDate,
		toNullDate(v.AdministeredDate),
		toNullDate(v.NextDueDate),
		toNullDate(v.ExpiryDate),
		v.Dosage,
		v.AdministrationMethod,
		v.SideEffects,
		v.Notes,
		string(v.Status),
		v.CreatedAt,
		v.UpdatedAt,
	)
	return err
}

func (r *VaccinationsRepo) Update(ctx context.Context, v vaccinations.Vaccination) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vaccinations
		SET
			vaccine_name = $2,
			vaccine_type = $3,
			manufacturer = $4,
			batch_number = $5,
			scheduled_date = $6,
			administered_date = $7,
			next_due_date = $8,
			expiry_date = $9,
			dosage = $10,
			administration_method = $11,
			side_effects = $12,
			notes = $13,
			status = $14,
			updated_at = $15
		WHERE id = $1
	`,
		v.ID,
		v.VaccineName,
		v.VaccineType,
		v.Manufacturer,
		v.BatchNumber,
		v.ScheduledDate,
		toNullDate(v.AdministeredDate),
		toNullDate(v.NextDueDate),
		toNullDate(v.ExpiryDate),
		v.Dosage,
		v.AdministrationMethod,
		v.SideEffects,
		v.Notes,
		string(v.Status),
		v.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VaccinationsRepo) GetByID(ctx context.Context, id string) (vaccinations.Vaccination, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return vaccinations.Vaccination{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+vaccinationCols+`
		FROM vaccinations
		WHERE id = $1
	`, id)

	v, err := scanVaccination(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return vaccinations.Vaccination{}, ErrNotFound
		}
		return vaccinations.Vaccination{}, err
	}
	return v, nil
}

func (r *VaccinationsRepo) ListByPet(ctx context.Context, petID string) ([]vaccinations.Vaccination, error) {
	return r.listWhere(ctx, "pet_id = $1", petID)
}

func (r *VaccinationsRepo) ListByVet(ctx context.Context, vetID string) ([]vaccinations.Vaccination, error) {
	return r.listWhere(ctx, "vet_id = $1", vetID)
}

// La due date efectiva es next_due_date si existe, scheduled_date si no.
func (r *VaccinationsRepo) ListByNextDueRange(ctx context.Context, start, end time.Time) ([]vaccinations.Vaccination, error) {
	return r.listWhere(ctx,
		"COALESCE(next_due_date, scheduled_date) >= $1 AND COALESCE(next_due_date, scheduled_date) <= $2",
		start, end,
	)
}

func (r *VaccinationsRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]vaccinations.Vaccination, error) {
	return r.listWhere(ctx,
		"status = 'SCHEDULED' AND COALESCE(next_due_date, scheduled_date) < $1",
		asOf,
	)
}

func (r *VaccinationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vaccinations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VaccinationsRepo) ListAll(ctx context.Context) ([]vaccinations.Vaccination, error) {
	return r.listWhere(ctx, "TRUE")
}

func (r *VaccinationsRepo) listWhere(ctx context.Context, where string, args ...any) ([]vaccinations.Vaccination, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+vaccinationCols+`
		FROM vaccinations
		WHERE `+where+`
		ORDER BY COALESCE(next_due_date, scheduled_date) ASC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vaccinations.Vaccination, 0)
	for rows.Next() {
		v, err := scanVaccination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVaccination(row rowScanner) (vaccinations.Vaccination, error) {
	var v vaccinations.Vaccination
	var status string
	var administered, nextDue, expiry sql.NullTime

	if err := row.Scan(
		&v.ID,
		&v.PetID,
		&v.VetID,
		&v.VaccineName,
		&v.VaccineType,
		&v.Manufacturer,
		&v.BatchNumber,
		&v.ScheduledDate,
		&administered,
		&nextDue,
		&expiry,
		&v.Dosage,
		&v.AdministrationMethod,
		&v.SideEffects,
		&v.Notes,
		&status,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return vaccinations.Vaccination{}, err
	}

	v.Status = vaccinations.Status(status)
	v.AdministeredDate = fromNullDate(administered)
	v.NextDueDate = fromNullDate(nextDue)
	v.ExpiryDate = fromNullDate(expiry)
	return v, nil
}

package postgres

import (
	"context"
	"database/sql"
	"strings"

	"petcare-backend/internal/domain/vets"
)

type VetsRepo struct {
	db *sql.DB
}

func NewVetsRepo(db *sql.DB) *VetsRepo {
	return &VetsRepo{db: db}
}

const vetCols = `
	id, user_id,
	license_number, specialization, years_of_experience,
	clinic_name, clinic_address, clinic_phone,
	available_days, working_hours,
	created_at, updated_at
`

func (r *VetsRepo) Create(ctx context.Context, v vets.Vet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vets (`+vetCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		v.ID,
		v.UserID,
		v.LicenseNumber,
		v.Specialization,
		v.YearsOfExperience,
		v.ClinicName,
		v.ClinicAddress,
		v.ClinicPhone,
		joinCSV(v.AvailableDays),
		v.WorkingHours,
		v.CreatedAt,
		v.UpdatedAt,
	)
	return err
}

func (r *VetsRepo) Update(ctx context.Context, v vets.Vet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vets
		SET
			license_number = $2,
			specialization = $3,
			years_of_experience = $4,
			clinic_name = $5,
			clinic_address = $6,
			clinic_phone = $7,
			available_days = $8,
			working_hours = $9,
			updated_at = $10
		WHERE id = $1
	`,
		v.ID,
		v.LicenseNumber,
		v.Specialization,
		v.YearsOfExperience,
		v.ClinicName,
		v.ClinicAddress,
		v.ClinicPhone,
		joinCSV(v.AvailableDays),
		v.WorkingHours,
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

func (r *VetsRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return vets.Vet{}, ErrNotFound
	}
	return r.getWhere(ctx, "id = $1", id)
}

func (r *VetsRepo) GetByLicense(ctx context.Context, licenseNumber string) (vets.Vet, error) {
	licenseNumber = strings.TrimSpace(licenseNumber)
	if licenseNumber == "" {
		return vets.Vet{}, ErrNotFound
	}
	return r.getWhere(ctx, "license_number = $1", licenseNumber)
}

func (r *VetsRepo) getWhere(ctx context.Context, where string, arg any) (vets.Vet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+vetCols+`
		FROM vets
		WHERE `+where+`
	`, arg)

	v, err := scanVet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return vets.Vet{}, ErrNotFound
		}
		return vets.Vet{}, err
	}
	return v, nil
}

func (r *VetsRepo) List(ctx context.Context) ([]vets.Vet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+vetCols+`
		FROM vets
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vets.Vet, 0)
	for rows.Next() {
		v, err := scanVet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVet(row rowScanner) (vets.Vet, error) {
	var v vets.Vet
	var days string

	if err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.LicenseNumber,
		&v.Specialization,
		&v.YearsOfExperience,
		&v.ClinicName,
		&v.ClinicAddress,
		&v.ClinicPhone,
		&days,
		&v.WorkingHours,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return vets.Vet{}, err
	}

	v.AvailableDays = splitCSV(days)
	return v, nil
}

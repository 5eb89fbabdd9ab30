package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"petcare-backend/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentCols = `
	id, pet_id, owner_id, vet_id,
	date_time, duration_minutes,
	reason, notes,
	status, priority,
	created_at, updated_at
`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		a.ID,
		a.PetID,
		a.OwnerID,
		a.VetID,
		a.DateTime,
		a.DurationMinutes,
		a.Reason,
		a.Notes,
		string(a.Status),
		string(a.Priority),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			pet_id = $2,
			owner_id = $3,
			vet_id = $4,
			date_time = $5,
			duration_minutes = $6,
			reason = $7,
			notes = $8,
			status = $9,
			priority = $10,
			updated_at = $11
		WHERE id = $1
	`,
		a.ID,
		a.PetID,
		a.OwnerID,
		a.VetID,
		a.DateTime,
		a.DurationMinutes,
		a.Reason,
		a.Notes,
		string(a.Status),
		string(a.Priority),
		a.UpdatedAt,
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

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE id = $1
	`, id)

	a, err := scanAppointment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return appointments.Appointment{}, ErrNotFound
		}
		return appointments.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentsRepo) ListByPet(ctx context.Context, petID string) ([]appointments.Appointment, error) {
	return r.listWhere(ctx, "pet_id = $1", petID)
}

func (r *AppointmentsRepo) ListByOwner(ctx context.Context, ownerID string) ([]appointments.Appointment, error) {
	return r.listWhere(ctx, "owner_id = $1", ownerID)
}

func (r *AppointmentsRepo) ListByVet(ctx context.Context, vetID string) ([]appointments.Appointment, error) {
	return r.listWhere(ctx, "vet_id = $1", vetID)
}

func (r *AppointmentsRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]appointments.Appointment, error) {
	return r.listWhere(ctx, "date_time >= $1 AND date_time < $2", start, end)
}

func (r *AppointmentsRepo) ListAll(ctx context.Context) ([]appointments.Appointment, error) {
	return r.listWhere(ctx, "TRUE")
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) listWhere(ctx context.Context, where string, args ...any) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE `+where+`
		ORDER BY date_time ASC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var status, priority string

	if err := row.Scan(
		&a.ID,
		&a.PetID,
		&a.OwnerID,
		&a.VetID,
		&a.DateTime,
		&a.DurationMinutes,
		&a.Reason,
		&a.Notes,
		&status,
		&priority,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return appointments.Appointment{}, err
	}

	a.Status = appointments.Status(status)
	a.Priority = appointments.Priority(priority)
	return a, nil
}

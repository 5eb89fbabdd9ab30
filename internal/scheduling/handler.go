package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"petcare-backend/internal/domain/appointments"
	"petcare-backend/internal/domain/vaccinations"
	"petcare-backend/internal/middleware"
	"petcare-backend/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, eng *Engine) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", bookAppointmentHandler(eng))
		ar.Get("/", allAppointmentsHandler(eng))
		ar.Get("/mine", myAppointmentsHandler(eng))
		ar.Get("/today", todayAppointmentsHandler(eng))
		ar.Get("/upcoming", upcomingAppointmentsHandler(eng))
		ar.Get("/stats", appointmentStatsHandler(eng))
		ar.Get("/range", appointmentsByRangeHandler(eng))
		ar.Get("/vet/{vetID}", appointmentsByVetHandler(eng))
		ar.Get("/pet/{petID}", appointmentsByPetHandler(eng))

		ar.Get("/{appointmentID}", getAppointmentHandler(eng))
		ar.Patch("/{appointmentID}", updateAppointmentHandler(eng))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(eng))
		ar.Post("/{appointmentID}/cancel", cancelAppointmentHandler(eng))
		ar.Post("/{appointmentID}/complete", completeAppointmentHandler(eng))
		ar.Post("/{appointmentID}/no-show", noShowAppointmentHandler(eng))
	})

	r.Route("/vaccinations", func(vr chi.Router) {
		vr.Post("/", createVaccinationHandler(eng))
		vr.Get("/", allVaccinationsHandler(eng))
		vr.Get("/reminders", vaccinationRemindersHandler(eng))
		vr.Get("/overdue", overdueVaccinationsHandler(eng))
		vr.Get("/upcoming", upcomingVaccinationsHandler(eng))
		vr.Get("/stats", vaccinationStatsHandler(eng))
		vr.Get("/range", vaccinationsByRangeHandler(eng))
		vr.Get("/type/{vaccineType}", vaccinationsByTypeHandler(eng))
		vr.Get("/vet/{vetID}", vaccinationsByVetHandler(eng))
		vr.Get("/pet/{petID}", vaccinationsByPetHandler(eng))
		vr.Get("/pet/{petID}/history", vaccinationHistoryHandler(eng))

		vr.Get("/{vaccinationID}", getVaccinationHandler(eng))
		vr.Patch("/{vaccinationID}", updateVaccinationHandler(eng))
		vr.Delete("/{vaccinationID}", deleteVaccinationHandler(eng))
		vr.Get("/{vaccinationID}/certificate", vaccinationCertificateHandler(eng))
		vr.Post("/{vaccinationID}/complete", completeVaccinationHandler(eng))
		vr.Post("/{vaccinationID}/schedule-next", scheduleNextVaccinationHandler(eng))
		vr.Post("/{vaccinationID}/cancel", cancelVaccinationHandler(eng))
	})
}

// --- appointments ---

type bookAppointmentRequest struct {
	PetID           string `json:"pet_id"`
	VetID           string `json:"vet_id"`
	DateTime        string `json:"date_time"` // RFC3339
	DurationMinutes int    `json:"duration_minutes"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
	Priority        string `json:"priority"`
}

type appointmentResponse struct {
	ID              string    `json:"id"`
	PetID           string    `json:"pet_id"`
	OwnerID         string    `json:"owner_id"`
	VetID           string    `json:"vet_id"`
	DateTime        time.Time `json:"date_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	Priority        string    `json:"priority"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type updateAppointmentRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	DateTime        *string `json:"date_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	VetID           *string `json:"vet_id"`
	Reason          *string `json:"reason"`
	Notes           *string `json:"notes"`
	Priority        *string `json:"priority"`
	Status          *string `json:"status"`
}

func bookAppointmentHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req bookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		dt, err := time.Parse(time.RFC3339, req.DateTime)
		if err != nil {
			http.Error(w, "date_time must be RFC3339", http.StatusBadRequest)
			return
		}

		appt, err := eng.BookAppointment(r.Context(), claims, BookAppointmentInput{
			PetID:           req.PetID,
			VetID:           req.VetID,
			DateTime:        dt,
			DurationMinutes: req.DurationMinutes,
			Reason:          req.Reason,
			Notes:           req.Notes,
			Priority:        appointments.Priority(req.Priority),
		})
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		appt, err := eng.GetAppointment(r.Context(), claims, chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func updateAppointmentHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateAppointmentRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var in appointments.UpdateInput
		if req.DateTime != nil {
			dt, err := time.Parse(time.RFC3339, *req.DateTime)
			if err != nil {
				http.Error(w, "date_time must be RFC3339", http.StatusBadRequest)
				return
			}
			in.DateTime = &dt
		}
		in.DurationMinutes = req.DurationMinutes
		in.VetID = req.VetID
		in.Reason = req.Reason
		in.Notes = req.Notes
		if req.Priority != nil {
			p := appointments.Priority(*req.Priority)
			in.Priority = &p
		}
		if req.Status != nil {
			st := appointments.Status(*req.Status)
			in.Status = &st
		}

		appt, err := eng.UpdateAppointment(r.Context(), claims, chi.URLParam(r, "appointmentID"), in)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func deleteAppointmentHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		if err := eng.DeleteAppointment(r.Context(), claims, chi.URLParam(r, "appointmentID")); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func cancelAppointmentHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		appt, err := eng.CancelAppointment(r.Context(), claims, chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func completeAppointmentHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req struct {
			Notes string `json:"notes"`
		}
		// Body opcional: completar sin notas es válido.
		_ = json.NewDecoder(r.Body).Decode(&req)

		appt, err := eng.CompleteAppointment(r.Context(), claims, chi.URLParam(r, "appointmentID"), req.Notes)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func noShowAppointmentHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		appt, err := eng.MarkAppointmentNoShow(r.Context(), claims, chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func allAppointmentsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.AllAppointments(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentList(items))
	}
}

func myAppointmentsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.MyAppointments(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentList(items))
	}
}

func todayAppointmentsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.TodayAppointments(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentList(items))
	}
}

func upcomingAppointmentsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.UpcomingAppointments(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentList(items))
	}
}

func appointmentsByRangeHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		if err != nil {
			http.Error(w, "start must be RFC3339", http.StatusBadRequest)
			return
		}
		end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
		if err != nil {
			http.Error(w, "end must be RFC3339", http.StatusBadRequest)
			return
		}

		items, err := eng.AppointmentsByDateRange(r.Context(), claims, start, end)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentList(items))
	}
}

func appointmentsByVetHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.AppointmentsByVet(r.Context(), claims, chi.URLParam(r, "vetID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentList(items))
	}
}

func appointmentsByPetHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.AppointmentsByPet(r.Context(), claims, chi.URLParam(r, "petID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentList(items))
	}
}

func appointmentStatsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		stats, err := eng.AppointmentStatistics(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		byStatus := make(map[string]int, len(stats.ByStatus))
		for st, n := range stats.ByStatus {
			byStatus[string(st)] = n
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total":     stats.Total,
			"by_status": byStatus,
		})
	}
}

// --- vaccinations ---

type createVaccinationRequest struct {
	PetID                string `json:"pet_id"`
	VetID                string `json:"vet_id"`
	VaccineName          string `json:"vaccine_name"`
	VaccineType          string `json:"vaccine_type"`
	ScheduledDate        string `json:"scheduled_date"` // YYYY-MM-DD
	Dosage               string `json:"dosage"`
	AdministrationMethod string `json:"administration_method"`
	Notes                string `json:"notes"`
}

type completeVaccinationRequest struct {
	AdministeredDate string `json:"administered_date"` // YYYY-MM-DD
	BatchNumber      string `json:"batch_number"`
	Manufacturer     string `json:"manufacturer"`
	ExpiryDate       string `json:"expiry_date"` // YYYY-MM-DD opcional
	SideEffects      string `json:"side_effects"`
	Notes            string `json:"notes"`
}

type scheduleNextVaccinationRequest struct {
	ScheduledDate string `json:"scheduled_date"` // YYYY-MM-DD, vacío = heredar next_due_date
	VaccineType   string `json:"vaccine_type"`
	Notes         string `json:"notes"`
}

type updateVaccinationRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	VetID                *string `json:"vet_id"`
	VaccineName          *string `json:"vaccine_name"`
	VaccineType          *string `json:"vaccine_type"`
	ScheduledDate        *string `json:"scheduled_date"` // YYYY-MM-DD
	Dosage               *string `json:"dosage"`
	AdministrationMethod *string `json:"administration_method"`
	Notes                *string `json:"notes"`
	Status               *string `json:"status"`
}

type vaccinationResponse struct {
	ID                   string     `json:"id"`
	PetID                string     `json:"pet_id"`
	VetID                string     `json:"vet_id"`
	VaccineName          string     `json:"vaccine_name"`
	VaccineType          string     `json:"vaccine_type"`
	Manufacturer         string     `json:"manufacturer,omitempty"`
	BatchNumber          string     `json:"batch_number,omitempty"`
	ScheduledDate        string     `json:"scheduled_date"`
	AdministeredDate     *string    `json:"administered_date,omitempty"`
	NextDueDate          *string    `json:"next_due_date,omitempty"`
	ExpiryDate           *string    `json:"expiry_date,omitempty"`
	Dosage               string     `json:"dosage,omitempty"`
	AdministrationMethod string     `json:"administration_method,omitempty"`
	SideEffects          string     `json:"side_effects,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type certificateResponse struct {
	VaccinationID        string    `json:"vaccination_id"`
	PetID                string    `json:"pet_id"`
	VetID                string    `json:"vet_id"`
	VaccineName          string    `json:"vaccine_name"`
	VaccineType          string    `json:"vaccine_type"`
	Manufacturer         string    `json:"manufacturer,omitempty"`
	BatchNumber          string    `json:"batch_number,omitempty"`
	AdministeredDate     string    `json:"administered_date"`
	ExpiryDate           *string   `json:"expiry_date,omitempty"`
	NextDueDate          *string   `json:"next_due_date,omitempty"`
	Dosage               string    `json:"dosage,omitempty"`
	AdministrationMethod string    `json:"administration_method,omitempty"`
	IssuedAt             time.Time `json:"issued_at"`
}

func createVaccinationHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req createVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scheduled, err := parseDate(req.ScheduledDate)
		if err != nil {
			http.Error(w, "scheduled_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		v, err := eng.CreateVaccination(r.Context(), claims, vaccinations.CreateInput{
			PetID:                req.PetID,
			VetID:                req.VetID,
			VaccineName:          req.VaccineName,
			VaccineType:          req.VaccineType,
			ScheduledDate:        scheduled,
			Dosage:               req.Dosage,
			AdministrationMethod: req.AdministrationMethod,
			Notes:                req.Notes,
		})
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toVaccinationResponse(v))
	}
}

func updateVaccinationHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateVaccinationRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var in vaccinations.UpdateInput
		if req.ScheduledDate != nil {
			sd, err := parseDate(*req.ScheduledDate)
			if err != nil {
				http.Error(w, "scheduled_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.ScheduledDate = &sd
		}
		in.VetID = req.VetID
		in.VaccineName = req.VaccineName
		in.VaccineType = req.VaccineType
		in.Dosage = req.Dosage
		in.AdministrationMethod = req.AdministrationMethod
		in.Notes = req.Notes
		if req.Status != nil {
			st := vaccinations.Status(*req.Status)
			in.Status = &st
		}

		v, err := eng.UpdateVaccination(r.Context(), claims, chi.URLParam(r, "vaccinationID"), in)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationResponse(v))
	}
}

func deleteVaccinationHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		if err := eng.DeleteVaccination(r.Context(), claims, chi.URLParam(r, "vaccinationID")); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func allVaccinationsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.AllVaccinations(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationList(items))
	}
}

func completeVaccinationHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req completeVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		administered, err := parseDate(req.AdministeredDate)
		if err != nil {
			http.Error(w, "administered_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		var expiry *time.Time
		if strings.TrimSpace(req.ExpiryDate) != "" {
			t, err := parseDate(req.ExpiryDate)
			if err != nil {
				http.Error(w, "expiry_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			expiry = &t
		}

		v, err := eng.CompleteVaccination(r.Context(), claims, chi.URLParam(r, "vaccinationID"), vaccinations.CompleteInput{
			AdministeredDate: administered,
			BatchNumber:      req.BatchNumber,
			Manufacturer:     req.Manufacturer,
			ExpiryDate:       expiry,
			SideEffects:      req.SideEffects,
			Notes:            req.Notes,
		})
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationResponse(v))
	}
}

func scheduleNextVaccinationHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req scheduleNextVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var scheduled time.Time
		if strings.TrimSpace(req.ScheduledDate) != "" {
			t, err := parseDate(req.ScheduledDate)
			if err != nil {
				http.Error(w, "scheduled_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			scheduled = t
		}

		v, err := eng.ScheduleNextVaccination(r.Context(), claims, chi.URLParam(r, "vaccinationID"), vaccinations.ScheduleNextInput{
			ScheduledDate: scheduled,
			VaccineType:   req.VaccineType,
			Notes:         req.Notes,
		})
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toVaccinationResponse(v))
	}
}

func cancelVaccinationHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		v, err := eng.CancelVaccination(r.Context(), claims, chi.URLParam(r, "vaccinationID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationResponse(v))
	}
}

func getVaccinationHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		v, err := eng.GetVaccination(r.Context(), claims, chi.URLParam(r, "vaccinationID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationResponse(v))
	}
}

func vaccinationCertificateHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		cert, err := eng.VaccinationCertificate(r.Context(), claims, chi.URLParam(r, "vaccinationID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, certificateResponse{
			VaccinationID:        cert.VaccinationID,
			PetID:                cert.PetID,
			VetID:                cert.VetID,
			VaccineName:          cert.VaccineName,
			VaccineType:          cert.VaccineType,
			Manufacturer:         cert.Manufacturer,
			BatchNumber:          cert.BatchNumber,
			AdministeredDate:     formatDate(cert.AdministeredDate),
			ExpiryDate:           formatDatePtr(cert.ExpiryDate),
			NextDueDate:          formatDatePtr(cert.NextDueDate),
			Dosage:               cert.Dosage,
			AdministrationMethod: cert.AdministrationMethod,
			IssuedAt:             cert.IssuedAt,
		})
	}
}

func vaccinationRemindersHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.MyVaccinationReminders(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationList(items))
	}
}

func overdueVaccinationsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.OverdueVaccinations(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationList(items))
	}
}

func upcomingVaccinationsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.UpcomingVaccinations(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationList(items))
	}
}

func vaccinationsByRangeHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		start, err := parseDate(r.URL.Query().Get("start"))
		if err != nil {
			http.Error(w, "start must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end, err := parseDate(r.URL.Query().Get("end"))
		if err != nil {
			http.Error(w, "end must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		items, err := eng.VaccinationsDueBetween(r.Context(), claims, start, end)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationList(items))
	}
}

func vaccinationsByTypeHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.VaccinationsByType(r.Context(), claims, chi.URLParam(r, "vaccineType"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationList(items))
	}
}

func vaccinationsByVetHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.VaccinationsByVet(r.Context(), claims, chi.URLParam(r, "vetID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationList(items))
	}
}

func vaccinationsByPetHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.VaccinationsByPet(r.Context(), claims, chi.URLParam(r, "petID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationList(items))
	}
}

func vaccinationHistoryHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := eng.VaccinationHistory(r.Context(), claims, chi.URLParam(r, "petID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationList(items))
	}
}

func vaccinationStatsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		stats, err := eng.VaccinationStatistics(r.Context(), claims)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		byStatus := make(map[string]int, len(stats.ByStatus))
		for st, n := range stats.ByStatus {
			byStatus[string(st)] = n
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total":     stats.Total,
			"by_status": byStatus,
		})
	}
}

// --- helpers ---

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAccessDenied):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, appointments.ErrNotFound), errors.Is(err, vaccinations.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, appointments.ErrInvalidInput), errors.Is(err, vaccinations.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, appointments.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, appointments.ErrInvalidTransition), errors.Is(err, vaccinations.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, vaccinations.ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAppointmentResponse(a appointments.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		PetID:           a.PetID,
		OwnerID:         a.OwnerID,
		VetID:           a.VetID,
		DateTime:        a.DateTime,
		DurationMinutes: a.DurationMinutes,
		Reason:          a.Reason,
		Notes:           a.Notes,
		Status:          string(a.Status),
		Priority:        string(a.Priority),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAppointmentList(items []appointments.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func toVaccinationResponse(v vaccinations.Vaccination) vaccinationResponse {
	return vaccinationResponse{
		ID:                   v.ID,
		PetID:                v.PetID,
		VetID:                v.VetID,
		VaccineName:          v.VaccineName,
		VaccineType:          v.VaccineType,
		Manufacturer:         v.Manufacturer,
		BatchNumber:          v.BatchNumber,
		ScheduledDate:        formatDate(v.ScheduledDate),
		AdministeredDate:     formatDatePtr(v.AdministeredDate),
		NextDueDate:          formatDatePtr(v.NextDueDate),
		ExpiryDate:           formatDatePtr(v.ExpiryDate),
		Dosage:               v.Dosage,
		AdministrationMethod: v.AdministrationMethod,
		SideEffects:          v.SideEffects,
		Notes:                v.Notes,
		Status:               string(v.Status),
		CreatedAt:            v.CreatedAt,
		UpdatedAt:            v.UpdatedAt,
	}
}

func toVaccinationList(items []vaccinations.Vaccination) []vaccinationResponse {
	out := make([]vaccinationResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toVaccinationResponse(v))
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package medicalhistory

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"petcare-backend/internal/middleware"
	"petcare-backend/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// OwnerLookup resuelve el dueño de una mascota sin importar el paquete pets.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, owners OwnerLookup) {
	r.Route("/medical-records", func(mr chi.Router) {
		mr.Post("/", createRecordHandler(svc))
		mr.Get("/range", recordsByRangeHandler(svc))
		mr.Get("/vet/{vetID}", recordsByVetHandler(svc))
		mr.Get("/pet/{petID}", recordsByPetHandler(svc, owners))
		mr.Get("/{recordID}", getRecordHandler(svc, owners))
	})
}

type createRecordRequest struct {
	PetID string `json:"pet_id"`
	VetID string `json:"vet_id"`

	VisitDate    string `json:"visit_date"` // RFC3339
	VisitReason  string `json:"visit_reason"`
	Diagnosis    string `json:"diagnosis"`
	Treatment    string `json:"treatment"`
	Prescription string `json:"prescription"`

	Symptoms []string `json:"symptoms"`
	Notes    string   `json:"notes"`

	WeightKg      float64 `json:"weight_kg"`
	TemperatureC  float64 `json:"temperature_c"`
	BloodPressure string  `json:"blood_pressure"`
	HeartRate     string  `json:"heart_rate"`

	Attachments []string `json:"attachments"`
}

type recordResponse struct {
	ID    string `json:"id"`
	PetID string `json:"pet_id"`
	VetID string `json:"vet_id"`

	VisitDate    time.Time `json:"visit_date"`
	VisitReason  string    `json:"visit_reason,omitempty"`
	Diagnosis    string    `json:"diagnosis"`
	Treatment    string    `json:"treatment,omitempty"`
	Prescription string    `json:"prescription,omitempty"`

	Symptoms []string `json:"symptoms,omitempty"`
	Notes    string   `json:"notes,omitempty"`

	WeightKg      float64 `json:"weight_kg,omitempty"`
	TemperatureC  float64 `json:"temperature_c,omitempty"`
	BloodPressure string  `json:"blood_pressure,omitempty"`
	HeartRate     string  `json:"heart_rate,omitempty"`

	Attachments []string `json:"attachments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func createRecordHandler(svc *Service) http.HandlerFunc {
	// Solo veterinarios registran visitas
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.HasAnyRole(auth.RoleVet, auth.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		visit, err := time.Parse(time.RFC3339, req.VisitDate)
		if err != nil {
			http.Error(w, "visit_date must be RFC3339", http.StatusBadRequest)
			return
		}

		rec, err := svc.Create(r.Context(), CreateInput{
			PetID:         req.PetID,
			VetID:         req.VetID,
			VisitDate:     visit,
			VisitReason:   req.VisitReason,
			Diagnosis:     req.Diagnosis,
			Treatment:     req.Treatment,
			Prescription:  req.Prescription,
			Symptoms:      req.Symptoms,
			Notes:         req.Notes,
			WeightKg:      req.WeightKg,
			TemperatureC:  req.TemperatureC,
			BloodPressure: req.BloodPressure,
			HeartRate:     req.HeartRate,
			Attachments:   req.Attachments,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func getRecordHandler(svc *Service, owners OwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}

		if !canReadPet(r.Context(), claims, owners, rec.PetID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

func recordsByPetHandler(svc *Service, owners OwnerLookup) http.HandlerFunc {
	// ?diagnosis= filtra por texto en el diagnóstico
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		if !canReadPet(r.Context(), claims, owners, petID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var (
			items []Record
			err   error
		)
		if term := strings.TrimSpace(r.URL.Query().Get("diagnosis")); term != "" {
			items, err = svc.SearchDiagnosis(r.Context(), petID, term)
		} else {
			items, err = svc.ListByPet(r.Context(), petID)
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toRecordList(items))
	}
}

func recordsByVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.HasAnyRole(auth.RoleVet, auth.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByVet(r.Context(), chi.URLParam(r, "vetID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toRecordList(items))
	}
}

func recordsByRangeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.HasAnyRole(auth.RoleVet, auth.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
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

		items, err := svc.ListByDateRange(r.Context(), start, end)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toRecordList(items))
	}
}

// canReadPet: personal de clínica pasa directo; el dueño solo si la
// resolución de ownership confirma. Cualquier fallo cierra el acceso.
func canReadPet(ctx context.Context, claims auth.Claims, owners OwnerLookup, petID string) bool {
	if claims.HasAnyRole(auth.RoleVet, auth.RoleAdmin) {
		return true
	}
	if owners == nil {
		return false
	}
	ownerID, err := owners.OwnerOf(ctx, petID)
	if err != nil {
		return false
	}
	return ownerID == claims.UserID
}

func toRecordResponse(rec Record) recordResponse {
	return recordResponse{
		ID:            rec.ID,
		PetID:         rec.PetID,
		VetID:         rec.VetID,
		VisitDate:     rec.VisitDate,
		VisitReason:   rec.VisitReason,
		Diagnosis:     rec.Diagnosis,
		Treatment:     rec.Treatment,
		Prescription:  rec.Prescription,
		Symptoms:      rec.Symptoms,
		Notes:         rec.Notes,
		WeightKg:      rec.WeightKg,
		TemperatureC:  rec.TemperatureC,
		BloodPressure: rec.BloodPressure,
		HeartRate:     rec.HeartRate,
		Attachments:   rec.Attachments,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func toRecordList(items []Record) []recordResponse {
	out := make([]recordResponse, 0, len(items))
	for _, rec := range items {
		out = append(out, toRecordResponse(rec))
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

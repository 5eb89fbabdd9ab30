package vets

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"petcare-backend/internal/middleware"
	"petcare-backend/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/vets", func(vr chi.Router) {
		vr.Post("/", registerVetHandler(svc))
		vr.Get("/", listVetsHandler(svc))
		vr.Get("/{vetID}", getVetHandler(svc))
	})
}

type registerVetRequest struct {
	UserID            string   `json:"user_id"`
	LicenseNumber     string   `json:"license_number"`
	Specialization    string   `json:"specialization"`
	YearsOfExperience int      `json:"years_of_experience"`
	ClinicName        string   `json:"clinic_name"`
	ClinicAddress     string   `json:"clinic_address"`
	ClinicPhone       string   `json:"clinic_phone"`
	AvailableDays     []string `json:"available_days"`
	WorkingHours      string   `json:"working_hours"`
}

type vetResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	LicenseNumber     string    `json:"license_number"`
	Specialization    string    `json:"specialization"`
	YearsOfExperience int       `json:"years_of_experience"`
	ClinicName        string    `json:"clinic_name,omitempty"`
	ClinicAddress     string    `json:"clinic_address,omitempty"`
	ClinicPhone       string    `json:"clinic_phone,omitempty"`
	AvailableDays     []string  `json:"available_days,omitempty"`
	WorkingHours      string    `json:"working_hours,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func registerVetHandler(svc *Service) http.HandlerFunc {
	// Solo ADMIN da de alta veterinarios
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.HasRole(auth.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req registerVetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		v, err := svc.Register(r.Context(), RegisterInput{
			UserID:            req.UserID,
			LicenseNumber:     req.LicenseNumber,
			Specialization:    req.Specialization,
			YearsOfExperience: req.YearsOfExperience,
			ClinicName:        req.ClinicName,
			ClinicAddress:     req.ClinicAddress,
			ClinicPhone:       req.ClinicPhone,
			AvailableDays:     req.AvailableDays,
			WorkingHours:      req.WorkingHours,
		})
		if err != nil {
			switch err {
			case ErrDuplicateLicense:
				http.Error(w, err.Error(), http.StatusConflict)
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toVetResponse(v))
	}
}

func listVetsHandler(svc *Service) http.HandlerFunc {
	// El directorio es visible para cualquier usuario autenticado.
	// ?specialization= filtra; ?q= busca por clínica o especialidad.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var (
			items []Vet
			err   error
		)
		if spec := strings.TrimSpace(r.URL.Query().Get("specialization")); spec != "" {
			items, err = svc.ListBySpecialization(r.Context(), spec)
		} else if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			items, err = svc.Search(r.Context(), q)
		} else {
			items, err = svc.List(r.Context())
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]vetResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVetResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		v, err := svc.GetByID(r.Context(), chi.URLParam(r, "vetID"))
		if err != nil {
			http.Error(w, "vet not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}

func toVetResponse(v Vet) vetResponse {
	return vetResponse{
		ID:                v.ID,
		UserID:            v.UserID,
		LicenseNumber:     v.LicenseNumber,
		Specialization:    v.Specialization,
		YearsOfExperience: v.YearsOfExperience,
		ClinicName:        v.ClinicName,
		ClinicAddress:     v.ClinicAddress,
		ClinicPhone:       v.ClinicPhone,
		AvailableDays:     v.AvailableDays,
		WorkingHours:      v.WorkingHours,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

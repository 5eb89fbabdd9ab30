package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petcare-backend/internal/config"
	"petcare-backend/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	h, err := router.NewRouter(router.Options{
		Config:       config.Default(),
		AuthVerifier: nil, // modo dev: claims por headers X-Debug-*
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doReq(t *testing.T, baseURL, method, path, userID, roles string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}
	if roles != "" {
		req.Header.Set("X-Debug-Roles", roles)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func createPet(t *testing.T, baseURL, ownerID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", ownerID, "OWNER", map[string]any{
		"name":    "Milo",
		"species": "dog",
		"breed":   "mixed",
		"gender":  "male",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 creating pet, got %d body=%s", st, string(body))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.ID == "" {
		t.Fatalf("bad pet response: %s", string(body))
	}
	return out.ID
}

func TestHTTP_EndToEnd_AppointmentBooking(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"
	petID := createPet(t, ts.URL, ownerID)

	slot := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)

	// 1) Sin claims no hay servicio
	{
		st, _ := doReq(t, ts.URL, "POST", "/appointments", "", "", map[string]any{
			"pet_id": petID, "vet_id": "vet-1", "date_time": slot, "reason": "checkup",
		})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without claims, got %d", st)
		}
	}

	// 2) Otro dueño no agenda sobre mascota ajena
	{
		st, _ := doReq(t, ts.URL, "POST", "/appointments", "owner-2", "OWNER", map[string]any{
			"pet_id": petID, "vet_id": "vet-1", "date_time": slot, "reason": "checkup",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for stranger, got %d", st)
		}
	}

	// 3) El dueño agenda
	var apptID string
	{
		st, body := doReq(t, ts.URL, "POST", "/appointments", ownerID, "OWNER", map[string]any{
			"pet_id": petID, "vet_id": "vet-1", "date_time": slot, "reason": "checkup",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 booking, got %d body=%s", st, string(body))
		}
		var out struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &out); err != nil || out.ID == "" {
			t.Fatalf("bad appointment response: %s", string(body))
		}
		if out.Status != "SCHEDULED" {
			t.Fatalf("expected SCHEDULED, got %s", out.Status)
		}
		apptID = out.ID
	}

	// 4) Mismo vet, mismo slot => 409
	{
		petID2 := createPet(t, ts.URL, "owner-2")
		st, body := doReq(t, ts.URL, "POST", "/appointments", "owner-2", "OWNER", map[string]any{
			"pet_id": petID2, "vet_id": "vet-1", "date_time": slot, "reason": "checkup",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on slot conflict, got %d body=%s", st, string(body))
		}
	}

	// 5) El dueño ve sus citas
	{
		st, body := doReq(t, ts.URL, "GET", "/appointments/mine", ownerID, "OWNER", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 mine, got %d", st)
		}
		var items []map[string]any
		if err := json.Unmarshal(body, &items); err != nil || len(items) != 1 {
			t.Fatalf("expected 1 appointment, body=%s", string(body))
		}
	}

	// 6) Solo el vet completa
	{
		st, _ := doReq(t, ts.URL, "POST", "/appointments/"+apptID+"/complete", ownerID, "OWNER", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 owner complete, got %d", st)
		}
		st, body := doReq(t, ts.URL, "POST", "/appointments/"+apptID+"/complete", "vet-user", "VET", map[string]any{
			"notes": "all good",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 vet complete, got %d body=%s", st, string(body))
		}
	}

	// 7) Completada es terminal: cancelar da 409
	{
		st, _ := doReq(t, ts.URL, "POST", "/appointments/"+apptID+"/cancel", ownerID, "OWNER", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 cancel after complete, got %d", st)
		}
	}
}

func TestHTTP_EndToEnd_VaccinationFlow(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"
	petID := createPet(t, ts.URL, ownerID)

	scheduled := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	// 1) Solo el vet agenda vacunaciones
	{
		st, _ := doReq(t, ts.URL, "POST", "/vaccinations", ownerID, "OWNER", map[string]any{
			"pet_id": petID, "vet_id": "vet-1",
			"vaccine_name": "Nobivac", "vaccine_type": "rabies",
			"scheduled_date": scheduled,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 owner create, got %d", st)
		}
	}

	var vaccID string
	{
		st, body := doReq(t, ts.URL, "POST", "/vaccinations", "vet-user", "VET", map[string]any{
			"pet_id": petID, "vet_id": "vet-1",
			"vaccine_name": "Nobivac", "vaccine_type": "rabies",
			"scheduled_date": scheduled,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", st, string(body))
		}
		var out struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &out); err != nil || out.ID == "" {
			t.Fatalf("bad vaccination response: %s", string(body))
		}
		vaccID = out.ID
	}

	// 2) Certificado antes de administrar: 409
	{
		st, _ := doReq(t, ts.URL, "GET", "/vaccinations/"+vaccID+"/certificate", ownerID, "OWNER", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 certificate before administered, got %d", st)
		}
	}

	// 3) El vet administra la dosis
	{
		st, body := doReq(t, ts.URL, "POST", "/vaccinations/"+vaccID+"/complete", "vet-user", "VET", map[string]any{
			"administered_date": scheduled,
			"batch_number":      "B-1",
			"manufacturer":      "MSD",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete, got %d body=%s", st, string(body))
		}
	}

	// 4) Ahora el dueño obtiene su certificado; un extraño no
	{
		st, body := doReq(t, ts.URL, "GET", "/vaccinations/"+vaccID+"/certificate", ownerID, "OWNER", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 certificate, got %d body=%s", st, string(body))
		}
		var cert struct {
			VaccinationID string `json:"vaccination_id"`
			BatchNumber   string `json:"batch_number"`
		}
		if err := json.Unmarshal(body, &cert); err != nil || cert.VaccinationID != vaccID {
			t.Fatalf("bad certificate: %s", string(body))
		}

		st, _ = doReq(t, ts.URL, "GET", "/vaccinations/"+vaccID+"/certificate", "owner-2", "OWNER", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 stranger certificate, got %d", st)
		}
	}

	// 5) Historial de la mascota visible para el dueño
	{
		st, body := doReq(t, ts.URL, "GET", "/vaccinations/pet/"+petID+"/history", ownerID, "OWNER", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 history, got %d", st)
		}
		var items []map[string]any
		if err := json.Unmarshal(body, &items); err != nil || len(items) != 1 {
			t.Fatalf("expected 1 record, body=%s", string(body))
		}
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", resp.StatusCode)
	}
}

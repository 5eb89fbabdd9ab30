package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	mem "petcare-backend/internal/adapters/storage/memory"
	"petcare-backend/internal/domain/appointments"
	"petcare-backend/internal/domain/ownership"
	"petcare-backend/internal/domain/pets"
	"petcare-backend/internal/domain/vaccinations"
	"petcare-backend/internal/ports/auth"
)

func newTestEngine(t *testing.T) (*Engine, *pets.Service) {
	t.Helper()

	petsSvc := pets.NewService(mem.NewPetRepo())
	apptsSvc := appointments.NewService(mem.NewAppointmentRepo(), appointments.Config{})
	vaccsSvc := vaccinations.NewService(mem.NewVaccinationRepo(), vaccinations.Config{
		BoosterSeries: map[string]int{"rabies": 365},
	})
	owners := ownership.NewResolver(petsSvc, apptsSvc, vaccsSvc)

	return NewEngine(petsSvc, apptsSvc, vaccsSvc, owners), petsSvc
}

func ownerClaims(userID string) auth.Claims {
	return auth.Claims{UserID: userID, Roles: []auth.Role{auth.RoleOwner}}
}

func vetClaims(userID string) auth.Claims {
	return auth.Claims{UserID: userID, Roles: []auth.Role{auth.RoleVet}}
}

func adminClaims(userID string) auth.Claims {
	return auth.Claims{UserID: userID, Roles: []auth.Role{auth.RoleAdmin}}
}

func createPet(t *testing.T, svc *pets.Service, ownerID string) pets.Pet {
	t.Helper()
	p, err := svc.Create(context.Background(), ownerID, pets.CreateInput{
		Name:    "Milo",
		Species: "dog",
	})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	return p
}

func futureSlot() time.Time {
	return time.Now().Add(48 * time.Hour).Truncate(time.Minute)
}

func TestBookAppointment_OwnerOnlyForOwnPets(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	pet := createPet(t, petsSvc, "owner-1")

	in := BookAppointmentInput{
		PetID:    pet.ID,
		VetID:    "vet-1",
		DateTime: futureSlot(),
		Reason:   "checkup",
	}

	// Otro dueño no puede agendar sobre mascota ajena
	if _, err := eng.BookAppointment(ctx, ownerClaims("owner-2"), in); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	// El dueño sí; el OwnerID se deriva de la mascota, no del claim
	appt, err := eng.BookAppointment(ctx, ownerClaims("owner-1"), in)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if appt.OwnerID != "owner-1" {
		t.Fatalf("expected derived owner-1, got %s", appt.OwnerID)
	}
}

func TestBookAppointment_StaffBypassesOwnership(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	pet := createPet(t, petsSvc, "owner-1")

	appt, err := eng.BookAppointment(ctx, vetClaims("vet-user"), BookAppointmentInput{
		PetID:    pet.ID,
		VetID:    "vet-1",
		DateTime: futureSlot(),
		Reason:   "vaccination visit",
	})
	if err != nil {
		t.Fatalf("vet book: %v", err)
	}
	// Incluso agendada por el vet, la cita pertenece al dueño real
	if appt.OwnerID != "owner-1" {
		t.Fatalf("expected owner-1, got %s", appt.OwnerID)
	}
}

func TestBookAppointment_NoClaimsDenied(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	pet := createPet(t, petsSvc, "owner-1")

	_, err := eng.BookAppointment(context.Background(), auth.Claims{}, BookAppointmentInput{
		PetID:    pet.ID,
		VetID:    "vet-1",
		DateTime: futureSlot(),
		Reason:   "checkup",
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for empty claims, got %v", err)
	}
}

func TestGetAppointment_OwnershipIsTransitive(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	pet := createPet(t, petsSvc, "owner-1")
	appt, err := eng.BookAppointment(ctx, ownerClaims("owner-1"), BookAppointmentInput{
		PetID:    pet.ID,
		VetID:    "vet-1",
		DateTime: futureSlot(),
		Reason:   "checkup",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := eng.GetAppointment(ctx, ownerClaims("owner-1"), appt.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := eng.GetAppointment(ctx, ownerClaims("owner-2"), appt.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for stranger, got %v", err)
	}
	if _, err := eng.GetAppointment(ctx, vetClaims("any-vet"), appt.ID); err != nil {
		t.Fatalf("vet get: %v", err)
	}
}

func TestCompleteAppointment_VetOnly(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	pet := createPet(t, petsSvc, "owner-1")
	appt, err := eng.BookAppointment(ctx, ownerClaims("owner-1"), BookAppointmentInput{
		PetID:    pet.ID,
		VetID:    "vet-1",
		DateTime: futureSlot(),
		Reason:   "checkup",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	// Ni el dueño ni admin completan citas clínicamente
	if _, err := eng.CompleteAppointment(ctx, ownerClaims("owner-1"), appt.ID, ""); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected owner denied, got %v", err)
	}
	if _, err := eng.CompleteAppointment(ctx, adminClaims("admin-1"), appt.ID, ""); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected admin denied, got %v", err)
	}
	if _, err := eng.CompleteAppointment(ctx, vetClaims("vet-user"), appt.ID, "done"); err != nil {
		t.Fatalf("vet complete: %v", err)
	}
}

func TestDeleteAppointment_AdminOnly(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	pet := createPet(t, petsSvc, "owner-1")
	appt, err := eng.BookAppointment(ctx, ownerClaims("owner-1"), BookAppointmentInput{
		PetID:    pet.ID,
		VetID:    "vet-1",
		DateTime: futureSlot(),
		Reason:   "checkup",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := eng.DeleteAppointment(ctx, vetClaims("vet-user"), appt.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected vet denied, got %v", err)
	}
	if err := eng.DeleteAppointment(ctx, adminClaims("admin-1"), appt.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestVaccinationLifecycle_RolesAndOwnership(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	pet := createPet(t, petsSvc, "owner-1")

	in := vaccinations.CreateInput{
		PetID:         pet.ID,
		VetID:         "vet-1",
		VaccineName:   "Nobivac Rabies",
		VaccineType:   "rabies",
		ScheduledDate: time.Now().AddDate(0, 0, 7),
	}

	// Los dueños no crean vacunaciones
	if _, err := eng.CreateVaccination(ctx, ownerClaims("owner-1"), in); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected owner denied, got %v", err)
	}

	v, err := eng.CreateVaccination(ctx, vetClaims("vet-user"), in)
	if err != nil {
		t.Fatalf("create vaccination: %v", err)
	}

	// El dueño ve la suya; un extraño no
	if _, err := eng.GetVaccination(ctx, ownerClaims("owner-1"), v.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := eng.GetVaccination(ctx, ownerClaims("owner-2"), v.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected stranger denied, got %v", err)
	}

	// Certificado antes de administrar: estado inválido, no permiso
	if _, err := eng.VaccinationCertificate(ctx, ownerClaims("owner-1"), v.ID); !errors.Is(err, vaccinations.ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}

	administered, err := eng.CompleteVaccination(ctx, vetClaims("vet-user"), v.ID, vaccinations.CompleteInput{
		AdministeredDate: v.ScheduledDate,
		BatchNumber:      "B-1",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if administered.Status != vaccinations.StatusAdministered {
		t.Fatalf("expected ADMINISTERED (rabies has boosters), got %s", administered.Status)
	}

	cert, err := eng.VaccinationCertificate(ctx, ownerClaims("owner-1"), v.ID)
	if err != nil {
		t.Fatalf("certificate: %v", err)
	}
	if cert.VaccinationID != v.ID {
		t.Fatalf("unexpected certificate: %+v", cert)
	}
}

func TestMyVaccinationReminders_ScopedToOwnPets(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	mine := createPet(t, petsSvc, "owner-1")
	other := createPet(t, petsSvc, "owner-2")

	for _, petID := range []string{mine.ID, other.ID} {
		_, err := eng.CreateVaccination(ctx, vetClaims("vet-user"), vaccinations.CreateInput{
			PetID:         petID,
			VetID:         "vet-1",
			VaccineName:   "Nobivac Rabies",
			VaccineType:   "rabies",
			ScheduledDate: time.Now().AddDate(0, 0, 5),
		})
		if err != nil {
			t.Fatalf("create vaccination for %s: %v", petID, err)
		}
	}

	items, err := eng.MyVaccinationReminders(ctx, ownerClaims("owner-1"))
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	if len(items) != 1 || items[0].PetID != mine.ID {
		t.Fatalf("expected only own pet reminders, got %+v", items)
	}

	// Staff no usa la vista "mis recordatorios"
	if _, err := eng.MyVaccinationReminders(ctx, vetClaims("vet-user")); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected vet denied, got %v", err)
	}
}

func TestStaffViews_RequireStaffRole(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	c := ownerClaims("owner-1")

	if _, err := eng.TodayAppointments(ctx, c); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("today: expected denied, got %v", err)
	}
	if _, err := eng.AppointmentStatistics(ctx, c); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("stats: expected denied, got %v", err)
	}
	if _, err := eng.OverdueVaccinations(ctx, c); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("overdue: expected denied, got %v", err)
	}
	if _, err := eng.VaccinationsByVet(ctx, c, "vet-1"); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("by vet: expected denied, got %v", err)
	}
}

func TestUpdateVaccination_VetOnly(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	pet := createPet(t, petsSvc, "owner-1")
	v, err := eng.CreateVaccination(ctx, vetClaims("vet-user"), vaccinations.CreateInput{
		PetID:         pet.ID,
		VetID:         "vet-1",
		VaccineName:   "Nobivac Rabies",
		VaccineType:   "rabies",
		ScheduledDate: time.Now().AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	dosage := "1ml"
	patch := vaccinations.UpdateInput{Dosage: &dosage}

	if _, err := eng.UpdateVaccination(ctx, ownerClaims("owner-1"), v.ID, patch); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected owner denied, got %v", err)
	}
	if _, err := eng.UpdateVaccination(ctx, adminClaims("admin-1"), v.ID, patch); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected admin denied, got %v", err)
	}
	got, err := eng.UpdateVaccination(ctx, vetClaims("vet-user"), v.ID, patch)
	if err != nil {
		t.Fatalf("vet update: %v", err)
	}
	if got.Dosage != "1ml" {
		t.Fatalf("expected patched dosage, got %+v", got)
	}
}

func TestDeleteVaccination_StaffOnly(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	pet := createPet(t, petsSvc, "owner-1")
	v, err := eng.CreateVaccination(ctx, vetClaims("vet-user"), vaccinations.CreateInput{
		PetID:         pet.ID,
		VetID:         "vet-1",
		VaccineName:   "Nobivac Rabies",
		VaccineType:   "rabies",
		ScheduledDate: time.Now().AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := eng.DeleteVaccination(ctx, ownerClaims("owner-1"), v.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected owner denied, got %v", err)
	}
	if err := eng.DeleteVaccination(ctx, vetClaims("vet-user"), v.ID); err != nil {
		t.Fatalf("vet delete: %v", err)
	}
	if _, err := eng.GetVaccination(ctx, vetClaims("vet-user"), v.ID); !errors.Is(err, vaccinations.ErrNotFound) {
		t.Fatalf("expected gone after delete, got %v", err)
	}
}

func TestListAll_StaffOnly(t *testing.T) {
	eng, petsSvc := newTestEngine(t)
	ctx := context.Background()

	pet := createPet(t, petsSvc, "owner-1")
	if _, err := eng.BookAppointment(ctx, ownerClaims("owner-1"), BookAppointmentInput{
		PetID:    pet.ID,
		VetID:    "vet-1",
		DateTime: futureSlot(),
		Reason:   "checkup",
	}); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := eng.CreateVaccination(ctx, vetClaims("vet-user"), vaccinations.CreateInput{
		PetID:         pet.ID,
		VetID:         "vet-1",
		VaccineName:   "Nobivac Rabies",
		VaccineType:   "rabies",
		ScheduledDate: time.Now().AddDate(0, 0, 7),
	}); err != nil {
		t.Fatalf("create vaccination: %v", err)
	}

	if _, err := eng.AllAppointments(ctx, ownerClaims("owner-1")); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected owner denied for appointments list, got %v", err)
	}
	if _, err := eng.AllVaccinations(ctx, ownerClaims("owner-1")); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected owner denied for vaccinations list, got %v", err)
	}

	appts, err := eng.AllAppointments(ctx, vetClaims("vet-user"))
	if err != nil {
		t.Fatalf("list appointments: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}
	vaccs, err := eng.AllVaccinations(ctx, adminClaims("admin-1"))
	if err != nil {
		t.Fatalf("list vaccinations: %v", err)
	}
	if len(vaccs) != 1 {
		t.Fatalf("expected 1 vaccination, got %d", len(vaccs))
	}
}

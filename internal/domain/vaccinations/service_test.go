package vaccinations

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Vaccination
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Vaccination{}}
}

func (r *testRepo) Create(ctx context.Context, v Vaccination) error {
	if v.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[v.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[v.ID] = v
	return nil
}

func (r *testRepo) Update(ctx context.Context, v Vaccination) error {
	if _, ok := r.byID[v.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[v.ID] = v
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Vaccination, error) {
	v, ok := r.byID[id]
	if !ok {
		return Vaccination{}, errRepoNotFound
	}
	return v, nil
}

func (r *testRepo) ListByPet(ctx context.Context, petID string) ([]Vaccination, error) {
	return r.list(func(v Vaccination) bool { return v.PetID == petID }), nil
}

func (r *testRepo) ListByVet(ctx context.Context, vetID string) ([]Vaccination, error) {
	return r.list(func(v Vaccination) bool { return v.VetID == vetID }), nil
}

func (r *testRepo) ListByNextDueRange(ctx context.Context, start, end time.Time) ([]Vaccination, error) {
	return r.list(func(v Vaccination) bool {
		due := v.DueDate()
		return !due.Before(start) && !due.After(end)
	}), nil
}

func (r *testRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]Vaccination, error) {
	return r.list(func(v Vaccination) bool {
		return v.Status == StatusScheduled && v.DueDate().Before(asOf)
	}), nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) ListAll(ctx context.Context) ([]Vaccination, error) {
	return r.list(func(Vaccination) bool { return true }), nil
}

func (r *testRepo) list(keep func(Vaccination) bool) []Vaccination {
	out := make([]Vaccination, 0)
	for _, v := range r.byID {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// -------------------------
// Tests
// -------------------------

var testNow = time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

func newTestService(repo *testRepo, boosters map[string]int) *Service {
	svc := NewService(repo, Config{BoosterSeries: boosters})
	svc.now = func() time.Time { return testNow }
	return svc
}

func validCreateInput() CreateInput {
	return CreateInput{
		PetID:         "pet-1",
		VetID:         "vet-1",
		VaccineName:   "Nobivac Rabies",
		VaccineType:   "rabies",
		ScheduledDate: testNow.AddDate(0, 0, 7),
	}
}

func TestCreate_RequiresFutureCalendarDay(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	// Mismo día no vale, aunque la hora sea posterior
	in := validCreateInput()
	in.ScheduledDate = testNow.Add(5 * time.Hour)
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for same day, got %v", err)
	}

	// Mañana sí
	in.ScheduledDate = testNow.AddDate(0, 0, 1)
	v, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.Status != StatusScheduled {
		t.Fatalf("expected SCHEDULED, got %s", v.Status)
	}
	// La fecha queda normalizada a medianoche UTC
	if h := v.ScheduledDate.Hour(); h != 0 {
		t.Fatalf("expected midnight, got hour %d", h)
	}
}

func TestComplete_BoosterSeriesSetsNextDue(t *testing.T) {
	svc := newTestService(newTestRepo(), map[string]int{"rabies": 365})
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Complete(ctx, v.ID, CompleteInput{
		AdministeredDate: v.ScheduledDate,
		BatchNumber:      "B-123",
		Manufacturer:     "MSD",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != StatusAdministered {
		t.Fatalf("expected ADMINISTERED, got %s", got.Status)
	}
	if got.NextDueDate == nil {
		t.Fatal("expected next due date")
	}
	want := v.ScheduledDate.AddDate(0, 0, 365)
	if !got.NextDueDate.Equal(want) {
		t.Fatalf("expected next due %v, got %v", want, *got.NextDueDate)
	}
}

func TestComplete_SingleDoseGoesStraightToCompleted(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Complete(ctx, v.ID, CompleteInput{AdministeredDate: v.ScheduledDate})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Status)
	}
	if got.NextDueDate != nil {
		t.Fatalf("single dose should not set next due, got %v", *got.NextDueDate)
	}
}

func TestComplete_RejectsAdministeredBeforeScheduled(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	early := v.ScheduledDate.AddDate(0, 0, -1)
	if _, err := svc.Complete(ctx, v.ID, CompleteInput{AdministeredDate: early}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestComplete_CancelledIsTerminal(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Cancel(ctx, v.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.Complete(ctx, v.ID, CompleteInput{AdministeredDate: v.ScheduledDate}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestClassify_OverdueIsDerivedNotStored(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Saltamos el reloj 10 días más allá de la fecha agendada
	svc.now = func() time.Time { return testNow.AddDate(0, 0, 17) }

	items, err := svc.Overdue(ctx)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(items) != 1 || items[0].ID != v.ID {
		t.Fatalf("expected %s overdue, got %+v", v.ID, items)
	}
	if items[0].Status != StatusOverdue {
		t.Fatalf("expected OVERDUE in output, got %s", items[0].Status)
	}

	// El registro almacenado sigue SCHEDULED
	stored, _ := repo.GetByID(ctx, v.ID)
	if stored.Status != StatusScheduled {
		t.Fatalf("stored status should stay SCHEDULED, got %s", stored.Status)
	}

	// Y aun vencida se puede completar
	late := v.ScheduledDate.AddDate(0, 0, 10)
	if _, err := svc.Complete(ctx, v.ID, CompleteInput{AdministeredDate: late}); err != nil {
		t.Fatalf("complete overdue: %v", err)
	}
}

func TestUpcoming_WindowIsInclusive(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	inWindow := validCreateInput()
	inWindow.ScheduledDate = testNow.AddDate(0, 0, 30) // borde de la ventana
	if _, err := svc.Create(ctx, inWindow); err != nil {
		t.Fatalf("create in-window: %v", err)
	}

	beyond := validCreateInput()
	beyond.PetID = "pet-2"
	beyond.ScheduledDate = testNow.AddDate(0, 0, 31)
	if _, err := svc.Create(ctx, beyond); err != nil {
		t.Fatalf("create beyond: %v", err)
	}

	items, err := svc.Upcoming(ctx)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(items) != 1 || items[0].PetID != "pet-1" {
		t.Fatalf("expected only pet-1 in window, got %+v", items)
	}
}

func TestDueBetween_ClassifiesAndBounds(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	early := validCreateInput()
	early.ScheduledDate = testNow.AddDate(0, 0, 2)
	if _, err := svc.Create(ctx, early); err != nil {
		t.Fatalf("create early: %v", err)
	}

	late := validCreateInput()
	late.PetID = "pet-2"
	late.ScheduledDate = testNow.AddDate(0, 0, 40)
	if _, err := svc.Create(ctx, late); err != nil {
		t.Fatalf("create late: %v", err)
	}

	items, err := svc.DueBetween(ctx, testNow, testNow.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("due between: %v", err)
	}
	if len(items) != 1 || items[0].PetID != "pet-1" {
		t.Fatalf("expected only pet-1 in range, got %+v", items)
	}

	// La evaluación avanza: la dosis ya pasada sale clasificada OVERDUE.
	svc.now = func() time.Time { return testNow.AddDate(0, 0, 5) }
	items, err = svc.DueBetween(ctx, testNow, testNow.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("due between after clock jump: %v", err)
	}
	if len(items) != 1 || items[0].Status != StatusOverdue {
		t.Fatalf("expected classified OVERDUE, got %+v", items)
	}

	if _, err := svc.DueBetween(ctx, testNow.AddDate(0, 0, 10), testNow); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted range, got %v", err)
	}
}

func TestScheduleNext_InheritsFromSource(t *testing.T) {
	svc := newTestService(newTestRepo(), map[string]int{"rabies": 180})
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	administered, err := svc.Complete(ctx, v.ID, CompleteInput{AdministeredDate: v.ScheduledDate})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	next, err := svc.ScheduleNext(ctx, administered.ID, ScheduleNextInput{})
	if err != nil {
		t.Fatalf("schedule next: %v", err)
	}
	if next.ID == administered.ID {
		t.Fatal("next dose must be a new record")
	}
	if !next.ScheduledDate.Equal(*administered.NextDueDate) {
		t.Fatalf("expected inherited due date %v, got %v", *administered.NextDueDate, next.ScheduledDate)
	}
	if next.VaccineType != "rabies" || next.PetID != "pet-1" {
		t.Fatalf("expected inherited pet/type, got %+v", next)
	}
	if next.Status != StatusScheduled {
		t.Fatalf("expected SCHEDULED, got %s", next.Status)
	}
}

func TestScheduleNext_RejectsScheduledSource(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ScheduleNext(ctx, v.ID, ScheduleNextInput{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestGenerateCertificate_RequiresAdministered(t *testing.T) {
	svc := newTestService(newTestRepo(), map[string]int{"rabies": 365})
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// SCHEDULED no certifica
	if _, err := svc.GenerateCertificate(ctx, v.ID); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}

	administered, err := svc.Complete(ctx, v.ID, CompleteInput{
		AdministeredDate: v.ScheduledDate,
		BatchNumber:      "B-99",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	cert, err := svc.GenerateCertificate(ctx, administered.ID)
	if err != nil {
		t.Fatalf("certificate: %v", err)
	}
	if cert.VaccinationID != v.ID || cert.BatchNumber != "B-99" {
		t.Fatalf("unexpected certificate: %+v", cert)
	}
	if !cert.AdministeredDate.Equal(*administered.AdministeredDate) {
		t.Fatalf("wrong administered date: %v", cert.AdministeredDate)
	}
	if !cert.IssuedAt.Equal(testNow) {
		t.Fatalf("expected issued at fixed clock, got %v", cert.IssuedAt)
	}
}

func TestRemindersForPets_DeterministicOrder(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	mk := func(petID, vtype string, daysAhead int) {
		in := validCreateInput()
		in.PetID = petID
		in.VaccineType = vtype
		in.ScheduledDate = testNow.AddDate(0, 0, daysAhead)
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create %s/%s: %v", petID, vtype, err)
		}
	}

	mk("pet-b", "rabies", 2)
	mk("pet-a", "rabies", 2)
	mk("pet-a", "distemper", 2)
	mk("pet-a", "rabies", 1)

	// Adelantamos un día el reloj para que la dosis de +1 quede vencida
	svc.now = func() time.Time { return testNow.AddDate(0, 0, 2) }

	items, err := svc.RemindersForPets(ctx, []string{"pet-b", "pet-a"})
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 reminders, got %d", len(items))
	}

	// Orden: due asc, luego petID, luego vaccineType
	if items[0].PetID != "pet-a" || items[0].Status != StatusOverdue {
		t.Fatalf("expected overdue pet-a first, got %+v", items[0])
	}
	if items[1].PetID != "pet-a" || items[1].VaccineType != "distemper" {
		t.Fatalf("expected pet-a/distemper second, got %+v", items[1])
	}
	if items[2].PetID != "pet-a" || items[2].VaccineType != "rabies" {
		t.Fatalf("expected pet-a/rabies third, got %+v", items[2])
	}
	if items[3].PetID != "pet-b" {
		t.Fatalf("expected pet-b last, got %+v", items[3])
	}
}

func TestTransitionTable(t *testing.T) {
	// Conjunto permitido completo; todo par fuera de él debe dar false.
	allowed := map[Status]map[Status]bool{
		StatusScheduled: {
			StatusAdministered: true,
			StatusCompleted:    true,
			StatusOverdue:      true,
			StatusCancelled:    true,
		},
		StatusAdministered: {
			StatusCompleted: true,
			StatusCancelled: true,
		},
		StatusOverdue: {
			StatusAdministered: true,
			StatusCompleted:    true,
			StatusCancelled:    true,
		},
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			want := allowed[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("%s -> %s: expected %v, got %v", from, to, want, got)
			}
		}
	}

	for _, st := range []Status{StatusCompleted, StatusCancelled} {
		if !st.Terminal() {
			t.Errorf("expected %s to be terminal", st)
		}
	}
}

func TestUpdate_PatchesFieldsAndGatesStatus(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newDate := testNow.AddDate(0, 0, 14).Add(9 * time.Hour)
	got, err := svc.Update(ctx, v.ID, UpdateInput{
		VetID:         strPtr("vet-2"),
		Dosage:        strPtr("1ml"),
		ScheduledDate: &newDate,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.VetID != "vet-2" || got.Dosage != "1ml" {
		t.Fatalf("fields not patched: %+v", got)
	}
	// La fecha reagendada se normaliza a día de calendario
	if !got.ScheduledDate.Equal(time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected normalized reschedule, got %v", got.ScheduledDate)
	}
	// Los campos no enviados quedan como estaban
	if got.VaccineType != v.VaccineType || got.VaccineName != v.VaccineName {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	// Cambio de estado fuera de la tabla
	st := StatusCompleted
	if _, err := svc.Update(ctx, v.ID, UpdateInput{Status: &st}); err != nil {
		t.Fatalf("scheduled -> completed should pass the table: %v", err)
	}
	back := StatusScheduled
	if _, err := svc.Update(ctx, v.ID, UpdateInput{Status: &back}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition reopening completed, got %v", err)
	}
}

func TestUpdate_RejectsBadInput(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	past := testNow.AddDate(0, 0, -1)
	if _, err := svc.Update(ctx, v.ID, UpdateInput{ScheduledDate: &past}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for past reschedule, got %v", err)
	}
	if _, err := svc.Update(ctx, v.ID, UpdateInput{VaccineType: strPtr("  ")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank vaccine type, got %v", err)
	}
	bogus := Status("ARCHIVED")
	if _, err := svc.Update(ctx, v.ID, UpdateInput{Status: &bogus}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", UpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_TerminalAndAdministeredRecords(t *testing.T) {
	svc := newTestService(newTestRepo(), map[string]int{"rabies": 365})
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	administered, err := svc.Complete(ctx, v.ID, CompleteInput{AdministeredDate: v.ScheduledDate})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Una dosis ya administrada no se reagenda
	newDate := testNow.AddDate(0, 0, 20)
	if _, err := svc.Update(ctx, administered.ID, UpdateInput{ScheduledDate: &newDate}); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState rescheduling administered dose, got %v", err)
	}

	cancelled, err := svc.Cancel(ctx, administered.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Update(ctx, cancelled.ID, UpdateInput{Notes: strPtr("audit")}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition editing terminal record, got %v", err)
	}
}

func TestDelete_RemovesRecord(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for double delete, got %v", err)
	}
}

func strPtr(s string) *string { return &s }

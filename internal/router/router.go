package router

import (
	"database/sql"
	"net/http"
	"time"

	mem "petcare-backend/internal/adapters/storage/memory"
	pg "petcare-backend/internal/adapters/storage/postgres"
	"petcare-backend/internal/config"
	"petcare-backend/internal/domain/appointments"
	"petcare-backend/internal/domain/medicalhistory"
	"petcare-backend/internal/domain/ownership"
	"petcare-backend/internal/domain/pets"
	"petcare-backend/internal/domain/vaccinations"
	"petcare-backend/internal/domain/vets"
	"petcare-backend/internal/middleware"
	"petcare-backend/internal/ports/auth"
	"petcare-backend/internal/scheduling"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Config config.Config

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, decide por Config.DBDSN.
	DB *sql.DB

	// Ubicación ya resuelta desde Config.Timezone.
	Location *time.Location
}

func NewRouter(opts Options) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.RateLimit(opts.Config.Scheduling.RateRPS, opts.Config.Scheduling.RateBurst))
	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	var (
		petRepo     pets.Repository
		vetRepo     vets.Repository
		apptRepo    appointments.Repository
		vaccRepo    vaccinations.Repository
		historyRepo medicalhistory.Repository
	)

	db := opts.DB
	if db == nil && opts.Config.DBDSN != "" {
		opened, err := pg.Open(opts.Config.DBDSN)
		if err != nil {
			return nil, err
		}
		db = opened
	}

	if db != nil {
		petRepo = pg.NewPetsRepo(db)
		vetRepo = pg.NewVetsRepo(db)
		apptRepo = pg.NewAppointmentsRepo(db)
		vaccRepo = pg.NewVaccinationsRepo(db)
		historyRepo = pg.NewMedicalHistoryRepo(db)
	} else {
		petRepo = mem.NewPetRepo()
		vetRepo = mem.NewVetRepo()
		apptRepo = mem.NewAppointmentRepo()
		vaccRepo = mem.NewVaccinationRepo()
		historyRepo = mem.NewMedicalHistoryRepo()
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	vetsSvc := vets.NewService(vetRepo)
	apptsSvc := appointments.NewService(apptRepo, appointments.Config{
		Location:               loc,
		DefaultDurationMinutes: opts.Config.Scheduling.DefaultDurationMinutes,
	})
	vaccsSvc := vaccinations.NewService(vaccRepo, vaccinations.Config{
		Location:           loc,
		UpcomingWindowDays: opts.Config.Scheduling.UpcomingWindowDays,
		BoosterSeries:      opts.Config.Scheduling.BoosterSeries,
	})
	historySvc := medicalhistory.NewService(historyRepo)

	owners := ownership.NewResolver(petsSvc, apptsSvc, vaccsSvc)
	engine := scheduling.NewEngine(petsSvc, apptsSvc, vaccsSvc, owners)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc)
	vets.RegisterRoutes(r, vetsSvc)
	medicalhistory.RegisterRoutes(r, historySvc, petsSvc)
	scheduling.RegisterRoutes(r, engine)

	return r, nil
}

package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	mem "med-cabinet/internal/adapters/storage/memory"
	pg "med-cabinet/internal/adapters/storage/postgres"
	lite "med-cabinet/internal/adapters/storage/sqlite"
	"med-cabinet/internal/domain/alerts"
	"med-cabinet/internal/domain/cabinet"
	"med-cabinet/internal/domain/intakes"
	"med-cabinet/internal/domain/medications"
	"med-cabinet/internal/domain/planner"
	"med-cabinet/internal/domain/schedules"
	"med-cabinet/internal/middleware"
	"med-cabinet/internal/platform/bus"
	"med-cabinet/internal/platform/logger"

	_ "med-cabinet/docs"
)

type Options struct {
	Logger logger.Logger // si es nil, se construye desde env

	// Opcional: si viene, usa Postgres. Si no, decide por env
	// (DB_DSN -> Postgres, SQLITE_PATH -> sqlite, si no in-memory).
	DB *sql.DB
}

type repos struct {
	meds      medications.Repository
	schedules schedules.Repository
	cabinet   cabinet.Repository
	intakes   intakes.Repository
}

func buildRepos(opts Options, log logger.Logger) repos {
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err != nil {
				log.Error("postgres open failed, falling back", map[string]any{"error": err.Error()})
			} else {
				db = opened
			}
		}
	}

	if db != nil {
		if err := pg.EnsureSchema(context.Background(), db); err != nil {
			log.Error("postgres schema bootstrap failed", map[string]any{"error": err.Error()})
		}
		return repos{
			meds:      pg.NewMedicationsRepo(db),
			schedules: pg.NewSchedulesRepo(db),
			cabinet:   pg.NewCabinetRepo(db),
			intakes:   pg.NewIntakesRepo(db),
		}
	}

	if path := os.Getenv("SQLITE_PATH"); path != "" {
		ldb, err := lite.Open(path)
		if err != nil {
			log.Error("sqlite open failed, falling back to memory", map[string]any{"error": err.Error()})
		} else {
			return repos{
				meds:      lite.NewMedicationsRepo(ldb),
				schedules: lite.NewSchedulesRepo(ldb),
				cabinet:   lite.NewCabinetRepo(ldb),
				intakes:   lite.NewIntakesRepo(ldb),
			}
		}
	}

	return repos{
		meds:      mem.NewMedicationsRepo(),
		schedules: mem.NewSchedulesRepo(),
		cabinet:   mem.NewCabinetRepo(),
		intakes:   mem.NewIntakesRepo(),
	}
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	rp := buildRepos(opts, log)
	b := bus.New()

	// Services por módulo
	medsSvc := medications.NewService(rp.meds, b, log)
	schedulesSvc := schedules.NewService(rp.schedules, medsSvc, b, log)
	cabinetSvc := cabinet.NewService(rp.cabinet, log)
	resolver := intakes.NewResolver(schedulesSvc, rp.intakes, log)
	workflow := intakes.NewWorkflow(resolver, rp.intakes, b, log)
	plannerSvc := planner.NewService(resolver, cabinetSvc, medsSvc, log)
	alertsSvc := alerts.NewService(cabinetSvc, plannerSvc, medsSvc, log)

	// Data de referencia: tipos de medicamento, idempotente.
	if err := medsSvc.SeedTypes(context.Background()); err != nil {
		log.Error("seed medication types failed", map[string]any{"error": err.Error()})
	}

	wireCascades(b, schedulesSvc, cabinetSvc, workflow, log)

	// Rutas por módulo
	medications.RegisterRoutes(r, medsSvc)
	schedules.RegisterRoutes(r, schedulesSvc)
	cabinet.RegisterRoutes(r, cabinetSvc)
	intakes.RegisterRoutes(r, resolver, workflow)
	planner.RegisterRoutes(r, plannerSvc)
	alerts.RegisterRoutes(r, alertsSvc)

	r.Get("/events/ws", eventsFeedHandler(b, log))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// wireCascades cablea los suscriptores una sola vez al arrancar. El orden de
// suscripción importa: para un mismo evento los handlers corren en este orden.
func wireCascades(b *bus.Bus, schedulesSvc *schedules.Service, cabinetSvc *cabinet.Service, workflow *intakes.Workflow, log logger.Logger) {
	// Borrar un medicamento arrastra horarios, tomas registradas y lotes.
	// Primero las tomas (necesitan los ids de horario todavía vivos), luego
	// horarios y lotes. Cada paso es best-effort: un fallo se loguea y la
	// cascada sigue, no hay transacción que los envuelva.
	b.Subscribe(func(ctx context.Context, e bus.Event) {
		ev, ok := e.(bus.MedicationDeleted)
		if !ok {
			return
		}
		scheds, err := schedulesSvc.ListByMedication(ctx, ev.MedicationID)
		if err != nil {
			log.Error("cascade: list schedules failed", map[string]any{
				"medicationId": ev.MedicationID, "error": err.Error(),
			})
		}
		ids := make([]string, 0, len(scheds))
		for _, s := range scheds {
			ids = append(ids, s.ID)
		}
		workflow.DeleteBySchedules(ctx, ids)
		schedulesSvc.DeleteByMedication(ctx, ev.MedicationID)
		cabinetSvc.DeleteByMedication(ctx, ev.MedicationID)
	})

	// Borrar un horario arrastra sus tomas registradas.
	b.Subscribe(func(ctx context.Context, e bus.Event) {
		ev, ok := e.(bus.ScheduleDeleted)
		if !ok {
			return
		}
		workflow.DeleteBySchedules(ctx, []string{ev.ScheduleID})
	})

	// Registrar una toma descuenta la dosis del botiquín (FEFO).
	b.Subscribe(func(ctx context.Context, e bus.Event) {
		ev, ok := e.(bus.IntakeCompleted)
		if !ok {
			return
		}
		if err := cabinetSvc.SubtractByMedication(ctx, ev.MedicationID, ev.Dose); err != nil {
			log.Error("cascade: stock subtract failed", map[string]any{
				"medicationId": ev.MedicationID, "error": err.Error(),
			})
		}
	})
}

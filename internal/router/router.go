package router

import (
	"net/http"

	"idhealth/internal/adapters/storage/memory"
	_ "idhealth/internal/docs"
	"idhealth/internal/domain/measurements"
	"idhealth/internal/domain/patients"
	"idhealth/internal/domain/predictions"
	"idhealth/internal/domain/profiles"
	"idhealth/internal/domain/training"
	"idhealth/internal/middleware"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/auth"
	"idhealth/internal/ports/pod"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Store es el backend de pods. nil = in-memory.
	Store pod.Store
	// Cache de perfiles. nil = in-memory.
	Cache profiles.Cache
	Profiles profiles.Options

	// Predictor y Trainer son el servicio externo de modelo; pueden ser nil.
	Predictor predictions.Predictor
	Trainer   training.Trainer

	// DoctorPodHosts son los hosts de pods que un doctor puede leer.
	// Vacío deshabilita /doctor/measurements.
	DoctorPodHosts []string

	Logger logger.Logger
}

// Services agrupa los servicios de dominio ya cableados.
type Services struct {
	Profiles     *profiles.Service
	Patients     *patients.Service
	Measurements *measurements.Service
	Predictions  *predictions.Service
	Training     *training.Service
}

// NewServices construye los servicios sobre un mismo store y updater.
func NewServices(opts Options) Services {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = memory.NewPodStore()
	}
	popts := opts.Profiles
	popts.Cache = opts.Cache
	if popts.Cache == nil {
		popts.Cache = memory.NewProfileCache()
	}

	updater := pod.NewUpdater(store)
	ms := measurements.NewService(store, updater, log)
	ps := predictions.NewService(store, updater, ms, opts.Predictor, log)
	return Services{
		Profiles:     profiles.NewService(store, log, popts),
		Patients:     patients.NewService(store, updater, log),
		Measurements: ms,
		Predictions:  ps,
		Training:     training.NewService(store, updater, ps, opts.Trainer, log),
	}
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	svcs := NewServices(opts)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	profiles.RegisterRoutes(r, svcs.Profiles)
	patients.RegisterRoutes(r, svcs.Patients, svcs.Profiles)
	measurements.RegisterRoutes(r, svcs.Measurements, svcs.Profiles, measurements.DoctorAccess{
		Hosts:  opts.DoctorPodHosts,
		Grants: svcs.Patients,
	})
	predictions.RegisterRoutes(r, svcs.Predictions, svcs.Profiles)
	training.RegisterRoutes(r, svcs.Training, svcs.Profiles)

	return r
}

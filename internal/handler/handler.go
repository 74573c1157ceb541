package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/assignment"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/config"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/generator"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/notify"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/obs"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/repository"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	engine     *assignment.Engine
	generator  *generator.Service
	publisher  *notify.Publisher
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, engine *assignment.Engine, gen *generator.Service, publisher *notify.Publisher) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		engine:     engine,
		generator:  gen,
		publisher:  publisher,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(h.rateLimit)
	h.Mux.Use(obs.Instrument)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Method("GET", "/metrics", obs.Handler())

	// everything below requires an actor token from the identity provider
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/schedule", h.GetSchedule)
		r.Get("/engineers", h.ListEngineers)

		r.Route("/recurring-shifts", func(r chi.Router) {
			r.Post("/", h.CreateRecurringShift)
			r.Get("/", h.ListRecurringShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.recurringShift)
				r.Post("/extend", h.ExtendRecurringShift)
				r.Delete("/", h.DeleteRecurringShift)
			})
		})

		r.Route("/shifts/{id}", func(r chi.Router) {
			r.Post("/assign", h.AssignShift)
			r.Post("/reassign", h.ReassignShift)
			r.Post("/unassign", h.UnassignShift)
			r.Post("/performed", h.MarkShiftPerformed)
		})
	})
}

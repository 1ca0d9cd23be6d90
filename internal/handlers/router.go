package handlers

import (
	"net/http"
	"strings"

	"ahorra/internal/config"
	"ahorra/internal/logging"
	"ahorra/internal/middleware"
	"ahorra/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	cfg       config.Config
	logger    logrus.FieldLogger
	sessions  SessionService
	users     UserService
	accounts  AccountService
	transfers TransferService
	budgets   BudgetService
	mailbox   Mailbox
	resets    PasswordResetService
	health    HealthChecker
	hub       *websocket.Hub
}

func New(cfg config.Config, logger logrus.FieldLogger, deps Deps, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		sessions:  deps.Sessions,
		users:     deps.Users,
		accounts:  deps.Accounts,
		transfers: deps.Transfers,
		budgets:   deps.Budgets,
		mailbox:   deps.Mailbox,
		resets:    deps.Resets,
		health:    deps.Health,
		hub:       hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(logging.Requests(h.logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(h.cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticated := middleware.Auth(h.cfg.JWTSecret)
	session := middleware.RequireSession(h.sessions)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/password-reset", h.RequestPasswordReset)
		r.Post("/password-reset/confirm", h.ConfirmPasswordReset)
		r.With(authenticated).Post("/logout", h.Logout)
		r.With(authenticated, session).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticated, session)
		r.Put("/users/me", h.UpdateMe)
		r.Get("/balance", h.GetBalance)
		r.Get("/transactions", h.ListTransactions)
		r.Post("/transfers", h.Transfer)
		r.Get("/budgets", h.ListBudgets)
		r.Post("/budgets", h.CreateBudget)
		r.Get("/budgets/{id}", h.GetBudget)
		r.Get("/mail", h.ListMail)
		r.Patch("/mail/{id}", h.UpdateMail)
		r.Delete("/mail/{id}", h.DeleteMail)
	})

	router.With(authenticated).Get("/ws/notices", h.WSNotices)
	router.Get("/health", h.Health)
	return router
}

func allowedOrigins(raw string) []string {
	origins := []string{}
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

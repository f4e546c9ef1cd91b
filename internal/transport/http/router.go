package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cliplearn/backend/internal/application/auth"
	clipapp "github.com/cliplearn/backend/internal/application/clip"
	quizapp "github.com/cliplearn/backend/internal/application/quiz"
	settingsapp "github.com/cliplearn/backend/internal/application/settings"
	userapp "github.com/cliplearn/backend/internal/application/user"
	"github.com/cliplearn/backend/internal/config"
	"github.com/cliplearn/backend/internal/infrastructure/dynamo"
	"github.com/cliplearn/backend/internal/infrastructure/ffmpeg"
	jwtinfra "github.com/cliplearn/backend/internal/infrastructure/jwt"
	s3infra "github.com/cliplearn/backend/internal/infrastructure/s3"
	"github.com/cliplearn/backend/internal/transport/http/handler"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo        *dynamo.UserRepo
	ClipRepo        *dynamo.ClipRepo
	QuizAttemptRepo *dynamo.QuizAttemptRepo
	SettingsRepo    *dynamo.SettingsRepo
	CounterRepo     *dynamo.CounterRepo
	MediaStore      *s3infra.Store
	Thumbnailer     *ffmpeg.Thumbnailer
	JWTProvider     *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(deps.UserRepo, deps.JWTProvider)
	gate := auth.NewGate(deps.JWTProvider, deps.UserRepo)
	userSvc := userapp.NewService(deps.UserRepo, deps.CounterRepo, dynamo.CounterUserID)
	quizSvc := quizapp.NewService(deps.QuizAttemptRepo)
	settingsSvc := settingsapp.NewService(deps.SettingsRepo)
	clipSvc := clipapp.NewService(clipapp.ServiceDeps{
		ClipRepo:       deps.ClipRepo,
		MediaStore:     deps.MediaStore,
		Thumbnailer:    deps.Thumbnailer,
		Settings:       settingsSvc,
		QuizPolicy:     quizSvc,
		IDs:            deps.CounterRepo,
		IDCounter:      dynamo.CounterClipID,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
	})

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(authSvc)
	userH := handler.NewUserHandler(userSvc, authSvc, gate)
	clipH := handler.NewClipHandler(clipSvc, gate, cfg.MaxUploadMB<<20)
	quizH := handler.NewQuizHandler(quizSvc, gate)
	settingsH := handler.NewSettingsHandler(settingsSvc, gate)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no token required) ────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.Post("/users", userH.Register)
		r.Get("/settings", settingsH.Fetch)

		// Anonymous callers get clips without the quiz item; token holders
		// are resolved lazily inside the service.
		r.Get("/clips/random", clipH.Random)
		r.Get("/clips/{clip_id}/media/{kind}", clipH.Media)

		// ── Token-gated routes (resolution happens in each handler) ──────────
		r.Get("/self", userH.GetSelf)
		r.Put("/self", userH.UpdateSelf)
		r.Delete("/self", userH.DeleteSelf)
		r.Post("/quiz-attempts", quizH.Record)

		// Admin-only
		r.Get("/users", userH.List)
		r.Get("/users/{user_id}", userH.Get)
		r.Put("/users/{user_id}", userH.Update)
		r.Delete("/users/{user_id}", userH.Delete)
		r.Post("/clips", clipH.Upload)
		r.Get("/clips", clipH.List)
		r.Get("/clips/{clip_id}", clipH.Get)
		r.Put("/clips/{clip_id}", clipH.Update)
		r.Delete("/clips/{clip_id}", clipH.Delete)
		r.Post("/settings", settingsH.Update)
	})

	return r
}

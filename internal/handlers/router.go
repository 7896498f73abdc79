package handlers

import (
	"net/http"
	"time"

	"pulse-backend/internal/middleware"
	"pulse-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps holds everything the router needs
type Deps struct {
	Users    *services.UserService
	Photos   *services.PhotoService
	Rooms    *services.RoomService
	Teams    *services.TeamService
	Contacts *services.ContactService
	Safety   *services.SafetyService
	Hub      *services.WSHub
	DB       Pinger
	Logger   zerolog.Logger
	Metrics  *middleware.PrometheusMiddleware
	Gatherer prometheus.Gatherer
	Timeout  time.Duration
}

// NewRouter builds the HTTP routes
func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Users)
	userHandler := NewUserHandler(d.Users)
	photoHandler := NewPhotoHandler(d.Photos)
	moderationHandler := NewModerationHandler(d.Photos, d.Safety)
	roomHandler := NewRoomHandler(d.Rooms)
	teamHandler := NewTeamHandler(d.Teams)
	contactHandler := NewContactHandler(d.Contacts)
	safetyHandler := NewSafetyHandler(d.Safety)
	wsHandler := NewWebSocketHandler(d.Hub, d.Users)

	timeout := d.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chiMiddleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Handler)
	}
	r.Use(corsMiddleware)

	// Ops
	r.Get("/healthz", Liveness)
	r.Get("/health", Health(d.DB))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// WebSocket route; long lived, so outside the timeout group
	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(timeout))

		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.Users))

			r.Get("/users/me", userHandler.GetMe)
			r.Patch("/users/me", userHandler.UpdateMe)
			r.Put("/users/me/push-token", userHandler.UpdatePushToken)
			r.Get("/users/{id}", userHandler.GetProfile)

			r.Get("/photos", photoHandler.GetPhotos)
			r.Post("/photos/upload", photoHandler.UploadPhoto)
			r.Post("/photos/{id}/confirm", photoHandler.ConfirmPhoto)
			r.Delete("/photos/{id}", photoHandler.DeletePhoto)

			r.Post("/rooms", roomHandler.CreateRoom)
			r.Get("/rooms", roomHandler.ListRooms)
			r.Post("/rooms/join", roomHandler.JoinRoom)
			r.Get("/rooms/{id}", roomHandler.GetRoom)
			r.Post("/rooms/{id}/leave", roomHandler.LeaveRoom)
			r.Post("/rooms/{id}/start", roomHandler.StartRoom)
			r.Post("/rooms/{id}/next", roomHandler.NextRound)
			r.Post("/rooms/{id}/finish", roomHandler.FinishRoom)

			r.Post("/teams", teamHandler.CreateTeam)
			r.Get("/teams", teamHandler.ListTeams)
			r.Post("/teams/join", teamHandler.JoinTeam)
			r.Get("/teams/{id}", teamHandler.GetTeam)
			r.Post("/teams/{id}/leave", teamHandler.LeaveTeam)
			r.Post("/teams/{id}/lock", teamHandler.LockTeam)
			r.Post("/teams/{id}/unlock", teamHandler.UnlockTeam)
			r.Delete("/teams/{id}/members/{user_id}", teamHandler.KickMember)

			r.Post("/contacts", contactHandler.RequestContact)
			r.Get("/contacts", contactHandler.ListContacts)
			r.Post("/contacts/block", contactHandler.BlockUser)
			r.Post("/contacts/{id}/accept", contactHandler.AcceptContact)
			r.Delete("/contacts/{id}", contactHandler.DeleteContact)

			r.Post("/safety/reports", safetyHandler.Report)

			// Moderator routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireModerator)

				r.Get("/safety/users/{id}/risk", safetyHandler.Risk)
				r.Get("/moderation/photos", moderationHandler.ListPendingPhotos)
				r.Post("/moderation/photos/{id}", moderationHandler.ModeratePhoto)
				r.Get("/moderation/verifications", moderationHandler.ListVerifications)
				r.Post("/moderation/verifications/{id}", moderationHandler.ReviewVerification)
				r.Post("/moderation/users/{id}/suspend", moderationHandler.Suspend)
				r.Post("/moderation/users/{id}/unsuspend", moderationHandler.Unsuspend)
			})
		})
	})

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

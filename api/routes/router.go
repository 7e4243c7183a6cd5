package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elcilc/clicle/api/controllers"
	"github.com/elcilc/clicle/api/middleware"
	"github.com/elcilc/clicle/internal/alarms"
	"github.com/elcilc/clicle/internal/auth"
	"github.com/elcilc/clicle/internal/posts"
	"github.com/elcilc/clicle/pkg/auth/session"
	"github.com/elcilc/clicle/pkg/config"
	"github.com/elcilc/clicle/pkg/db"
	"github.com/elcilc/clicle/pkg/logger"
	"github.com/elcilc/clicle/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	postsService posts.Service,
	alarmsService alarms.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	joinPolicy := middleware.NewAuthRateLimitPolicy(
		"join",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(joinPolicy, redisClient, logg)).Post("/join", controllers.AuthJoin(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/users/me", controllers.AuthMe(authService, logg))
		r.Post("/users/logout", controllers.AuthLogout(authService, logg))

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", controllers.CreatePost(postsService, logg))
			r.Get("/", controllers.ListPosts(postsService, logg))
			r.Get("/my", controllers.ListMyPosts(postsService, logg))
			r.Put("/{postId}", controllers.ModifyPost(postsService, logg))
			r.Delete("/{postId}", controllers.DeletePost(postsService, logg))
			r.Post("/{postId}/comments", controllers.CreateComment(postsService, logg))
			r.Get("/{postId}/comments", controllers.ListComments(postsService, logg))
			r.Post("/{postId}/likes", controllers.LikePost(postsService, logg))
			r.Get("/{postId}/likes", controllers.CountPostLikes(postsService, logg))
		})

		r.Route("/alarms", func(r chi.Router) {
			r.Get("/", controllers.ListAlarms(alarmsService, logg))
			r.Get("/subscribe", controllers.SubscribeAlarms(alarmsService, cfg.Alarm.StreamLifetime, logg))
			r.Post("/{alarmId}/read", controllers.MarkAlarmRead(alarmsService, logg))
			r.Post("/read-all", controllers.MarkAllAlarmsRead(alarmsService, logg))
		})
	})

	return r
}

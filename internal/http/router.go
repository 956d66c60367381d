package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/plantdoctor/internal/cache"
	"github.com/geocoder89/plantdoctor/internal/config"
	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/http/handlers"
	"github.com/geocoder89/plantdoctor/internal/http/middlewares"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "plantdoctor-api"

type UserStore interface {
	handlers.ProfileStore
	handlers.AdminUserStore
}

type CultureStore interface {
	handlers.CultureStore
	handlers.CultureLookup
	handlers.InterestChecker
}

type PlantingStore interface {
	handlers.PlantingStore
	handlers.UserHistoryReader
}

// Deps is everything the router wires into handlers. Prom, Gatherer, Cache
// and Health entries are optional.
type Deps struct {
	Config config.Config
	Log    *slog.Logger

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Tokens   middlewares.TokenVerifier
	Accounts handlers.AccountService

	Users     UserStore
	Cultures  CultureStore
	Plantings PlantingStore
	Posts     handlers.PostStore
	Diagnoses handlers.DiagnosisStore
	Diseases  handlers.DiseaseLookup
	Cache     cache.Store

	Health map[string]handlers.Pinger

	// AuthRateLimit is requests per minute per IP on each auth route.
	AuthRateLimit int
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(serviceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(handlers.WithLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))

	maxBody := d.Config.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(middlewares.MaxBodyBytes(maxBody))

	// health
	health := handlers.NewHealthHandler(d.Health)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authMW := middlewares.NewAuthMiddleware(d.Tokens)
	requireAuth := authMW.RequireAuth()
	requireJSON := middlewares.RequireJSON()

	// per-IP limits on credential endpoints
	authLimit := d.AuthRateLimit
	if authLimit <= 0 {
		authLimit = 10
	}
	limiter := middlewares.NewRateLimiter(authLimit, time.Minute)
	perIP := limiter.RateLimiterMiddleware(middlewares.KeyByIP)

	authH := handlers.NewAuthHandler(d.Accounts, d.Cultures)
	profileH := handlers.NewProfileHandler(d.Users)
	culturesH := handlers.NewCulturesHandler(d.Cultures, d.Cache)
	plantingsH := handlers.NewPlantingsHandler(d.Plantings, d.Cultures)
	diseasesH := handlers.NewDiseasesHandler(d.Diseases)
	postsH := handlers.NewPostsHandler(d.Posts)
	diagnosesH := handlers.NewDiagnosesHandler(d.Diagnoses)
	adminH := handlers.NewAdminUsersHandler(d.Users, d.Plantings)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", perIP, requireJSON, authH.Register)
	authGroup.POST("/login", perIP, requireJSON, authH.Login)
	authGroup.GET("/request-password-reset", perIP, authH.RequestPasswordReset)
	authGroup.POST("/reset-password", perIP, requireJSON, authH.ResetPassword)

	// public catalogs
	api.GET("/cultures", culturesH.List)
	api.GET("/disease-info/:name", diseasesH.Get)

	authed := api.Group("", requireAuth, requireJSON)
	{
		authed.GET("/user/profile", profileH.Get)
		authed.PUT("/user/profile", profileH.Update)

		authed.POST("/user/cultures", culturesH.SetInterests)
		authed.GET("/user/my-cultures", culturesH.Mine)

		authed.POST("/planted-cultures", plantingsH.Create)
		authed.GET("/planted-cultures", plantingsH.List)
		authed.DELETE("/planted-cultures/:id", plantingsH.Delete)
		authed.POST("/planted-cultures/:id/history", plantingsH.AddHistory)
		authed.GET("/planted-cultures/:id/history", plantingsH.ListHistory)

		authed.POST("/posts", postsH.Create)
		authed.GET("/posts", postsH.List)

		authed.POST("/diagnosis", diagnosesH.Create)
		authed.GET("/diagnosis/history", diagnosesH.History)
	}

	admin := api.Group("/admin", requireAuth, authMW.RequireRole(user.RoleAdmin), requireJSON)
	{
		admin.GET("/users", adminH.List)
		admin.PUT("/users", adminH.UpdateRole)
		admin.GET("/users/:id/history", adminH.History)
	}

	return r
}

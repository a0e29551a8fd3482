// Package httpapi wires the Gin transport to the registration services. It
// owns middleware ordering, the CORS and security-header posture for the
// capture client, and the route table under the configured API base path.
package httpapi

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/registro-tarjetas/go-registro-backend/internal/config"
	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
	"github.com/registro-tarjetas/go-registro-backend/internal/http/handlers"
	"github.com/registro-tarjetas/go-registro-backend/internal/http/middleware"
	"github.com/registro-tarjetas/go-registro-backend/internal/repo"
	"github.com/registro-tarjetas/go-registro-backend/internal/services"
)

// directoryRepoShim adapts the repository free functions to the
// services.DirectoryRepo interface expected by the DirectoryService. This
// keeps services decoupled from the concrete repo package while reusing
// existing functions.
type directoryRepoShim struct{}

// FindPersonByCURP proxies repo.FindPersonByCURP.
func (directoryRepoShim) FindPersonByCURP(ctx context.Context, db *gorm.DB, curp string) (*domain.PriorityPerson, error) {
	return repo.FindPersonByCURP(ctx, db, curp)
}

// SearchPersons proxies repo.SearchPersons.
func (directoryRepoShim) SearchPersons(ctx context.Context, db *gorm.DB, subprogram int, query string, limit int) ([]domain.PriorityPerson, error) {
	return repo.SearchPersons(ctx, db, subprogram, query, limit)
}

// CreatePerson proxies repo.CreatePerson.
func (directoryRepoShim) CreatePerson(ctx context.Context, db *gorm.DB, fullName, curp string, subprogram int) (*domain.PriorityPerson, error) {
	return repo.CreatePerson(ctx, db, fullName, curp, subprogram)
}

// FindAuthorizedUser proxies repo.FindAuthorizedUser.
func (directoryRepoShim) FindAuthorizedUser(ctx context.Context, db *gorm.DB, curp string) (*domain.AuthorizedUser, error) {
	return repo.FindAuthorizedUser(ctx, db, curp)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, health and metrics endpoints, and then mounts
// the public API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (image payloads arrive as base64 JSON)
//  6. Metrics
//  7. Rate limiter (per IP)
//  8. CORS and Security headers
//  9. Gzip compression (JPEG base64 bodies compress little, JSON listings a lot)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(cfg.MaxBodyBytes))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers. Responses carry CURPs and registration data, and
	// capture stations are shared machines, so everything is no-store.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	// 9) Compress responses; registration listings and stats are pure JSON
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.MsgRouteNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.MsgMethodNotAllowed)
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in; never expose by default)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	dirSvc := services.NewDirectoryService(db, directoryRepoShim{})
	regSvc := &services.RegistrationService{DB: db}
	h := handlers.New(dirSvc, regSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api"
	api := groupWithPrefix(r, apiBase)
	{
		// Connectivity probe used by capture stations
		api.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success":  true,
				"message":  "Servidor funcionando correctamente",
				"database": filepath.Base(cfg.DBPath),
				"time":     time.Now(),
			})
		})

		// Directory
		api.POST("/persona-nueva", h.NewPerson)
		api.POST("/buscar-persona", h.SearchPersons)
		api.POST("/validate-curp", h.ValidateCURP)

		// Registrations
		api.POST("/registro-credencial", h.RegisterCredential)
		api.GET("/estadisticas", h.Stats)
		api.GET("/registros-recientes", h.RecentRegistrations)
		api.GET("/buscar-registro/:termino", h.LookupRegistration)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

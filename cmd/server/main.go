package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ursalaan/Change-Impact-Forecaster/internal/assessment"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/cache"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/database"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/errors"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/graph"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/monitoring"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/ratelimit"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/types"
)

// assessLimitPerMin caps POST /assess per client IP, tighter than the
// service-wide IP limit since assessments are the expensive path.
const assessLimitPerMin = 30

// appDeps bundles everything the router needs. Tests construct it directly
// with a small in-memory graph and without the optional collaborators.
type appDeps struct {
	graph    *graph.Graph
	assessor *assessment.Assessor
	repo     *database.Repository
	db       *database.DB
	appCache *cache.Cache
	limiter  *ratelimit.RateLimiter
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	port := getEnvOrDefault("PORT", "8080")
	graphPath := getEnvOrDefault("GRAPH_PATH", "./data/dependencies.yaml")
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := getEnvIntOrDefault("REDIS_DB", 0)
	ipLimitPerMin := getEnvIntOrDefault("RATE_LIMIT_PER_MIN", 60)

	// The dependency graph is the only startup I/O; a malformed source is
	// fatal here rather than surfacing per-request.
	depGraph, err := graph.LoadFile(graphPath)
	if err != nil {
		slog.Error("Failed to load dependency graph", "path", graphPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Dependency graph loaded",
		"path", graphPath,
		"services", depGraph.Len(),
		"edges", depGraph.EdgeCount())

	db, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	redisClient, err := ratelimit.NewRedisClient(redisAddr, redisPassword, redisDB)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory rate limiting", "error", err)
	}
	defer redisClient.Close()

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = ipLimitPerMin
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, appMetrics)

	deps := &appDeps{
		graph:    depGraph,
		assessor: assessment.NewAssessor(depGraph),
		repo:     repo,
		db:       db,
		appCache: cache.NewCache(15 * time.Minute),
		limiter:  limiter,
		metrics:  appMetrics,
		logger:   appLogger,
	}

	r := newRouter(deps)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// newRouter builds the full Gin engine. Optional collaborators (repo, cache,
// limiter) may be nil; the corresponding middleware and endpoints degrade
// rather than panic.
func newRouter(deps *appDeps) *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(deps.metrics, deps.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	if deps.limiter != nil {
		r.Use(deps.limiter.IPRateLimitMiddleware())
	}

	if deps.appCache != nil {
		r.Use(deps.appCache.Middleware(deps.metrics))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"graph": gin.H{
				"services": deps.graph.Len(),
				"edges":    deps.graph.EdgeCount(),
			},
			"metrics": deps.metrics.GetStats(),
		})
	})

	assessHandlers := []gin.HandlerFunc{}
	if deps.limiter != nil {
		assessHandlers = append(assessHandlers, deps.limiter.EndpointRateLimitMiddleware("assess", assessLimitPerMin))
	}
	assessHandlers = append(assessHandlers, func(c *gin.Context) {
		start := time.Now()

		var req types.ChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid change request", err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		result, err := deps.assessor.Assess(req)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		deps.metrics.RecordAssessment(result.Level == types.LevelHigh)
		deps.logger.AssessmentLogger(result.ChangeID, result.Score, string(result.Level),
			result.BlastRadius.Count, len(result.MissingInfo), time.Since(start), c.GetBool("cache_hit"))

		// Persist history without blocking the response
		if deps.repo != nil {
			go func() {
				if _, err := deps.repo.SaveAssessment(req, result); err != nil {
					slog.Error("Failed to save assessment", "change_id", result.ChangeID, "error", err)
				}
			}()
		}

		c.JSON(http.StatusOK, result)
	})
	r.POST("/assess", assessHandlers...)

	r.GET("/graph/services", func(c *gin.Context) {
		services := deps.graph.Services()
		c.JSON(http.StatusOK, gin.H{
			"services": services,
			"count":    len(services),
			"edges":    deps.graph.EdgeCount(),
		})
	})

	r.GET("/assessments", func(c *gin.Context) {
		if deps.repo == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assessment history is not available"})
			return
		}

		limit := 50
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
				limit = l
			}
		}

		records, err := deps.repo.ListRecent(limit)
		if err != nil {
			deps.logger.APIErrorLogger(err, "GET", "/assessments", c.ClientIP(), http.StatusInternalServerError)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve assessments"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"assessments": records,
			"count":       len(records),
		})
	})

	r.GET("/assessments/:id", func(c *gin.Context) {
		if deps.repo == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assessment history is not available"})
			return
		}

		record, result, err := deps.repo.GetByID(c.Param("id"))
		if err != nil {
			deps.logger.APIErrorLogger(err, "GET", "/assessments/"+c.Param("id"), c.ClientIP(), http.StatusInternalServerError)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve assessment"})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"record":     record,
			"assessment": result,
		})
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.metrics.GetStats())
	})

	if deps.appCache != nil {
		r.GET("/cache/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, deps.appCache.Stats())
		})
	}

	if deps.limiter != nil {
		r.GET("/ratelimit/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, deps.limiter.GetStats())
		})
	}

	if deps.db != nil {
		r.GET("/pools/database", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"pool":  "database",
				"stats": deps.db.GetPoolStats(),
			})
		})
	}

	return r
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

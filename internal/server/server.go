package server

import (
	"context"
	"net/http"
	"time"

	admindomain "github.com/evalworks/vendoreval/internal/admin/domain"
	authdomain "github.com/evalworks/vendoreval/internal/auth/domain"
	"github.com/evalworks/vendoreval/internal/auth/session"
	"github.com/evalworks/vendoreval/internal/authz"
	"github.com/evalworks/vendoreval/internal/catalog"
	"github.com/evalworks/vendoreval/internal/config"
	evaluationdomain "github.com/evalworks/vendoreval/internal/evaluation/domain"
	"github.com/evalworks/vendoreval/internal/observability"
	obslogger "github.com/evalworks/vendoreval/internal/observability/logger"
	obsmetrics "github.com/evalworks/vendoreval/internal/observability/metrics"
	obstracing "github.com/evalworks/vendoreval/internal/observability/tracing"
	"github.com/evalworks/vendoreval/internal/project"
	reportdomain "github.com/evalworks/vendoreval/internal/report/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(obsCfg, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type ServerParams struct {
	fx.In

	Engine   *gin.Engine
	Cfg      config.Config
	Log      *zap.Logger
	Sessions *session.Manager
	Auth     authdomain.Service
	Authz    authz.Service
	Catalog  catalog.Provider
	Eval     evaluationdomain.Service
	Report   reportdomain.Service
	Admin    admindomain.Service
	Projects project.Service
}

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	log      *zap.Logger
	sessions *session.Manager
	auth     authdomain.Service
	authz    authz.Service
	catalog  catalog.Provider
	eval     evaluationdomain.Service
	report   reportdomain.Service
	admin    admindomain.Service
	projects project.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:   p.Engine,
		cfg:      p.Cfg,
		log:      p.Log.Named("http.server"),
		sessions: p.Sessions,
		auth:     p.Auth,
		authz:    p.Authz,
		catalog:  p.Catalog,
		eval:     p.Eval,
		report:   p.Report,
		admin:    p.Admin,
		projects: p.Projects,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.engine

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/logout", s.handleLogout)
		authGroup.GET("/me", s.RequireSession(), s.handleMe)
	}

	api := r.Group("/api", s.RequireSession())
	{
		api.GET("/catalog", s.handleCatalog)
		api.GET("/suppliers", s.handleSuppliers)
		api.GET("/projects", s.handleProjects)

		api.POST("/evaluations", s.handleSubmitEvaluation)

		reports := api.Group("/reports")
		{
			reports.GET("/averages", s.handleAverages)
			reports.GET("/rankings", s.handleRankings)
			reports.GET("/years", s.handleYears)
		}

		adminGroup := api.Group("/admin")
		{
			adminGroup.GET("/records", s.RequireAdmin(authz.ActionView), s.handleAdminRecords)
			adminGroup.GET("/participation", s.RequireAdmin(authz.ActionView), s.handleAdminParticipation)
			adminGroup.DELETE("/evaluations/:id", s.RequireAdmin(authz.ActionDelete), s.handleDeleteEvaluationByID)
			adminGroup.DELETE("/evaluations", s.RequireAdmin(authz.ActionDelete), s.handleDeleteEvaluationByTuple)
			adminGroup.POST("/purge", s.RequireAdmin(authz.ActionPurge), s.handlePurge)
		}
	}
}

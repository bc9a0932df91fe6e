package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	apikeydomain "github.com/orsta/orsta/internal/apikey/domain"
	"github.com/orsta/orsta/internal/auth/session"
	billingdomain "github.com/orsta/orsta/internal/billing/domain"
	"github.com/orsta/orsta/internal/config"
	instancedomain "github.com/orsta/orsta/internal/instance/domain"
	"github.com/orsta/orsta/internal/observability"
	obsmiddleware "github.com/orsta/orsta/internal/observability/logger"
	obsmetrics "github.com/orsta/orsta/internal/observability/metrics"
	userdomain "github.com/orsta/orsta/internal/user/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
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

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	sessions    *session.Manager
	usersvc     userdomain.Service
	instanceSvc instancedomain.Service
	billingSvc  billingdomain.Service
	apiKeySvc   apikeydomain.Service
	log         *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Sessions    *session.Manager
	Usersvc     userdomain.Service
	InstanceSvc instancedomain.Service
	BillingSvc  billingdomain.Service
	APIKeySvc   apikeydomain.Service
	Log         *zap.Logger
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		sessions:    p.Sessions,
		usersvc:     p.Usersvc,
		instanceSvc: p.InstanceSvc,
		billingSvc:  p.BillingSvc,
		apiKeySvc:   p.APIKeySvc,
		log:         p.Log.Named("server"),
	}

	svc.registerAuthRoutes()
	svc.registerInstanceRoutes()
	svc.registerBillingRoutes()
	svc.registerAPIKeyRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerInstanceRoutes() {
	instances := s.engine.Group("/instances", s.AuthRequired())

	instances.GET("", s.ListInstances)
	instances.POST("", s.CreateInstance)
	instances.PATCH("/:id/activate", s.ActivateInstance)
	instances.PATCH("/:id/deactivate", s.DeactivateInstance)
}

func (s *Server) registerBillingRoutes() {
	billing := s.engine.Group("/billing", s.AuthRequired())

	billing.GET("", s.BillingSummary)
	billing.GET("/account", s.BillingAccount)
}

func (s *Server) registerAPIKeyRoutes() {
	s.engine.POST("/apikey/activate", s.AuthRequired(), s.ActivateAPIKey)
}

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	v1 "boqdesk/internal/api/v1"
	"boqdesk/internal/config"
	"boqdesk/internal/importer"
	"boqdesk/internal/metrics"
	"boqdesk/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	v1     *v1.Handler
	log    logrus.FieldLogger
	http   *http.Server
}

// NewServer 创建服务器；store 的生命周期由调用方管理
func NewServer(cfg *config.AppConfig, st *store.Store, log *logrus.Logger) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	coordinator := importer.NewCoordinator(importer.Dependencies{
		References: st,
		Events:     st,
		Tasks:      st,
		Attempts:   st,
		Notifier:   st,
	}, ImportOptions(cfg.Import), log)

	handlerOpts := v1.Options{
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		MaxConfirmRows: cfg.Import.MaxRows,
	}
	s := &Server{
		router: gin.New(),
		store:  st,
		v1:     v1.NewHandler(coordinator, st, handlerOpts, log),
		log:    log,
	}
	s.setupRoutes(cfg)
	return s
}

// ImportOptions 配置到导入选项的映射
func ImportOptions(c config.ImportConfig) importer.Options {
	return importer.Options{
		MaxRows:                  c.MaxRows,
		ParallelThreshold:        c.ParallelThreshold,
		Workers:                  c.Workers,
		AssignDepartmentFallback: c.AssignDepartmentFallback,
	}
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(cfg *config.AppConfig) {
	s.router.Use(gin.Recovery(), RequestLogger(s.log), metrics.Middleware(), CORS())

	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", metrics.Handler())

	api := s.router.Group("/api")
	api.Use(RequireAdmin(cfg.Auth.JWTSecret))
	{
		s.v1.RegisterRoutes(api)
	}
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Handler 返回底层 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，阻塞直到 Shutdown 或出错
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

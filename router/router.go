package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"

	"github.com/vela-games/lfsbatch/app"
	"github.com/vela-games/lfsbatch/exporter"
	"github.com/vela-games/lfsbatch/handlers"
)

type Router struct {
	engine *gin.Engine
}

func NewRouter(debugMode bool) Router {
	if debugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	gin := gin.Default()
	gin.Use(cors.Default())

	return Router{
		engine: gin,
	}
}

func (r Router) InitRoutes(appContext *app.Context) {
	healthHandler := handlers.HealthHandler{Config: appContext.Runtime}

	r.engine.Use(gzip.Gzip(gzip.DefaultCompression))
	r.engine.GET("/health", healthHandler.Get)
	r.engine.POST(handlers.BatchPath, AuthMiddleware(appContext.Gateway), appContext.LFSHandler.PostBatch)

	if appContext.Settings.EnablePrometheusExporter {
		r.engine.GET("/metrics", exporter.PrometheusHandler())
	}
}

func (r Router) Run(ctx context.Context, portBinding string) error {
	srv := &http.Server{
		Addr:              portBinding,
		Handler:           r.engine,
		IdleTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go r.listen(srv)
	logger.Infof("listening on %s", portBinding)
	<-ctx.Done()
	logger.Info("shutting down server")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(timeoutCtx); err != nil {
		return err
	}

	return nil
}

func (r Router) listen(srv *http.Server) {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("error trying to listen: %s", err)
	}
}

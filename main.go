package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"valsia/internal/app/middleware"
	"valsia/internal/app/repositories"
	"valsia/internal/app/routers"
	"valsia/internal/app/services"
	"valsia/internal/app/views"
	"valsia/internal/pkg/logging"
	"valsia/internal/pkg/metrics"
	"valsia/internal/pkg/storage"
	"valsia/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(conf.Server)
	metrics.Register()
	if !conf.Server.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := services.NewGenerator(conf)
	if err != nil {
		log.Fatal(err)
	}

	var history services.HistoryStore = services.NoopHistory{}
	if conf.Mysql.Enabled() {
		db, err := storage.OpenMysql(conf.Mysql, conf.Server.IsDev())
		if err != nil {
			log.Fatalf("open mysql: %v", err)
		}
		history = repositories.NewGenerationRepository(db)
	}

	deps := routers.Deps{
		Learning:   services.NewLearningService(generator, history, conf),
		Presenter:  views.NewPresenter(nil, nil),
		RateWindow: conf.Server.RateWindow,
	}
	if conf.Redis.Enabled() {
		client, err := storage.OpenRedis(ctx, conf.Redis)
		if err != nil {
			log.Fatalf("open redis: %v", err)
		}
		defer client.Close()
		if conf.Server.RateLimit > 0 {
			deps.Limiter = middleware.NewRedisLimiter(client, conf.Server.RateLimit, conf.Server.RateWindow)
		}
		if conf.Server.InflightTTL > 0 {
			deps.Locker = middleware.NewRedsyncLocker(client, conf.Server.InflightTTL)
		}
	} else {
		if conf.Server.RateLimit > 0 {
			deps.Limiter = middleware.NewMemoryLimiter(conf.Server.RateLimit, conf.Server.RateWindow)
		}
		if conf.Server.InflightTTL > 0 {
			deps.Locker = middleware.NewMemoryLocker()
		}
	}

	srv := &http.Server{
		Addr:              conf.Server.Addr,
		Handler:           routers.SetUp(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("valsia listening on %s (upstream %s)", conf.Server.Addr, conf.Upstream.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

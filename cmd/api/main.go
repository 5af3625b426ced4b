package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doacao-platform/internal/config"
	"doacao-platform/internal/enhance"
	"doacao-platform/internal/handlers"
	"doacao-platform/internal/ledger"
	"doacao-platform/internal/logger"
	"doacao-platform/internal/metrics"
	"doacao-platform/internal/models"
	"doacao-platform/internal/notify"
	"doacao-platform/internal/session"
	"doacao-platform/internal/store"
	"doacao-platform/internal/upload"
	ws "doacao-platform/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load Configuration
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal("cannot load config: ", err)
	}

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("cannot build logger: ", err)
	}
	defer lg.Sync()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg.Info("starting donation platform server", zap.String("store", cfg.StoreDriver))

	// Open the durable store
	dsn := cfg.DSN
	if cfg.StoreDriver == "redis" {
		dsn = cfg.RedisURL
	}
	kv, err := store.Open(cfg.StoreDriver, dsn)
	if err != nil {
		return err
	}
	defer kv.Close()

	m := metrics.New("doacao")

	hub := ws.NewHub(lg)
	hub.OnCount = func(n int) { m.WSConnections.Set(float64(n)) }
	go hub.Run(ctx)

	sessions := session.New(kv, lg, session.Options{
		LoginDelay:    cfg.LoginDelay,
		RegisterDelay: cfg.RegisterDelay,
	})
	defer sessions.Close()
	sessions.Restore(ctx)

	center := notify.New(ctx, kv, notify.NewServerPlatform(cfg.NotificationsEnabled, lg), hub, lg,
		notify.WithDeliveryHook(func(path string) {
			m.Notifications.WithLabelValues(path).Inc()
		}),
	)

	var seed []models.HelpRequest
	if cfg.SeedLedger {
		seed = ledger.SeedRequests(time.Now())
	}
	requests := ledger.New(seed, lg,
		ledger.WithDonationHook(m.ObserveDonation),
		ledger.WithDonationHook(func(req models.HelpRequest, amount float64) {
			if user, ok := sessions.CurrentUser(); ok && user.ID == req.UserID {
				center.NotifyRequestUpdate(req, amount)
			}
		}),
	)

	if gin.Mode() == gin.DebugMode && cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.Deps{
		Session:      sessions,
		Ledger:       requests,
		Notify:       center,
		Hub:          hub,
		Enhancer:     enhance.New(cfg.EnhanceAPIKey, cfg.EnhanceModel, cfg.EnhanceURL, lg),
		Uploader:     upload.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, lg),
		UploadBucket: cfg.UploadBucket,
		Metrics:      m,
		JWTSecret:    cfg.JWTSecret,
		Log:          lg,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

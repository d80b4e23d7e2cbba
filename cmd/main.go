package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ray-remotestate/dinein/config"
	"github.com/ray-remotestate/dinein/database"
	"github.com/ray-remotestate/dinein/database/dbhelper"
	"github.com/ray-remotestate/dinein/handlers"
	"github.com/ray-remotestate/dinein/imagehost"
	"github.com/ray-remotestate/dinein/middlewares"
	"github.com/ray-remotestate/dinein/realtime"
	"github.com/ray-remotestate/dinein/server"
	"github.com/ray-remotestate/dinein/services"
	"github.com/ray-remotestate/dinein/verify"
)

const shutdownTimeOut = 10 * time.Second

func setupLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config, error: %v", err)
	}
	log := setupLogger(cfg)

	// prices and totals go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.ConnectAndMigrate(cfg.DatabaseURL, cfg.RunMigrations)
	if err != nil {
		log.Panicf("failed to initialize database, error: %v", err)
	}
	log.Info("database is ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(log)
	var (
		pub   realtime.Publisher = hub
		relay *realtime.AMQPRelay
	)
	if cfg.AMQPURL != "" {
		relay, err = realtime.DialAMQP(cfg.AMQPURL, hub, log)
		if err != nil {
			log.Panicf("failed to connect to rabbitmq, error: %v", err)
		}
		pub = relay
	} else {
		log.Info("AMQP_URL not set, events stay within this instance")
	}

	var uploader services.ImageUploader
	if cfg.ImageUploadsEnabled() {
		uploader = imagehost.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.UploadPreset)
	}
	var verifier services.PhoneVerifier
	if cfg.SMSEnabled() {
		verifier = verify.NewTwilioClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.VerifyServiceSID)
	}

	store := dbhelper.NewStore(db)
	h := &handlers.Handler{
		Auth:        services.NewAuthService(store, []byte(cfg.SecretKey), cfg.TokenTTL, log),
		Restaurants: services.NewRestaurantService(store),
		Tables:      services.NewTableService(store, pub, log),
		Menu:        services.NewMenuService(store, uploader, pub, log),
		Orders:      services.NewOrderService(store, store, pub, log),
		Bills:       services.NewBillService(store, store, store, pub, log),
		Waiters:     services.NewWaiterService(store, store, pub, log),
		Reports:     services.NewReportService(store),
		Phone:       services.NewPhoneService(verifier, log),
	}
	sessions := func(ctx context.Context, restaurantID uuid.UUID, otp string) error {
		_, err := h.Tables.VerifyOTP(ctx, restaurantID, otp)
		return err
	}
	ws := realtime.NewWSHandler(hub, pub, sessions, cfg.AllowedOrigins, log)
	srv := server.SetupRoutes(h, middlewares.NewAuthenticator([]byte(cfg.SecretKey)), ws, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.Port).Info("server is running")
		return srv.Run(cfg.Port)
	})
	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		return srv.Shutdown(shutdownTimeOut)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped with error")
	}

	if relay != nil {
		if err := relay.Close(); err != nil {
			log.WithError(err).Error("failed to close rabbitmq connection")
		}
	}
	if err := database.Shutdown(db); err != nil {
		log.WithError(err).Error("failed to close database connection!")
	}
	log.Info("system is shut ..zzz")
}

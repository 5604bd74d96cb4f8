package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"big4-auction-service/internal/adapters/broadcaster"
	"big4-auction-service/internal/adapters/db"
	"big4-auction-service/internal/adapters/dedupe"
	"big4-auction-service/internal/adapters/memory"
	"big4-auction-service/internal/adapters/redis"
	"big4-auction-service/internal/adapters/rest"
	"big4-auction-service/internal/adapters/scheduler"
	"big4-auction-service/internal/adapters/stripe"
	"big4-auction-service/internal/adapters/ws"
	"big4-auction-service/internal/app"
	"big4-auction-service/internal/config"
	"big4-auction-service/internal/ports/outbound"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	initLogging(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().Msg("Starting Big4 Auction Service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, closeStorage := openStorage(ctx, cfg)
	defer closeStorage()

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	log.Info().Msg("Redis connection established")

	redisBroadcaster := broadcaster.NewBroadcaster(broadcaster.RedisBroadcasterParams{
		RedisClient: redisClient,
		Logger:      log.Logger,
	})
	defer redisBroadcaster.Close()

	localDedupe, err := dedupe.NewLRU(cfg.Webhook.DedupeCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create webhook dedupe cache")
	}
	webhookDedupe := dedupe.NewTiered(dedupe.TieredParams{
		Local:  localDedupe,
		Shared: dedupe.NewRedis(redisClient, cfg.Webhook.ProcessingTTL, cfg.Webhook.DedupeTTL),
		Logger: log.Logger,
	})

	var provider outbound.PaymentProvider
	if cfg.Stripe.Enabled() {
		provider = stripe.NewGateway(stripe.GatewayParams{
			Config: stripe.Config{
				SecretKey:      cfg.Stripe.SecretKey,
				PublishableKey: cfg.Stripe.PublishableKey,
				WebhookSecret:  cfg.Stripe.WebhookSecret,
			},
			Logger: log.Logger,
		})
		log.Info().Msg("Payment provider enabled")
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, card registration is disabled")
	}

	listingService := app.NewListingService(app.ListingServiceParams{
		ItemRepo:          repos.Items,
		UserRepo:          repos.Users,
		CategoryRepo:      repos.Categories,
		PaymentMethodRepo: repos.PaymentMethods,
		Broadcaster:       redisBroadcaster,
		Logger:            log.Logger,
	})
	bidService := app.NewBidService(app.BidServiceParams{
		BidRepo:          repos.Bids,
		ItemRepo:         repos.Items,
		UserRepo:         repos.Users,
		NotificationRepo: repos.Notifications,
		Broadcaster:      redisBroadcaster,
		MaxRetries:       cfg.Auction.BidMaxRetries,
		Logger:           log.Logger,
	})
	settlementService := app.NewSettlementService(app.SettlementServiceParams{
		ItemRepo:          repos.Items,
		BidRepo:           repos.Bids,
		SettlementRepo:    repos.Settlements,
		PaymentMethodRepo: repos.PaymentMethods,
		NotificationRepo:  repos.Notifications,
		Broadcaster:       redisBroadcaster,
		PaymentMethod:     cfg.Auction.PaymentMethod,
		MaxRetries:        cfg.Auction.BidMaxRetries,
		Logger:            log.Logger,
	})
	accountService := app.NewAccountService(app.AccountServiceParams{
		UserRepo: repos.Users,
		Logger:   log.Logger,
	})
	notificationService := app.NewNotificationService(app.NotificationServiceParams{
		NotificationRepo: repos.Notifications,
		Logger:           log.Logger,
	})
	feedbackService := app.NewFeedbackService(app.FeedbackServiceParams{
		FeedbackRepo: repos.Feedback,
		ReportRepo:   repos.Reports,
		UserRepo:     repos.Users,
		ItemRepo:     repos.Items,
		Logger:       log.Logger,
	})
	paymentService := app.NewPaymentService(app.PaymentServiceParams{
		Provider:         provider,
		Dedupe:           webhookDedupe,
		UserRepo:         repos.Users,
		CardLinkRepo:     repos.CardLinks,
		NotificationRepo: repos.Notifications,
		Logger:           log.Logger,
	})

	log.Info().Msg("Business services initialized")

	closeScheduler := scheduler.NewCloseScheduler(scheduler.CloseSchedulerParams{
		RedisClient: redisClient,
		Closer:      settlementService,
		ItemRepo:    repos.Items,
		Interval:    cfg.Auction.SchedulerInterval,
		Logger:      log.Logger,
	})
	listingService.SetScheduler(closeScheduler)
	closeScheduler.Start()
	log.Info().Msg("Close scheduler started")

	wsHandler := ws.NewHandler(ws.WsHandlerParams{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ListingService: listingService,
		BidService:     bidService,
		Broadcaster:    redisBroadcaster,
		Logger:         log.Logger,
	})

	server := rest.NewServer(rest.ServerParams{
		Config: cfg,
		Services: rest.Services{
			Listing:       listingService,
			Bids:          bidService,
			Settlement:    settlementService,
			Accounts:      accountService,
			Notifications: notificationService,
			Feedback:      feedbackService,
			Payments:      paymentService,
		},
		WebSocket: wsHandler.HandleWebSocket,
		Logger:    log.Logger,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	closeScheduler.Stop()
	log.Info().Msg("Close scheduler stopped")

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping HTTP server")
	}

	log.Info().Msg("Graceful shutdown completed")
}

// openStorage selects the repository backend named by STORAGE_DRIVER
func openStorage(ctx context.Context, cfg *config.Config) (outbound.Repositories, func()) {
	if cfg.Database.InMemory() {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return memory.NewStore().Repositories(), func() {}
	}

	dbConn, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := dbConn.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}
	log.Info().Msg("Database connection established")

	return db.NewRepositoryFactory(dbConn).GetAllRepositories(), func() {
		if err := dbConn.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

func initLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &log.Logger
}

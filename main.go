package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katatrina/gundam-notification/api"
	"github.com/katatrina/gundam-notification/internal/alert"
	"github.com/katatrina/gundam-notification/internal/changefeed"
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/db/sqlite"
	"github.com/katatrina/gundam-notification/internal/event"
	"github.com/katatrina/gundam-notification/internal/gateway"
	"github.com/katatrina/gundam-notification/internal/mirror"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/katatrina/gundam-notification/internal/ratelimit"
	"github.com/katatrina/gundam-notification/internal/retention"
	"github.com/katatrina/gundam-notification/internal/token"
	"github.com/katatrina/gundam-notification/internal/util"
	"github.com/katatrina/gundam-notification/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	
	_ "github.com/katatrina/gundam-notification/docs"
)

const shutdownTimeout = 10 * time.Second

//	@title			Gundam Notification API
//	@version		1.0.0
//	@description	Realtime notification service of the Gundam Platform

//	@host		localhost:8080
//	@BasePath	/
//	@schemes	http https

//	@securityDefinitions.apikey	accessToken
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	
	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}
	
	log.Info().Msg("configurations loaded successfully ✅")
	
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	
	store, closeStore := openStore(ctx, config)
	defer closeStore()
	
	alerter := newAlerter(config)
	
	var (
		sinks       []event.Sink
		serviceOpts []notification.Option
	)
	if config.FirebaseCredentials != "" {
		firestoreMirror, err := mirror.NewFirestoreMirror(ctx, config.FirebaseCredentials)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create firestore mirror 😣")
		}
		defer firestoreMirror.Close()
		
		sinks = append(sinks, firestoreMirror)
		serviceOpts = append(serviceOpts, notification.WithReadStateMirror(firestoreMirror))
		log.Info().Msg("Firestore mirror created successfully ✅")
	}
	
	broker := event.NewBroker(sinks...)
	
	// Chỉ một đường publish: trực tiếp từ service hoặc từ change feed
	var publisher event.Publisher
	if config.DeliveryMode == util.DeliveryModeDirect {
		publisher = broker
	}
	notificationService := notification.NewService(store, publisher, serviceOpts...)
	
	verifier := newVerifier(config)
	if closer, ok := verifier.(io.Closer); ok {
		defer closer.Close()
	}
	
	var (
		gatewayOpts     []gateway.Option
		taskDistributor worker.TaskDistributor
		taskInspector   worker.TaskInspector
		taskProcessor   *worker.RedisTaskProcessor
	)
	if config.RedisServerAddress != "" {
		redisDb := redis.NewClient(&redis.Options{
			Addr:     config.RedisServerAddress,
			Password: "", // no password set
			DB:       0,  // use default DB
		})
		defer redisDb.Close()
		
		if err := redisDb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis 😣")
		}
		log.Info().Msg("connected to redis ✅")
		
		limiter := ratelimit.NewAttemptLimiter(redisDb,
			ratelimit.WithPrefix("ratelimit:ws_auth"),
			ratelimit.WithLimit(config.AuthMaxFailedAttempts, config.AuthFailedWindow),
		)
		gatewayOpts = append(gatewayOpts, gateway.WithAuthLimiter(limiter))
		
		redisOpt := asynq.RedisClientOpt{Addr: config.RedisServerAddress}
		taskDistributor = worker.NewTaskDistributor(redisOpt)
		defer taskDistributor.Close()
		taskInspector = worker.NewTaskInspector(redisOpt)
		defer taskInspector.Close()
		taskProcessor = worker.NewRedisTaskProcessor(redisOpt, notificationService)
	} else {
		log.Warn().Msg("REDIS_SERVER_ADDRESS is not set: authentication throttling and background tasks are disabled")
	}
	
	gw := gateway.New(notificationService, verifier, broker, gatewayOpts...)
	
	var listener *changefeed.Listener
	if config.DeliveryMode == util.DeliveryModeChangeFeed {
		listener, err = changefeed.NewListener(ctx, config.DatabaseURL, store, broker, changefeed.WithAlerter(alerter))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start change feed listener 😣")
		}
		defer listener.Close()
		log.Info().Msg("change feed listener started ✅")
	}
	
	var purger *retention.Purger
	if config.NotificationRetention > 0 {
		purger, err = retention.NewPurger(store, config.NotificationRetention)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create retention purger 😣")
		}
	}
	
	server := api.NewServer(&config, store, notificationService, gw, broker, verifier, taskDistributor, taskInspector)
	httpServer := &http.Server{
		Addr:    config.HTTPServerAddress,
		Handler: server.Handler(),
		// Hijacked websockets and SSE streams are not closed by Shutdown;
		// they end when this context is cancelled.
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	
	group, ctx := errgroup.WithContext(ctx)
	
	group.Go(func() error {
		broker.Run(ctx)
		return nil
	})
	
	group.Go(func() error {
		log.Info().Str("address", config.HTTPServerAddress).Msg("HTTP server started ✅")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	
	group.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down HTTP server")
		
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	
	if listener != nil {
		group.Go(func() error {
			return listener.Run(ctx)
		})
	}
	
	if taskProcessor != nil {
		if err := taskProcessor.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start task processor 😣")
		}
		log.Info().Msg("task processor started ✅")
		
		group.Go(func() error {
			<-ctx.Done()
			taskProcessor.Shutdown()
			return nil
		})
	}
	
	if purger != nil {
		if err := purger.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start retention purger 😣")
		}
		log.Info().Dur("retention", config.NotificationRetention).Msg("retention purger started ✅")
		
		group.Go(func() error {
			<-ctx.Done()
			return purger.Stop()
		})
	}
	
	if err := group.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error 😣")
	}
	log.Info().Msg("server stopped gracefully ✅")
}

// openStore connects to the configured database and returns the store with a
// function releasing it.
func openStore(ctx context.Context, config util.Config) (db.Store, func()) {
	if config.DatabaseDriver == util.DatabaseDriverSQLite {
		store, err := sqlite.NewStore(config.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite db 😣")
		}
		log.Info().Str("path", config.DatabaseURL).Msg("opened sqlite db ✅")
		
		return store, func() { store.Close() }
	}
	
	// Create connection pool
	connPool, err := pgxpool.New(ctx, config.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to validate db connection string 😣")
	}
	
	pingErr := connPool.Ping(ctx)
	if pingErr != nil {
		log.Fatal().Err(pingErr).Msg("failed to connect to db 😣")
	}
	log.Info().Msg("connected to db ✅")
	
	return db.NewStore(connPool), connPool.Close
}

func newAlerter(config util.Config) alert.Notifier {
	if config.DiscordBotToken == "" || config.DiscordChannelID == "" {
		return alert.LogNotifier{}
	}
	
	notifier, err := alert.NewDiscordNotifier(config.DiscordBotToken, config.DiscordChannelID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Discord notifier 😣")
	}
	log.Info().Msg("Discord notifier created successfully ✅")
	return notifier
}

func newVerifier(config util.Config) token.Verifier {
	if config.AuthVerifyURL != "" {
		log.Info().Str("url", config.AuthVerifyURL).Msg("using remote token verifier ✅")
		return token.NewRemoteVerifier(config.AuthVerifyURL)
	}
	
	tokenMaker, err := token.NewJWTMaker(config.TokenSecretKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token maker 😣")
	}
	log.Info().Msg("Token maker created successfully ✅")
	return token.NewMakerVerifier(tokenMaker)
}

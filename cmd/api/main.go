package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/auth"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/blob"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/config"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/db"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/logger"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/realtime"
	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger level comes from config, so fall back to the default one
		logger.New("info").Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// Initialize database
	dbClient, err := db.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal("failed to connect to DB", zap.Error(err))
	}
	defer func() {
		_ = dbClient.Close(context.Background())
	}()

	// Ensure indexes exist
	if err := dbClient.CreateIndexes(ctx); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}

	// Token signing: JWT_KEYS enables rotation, JWT_SECRET is the single-key form.
	var jwtMgr *auth.JWTManager
	if len(cfg.JWTKeys) > 0 {
		jwtMgr = auth.NewJWTManagerFromKeys(cfg.JWTKeys, cfg.JWTActiveKid, cfg.TokenTTL)
	} else {
		jwtMgr = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	}

	// Sessions signed out on one instance must be rejected by all of them,
	// so Redis is preferred when configured.
	var revocations auth.RevocationStore = auth.NewMemoryRevocations()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("failed to reach Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		revocations = auth.NewRedisRevocations(rdb)
		log.Info("using redis session revocation", zap.String("addr", cfg.RedisAddr))
	}

	hub := realtime.NewHub(realtime.DefaultBuffer, log.Named("hub"))
	if cfg.NatsURL != "" {
		relay, err := realtime.DialNATS(cfg.NatsURL, hub, log.Named("relay"))
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.String("url", cfg.NatsURL), zap.Error(err))
		}
		defer func() { _ = relay.Close() }()
		log.Info("relaying changes over NATS", zap.String("subject", realtime.Subject))
	}

	blobs := blob.NewStore(dbClient.BlobBucket(), cfg.PublicBaseURL, int(cfg.MaxUploadBytes))

	srv := newServer(serverDeps{
		Accounts:    data.NewAccountsStore(dbClient.AccountsCollection()),
		Users:       data.NewUsersStore(dbClient.UsersCollection()),
		Messages:    data.NewMessagesStore(dbClient.MessagesCollection()),
		Recent:      data.NewRecentStore(dbClient.RecentMessagesCollection()),
		Blobs:       blobs,
		Auth:        jwtMgr,
		Revocations: revocations,
		Hub:         hub,
		Log:         log,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	// Create limiter store (small burst to allow a couple of quick retries)
	limiterStore := middleware.NewLimiterStore(cfg.RateLimitRPM, 3, 1*time.Minute)
	defer limiterStore.Stop()

	authn := &authenticator{jwt: jwtMgr, revocations: revocations, log: log}

	// base64 inflates uploads by a third
	maxMsg := int(cfg.MaxUploadBytes)*2 + 1<<20
	serverOpts := []grpc.ServerOption{grpc.MaxRecvMsgSize(maxMsg)}

	if cfg.TLSCert != "" && cfg.TLSKey != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			log.Fatal("failed to load TLS certs", zap.Error(err))
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
	}

	serverOpts = append(serverOpts,
		grpc.ChainUnaryInterceptor(
			metrics.UnaryInterceptor(),
			middleware.RateLimitUnaryInterceptor(limiterStore, publicMethods, log),
			authUnaryInterceptor(authn),
		),
		grpc.ChainStreamInterceptor(
			metrics.StreamInterceptor(),
			authStreamInterceptor(authn),
		),
	)

	grpcServer := grpc.NewServer(serverOpts...)
	registerService(grpcServer, srv)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1.ServiceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}

	go func() {
		log.Info("gRPC server listening", zap.String("addr", lis.Addr().String()), zap.String("service", v1.ServiceName))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("gRPC server exit", zap.Error(err))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           newHTTPRouter(blobs, dbClient.Ping, reg, log.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server exit", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	// open watch streams only end with their clients, so stop hard on timeout
	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
}

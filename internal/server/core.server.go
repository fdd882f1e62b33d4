package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"solarcredits-service/internal/chains/ethereum"
	"solarcredits-service/internal/config"
	hrest "solarcredits-service/internal/handler/http"
	wshandler "solarcredits-service/internal/handler/ws"
	"solarcredits-service/internal/pub"
	"solarcredits-service/internal/repository"
	"solarcredits-service/internal/router"
	"solarcredits-service/internal/storage"
	"solarcredits-service/internal/usecase"
	"solarcredits-service/internal/wallet"
	"solarcredits-service/pkg/notifier/ws"
	"solarcredits-service/shared/auth/middleware"
	"solarcredits-service/shared/auth/pkg/jwtutil"
)

// Server holds the HTTP and gRPC listeners plus everything they need closed on shutdown.
type Server struct {
	HTTP *http.Server

	grpcServer *grpc.Server
	grpcAddr   string
	health     *healthReporter
	watcher    *ethereum.Watcher
	cancel     context.CancelFunc
	closers    []func()
	logger     *zap.Logger
}

// NewServer wires repositories, the wallet layer, usecases and transports.
func NewServer(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*Server, error) {
	logger.Info("Starting solarcredits service",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("grpc_addr", cfg.GRPCAddr))

	bg, cancel := context.WithCancel(context.Background())
	s := &Server{grpcAddr: cfg.GRPCAddr, cancel: cancel, logger: logger}

	// --- DB connection ---
	dbpool, err := config.ConnectDB(ctx, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s.closers = append(s.closers, dbpool.Close)

	// --- Redis client ---
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.RedisAddr,
		Password:        cfg.RedisPass,
		DB:              cfg.RedisDB,
		PoolSize:        100,
		MinIdleConns:    10,
		MaxRetries:      3,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: 30 * time.Minute,
	})
	s.closers = append(s.closers, func() { _ = rdb.Close() })

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	redisUp := rdb.Ping(pingCtx).Err() == nil
	pingCancel()
	if redisUp {
		logger.Info("Redis connected", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	} else {
		logger.Warn("Redis connection failed, realtime events and rate limiting disabled", zap.String("addr", cfg.RedisAddr))
	}

	// --- Bill storage ---
	var bills storage.BillStore
	if cfg.MinIO.Enabled {
		store, err := storage.NewMinIOStorage(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		}, logger)
		if err != nil {
			logger.Warn("MinIO unavailable, bills will not be stored", zap.Error(err))
		} else {
			bills = store
		}
	}

	// --- Event publishers ---
	var publishers []usecase.EventPublisher
	var subscriber wshandler.Subscriber
	if redisUp {
		realtime := pub.NewTransactionEventPublisher(rdb, logger)
		publishers = append(publishers, realtime)
		subscriber = realtime
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) > 0 {
		writer := pub.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		s.closers = append(s.closers, func() { _ = writer.Close() })
		publishers = append(publishers, pub.NewTransactionStream(writer, logger))
		logger.Info("Kafka writer initialized",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	// --- Wallet layer ---
	network := ethereum.ArbitrumSepolia()
	if cfg.Chain.RPCURL != "" {
		network.RPCURLs = []string{cfg.Chain.RPCURL}
	}
	if common.IsHexAddress(cfg.Chain.TokenAddress) {
		network.TokenAddress = common.HexToAddress(cfg.Chain.TokenAddress)
	}

	var provider ethereum.Provider
	rpcProvider, err := ethereum.NewRPCProvider(ctx, cfg.Chain.ProviderURL, logger)
	switch {
	case errors.Is(err, ethereum.ErrProviderMissing):
		logger.Warn("No wallet provider configured, wallet operations will fail with provider missing")
	case err != nil:
		s.Close()
		return nil, fmt.Errorf("failed to connect wallet provider: %w", err)
	default:
		provider = rpcProvider
		s.closers = append(s.closers, rpcProvider.Close)
	}

	wallets := wallet.NewManager(provider, wallet.Config{
		Network:          network,
		RepairBeforeSend: cfg.Chain.RepairBeforeSend,
		RepairDelay:      cfg.Chain.RepairDelay,
		ReceiptInterval:  cfg.Chain.ReceiptInterval,
		ReceiptAttempts:  cfg.Chain.ReceiptAttempts,
		MintDelay:        cfg.Chain.MintDelay,
		GasBufferPercent: int64(cfg.Chain.GasBufferPercent),
	}, logger)

	// --- WS hub ---
	hub := ws.NewManager(logger)
	go hub.Heartbeat(bg, 30*time.Second)

	if provider != nil {
		s.watcher = ethereum.NewWatcher(provider, cfg.Chain.WatcherInterval, logger)
		s.watcher.Subscribe(wallets.HandleEvent)
		s.watcher.Subscribe(pushWalletState(wallets, hub))
		go s.watcher.Start(bg)
	}

	// --- Repositories ---
	txRepo := repository.NewTransactionRepository(dbpool)
	verificationRepo := repository.NewVerificationRepository(dbpool)
	listingRepo := repository.NewListingRepository(dbpool)
	profileRepo := repository.NewProfileRepository(dbpool)
	creditRepo := repository.NewCreditRepository(dbpool)

	// --- Usecases ---
	txUC := usecase.NewTransactionUsecase(txRepo, logger, publishers...)
	walletUC := usecase.NewWalletUsecase(wallets, profileRepo, logger)
	verificationUC := usecase.NewVerificationUsecase(verificationRepo, bills, wallets, cfg.VerificationDelay, logger)
	marketplaceUC := usecase.NewMarketplaceUsecase(listingRepo, txUC, wallets, logger)
	creditUC := usecase.NewCreditUsecase(creditRepo, verificationRepo, txUC, wallets, logger)

	// --- Handlers ---
	handlers := router.Handlers{
		Wallet:       hrest.NewWalletHandler(walletUC, logger),
		Verification: hrest.NewVerificationHandler(verificationUC, logger),
		Marketplace:  hrest.NewMarketplaceHandler(marketplaceUC, logger),
		Credit:       hrest.NewCreditHandler(creditUC, logger),
		Transaction:  hrest.NewTransactionHandler(txUC, logger),
		WS:           wshandler.NewWSHandler(hub, subscriber, logger),
	}

	verifier := jwtutil.NewVerifier(jwtutil.JWTConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})
	auth := middleware.NewAuthMiddleware(verifier, logger)

	r := chi.NewRouter()
	if redisUp {
		router.SetupRoutes(r, handlers, auth, rdb)
	} else {
		router.SetupRoutes(r, handlers, auth, nil)
	}

	s.HTTP = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- gRPC health ---
	s.grpcServer = newGRPCServer()
	s.health = newHealthReporter(s.grpcServer, dbpool, network, cfg.Chain.RPCURL, logger)
	go s.health.Run(bg, 30*time.Second)

	return s, nil
}

// Start serves gRPC in the background and HTTP in the foreground.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.grpcAddr, err)
	}
	go func() {
		s.logger.Info("gRPC server listening", zap.String("addr", s.grpcAddr))
		if err := s.grpcServer.Serve(lis); err != nil {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()

	s.logger.Info("HTTP server listening", zap.String("addr", s.HTTP.Addr))
	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, then releases clients in reverse order.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTP.Shutdown(ctx)
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	s.Close()
	return err
}

func (s *Server) Close() {
	s.cancel()
	if s.watcher != nil {
		s.watcher.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// pushWalletState sends the refreshed wallet state to each connected user after a provider event.
func pushWalletState(wallets *wallet.Manager, hub *ws.Manager) ethereum.EventHandler {
	return func(_ context.Context, _ ethereum.Event) {
		for _, userID := range hub.Users() {
			session, ok := wallets.Lookup(userID)
			if !ok {
				continue
			}
			hub.Send(userID, ws.Message{Type: "wallet.state", Data: session.Snapshot()})
		}
	}
}

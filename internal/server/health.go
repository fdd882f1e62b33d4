package server

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"solarcredits-service/internal/chains/ethereum"
)

const (
	databaseService = "solarcredits.database"
	chainService    = "solarcredits.chain"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type dialFunc func(ctx context.Context, rawURL string) (ethereum.ChainReader, func(), error)

func dialEthClient(ctx context.Context, rawURL string) (ethereum.ChainReader, func(), error) {
	client, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

func newGRPCServer() *grpc.Server {
	return grpc.NewServer(
		grpc.MaxRecvMsgSize(10*1024*1024),
		grpc.MaxSendMsgSize(10*1024*1024),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Minute,
			MaxConnectionAge:      30 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Minute,
			Time:                  5 * time.Minute,
			Timeout:               1 * time.Minute,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             30 * time.Second,
			PermitWithoutStream: true,
		}),
	)
}

// healthReporter keeps the gRPC health service in step with the database and the chain RPC.
type healthReporter struct {
	server  *health.Server
	db      pinger
	checker *ethereum.HealthChecker
	rpcURL  string
	dial    dialFunc
	logger  *zap.Logger
}

func newHealthReporter(gs *grpc.Server, db pinger, network ethereum.Network, rpcURL string, logger *zap.Logger) *healthReporter {
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &healthReporter{
		server:  hs,
		db:      db,
		checker: ethereum.NewHealthChecker(network),
		rpcURL:  rpcURL,
		dial:    dialEthClient,
		logger:  logger,
	}
}

// Run checks immediately and then on every tick until ctx is done.
func (h *healthReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		h.Check(ctx)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (h *healthReporter) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbErr := h.db.Ping(ctx)
	if dbErr != nil {
		h.logger.Warn("database health check failed", zap.Error(dbErr))
	}
	h.set(databaseService, dbErr == nil)

	chainErr := h.checkChain(ctx)
	if chainErr != nil {
		h.logger.Warn("chain health check failed", zap.String("rpc_url", h.rpcURL), zap.Error(chainErr))
	}
	h.set(chainService, chainErr == nil)

	// the chain is advisory; the service stays up while only the database is reachable
	h.set("", dbErr == nil)
}

func (h *healthReporter) checkChain(ctx context.Context) error {
	client, closeFn, err := h.dial(ctx, h.rpcURL)
	if err != nil {
		return err
	}
	defer closeFn()
	return h.checker.CheckHealth(ctx, client)
}

func (h *healthReporter) set(service string, ok bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus(service, status)
}

func (h *healthReporter) Shutdown() {
	h.server.Shutdown()
}

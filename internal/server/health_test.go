package server

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"solarcredits-service/internal/chains/ethereum"
)

type stubDB struct{ err error }

func (s stubDB) Ping(context.Context) error { return s.err }

type stubChain struct {
	block   uint64
	chainID *big.Int
}

func (s stubChain) BlockNumber(context.Context) (uint64, error) { return s.block, nil }
func (s stubChain) ChainID(context.Context) (*big.Int, error)   { return s.chainID, nil }

func newTestReporter(t *testing.T, db pinger, chain ethereum.ChainReader, dialErr error) *healthReporter {
	t.Helper()
	gs := grpc.NewServer()
	t.Cleanup(gs.Stop)

	h := newHealthReporter(gs, db, ethereum.ArbitrumSepolia(), "http://rpc.invalid", zap.NewNop())
	h.dial = func(context.Context, string) (ethereum.ChainReader, func(), error) {
		if dialErr != nil {
			return nil, nil, dialErr
		}
		return chain, func() {}, nil
	}
	return h
}

func status(t *testing.T, h *healthReporter, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.server.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestHealthReporterServing(t *testing.T) {
	chain := stubChain{block: 1200, chainID: ethereum.ArbitrumSepolia().ChainID}
	h := newTestReporter(t, stubDB{}, chain, nil)

	h.Check(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h, databaseService))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h, chainService))
}

func TestHealthReporterChainDown(t *testing.T) {
	h := newTestReporter(t, stubDB{}, nil, errors.New("dial tcp: connection refused"))

	h.Check(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, chainService))
}

func TestHealthReporterWrongChain(t *testing.T) {
	h := newTestReporter(t, stubDB{}, stubChain{block: 5, chainID: big.NewInt(1)}, nil)

	h.Check(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, chainService))
}

func TestHealthReporterDatabaseDown(t *testing.T) {
	chain := stubChain{block: 1200, chainID: ethereum.ArbitrumSepolia().ChainID}
	h := newTestReporter(t, stubDB{err: errors.New("connection reset")}, chain, nil)

	h.Check(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, databaseService))
}

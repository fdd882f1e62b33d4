package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solarcredits-service/internal/chains/ethereum/ethtest"
	hrest "solarcredits-service/internal/handler/http"
	"solarcredits-service/internal/usecase"
	"solarcredits-service/internal/wallet"
	"solarcredits-service/shared/auth/middleware"
	"solarcredits-service/shared/auth/pkg/jwtutil"
)

// keyRecorder records limiter keys; pipelines fail so the limiter lets requests through.
type keyRecorder struct {
	redis.Cmdable

	mu   sync.Mutex
	keys []string
}

func (k *keyRecorder) Get(ctx context.Context, key string) *redis.StringCmd {
	k.mu.Lock()
	k.keys = append(k.keys, key)
	k.mu.Unlock()
	return redis.NewStringResult("", redis.Nil)
}

func (k *keyRecorder) TxPipelined(context.Context, func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	return nil, errors.New("redis: pipeline unavailable")
}

func (k *keyRecorder) recorded() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.keys...)
}

func TestAuthenticatedRoutesAreLimitedPerUser(t *testing.T) {
	verifier := jwtutil.NewVerifier(jwtutil.JWTConfig{Secret: "secret"})
	manager := wallet.NewManager(ethtest.NewProvider(), wallet.DefaultConfig(), zap.NewNop())
	handlers := Handlers{
		Wallet: hrest.NewWalletHandler(usecase.NewWalletUsecase(manager, nil, zap.NewNop()), zap.NewNop()),
	}

	rdb := &keyRecorder{}
	r := SetupRoutes(chi.NewRouter(), handlers, middleware.NewAuthMiddleware(verifier, zap.NewNop()), rdb)

	token, err := verifier.Issue("user-7", "u7@example.com", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.RemoteAddr = "198.51.100.4:5555"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{
		"global:ip:198.51.100.4:5555:blocked",
		"user:uid:user-7:blocked",
	}, rdb.recorded())
}

func TestUnauthenticatedRequestsSkipUserLimiter(t *testing.T) {
	verifier := jwtutil.NewVerifier(jwtutil.JWTConfig{Secret: "secret"})
	rdb := &keyRecorder{}
	r := SetupRoutes(chi.NewRouter(), Handlers{}, middleware.NewAuthMiddleware(verifier, zap.NewNop()), rdb)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, []string{"global:ip:198.51.100.4:5555:blocked"}, rdb.recorded())
}

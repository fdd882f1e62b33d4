package ethereum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rpcServer(t *testing.T, handler func(w http.ResponseWriter, id json.RawMessage)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		handler(w, req.ID)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbeRPC(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, id json.RawMessage)
		want    ProbeResult
	}{
		{
			name: "ok",
			handler: func(w http.ResponseWriter, id json.RawMessage) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(id) + `,"result":"0x10"}`))
			},
			want: ProbeResult{OK: true, BlockNumber: 16},
		},
		{
			name: "http status",
			handler: func(w http.ResponseWriter, _ json.RawMessage) {
				w.WriteHeader(http.StatusForbidden)
			},
			want: ProbeResult{Reason: "HTTP 403"},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ json.RawMessage) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`<html>blocked</html>`))
			},
			want: ProbeResult{Reason: "Invalid JSON response"},
		},
		{
			name: "rpc error",
			handler: func(w http.ResponseWriter, id json.RawMessage) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(id) + `,"error":{"code":-32005,"message":"rate limit exceeded"}}`))
			},
			want: ProbeResult{Reason: "rate limit exceeded"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := rpcServer(t, tc.handler)
			assert.Equal(t, tc.want, ProbeRPC(context.Background(), srv.URL))
		})
	}
}

func TestProbeRPCUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := ProbeRPC(context.Background(), url)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Reason)

	assert.Equal(t, ProbeResult{Reason: "no RPC configured"}, ProbeRPC(context.Background(), ""))
}

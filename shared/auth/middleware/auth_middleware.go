package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"solarcredits-service/shared/auth/pkg/jwtutil"
	"solarcredits-service/shared/response"
)

type AuthMiddleware struct {
	verifier *jwtutil.Verifier
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier *jwtutil.Verifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// Middleware rejects requests without a valid access token.
func (am *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized, "No token provided")
			return
		}

		claims, err := am.verifier.ParseAndValidate(token)
		if err != nil {
			am.logger.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, withClaims(r, claims))
	})
}

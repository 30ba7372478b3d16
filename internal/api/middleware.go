package api

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/yakoovad/groupmatch/internal/auth"
	"github.com/yakoovad/groupmatch/internal/service"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

type userIDKey struct{}

func ZapLoggerMiddleware(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			requestID := res.Header().Get(echo.HeaderXRequestID)

			reqLogger := l.With(
				zap.String("request_id", requestID),
			)

			ctx := logger.WithLogger(req.Context(), reqLogger)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.Int64("bytes_in", req.ContentLength),
				zap.Int64("bytes_out", res.Size),
			}

			if err != nil {
				fields = append(fields, zap.Error(err))
				reqLogger.Error("request failed", fields...)
			} else {
				reqLogger.Info("request completed", fields...)
			}

			return err
		}
	}
}

// AuthMiddleware admits requests carrying a valid bearer token of one of the allowed types.
// The token subject becomes the caller's user id, available through UserIDFromContext.
func AuthMiddleware(tokens *auth.TokenManager, allowed ...auth.TokenType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logger.FromContext(ctx)

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				return transportError(c, service.NewError(service.ErrorCodeUnauthorized, "missing bearer token"))
			}

			claims, err := tokens.VerifyToken(tokenString)
			if err != nil {
				l.Warn("rejected token", zap.Error(err))
				return transportError(c, service.NewError(service.ErrorCodeUnauthorized, "invalid token"))
			}

			if !slices.Contains(allowed, claims.Type) {
				l.Warn("token type not allowed",
					zap.String("token_type", string(claims.Type)),
					zap.String("user_id", claims.UserID()))
				return transportError(c, service.NewError(service.ErrorCodeForbidden, "insufficient permissions"))
			}

			ctx = context.WithValue(ctx, userIDKey{}, claims.UserID())
			ctx = logger.WithLogger(ctx, l.With(zap.String("user_id", claims.UserID())))
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}

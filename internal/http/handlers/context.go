package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/plantdoctor/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ctxLogger = "handlers.logger"

// WithLogger makes log available to RespondInternal.
func WithLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxLogger, log)
		c.Next()
	}
}

func logFrom(ctx *gin.Context) *slog.Logger {
	if v, ok := ctx.Get(ctxLogger); ok {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// requestCtx bounds store calls made for one request.
func requestCtx(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), d)
}

// currentUserID answers 401 itself when the auth middleware did not run.
func currentUserID(ctx *gin.Context) (string, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return "", false
	}
	return id, true
}

// pathUUID answers 404 for ids that cannot exist rather than letting the
// database reject the cast.
func pathUUID(ctx *gin.Context, name, notFound string) (string, bool) {
	id := ctx.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		RespondNotFound(ctx, notFound)
		return "", false
	}
	return id, true
}

package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("Referrer-Policy", "no-referrer")
	ctx.Header("Cache-Control", "no-store")
	ctx.Next()
}

// RequestID reuses an incoming request id or assigns a new one.
func RequestID(ctx *gin.Context) {
	rid := ctx.GetHeader(RequestIDHeader)
	if _, err := uuid.Parse(rid); err != nil {
		rid = uuid.NewString()
	}
	ctx.Set("request_id", rid)
	ctx.Header(RequestIDHeader, rid)
	ctx.Next()
}

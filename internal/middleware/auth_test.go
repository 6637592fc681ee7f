package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestExtractToken(t *testing.T) {
	t.Run("bearer header", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.Header.Set("Authorization", "Bearer abc123")

		assert.Equal(t, "abc123", extractToken(ctx))
	})

	t.Run("raw header", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.Header.Set("Authorization", "abc123")

		assert.Equal(t, "abc123", extractToken(ctx))
	})

	t.Run("query parameter fallback", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.SetRequestURI("/api/v1/tasks/watch?token=abc123")

		assert.Equal(t, "abc123", extractToken(ctx))
	})

	t.Run("missing", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.SetRequestURI("/api/v1/tasks/unscheduled")

		assert.Equal(t, "", extractToken(ctx))
	})
}

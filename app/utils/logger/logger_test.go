package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"github.com/stretchr/testify/assert"
)

func TestFromCtxFallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), logger.FromCtx(context.Background()))
}

func TestFromCtxReturnsInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil)).With("request_id", "abc123")

	ctx := logger.WithLogger(context.Background(), l)
	logger.FromCtx(ctx).Info("cart updated")

	assert.Contains(t, buf.String(), `"request_id":"abc123"`)
	assert.Contains(t, buf.String(), `"msg":"cart updated"`)
}

package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/lib/logger"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/lib/logger/handlers/slogpretty"
)

func TestSetupLogger_Levels(t *testing.T) {
	assert.True(t, logger.SetupLogger(logger.EnvDev).Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, logger.SetupLogger(logger.EnvProd).Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.SetupLogger(logger.EnvLocal).Enabled(context.Background(), slog.LevelDebug))
	// неизвестное окружение ведёт себя как prod
	assert.False(t, logger.SetupLogger("staging").Enabled(context.Background(), slog.LevelDebug))
}

func TestPrettyHandler_WritesAttrs(t *testing.T) {
	var buf bytes.Buffer
	opts := slogpretty.PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With(slog.String("op", "test"))

	log.Error("boom", slog.Any("error", errors.New("gateway down")))

	out := buf.String()
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, `"op": "test"`)
	assert.Contains(t, out, "gateway down")
}

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.EnvProd, &buf)

	log.Info("order created", slog.String("order_id", "abc"))

	assert.Contains(t, buf.String(), `"msg":"order created"`)
	assert.Contains(t, buf.String(), `"service":"seven-green-store"`)
	assert.Contains(t, buf.String(), `"source"`)
}

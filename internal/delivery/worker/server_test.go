package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"foodbridge/config"
	"foodbridge/internal/delivery/worker/handler"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	delivered []string
}

func (n *countingNotifier) DeliverDonationEvent(_ context.Context, event *service.DonationEvent) (*usecase.DeliveryReport, error) {
	n.delivered = append(n.delivered, event.EventID)

	return &usecase.DeliveryReport{}, nil
}

func TestNotifierServer_Routes(t *testing.T) {
	cfg := &config.Config{Metrics: &config.MetricsConfig{Enabled: true, Path: "/metrics"}}
	logger := slog.New(slog.DiscardHandler)
	notifier := &countingNotifier{}
	push := handler.NewPushHandler(handler.PushHandlerParams{Config: cfg, Logger: logger, NotificationUC: notifier})
	e := newEcho(cfg, logger, push)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	data, err := json.Marshal(&service.DonationEvent{EventID: "evt-9", Type: service.EventDonationCompleted})
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{"message": map[string]any{"data": base64.StdEncoding.EncodeToString(data)}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"evt-9"}, notifier.delivered)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `foodbridge_notifier_http_requests_total{method="POST",route="/push",status="200"} 1`))
}

package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"foodbridge/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	localSubscription = "projects/local/subscriptions/donation-events-notifier"
	localPushAttempts = 3
	localPushTimeout  = 10 * time.Second
)

// localRetryBackoff is the pause before the second push attempt; it doubles after that.
var localRetryBackoff = 200 * time.Millisecond

// PubSubPushMessage is the envelope Pub/Sub POSTs to push subscriptions.
type PubSubPushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// localHTTPPublisher pushes events straight to a notifier running on the
// developer's machine. It redelivers on 5xx the way a push subscription would.
type localHTTPPublisher struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLocalHTTPPublisher creates a publisher that POSTs push envelopes to endpoint.
func NewLocalHTTPPublisher(endpoint string, logger *slog.Logger) service.EventPublisher {
	return &localHTTPPublisher{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: localPushTimeout},
		logger:     logger,
	}
}

func (p *localHTTPPublisher) PublishDonationEvent(ctx context.Context, event *service.DonationEvent) error {
	body, err := p.envelope(event)
	if err != nil {
		return err
	}

	backoff := localRetryBackoff
	for attempt := 1; ; attempt++ {
		retry, err := p.push(ctx, body, event.RequestID)
		if err == nil {
			p.logger.DebugContext(ctx, "Donation event pushed to local notifier",
				slog.String("event_id", event.EventID),
				slog.String("type", string(event.Type)),
				slog.Int("attempt", attempt),
			)

			return nil
		}
		if !retry || attempt == localPushAttempts {
			return errors.Wrapf(err, "failed to push %s after %d attempt(s)", event.Type, attempt)
		}

		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (p *localHTTPPublisher) envelope(event *service.DonationEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode donation event")
	}

	msg := PubSubPushMessage{Subscription: localSubscription}
	msg.Message.Data = base64.StdEncoding.EncodeToString(data)
	msg.Message.MessageID = event.EventID
	msg.Message.PublishTime = time.Now().UTC().Format(time.RFC3339Nano)
	msg.Message.Attributes = eventAttributes(event)

	body, err := json.Marshal(msg)

	return body, errors.WithStack(err)
}

// push reports whether a failed attempt is worth repeating.
func (p *localHTTPPublisher) push(ctx context.Context, body []byte, requestID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode >= http.StatusInternalServerError,
			errors.Errorf("notifier returned status %d", resp.StatusCode)
	}

	return false, nil
}

func (p *localHTTPPublisher) Close() error {
	p.httpClient.CloseIdleConnections()

	return nil
}

// Package notify delivers domain events to an outside HTTP endpoint.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Glenferdinza/sporton/internal/logging"
)

const (
	HeaderSignature = "X-Sporton-Signature"
	HeaderEvent     = "X-Sporton-Event"

	defaultTimeout = 5 * time.Second
)

var ErrCircuitOpen = errors.New("webhook circuit open")

type Notifier interface {
	Notify(ctx context.Context, event string, payload any) error
}

type Recorder interface {
	RecordWebhook(ok bool)
}

// Envelope is the JSON body every webhook receives.
type Envelope struct {
	Event  string    `json:"event"`
	SentAt time.Time `json:"sentAt"`
	Data   any       `json:"data"`
}

type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration

	// consecutive failures before the breaker opens
	MaxFailures uint32
	// how long the breaker stays open before probing again
	OpenTimeout time.Duration
}

type Webhook struct {
	url     string
	secret  []byte
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	metrics Recorder
	log     *logging.Logger
}

func NewWebhook(cfg WebhookConfig, rec Recorder) *Webhook {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	log := logging.L().Named("webhook")
	w := &Webhook{
		url:     cfg.URL,
		secret:  []byte(cfg.Secret),
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: rec,
		log:     log,
	}
	w.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "webhook",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return w
}

func (w *Webhook) Notify(ctx context.Context, event string, payload any) error {
	body, err := json.Marshal(Envelope{Event: event, SentAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("encode webhook: %w", err)
	}

	_, err = w.cb.Execute(func() (any, error) {
		return nil, w.post(ctx, event, body)
	})
	if w.metrics != nil {
		w.metrics.RecordWebhook(err == nil)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	if err == nil {
		w.log.Debug("webhook delivered", zap.String("event", event))
	}
	return err
}

func (w *Webhook) post(ctx context.Context, event string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event)
	req.Header.Set(HeaderSignature, Sign(w.secret, body))

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}

// Sign returns "sha256=<hex hmac>" of body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature produced by Sign in constant time.
func Verify(secret, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Nop drops every event. It is used when no webhook URL is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string, any) error { return nil }

// New returns a Webhook when url is set, Nop otherwise.
func New(url, secret string, rec Recorder) Notifier {
	if url == "" {
		return Nop{}
	}
	return NewWebhook(WebhookConfig{URL: url, Secret: secret}, rec)
}

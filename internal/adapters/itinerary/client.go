// internal/adapters/itinerary/client.go
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
	"github.com/ammerola/analytics-reports/internal/pkg/metrics"
)

const (
	fetchPurpose  = "fetch itineraries for analytics"
	maxErrorBody  = 4 << 10
	maxBodyLength = 16 << 20
)

// Config holds itinerary client settings
type Config struct {
	ServiceName      string
	Secret           string
	Timeout          time.Duration
	TokenTTL         time.Duration
	BreakerRequests  uint32
	BreakerInterval  time.Duration
	BreakerTimeout   time.Duration
	BreakerThreshold uint32
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		ServiceName:      "itineraries",
		Timeout:          5 * time.Second,
		TokenTTL:         defaultTokenTTL,
		BreakerRequests:  1,
		BreakerInterval:  time.Minute,
		BreakerTimeout:   30 * time.Second,
		BreakerThreshold: 5,
	}
}

// Client fetches itineraries from the itineraries service.
type Client struct {
	cfg        Config
	resolver   ports.ServiceResolver
	signer     *TokenSigner
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]domain.Itinerary]
	logger     *slog.Logger
}

var _ ports.ItineraryClient = (*Client)(nil)

// NewClient creates a new itinerary client
func NewClient(cfg Config, resolver ports.ServiceResolver, logger *slog.Logger) *Client {
	defaults := DefaultConfig()
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaults.ServiceName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = defaults.BreakerThreshold
	}

	logger = logger.With(slog.String("component", "itinerary_client"))
	name := "itinerary-" + cfg.ServiceName
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]domain.Itinerary](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		// only an unreachable or failing upstream counts against the circuit
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var upstream *domain.UpstreamError
			if errors.As(err, &upstream) {
				return upstream.StatusCode < http.StatusInternalServerError
			}
			return !errors.Is(err, domain.ErrUpstreamUnreachable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Client{
		cfg:        cfg,
		resolver:   resolver,
		signer:     NewTokenSigner(cfg.Secret, ServiceID, cfg.TokenTTL),
		httpClient: &http.Client{},
		breaker:    breaker,
		logger:     logger,
	}
}

// IsReady reports false while the breaker is open.
func (c *Client) IsReady() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

// FetchByUser returns the itineraries owned by userID. An empty answer is
// domain.ErrNoItineraries.
func (c *Client) FetchByUser(ctx context.Context, userID string) ([]domain.Itinerary, error) {
	start := time.Now()

	itineraries, err := c.breaker.Execute(func() ([]domain.Itinerary, error) {
		return c.fetch(ctx, userID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnreachable, err)
	}

	switch {
	case err != nil:
		metrics.RecordItineraryFetch(fetchOutcome(err), time.Since(start))
		c.logger.ErrorContext(ctx, "failed to fetch itineraries",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	case len(itineraries) == 0:
		metrics.RecordItineraryFetch("empty", time.Since(start))
		c.logger.WarnContext(ctx, "no itineraries found", slog.String("user_id", userID))
		return nil, domain.ErrNoItineraries
	}

	metrics.RecordItineraryFetch("ok", time.Since(start))
	return itineraries, nil
}

func (c *Client) fetch(ctx context.Context, userID string) ([]domain.Itinerary, error) {
	base, err := c.resolver.Resolve(ctx, c.cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", domain.ErrUpstreamUnreachable, c.cfg.ServiceName, err)
	}

	token, err := c.signer.Sign(fetchPurpose)
	if err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(base + "/api/v1/itineraries")
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base url %q: %w", domain.ErrUpstreamUnreachable, base, err)
	}
	q := endpoint.Query()
	q.Set("userId", userID)
	endpoint.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.UpstreamError{
			Service:    c.cfg.ServiceName,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyLength))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrUpstreamUnreachable, err)
	}

	records, err := decodeItineraries(body)
	if err != nil {
		return nil, &domain.UpstreamError{
			Service:    c.cfg.ServiceName,
			StatusCode: resp.StatusCode,
			Body:       err.Error(),
		}
	}

	owned := make([]domain.Itinerary, 0, len(records))
	for _, rec := range records {
		if rec.UserID == userID {
			owned = append(owned, rec.toDomain())
		}
	}
	return owned, nil
}

func fetchOutcome(err error) string {
	if errors.Is(err, domain.ErrUpstreamResponse) {
		return "upstream_error"
	}
	return "unreachable"
}

// wireItinerary tolerates both id spellings and both score spellings used
// by the itineraries service.
type wireItinerary struct {
	ID       string        `json:"id"`
	MongoID  string        `json:"_id"`
	UserID   string        `json:"userId"`
	Comments []wireComment `json:"comments"`
	Reviews  []wireReview  `json:"reviews"`
}

type wireComment struct {
	UserID string `json:"userId"`
}

type wireReview struct {
	UserID string   `json:"userId"`
	Score  *float64 `json:"score"`
	Rating *float64 `json:"rating"`
}

func (w wireItinerary) toDomain() domain.Itinerary {
	it := domain.Itinerary{
		ID:       w.ID,
		UserID:   w.UserID,
		Comments: make([]domain.Comment, 0, len(w.Comments)),
		Reviews:  make([]domain.Review, 0, len(w.Reviews)),
	}
	if it.ID == "" {
		it.ID = w.MongoID
	}
	for _, c := range w.Comments {
		it.Comments = append(it.Comments, domain.Comment{UserID: c.UserID})
	}
	for _, r := range w.Reviews {
		review := domain.Review{UserID: r.UserID}
		switch {
		case r.Score != nil:
			review.Score = *r.Score
		case r.Rating != nil:
			review.Score = *r.Rating
		}
		it.Reviews = append(it.Reviews, review)
	}
	return it
}

// decodeItineraries accepts a bare array or a {"data": [...]} envelope.
func decodeItineraries(body []byte) ([]wireItinerary, error) {
	var list []wireItinerary
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		Data []wireItinerary `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode itineraries: %w", err)
	}
	return envelope.Data, nil
}

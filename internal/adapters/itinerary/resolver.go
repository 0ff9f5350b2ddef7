// internal/adapters/itinerary/resolver.go
package itinerary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	redis_a "github.com/ammerola/analytics-reports/internal/adapters/redis_adapter"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

// StaticResolver resolves service names from a fixed map.
type StaticResolver map[string]string

var _ ports.ServiceResolver = StaticResolver(nil)

func (r StaticResolver) Resolve(_ context.Context, service string) (string, error) {
	base, ok := r[service]
	if !ok || base == "" {
		return "", fmt.Errorf("no url configured for service %q", service)
	}
	return strings.TrimRight(base, "/"), nil
}

// GatewayResolver asks the API gateway where a service lives and caches the
// answer in Redis.
type GatewayResolver struct {
	gatewayURL string
	httpClient *http.Client
	cache      ports.CacheRepository
	ttl        time.Duration
	logger     *slog.Logger
}

var _ ports.ServiceResolver = (*GatewayResolver)(nil)

func NewGatewayResolver(gatewayURL string, cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *GatewayResolver {
	return &GatewayResolver{
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cache:      cache,
		ttl:        ttl,
		logger:     logger.With(slog.String("component", "service_resolver")),
	}
}

// gatewayAnswer accepts both {"url": ...} and {"data": {"url": ...}}.
type gatewayAnswer struct {
	URL  string `json:"url"`
	Data *struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Resolve returns the base url of service.
func (r *GatewayResolver) Resolve(ctx context.Context, service string) (string, error) {
	var base string
	err := r.cache.GetOrSet(ctx, redis_a.BuildKey(redis_a.PrefixService, service), &base,
		func() (interface{}, error) {
			return r.lookup(ctx, service)
		}, r.ttl)
	if err != nil {
		return "", err
	}
	return base, nil
}

func (r *GatewayResolver) lookup(ctx context.Context, service string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/services/%s", r.gatewayURL, url.PathEscape(service))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build gateway request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway answered %d for service %s", resp.StatusCode, service)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read gateway response: %w", err)
	}

	var answer gatewayAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}

	base := answer.URL
	if base == "" && answer.Data != nil {
		base = answer.Data.URL
	}
	if base == "" {
		return "", fmt.Errorf("gateway has no url for service %s", service)
	}

	r.logger.DebugContext(ctx, "service resolved",
		slog.String("service", service),
		slog.String("url", base))

	return strings.TrimRight(base, "/"), nil
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vscobot/internal/domain"
	"vscobot/internal/metrics"
)

// DefaultVSCOEndpoint is the public extraction service the bot was built against.
const DefaultVSCOEndpoint = "https://api.iamtortue.com/vsco/"

const maxResponseBytes = 1 << 20

// VSCOResolver resolves VSCO post links through an external extraction API.
// Each call is a single attempt; there is no retry.
type VSCOResolver struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

type VSCOResolverConfig struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client // optional; built from Timeout when nil
	Logger   *slog.Logger
}

func NewVSCOResolver(cfg VSCOResolverConfig) *VSCOResolver {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultVSCOEndpoint
	}
	if cfg.Client == nil {
		cfg.Client = SharedHTTPClient(cfg.Timeout)
	}
	return &VSCOResolver{
		endpoint: cfg.Endpoint,
		client:   cfg.Client,
		logger:   cfg.Logger,
	}
}

type vscoResponse struct {
	Result *domain.ResolvedMedia `json:"result"`
}

// Resolve posts link as the "uri" form field and returns the service's result.
// A response without a result yields an empty ResolvedMedia, not an error.
func (r *VSCOResolver) Resolve(ctx context.Context, link string) (*domain.ResolvedMedia, error) {
	start := time.Now()
	media, err := r.resolve(ctx, link)
	metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ResolveRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ResolveRequests.WithLabelValues("ok").Inc()
	r.logger.Debug("media resolved",
		"image", media.Image,
		"name", media.Name,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return media, nil
}

func (r *VSCOResolver) resolve(ctx context.Context, link string) (*domain.ResolvedMedia, error) {
	form := url.Values{"uri": {link}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build resolve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read resolver response: %w", err)
	}

	var parsed vscoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("decode resolver response (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("decode resolver response: %w", err)
	}
	if parsed.Result == nil {
		r.logger.Warn("resolver returned no result", "status", resp.StatusCode)
		return &domain.ResolvedMedia{}, nil
	}
	return parsed.Result, nil
}

// Ping checks that the resolver host answers HTTP at all. Any status code
// counts as reachable; the service only accepts POST.
func (r *VSCOResolver) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build ping request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ping resolver: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return resp.StatusCode, nil
}

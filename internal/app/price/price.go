/*
Package price serves the current SOL price to the dashboard.

The upstream feed (Coingecko by default) is queried at most once per cache
window. Upstream failures never surface as hard errors: the last known quote
is served while stale, and a zero quote when nothing was ever fetched.
*/
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"vaultboard/internal/pkg/logx"
)

const (
	// DefaultUpstreamURL is the public Coingecko simple-price endpoint.
	DefaultUpstreamURL = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"

	// CacheTTL is how long a fetched quote stays fresh.
	CacheTTL = 10 * time.Minute

	// fetchTimeout bounds a single upstream request.
	fetchTimeout = 10 * time.Second
)

// Quote is the upstream feed shape the dashboard consumes.
type Quote struct {
	Solana struct {
		USD float64 `json:"usd"`
	} `json:"solana"`
}

// Service fetches and caches the SOL price.
type Service struct {
	url    string
	client *http.Client
	clock  clockwork.Clock

	mu        sync.Mutex
	cached    *Quote
	fetchedAt time.Time

	logger zerolog.Logger
}

// NewService constructs a price Service for the given upstream URL.
// An empty url selects the default Coingecko endpoint.
func NewService(url string, clock clockwork.Clock) *Service {
	if url == "" {
		url = DefaultUpstreamURL
	}

	return &Service{
		url:    url,
		client: &http.Client{Timeout: fetchTimeout},
		clock:  clock,
		logger: logx.Logger().With().Str("component", "Price").Logger(),
	}
}

// Current returns the freshest quote available. A nil quote with an error
// means no quote was ever fetched; a non-nil quote is always safe to serve
// even when the upstream is down.
func (s *Service) Current(ctx context.Context) (*Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	if s.cached != nil && now.Sub(s.fetchedAt) < CacheTTL {
		return s.cached, nil
	}

	quote, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("SOL price fetch failed, serving last known value.")
		return s.cached, err
	}

	s.cached = quote
	s.fetchedAt = now

	return quote, nil
}

// fetch queries the upstream feed and validates its shape.
func (s *Service) fetch(ctx context.Context) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch price: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price upstream returned status %d", res.StatusCode)
	}

	var quote Quote
	if err := json.NewDecoder(res.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}

	if quote.Solana.USD <= 0 {
		return nil, fmt.Errorf("invalid price data structure")
	}

	return &quote, nil
}

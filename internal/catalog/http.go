package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cory-johannsen/dexcompanion/internal/config"
	"github.com/cory-johannsen/dexcompanion/internal/game/evolution"
	"github.com/cory-johannsen/dexcompanion/internal/game/record"
)

var _ Catalog = (*HTTPClient)(nil)

// maxBody bounds a single response read.
const maxBody = 8 << 20

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithDoer replaces the underlying HTTP client.
func WithDoer(d Doer) Option {
	return func(c *HTTPClient) { c.doer = d }
}

// WithMetrics records request metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// HTTPClient implements Catalog against a PokeAPI-shaped REST API.
//
// Safe for concurrent use.
type HTTPClient struct {
	baseURL   string
	artwork   string
	userAgent string
	policy    BatchPolicy
	limit     int
	doer      Doer
	limiter   *rate.Limiter
	logger    *zap.Logger
	metrics   *Metrics
}

// NewHTTPClient builds a client from cfg.
//
// Precondition: cfg must have passed config validation; logger must be non-nil.
// Postcondition: Returns a ready client; no request is made.
func NewHTTPClient(cfg config.CatalogConfig, logger *zap.Logger, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		artwork:   cfg.ArtworkURL,
		userAgent: cfg.UserAgent,
		policy:    BatchPolicy(cfg.BatchPolicy),
		limit:     cfg.MaxConcurrency,
		doer:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Inf, 0),
		logger:    logger,
	}
	if cfg.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)
	}
	if c.policy == "" {
		c.policy = AllOrNothing
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get fetches rawURL and parses the body. endpoint labels logs and metrics.
func (c *HTTPClient) get(ctx context.Context, endpoint, rawURL string) (gjson.Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, fmt.Errorf("waiting for catalog rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.metrics.observe(endpoint, "error", time.Since(start))
		c.logger.Warn("catalog request failed", zap.String("url", rawURL), zap.Error(err))
		return gjson.Result{}, fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.observe(endpoint, "not_found", time.Since(start))
		c.logger.Debug("catalog entry not found", zap.String("url", rawURL))
		return gjson.Result{}, fmt.Errorf("%s: %w", rawURL, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.metrics.observe(endpoint, "error", time.Since(start))
		c.logger.Warn("catalog returned error status", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return gjson.Result{}, fmt.Errorf("requesting %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		c.metrics.observe(endpoint, "error", time.Since(start))
		return gjson.Result{}, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if !gjson.ValidBytes(body) {
		c.metrics.observe(endpoint, "error", time.Since(start))
		c.logger.Warn("catalog returned invalid JSON", zap.String("url", rawURL), zap.Int("bytes", len(body)))
		return gjson.Result{}, fmt.Errorf("decoding %s: invalid JSON", rawURL)
	}
	c.metrics.observe(endpoint, "ok", time.Since(start))
	c.logger.Debug("catalog request",
		zap.String("endpoint", endpoint),
		zap.String("url", rawURL),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return gjson.ParseBytes(body), nil
}

func (c *HTTPClient) url(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func pageQuery(limit, offset int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return "?" + q.Encode()
}

// GetRecord fetches /pokemon/{key}.
func (c *HTTPClient) GetRecord(ctx context.Context, key string) (record.Record, error) {
	return c.getRecordURL(ctx, c.url("pokemon", NormalizeKey(key)))
}

func (c *HTTPClient) getRecordURL(ctx context.Context, rawURL string) (record.Record, error) {
	doc, err := c.get(ctx, "pokemon", rawURL)
	if err != nil {
		return record.Record{}, err
	}
	r, err := parseRecord(doc)
	if err != nil {
		return record.Record{}, fmt.Errorf("normalizing %s: %w", rawURL, err)
	}
	return r, nil
}

// ListRecords fetches the index page then every entry's detail concurrently.
// The joined result is ordered by catalog number.
//
// Postcondition: follows the configured BatchPolicy when detail fetches fail.
func (c *HTTPClient) ListRecords(ctx context.Context, limit, offset int) ([]record.Record, error) {
	doc, err := c.get(ctx, "pokemon-list", c.url("pokemon")+pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	refs := parseRefs(doc, "results")
	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = ref.URL
	}
	records, err := gather(ctx, c.policy, c.limit, urls, c.getRecordURL)
	c.countFailures(err)
	if records != nil {
		record.SortByID(records)
	}
	return records, err
}

// GetSpeciesMeta fetches /pokemon-species/{key}.
func (c *HTTPClient) GetSpeciesMeta(ctx context.Context, key string) (SpeciesMeta, error) {
	doc, err := c.get(ctx, "pokemon-species", c.url("pokemon-species", NormalizeKey(key)))
	if err != nil {
		return SpeciesMeta{}, err
	}
	return parseSpeciesMeta(doc), nil
}

// GetEvolutionChain fetches the chain at ref, which is either an absolute
// URL under the base URL or a numeric chain id.
func (c *HTTPClient) GetEvolutionChain(ctx context.Context, ref string) (*evolution.Stage, error) {
	rawURL := ref
	if _, err := strconv.Atoi(ref); err == nil {
		rawURL = c.url("evolution-chain", ref)
	} else if !strings.HasPrefix(ref, c.baseURL+"/") {
		return nil, fmt.Errorf("evolution chain ref %q is outside the catalog", ref)
	}
	doc, err := c.get(ctx, "evolution-chain", rawURL)
	if err != nil {
		return nil, err
	}
	chain := doc.Get("chain")
	if !chain.Exists() {
		return nil, fmt.Errorf("evolution chain %s has no chain root", rawURL)
	}
	return parseChain(chain, c.artwork), nil
}

// GetLearnableMoves reads the move list from /pokemon/{key}.
func (c *HTTPClient) GetLearnableMoves(ctx context.Context, key string) ([]LearnableMove, error) {
	doc, err := c.get(ctx, "pokemon", c.url("pokemon", NormalizeKey(key)))
	if err != nil {
		return nil, err
	}
	return parseLearnableMoves(doc), nil
}

// GetEncounters fetches /pokemon/{key}/encounters.
func (c *HTTPClient) GetEncounters(ctx context.Context, key string) ([]Encounter, error) {
	doc, err := c.get(ctx, "encounters", c.url("pokemon", NormalizeKey(key), "encounters"))
	if err != nil {
		return nil, err
	}
	return parseEncounters(doc), nil
}

// ListMoves fetches the moves of one damage class.
func (c *HTTPClient) ListMoves(ctx context.Context, class DamageClass) ([]NamedRef, error) {
	doc, err := c.get(ctx, "move-damage-class", c.url("move-damage-class", strconv.Itoa(int(class))))
	if err != nil {
		return nil, err
	}
	return parseRefs(doc, "moves"), nil
}

// GetMoveDetail fetches /move/{name}.
func (c *HTTPClient) GetMoveDetail(ctx context.Context, name string) (MoveDetail, error) {
	doc, err := c.get(ctx, "move", c.url("move", NormalizeKey(name)))
	if err != nil {
		return MoveDetail{}, err
	}
	return parseMoveDetail(doc), nil
}

// GetMoveDetails fetches several moves concurrently, in the order given.
func (c *HTTPClient) GetMoveDetails(ctx context.Context, names []string) ([]MoveDetail, error) {
	out, err := gather(ctx, c.policy, c.limit, names, c.GetMoveDetail)
	c.countFailures(err)
	return out, err
}

// ListAbilities fetches one page of the ability index.
func (c *HTTPClient) ListAbilities(ctx context.Context, limit, offset int) ([]NamedRef, error) {
	doc, err := c.get(ctx, "ability-list", c.url("ability")+pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	return parseRefs(doc, "results"), nil
}

// GetAbilityDetail fetches /ability/{name}.
func (c *HTTPClient) GetAbilityDetail(ctx context.Context, name string) (AbilityDetail, error) {
	doc, err := c.get(ctx, "ability", c.url("ability", NormalizeKey(name)))
	if err != nil {
		return AbilityDetail{}, err
	}
	return parseAbilityDetail(doc), nil
}

// GetAbilityDetails fetches several abilities concurrently, in the order given.
func (c *HTTPClient) GetAbilityDetails(ctx context.Context, names []string) ([]AbilityDetail, error) {
	out, err := gather(ctx, c.policy, c.limit, names, c.GetAbilityDetail)
	c.countFailures(err)
	return out, err
}

func (c *HTTPClient) countFailures(err error) {
	if err == nil {
		return
	}
	if be, ok := err.(*BatchError); ok {
		c.metrics.batchFailed(len(be.Failures))
		c.logger.Warn("catalog batch partially failed", zap.Int("failures", len(be.Failures)))
		return
	}
	c.metrics.batchFailed(1)
}

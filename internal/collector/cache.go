package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockSentinel/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CacheOptions configures the Redis cache.
type CacheOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// CachedFetcher serves bars and fundamentals from Redis when present and
// stores fresh answers from the wrapped Fetcher. Any cache failure falls
// through to the wrapped Fetcher.
type CachedFetcher struct {
	next   Fetcher
	client *redis.Client
	ttl    time.Duration
	prefix string
	now    func() time.Time
	logger zerolog.Logger
}

// NewCachedFetcher wraps next with a Redis cache.
func NewCachedFetcher(next Fetcher, opts CacheOptions) *CachedFetcher {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
		MaxRetries:  1,
	})
	return newCachedFetcher(next, client, opts)
}

func newCachedFetcher(next Fetcher, client *redis.Client, opts CacheOptions) *CachedFetcher {
	if opts.TTL <= 0 {
		opts.TTL = 6 * time.Hour
	}
	if opts.Prefix == "" {
		opts.Prefix = "stocksentinel:"
	}
	return &CachedFetcher{
		next:   next,
		client: client,
		ttl:    opts.TTL,
		prefix: opts.Prefix,
		now:    time.Now,
		logger: log.With().Str("component", "cache").Logger(),
	}
}

func (c *CachedFetcher) Name() string { return c.next.Name() + "+redis" }

// Close releases the Redis connection pool.
func (c *CachedFetcher) Close() error { return c.client.Close() }

// cachedBar stores missing values as null since JSON has no NaN.
type cachedBar struct {
	Time   int64    `json:"t"`
	Open   *float64 `json:"o"`
	High   *float64 `json:"h"`
	Low    *float64 `json:"l"`
	Close  *float64 `json:"c"`
	Volume *float64 `json:"v"`
}

func toCached(bars []model.OHLCV) []cachedBar {
	out := make([]cachedBar, len(bars))
	for i, b := range bars {
		out[i] = cachedBar{
			Time:   b.Time.Unix(),
			Open:   ptrOrNil(b.Open),
			High:   ptrOrNil(b.High),
			Low:    ptrOrNil(b.Low),
			Close:  ptrOrNil(b.Close),
			Volume: ptrOrNil(b.Volume),
		}
	}
	return out
}

func fromCached(cached []cachedBar) []model.OHLCV {
	out := make([]model.OHLCV, len(cached))
	for i, b := range cached {
		out[i] = model.OHLCV{
			Time:   time.Unix(b.Time, 0).UTC(),
			Open:   orNaN(b.Open),
			High:   orNaN(b.High),
			Low:    orNaN(b.Low),
			Close:  orNaN(b.Close),
			Volume: orNaN(b.Volume),
		}
	}
	return out
}

func ptrOrNil(v float64) *float64 {
	if model.Missing(v) {
		return nil
	}
	return &v
}

func (c *CachedFetcher) key(kind, symbol string, extra ...interface{}) string {
	k := fmt.Sprintf("%s%s:%s:%s:%s", c.prefix, c.next.Name(), kind, symbol, c.now().Format("2006-01-02"))
	for _, e := range extra {
		k += fmt.Sprintf(":%v", e)
	}
	return k
}

func (c *CachedFetcher) get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache entry unreadable")
		return false
	}
	return true
}

func (c *CachedFetcher) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	key := c.key("bars", symbol, days)
	var cached []cachedBar
	if c.get(ctx, key, &cached) {
		return fromCached(cached), nil
	}
	bars, err := c.next.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, toCached(bars))
	return bars, nil
}

func (c *CachedFetcher) FetchFundamentals(ctx context.Context, symbol string) (model.FundamentalSnapshot, error) {
	key := c.key("fundamentals", symbol)
	var cached model.FundamentalSnapshot
	if c.get(ctx, key, &cached) {
		return cached, nil
	}
	f, err := c.next.FetchFundamentals(ctx, symbol)
	if err != nil {
		return f, err
	}
	c.set(ctx, key, f)
	return f, nil
}

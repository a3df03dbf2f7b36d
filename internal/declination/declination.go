// Package declination looks up magnetic declination for a location and
// date from a NOAA-style geomagnetic calculator API. Lookups are
// best-effort: the reconstruction path never depends on them, so every
// failure degrades to "unavailable" at the caller instead of
// propagating as fatal.
package declination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/joemeszaros/speleo-studio-sub003/internal/logging"
)

// DefaultBaseURL is the NOAA geomagnetic field calculator endpoint.
const DefaultBaseURL = "https://www.ngdc.noaa.gov/geomag-web/calculators/calculateDeclination"

var ErrNoResult = errors.New("declination response contained no result")

// response mirrors only the fields this package needs.
type response struct {
	Result []struct {
		Declination float64 `json:"declination"`
	} `json:"result"`
}

// Client queries the declination API with a bounded timeout. The call
// is not retried; callers cache successful results.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     logging.Logger
}

// NewClient builds a client with a 5 second default timeout.
func NewClient(baseURL string, log logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		Log:     log,
	}
}

// Lookup fetches the declination (degrees, east positive) at the given
// latitude/longitude for the given date.
func (c *Client) Lookup(ctx context.Context, lat, lon float64, date time.Time) (float64, error) {
	q := url.Values{}
	q.Set("lat1", fmt.Sprintf("%.6f", lat))
	q.Set("lon1", fmt.Sprintf("%.6f", lon))
	q.Set("startYear", fmt.Sprintf("%d", date.Year()))
	q.Set("startMonth", fmt.Sprintf("%d", int(date.Month())))
	q.Set("startDay", fmt.Sprintf("%d", date.Day()))
	q.Set("resultFormat", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	began := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Log.Warn(ctx, "declination request failed", logging.Err(err))
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("declination API status %d", resp.StatusCode)
		c.Log.Warn(ctx, "declination request rejected", logging.Int("status", resp.StatusCode))
		return 0, err
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		c.Log.Warn(ctx, "declination decode failed", logging.Err(err))
		return 0, err
	}
	if len(r.Result) == 0 {
		return 0, ErrNoResult
	}

	c.Log.Debug(ctx, "declination fetched",
		logging.Float64("lat", lat),
		logging.Float64("lon", lon),
		logging.Float64("declination", r.Result[0].Declination),
		logging.Duration("elapsed", time.Since(began)),
	)
	return r.Result[0].Declination, nil
}

// Cache is the persistence the service reads through; the SQLite store
// implements it.
type Cache interface {
	GetDeclination(ctx context.Context, key string) (float64, bool, error)
	PutDeclination(ctx context.Context, key string, value float64) error
}

// Service combines the client with a cache. Declination varies slowly
// in space and time, so the cache key rounds the location to two
// decimals and the date to the year.
type Service struct {
	client *Client
	cache  Cache
	log    logging.Logger
}

// NewService builds a cached declination service.
func NewService(client *Client, cache Cache, log logging.Logger) *Service {
	if log == nil {
		log = logging.Noop()
	}
	return &Service{client: client, cache: cache, log: log}
}

// Declination returns the declination for the location and date,
// preferring the cache. Cache errors are logged and treated as misses;
// only a failed network lookup surfaces as an error.
func (s *Service) Declination(ctx context.Context, lat, lon float64, date time.Time) (float64, error) {
	key := cacheKey(lat, lon, date)
	if s.cache != nil {
		if value, ok, err := s.cache.GetDeclination(ctx, key); err != nil {
			s.log.Warn(ctx, "declination cache read failed", logging.Err(err))
		} else if ok {
			return value, nil
		}
	}

	value, err := s.client.Lookup(ctx, lat, lon, date)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.PutDeclination(ctx, key, value); err != nil {
			s.log.Warn(ctx, "declination cache write failed", logging.Err(err))
		}
	}
	return value, nil
}

func cacheKey(lat, lon float64, date time.Time) string {
	return fmt.Sprintf("%.2f:%.2f:%d", lat, lon, date.Year())
}

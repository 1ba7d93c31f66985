package nominatim

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"memoria-viva/internal/platform/httpclient"
	"memoria-viva/internal/ports/geocode"
)

var ErrNominatimUpstream = errors.New("nominatim upstream error")

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"

	// Nominatim exige un User-Agent identificable.
	userAgent = "memoria-viva/1.0 (community events geocoding)"
)

type Config struct {
	BaseURL string // opcional; útil para una instancia propia
	Timeout time.Duration
}

// Client implementa geocode.Geocoder contra Nominatim (OpenStreetMap).
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		hc = httpclient.New(cfg.Timeout)
	}
	hc.UserAgent = userAgent
	return &Client{http: hc}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) Geocode(ctx context.Context, query string) (geocode.Point, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return geocode.Point{}, geocode.ErrNoResult
	}

	var results []searchResult
	err := c.http.GetJSON(ctx, "/search", url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}, nil, &results)
	if err != nil {
		return geocode.Point{}, fmt.Errorf("%w: %v", ErrNominatimUpstream, err)
	}
	if len(results) == 0 {
		return geocode.Point{}, geocode.ErrNoResult
	}

	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return geocode.Point{}, fmt.Errorf("%w: invalid coordinates %q,%q", ErrNominatimUpstream, results[0].Lat, results[0].Lon)
	}
	return geocode.Point{Lat: lat, Lng: lng}, nil
}

var _ geocode.Geocoder = (*Client)(nil)

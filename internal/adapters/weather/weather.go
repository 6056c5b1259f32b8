// Package weather fetches daily forecasts from an Open-Meteo compatible endpoint
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meitanbot/internal/core/version"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/platform/logger"
)

const (
	defaultBaseURL  = "https://api.open-meteo.com"
	defaultTimezone = "Asia/Tokyo"
	defaultTimeout  = 10 * time.Second
	forecastDays    = 3
)

// Options configures the Client; coordinates default to Tokyo
type Options struct {
	BaseURL   string
	Place     string
	Latitude  float64
	Longitude float64
	Timezone  string
	Timeout   time.Duration
}

// Forecast is one day of the daily forecast
type Forecast struct {
	Date    string
	Place   string
	Summary string
	MaxC    float64
	MinC    float64
	PoP     int
}

// Client fetches forecasts
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// New returns a client with defaults filled in
func New(hc *http.Client, o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Latitude == 0 && o.Longitude == 0 {
		o.Latitude, o.Longitude = 35.6895, 139.6917
	}
	if o.Place == "" {
		o.Place = "東京"
	}
	if o.Timezone == "" {
		o.Timezone = defaultTimezone
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{http: hc, opts: o, log: *logger.Named("weather")}
}

type dailyResponse struct {
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		PoP         []*int    `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Forecast returns the forecast aheadDays from today (0 today, 1 tomorrow, 2 the day after)
func (c *Client) Forecast(ctx context.Context, aheadDays int) (Forecast, error) {
	if aheadDays < 0 || aheadDays >= forecastDays {
		return Forecast{}, perr.InvalidArgf("weather: ahead days %d out of range", aheadDays)
	}
	q := url.Values{
		"latitude":      {strconv.FormatFloat(c.opts.Latitude, 'f', 4, 64)},
		"longitude":     {strconv.FormatFloat(c.opts.Longitude, 'f', 4, 64)},
		"daily":         {"weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max"},
		"timezone":      {c.opts.Timezone},
		"forecast_days": {strconv.Itoa(forecastDays)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return Forecast{}, perr.Wrap(err, perr.ErrorCodeConfig, "weather: new request")
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Forecast{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "weather: request")
	}
	defer func() { _ = resp.Body.Close() }()
	c.log.Debug().Int("status", resp.StatusCode).Dur("latency", time.Since(start)).Int("ahead", aheadDays).
		Msg("weather http response")

	if resp.StatusCode != http.StatusOK {
		return Forecast{}, perr.Newf(perr.CodeFromHTTPStatus(resp.StatusCode), "weather: status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Forecast{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "weather: read body")
	}
	var dr dailyResponse
	if err := json.Unmarshal(b, &dr); err != nil {
		return Forecast{}, perr.Wrap(err, perr.ErrorCodeJSON, "weather: decode")
	}
	d := dr.Daily
	i := aheadDays
	if i >= len(d.Time) || i >= len(d.WeatherCode) || i >= len(d.TempMax) || i >= len(d.TempMin) {
		return Forecast{}, perr.Unavailablef("weather: forecast has no day %d", aheadDays)
	}
	f := Forecast{
		Date:    d.Time[i],
		Place:   c.opts.Place,
		Summary: Summary(d.WeatherCode[i]),
		MaxC:    d.TempMax[i],
		MinC:    d.TempMin[i],
		PoP:     -1,
	}
	if i < len(d.PoP) && d.PoP[i] != nil {
		f.PoP = *d.PoP[i]
	}
	return f, nil
}

// Vars renders the forecast into template variables
func (f Forecast) Vars() map[string]string {
	pop := "-"
	if f.PoP >= 0 {
		pop = strconv.Itoa(f.PoP)
	}
	return map[string]string{
		"place":   f.Place,
		"summary": f.Summary,
		"max":     fmt.Sprintf("%.0f", f.MaxC),
		"min":     fmt.Sprintf("%.0f", f.MinC),
		"pop":     pop,
	}
}

// Summary maps a WMO weather code to a short Japanese description
func Summary(code int) string {
	switch {
	case code == 0:
		return "快晴"
	case code <= 2:
		return "晴れ"
	case code == 3:
		return "くもり"
	case code == 45 || code == 48:
		return "霧"
	case code >= 51 && code <= 57:
		return "霧雨"
	case code >= 61 && code <= 67, code >= 80 && code <= 82:
		return "雨"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "雪"
	case code >= 95:
		return "雷雨"
	default:
		return "不明"
	}
}

package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CropPulse/internal/domain/models"
	domsvc "CropPulse/internal/domain/service"
	xhttp "CropPulse/pkg/http"
	applogger "CropPulse/pkg/logger"
	"CropPulse/pkg/util"
)

const (
	// SourceName tags successful readings.
	SourceName = "OpenWeatherMap API"
	// ReachDays bounds how far from today current/forecast data is usable.
	ReachDays = 5
)

// Client implements WeatherProvider on the OpenWeatherMap REST API.
// Past dates within reach use /weather, today and future dates use /forecast.
type Client struct {
	apiKey  string
	baseURL string
	catalog *models.Catalog
	http    *xhttp.Client
	now     func() time.Time
	l       *applogger.Logger
}

func New(apiKey, baseURL string, timeout time.Duration, catalog *models.Catalog) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		catalog: catalog,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		now:     time.Now,
	}
}

// SetLogger injects a structured logger.
func (c *Client) SetLogger(l *applogger.Logger) { c.l = l }

type owmRain struct {
	OneHour   *float64 `json:"1h"`
	ThreeHour *float64 `json:"3h"`
}

type owmMain struct {
	Temp *float64 `json:"temp"`
}

type owmWeather struct {
	Description string `json:"description"`
}

type owmItem struct {
	Main    *owmMain     `json:"main"`
	Weather []owmWeather `json:"weather"`
	Rain    *owmRain     `json:"rain"`
}

// owmResponse covers both the current weather and the 5-day forecast payloads.
type owmResponse struct {
	owmItem
	List []owmItem `json:"list"`
}

// Fetch never fails; problems come back as an unsuccessful reading with the fallback rainfall.
func (c *Client) Fetch(ctx context.Context, state string, date time.Time) models.WeatherReading {
	co, ok := c.catalog.Coordinates(state)
	if !ok {
		return models.WeatherReading{Success: false, Error: fmt.Sprintf("Coordinates not available for %s", state)}
	}
	if c.apiKey == "" {
		return models.FailedWeather("Weather API key not configured")
	}

	daysDiff := int(math.Floor(date.Sub(c.now()).Hours() / 24))
	if daysDiff > ReachDays || daysDiff < -ReachDays {
		return models.FailedWeather(fmt.Sprintf("Date is too far (%d days). API data not available.", abs(daysDiff)))
	}

	endpoint := "/forecast"
	if daysDiff < 0 {
		endpoint = "/weather"
	}

	var resp owmResponse
	err := c.http.GetJSON(ctx, c.baseURL+endpoint, url.Values{
		"lat":   {strconv.FormatFloat(co.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(co.Lon, 'f', -1, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}, &resp)
	if err != nil {
		if c.l != nil {
			c.l.Warn("weather lookup failed",
				applogger.String("state", state),
				applogger.String("endpoint", endpoint),
				applogger.Error(err),
			)
		}
		var se *xhttp.StatusError
		if errors.As(err, &se) || errors.Is(err, context.DeadlineExceeded) {
			return models.FailedWeather(fmt.Sprintf("API Error: %v", err))
		}
		return models.FailedWeather(fmt.Sprintf("Error fetching weather data: %v", err))
	}

	reading := models.WeatherReading{
		Success:     true,
		Rainfall:    util.Round2(rainfall(resp)),
		Description: description(resp),
		State:       state,
		Date:        util.FormatDate(date),
		Source:      SourceName,
	}
	if t := temperature(resp); t != nil {
		v := util.RoundN(*t, 1)
		reading.Temperature = &v
	}
	return reading
}

// rainfall prefers the current 1h then 3h reading, else the mean 3h rain across forecast slots.
func rainfall(r owmResponse) float64 {
	if r.Rain != nil {
		if r.Rain.OneHour != nil && *r.Rain.OneHour != 0 {
			return *r.Rain.OneHour
		}
		if r.Rain.ThreeHour != nil {
			return *r.Rain.ThreeHour
		}
		return 0
	}
	if len(r.List) == 0 {
		return 0
	}
	var sum float64
	for _, it := range r.List {
		if it.Rain != nil && it.Rain.ThreeHour != nil {
			sum += *it.Rain.ThreeHour
		}
	}
	return sum / float64(len(r.List))
}

func temperature(r owmResponse) *float64 {
	if r.Main != nil {
		return r.Main.Temp
	}
	if len(r.List) > 0 && r.List[0].Main != nil {
		return r.List[0].Main.Temp
	}
	return nil
}

func description(r owmResponse) string {
	if len(r.Weather) > 0 {
		return r.Weather[0].Description
	}
	if len(r.List) > 0 && len(r.List[0].Weather) > 0 {
		return r.List[0].Weather[0].Description
	}
	return ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

var _ domsvc.WeatherProvider = (*Client)(nil)

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/activity-ranking/internal/ranker"
	"github.com/i474232898/activity-ranking/internal/store"
	"github.com/i474232898/activity-ranking/internal/weather"
)

var validate = validator.New()

// Ranker ranks activities for coordinates or addresses.
type Ranker interface {
	RankCoordinates(ctx context.Context, lat, lon float64) (ranker.Result, error)
	RankAddress(ctx context.Context, address string) (ranker.Result, error)
}

// ProbeReader reads recorded upstream probe results.
type ProbeReader interface {
	GetLatest(upstream string) (weather.ProbeResult, error)
	Query(upstream string, f store.ProbeFilter) ([]weather.ProbeResult, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Ranker, probes ProbeReader) {
	v1 := app.Group("/api/v1")

	v1.Get("/activities/rank", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := service.RankCoordinates(c.UserContext(), *q.Latitude, *q.Longitude)
		if err != nil {
			return err
		}

		return c.JSON(result)
	})

	v1.Get("/activities/rank/address", func(c *fiber.Ctx) error {
		q := addressQuery{Address: c.Query("address")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := service.RankAddress(c.UserContext(), q.Address)
		if err != nil {
			return err
		}

		return c.JSON(result)
	})

	v1.Get("/status/probes", func(c *fiber.Ctx) error {
		q, err := parseProbeQuery(c, time.Now().UTC())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results, err := probes.Query(q.Upstream, q.filter())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no probe results match the request")
			}
			return err
		}

		return c.JSON(fiber.Map{
			"upstream": q.Upstream,
			"from":     q.From,
			"to":       q.To,
			"summary":  store.Summarize(results),
			"probes":   results,
		})
	})
}

// RegisterHealth serves service status together with the latest probe of upstream.
func RegisterHealth(app *fiber.App, name, upstream string, probes ProbeReader) {
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":  "ok",
			"service": name,
		}
		if latest, err := probes.GetLatest(upstream); err == nil {
			body["upstream"] = latest
		}
		return c.JSON(body)
	})
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	Latitude  *float64 `validate:"required,min=-90,max=90"`
	Longitude *float64 `validate:"required,min=-180,max=180"`
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	lat, err := parseCoordinate("latitude", c.Query("latitude"))
	if err != nil {
		return q, err
	}
	lon, err := parseCoordinate("longitude", c.Query("longitude"))
	if err != nil {
		return q, err
	}
	q.Latitude = lat
	q.Longitude = lon

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// parseCoordinate returns nil for an empty value so that validation reports it as missing.
func parseCoordinate(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s must be a finite number", name)
	}
	return &v, nil
}

type addressQuery struct {
	Address string `validate:"required,max=512"`
}

// defaultProbeSpan is how far back the probe history goes without a from parameter.
const defaultProbeSpan = 24 * time.Hour

// probeQuery holds query parameters for the probe history endpoint.
type probeQuery struct {
	Upstream   string        `validate:"required"`
	From       time.Time     `validate:"required"`
	To         time.Time     `validate:"required,gtefield=From"`
	Status     string        `validate:"omitempty,oneof=ok failed"`
	MinLatency time.Duration `validate:"gte=0"`
}

func parseProbeQuery(c *fiber.Ctx, now time.Time) (probeQuery, error) {
	q := probeQuery{
		Upstream: c.Query("upstream"),
		Status:   c.Query("status"),
		From:     now.Add(-defaultProbeSpan),
		To:       now,
	}

	var err error
	if v := c.Query("from"); v != "" {
		if q.From, err = parseInstant(v, now); err != nil {
			return q, fmt.Errorf("from: %w", err)
		}
	}
	if v := c.Query("to"); v != "" {
		if q.To, err = parseInstant(v, now); err != nil {
			return q, fmt.Errorf("to: %w", err)
		}
	}
	if v := c.Query("minLatency"); v != "" {
		if q.MinLatency, err = time.ParseDuration(v); err != nil {
			return q, fmt.Errorf("minLatency: %w", err)
		}
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func (q probeQuery) filter() store.ProbeFilter {
	f := store.ProbeFilter{From: q.From, To: q.To, MinLatency: q.MinLatency}
	if q.Status != "" {
		ok := q.Status == "ok"
		f.OK = &ok
	}
	return f
}

// parseInstant accepts RFC3339, Unix seconds, or a duration meaning that long before now.
func parseInstant(s string, now time.Time) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, errors.New("invalid time; use RFC3339, unix seconds or a duration such as 6h")
}

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/utils"
)

// Client resolves driving distance between two street addresses.
type Client interface {
	DistanceKM(ctx context.Context, origin, destination string) (int, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client

	// Collapses concurrent lookups for the same address pair.
	group singleflight.Group
}

func NewClient(log *logger.Logger) (Client, error) {
	clientLog := log.With("client", "GeocodeClient")

	apiKey := strings.TrimSpace(utils.GetEnv("GEOCODE_API_KEY", "", log))
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEOCODE_API_KEY")
	}

	baseURL := strings.TrimRight(utils.GetEnv("GEOCODE_BASE_URL", "https://api.distancematrix.ai", log), "/")

	return &client{
		log:     clientLog,
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

type distanceResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				// Meters.
				Value float64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

func (c *client) DistanceKM(ctx context.Context, origin, destination string) (int, error) {
	key := origin + "|" + destination
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.lookup(ctx, origin, destination)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (c *client) lookup(ctx context.Context, origin, destination string) (int, error) {
	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("key", c.apiKey)

	endpoint := c.baseURL + "/maps/api/distancematrix/json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("distance lookup failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error("Distance API error", "status", resp.StatusCode)
		return 0, fmt.Errorf("distance lookup: status %d", resp.StatusCode)
	}

	var parsed distanceResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return 0, fmt.Errorf("decode distance response: %w", err)
	}
	if parsed.Status != "OK" || len(parsed.Rows) == 0 || len(parsed.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("distance lookup: bad response status %q", parsed.Status)
	}
	element := parsed.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, fmt.Errorf("distance lookup: element status %q", element.Status)
	}

	km := int(math.Ceil(element.Distance.Value / 1000.0))
	if km < 1 {
		km = 1
	}
	return km, nil
}

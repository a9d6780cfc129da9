package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/banshee-data/vehicle.sim/internal/db"
	"github.com/banshee-data/vehicle.sim/internal/httputil"
	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/units"
)

// Client reads stored runs from a sim-server.
type Client struct {
	baseURL string
	http    httputil.HTTPClient
}

// NewClient returns a Client for the server at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string, c httputil.HTTPClient) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: c}
}

func (c *Client) runURL(id string, view string) string {
	u := c.baseURL + "/api/runs/" + url.PathEscape(id)
	if view != "" {
		u += "/" + view
	}
	return u
}

// Run fetches a run's metadata and summary.
func (c *Client) Run(ctx context.Context, id string) (*db.Run, error) {
	var run db.Run
	if err := httputil.GetJSON(ctx, c.http, c.runURL(id, ""), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Records fetches a run's step records with speeds in m/s.
func (c *Client) Records(ctx context.Context, id string) ([]sim.StepRecord, error) {
	var resp RecordsResponse
	if err := httputil.GetJSON(ctx, c.http, c.runURL(id, "records")+"?units="+units.MPS, &resp); err != nil {
		return nil, err
	}
	if resp.Units != units.MPS {
		return nil, fmt.Errorf("server returned speeds in %q, want %q", resp.Units, units.MPS)
	}
	return resp.Records, nil
}

// Package topledger fetches daily stablecoin usage rows from the
// TopLedger analytics API.
package topledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wnt/stablewatch/internal/utils"
)

// Client is a client for the TopLedger query results endpoint
type Client struct {
	httpClient *utils.HTTPClient
	url        string
}

// New creates a new TopLedger client for the given results URL. The
// URL carries the query id and API key as issued by TopLedger.
func New(url string) *Client {
	return &Client{
		httpClient: utils.NewHTTPClient(
			utils.WithTimeout(60*time.Second),
			utils.WithDefaultHeaders(map[string]string{
				"Content-Type": "application/json",
			}),
		),
		url: url,
	}
}

// envelope mirrors the known shapes a query result can arrive in. The
// row array may sit at query_result.data.rows, data.rows, rows, or be
// the whole body.
type envelope struct {
	QueryResult *struct {
		Data *struct {
			Rows []map[string]any `json:"rows"`
		} `json:"data"`
	} `json:"query_result"`
	Data *struct {
		Rows []map[string]any `json:"rows"`
	} `json:"data"`
	Rows []map[string]any `json:"rows"`
}

// FetchRows fetches the current result set and unwraps the row array.
// A transport failure or non-2xx status is an error; an empty row
// array is not.
func (c *Client) FetchRows(ctx context.Context) ([]map[string]any, error) {
	response, err := c.httpClient.GetContext(ctx, c.url, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("analytics API request failed: %w", err)
	}

	rows, err := unwrapRows(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode analytics response: %w", err)
	}

	return rows, nil
}

// unwrapRows probes the known envelope paths in order and accepts the
// first one present.
func unwrapRows(body []byte) ([]map[string]any, error) {
	// A bare top-level array is valid.
	var bare []map[string]any
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	switch {
	case env.QueryResult != nil && env.QueryResult.Data != nil && env.QueryResult.Data.Rows != nil:
		return env.QueryResult.Data.Rows, nil
	case env.Data != nil && env.Data.Rows != nil:
		return env.Data.Rows, nil
	case env.Rows != nil:
		return env.Rows, nil
	}

	// A single bare object is treated as a one-row result.
	var single map[string]any
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []map[string]any{single}, nil
}

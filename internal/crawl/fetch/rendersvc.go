package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadscout-engine/internal/domain"
)

// RenderAPIStage proxies the fetch through a paid rendering service. Last
// resort only: it costs money per request, but it renders JS and routes
// around most bot walls.
type RenderAPIStage struct {
	hc       *http.Client
	endpoint string
	zone     string
	token    string
}

func NewRenderAPIStage(endpoint, zone, token string, timeout time.Duration) *RenderAPIStage {
	return &RenderAPIStage{
		hc:       &http.Client{Timeout: timeout},
		endpoint: endpoint,
		zone:     zone,
		token:    token,
	}
}

func (s *RenderAPIStage) Method() domain.FetchMethod { return domain.MethodPaidAPI }

func (s *RenderAPIStage) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if s.token == "" {
		return Page{}, errors.New("render api token not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"zone":   s.zone,
		"url":    rawURL,
		"format": "raw",
	})
	if err != nil {
		return Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Page{}, fmt.Errorf("render api request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("render api post: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return Page{}, fmt.Errorf("render api status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("render api read body: %w", err)
	}

	return Page{FinalURL: rawURL, HTML: string(body)}, nil
}

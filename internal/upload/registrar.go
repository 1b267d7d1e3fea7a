package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/kbloader/internal/env"
	"github.com/dmitrijs2005/kbloader/internal/netx"
)

// SubmitPath is the catalog endpoint that registers a published blob.
const SubmitPath = "/api/v1/file/submit"

// Registration is the request body of a catalog submission.
type Registration struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	ParentID int64  `json:"parentId"`
	Size     int64  `json:"size"`
	MD5      string `json:"md5"`
}

// Registrar registers published blobs with the knowledge-base catalog.
type Registrar interface {
	Register(ctx context.Context, cfg env.CatalogConfig, userID string, req Registration) (map[string]any, error)
}

// HTTPRegistrar talks to the catalog's JSON API.
type HTTPRegistrar struct {
	client *http.Client
}

func NewHTTPRegistrar(client *http.Client) *HTTPRegistrar {
	return &HTTPRegistrar{client: client}
}

// Register submits req on behalf of userID. A 2xx reply is decoded as a JSON
// object; an empty reply yields an empty map.
func (r *HTTPRegistrar) Register(ctx context.Context, cfg env.CatalogConfig, userID string, req Registration) (map[string]any, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &RegistrationError{Err: fmt.Errorf("encode request: %w", err)}
	}

	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-User-ID", userID)
	if cfg.Token != "" {
		h.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := netx.Send(ctx, r.client, http.MethodPost, strings.TrimRight(cfg.Host, "/")+SubmitPath, h, payload)
	if err != nil {
		return nil, &RegistrationError{Err: err}
	}
	if !resp.OK() {
		return nil, &RegistrationError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	out := map[string]any{}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, &RegistrationError{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return out, nil
}

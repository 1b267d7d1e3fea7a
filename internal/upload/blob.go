package upload

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/kbloader/internal/env"
	"github.com/dmitrijs2005/kbloader/internal/netx"
)

// ContentType is the media type blobs are published with.
const ContentType = "application/pdf"

// BlobPublisher stores raw entry bytes under a remote key.
type BlobPublisher interface {
	Publish(ctx context.Context, key string, body []byte) error
}

// PublisherFactory builds the BlobPublisher for a blob configuration.
type PublisherFactory func(ctx context.Context, cfg env.BlobConfig, client *http.Client) (BlobPublisher, error)

// NewBlobPublisher picks the publisher matching cfg.Driver.
func NewBlobPublisher(ctx context.Context, cfg env.BlobConfig, client *http.Client) (BlobPublisher, error) {
	switch driver := strings.ToLower(strings.TrimSpace(cfg.Driver)); driver {
	case "", env.DriverHTTP:
		return NewHTTPBlobPublisher(cfg, client), nil
	case env.DriverS3:
		return NewS3BlobPublisher(ctx, cfg.S3, client)
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", cfg.Driver)
	}
}

// HTTPBlobPublisher uploads through the blob service's file API:
//
//	PUT {domain}/api/v2/file/{ak}/{tag}/{key}
type HTTPBlobPublisher struct {
	domain    string
	accessKey string
	tag       string
	client    *http.Client
}

func NewHTTPBlobPublisher(cfg env.BlobConfig, client *http.Client) *HTTPBlobPublisher {
	return &HTTPBlobPublisher{
		domain:    strings.TrimRight(cfg.Domain, "/"),
		accessKey: cfg.AccessKey,
		tag:       cfg.Tag,
		client:    client,
	}
}

// URL returns the upload address for key. Each path segment is escaped.
func (p *HTTPBlobPublisher) URL(key string) string {
	segs := append([]string{"api", "v2", "file", p.accessKey, p.tag}, strings.Split(key, "/")...)
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return p.domain + "/" + strings.Join(segs, "/")
}

func (p *HTTPBlobPublisher) Publish(ctx context.Context, key string, body []byte) error {
	h := http.Header{}
	h.Set("Content-Type", ContentType)

	resp, err := netx.Send(ctx, p.client, http.MethodPut, p.URL(key), h, body)
	if err != nil {
		return &BlobPublishError{Err: err}
	}
	if !resp.OK() {
		return &BlobPublishError{StatusCode: resp.StatusCode, Status: resp.StatusText()}
	}
	return nil
}

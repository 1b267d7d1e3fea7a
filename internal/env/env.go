// Package env resolves named deployment profiles into the endpoint settings
// used by the upload pipeline.
//
// A profiles file maps a profile name ("test", "prod", ...) to blob-store and
// knowledge-base settings:
//
//	{
//	  // blob store
//	  "test": {
//	    "tiefblue":       {"domain": "https://blob.test", "ak": "key", "tag": "kb"},
//	    "knowledge_base": {"host": "https://kb.test", "token": ""},
//	  },
//	}
//
// JSON files may contain comments and trailing commas. Files with a .yaml or
// .yml extension are parsed as YAML with the same field names.
package env

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ProfileTest = "test"
	ProfileProd = "prod"
)

const (
	DriverHTTP = "http"
	DriverS3   = "s3"
)

var (
	ErrUnknownProfile = errors.New("unknown environment profile")
	ErrIncomplete     = errors.New("incomplete environment profile")
	ErrNoProfiles     = errors.New("no environment profiles loaded")
)

// S3Config addresses an S3-compatible bucket for the "s3" blob driver.
type S3Config struct {
	Bucket          string `json:"bucket" yaml:"bucket"`
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// BlobConfig holds blob-store settings. Domain, AccessKey and Tag address
// the HTTP file API; S3 is used when Driver is DriverS3.
type BlobConfig struct {
	Driver    string   `json:"driver" yaml:"driver"`
	Domain    string   `json:"domain" yaml:"domain"`
	AccessKey string   `json:"ak" yaml:"ak"`
	Tag       string   `json:"tag" yaml:"tag"`
	S3        S3Config `json:"s3" yaml:"s3"`
}

// CatalogConfig holds knowledge-base settings. Token is optional.
type CatalogConfig struct {
	Host  string `json:"host" yaml:"host"`
	Token string `json:"token" yaml:"token"`
}

// EnvironmentConfig is one resolved profile. It is a read-only value.
type EnvironmentConfig struct {
	Name    string        `json:"-" yaml:"-"`
	Blob    BlobConfig    `json:"tiefblue" yaml:"tiefblue"`
	Catalog CatalogConfig `json:"knowledge_base" yaml:"knowledge_base"`
}

// BlobDriver returns the configured driver, defaulting to DriverHTTP.
func (c *EnvironmentConfig) BlobDriver() string {
	d := strings.ToLower(strings.TrimSpace(c.Blob.Driver))
	if d == "" {
		return DriverHTTP
	}
	return d
}

// Validate checks that every endpoint setting required for an upload run is
// present.
func (c *EnvironmentConfig) Validate() error {
	var missing []string

	switch c.BlobDriver() {
	case DriverHTTP:
		if c.Blob.Domain == "" {
			missing = append(missing, "tiefblue.domain")
		}
		if c.Blob.AccessKey == "" {
			missing = append(missing, "tiefblue.ak")
		}
		if c.Blob.Tag == "" {
			missing = append(missing, "tiefblue.tag")
		}
	case DriverS3:
		if c.Blob.S3.Bucket == "" {
			missing = append(missing, "tiefblue.s3.bucket")
		}
	default:
		return fmt.Errorf("%w: %s: unsupported blob driver %q", ErrIncomplete, c.Name, c.Blob.Driver)
	}

	if c.Catalog.Host == "" {
		missing = append(missing, "knowledge_base.host")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: missing %s", ErrIncomplete, c.Name, strings.Join(missing, ", "))
	}
	return nil
}

package netx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSend(t *testing.T) {
	payload := []byte("%PDF-1.4")

	t.Run("success 200 OK", func(t *testing.T) {
		var gotBody []byte
		var gotCT string
		var gotMethod string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			body, _ := io.ReadAll(r.Body)
			_ = r.Body.Close()
			gotBody = body
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer ts.Close()

		h := http.Header{}
		h.Set("Content-Type", "application/pdf")
		resp, err := Send(context.Background(), ts.Client(), http.MethodPut, ts.URL+"/x", h, payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.OK() {
			t.Fatalf("status = %d, want 2xx", resp.StatusCode)
		}
		if gotMethod != http.MethodPut {
			t.Fatalf("method = %q, want PUT", gotMethod)
		}
		if gotCT != "application/pdf" {
			t.Fatalf("Content-Type = %q, want application/pdf", gotCT)
		}
		if !bytes.Equal(gotBody, payload) {
			t.Fatalf("body = %q, want %q", string(gotBody), string(payload))
		}
		if string(resp.Body) != `{"ok":true}` {
			t.Fatalf("response body = %q", string(resp.Body))
		}
	})

	t.Run("non-2xx is not an error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("denied"))
		}))
		defer ts.Close()

		resp, err := Send(context.Background(), nil, http.MethodPost, ts.URL, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.OK() {
			t.Fatal("403 reported as OK")
		}
		if resp.StatusText() != "Forbidden" {
			t.Fatalf("status text = %q, want Forbidden", resp.StatusText())
		}
		if string(resp.Body) != "denied" {
			t.Fatalf("body = %q, want denied", string(resp.Body))
		}
	})

	t.Run("invalid URL -> error", func(t *testing.T) {
		_, err := Send(context.Background(), nil, http.MethodPut, "://bad-url", nil, payload)
		if err == nil {
			t.Fatal("expected error for invalid URL, got nil")
		}
	})

	t.Run("context deadline -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer ts.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		if _, err := Send(ctx, ts.Client(), http.MethodGet, ts.URL, nil, nil); err == nil {
			t.Fatal("expected deadline error, got nil")
		}
	})
}

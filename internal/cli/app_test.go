package cli

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/kbloader/internal/archive"
	"github.com/dmitrijs2005/kbloader/internal/catalog"
	"github.com/dmitrijs2005/kbloader/internal/config"
	"github.com/dmitrijs2005/kbloader/internal/env"
	"github.com/dmitrijs2005/kbloader/internal/ledger"
	"github.com/dmitrijs2005/kbloader/internal/logging"
	"github.com/dmitrijs2005/kbloader/internal/upload"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "bundle.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

type testEnv struct {
	app       *App
	out       *bytes.Buffer
	blobCalls *atomic.Int64
	kbCalls   *atomic.Int64
}

func newTestApp(t *testing.T, withHistory bool, opts ...upload.Option) *testEnv {
	t.Helper()

	var blobCalls, kbCalls atomic.Int64
	blob := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		blobCalls.Add(1)
		if strings.HasSuffix(r.URL.Path, "/broken.pdf") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	kb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kbCalls.Add(1)
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	t.Cleanup(func() {
		blob.Close()
		kb.Close()
	})

	resolver := env.NewResolver(map[string]env.EnvironmentConfig{
		env.ProfileTest: {
			Blob:    env.BlobConfig{Domain: blob.URL, AccessKey: "ak", Tag: "kb"},
			Catalog: env.CatalogConfig{Host: kb.URL},
		},
		env.ProfileProd: {
			Blob:    env.BlobConfig{Domain: blob.URL, AccessKey: "ak", Tag: "kb"},
			Catalog: env.CatalogConfig{Host: kb.URL, Token: "prod-token"},
		},
	})

	var history *ledger.Store
	if withHistory {
		var err error
		history, err = ledger.Open(context.Background(), ":memory:")
		require.NoError(t, err)
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.UserID = "113776"
	cfg.ParentID = "123662"
	cfg.PhaseTimeout = 5 * time.Second

	out := &bytes.Buffer{}
	app := newApp(cfg, logging.Nop{}, out, false, resolver, history, blob.Client(), opts...)
	t.Cleanup(app.Close)

	return &testEnv{app: app, out: out, blobCalls: &blobCalls, kbCalls: &kbCalls}
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestApp_LoadAndList(t *testing.T) {
	te := newTestApp(t, false)
	path := writeZip(t, map[string]string{
		"docs/a.pdf":       "aaaa",
		"notes.txt":        "hello",
		"__MACOSX/._a.pdf": "meta",
		"docs/.DS_Store":   "ds",
	})
	ctx := context.Background()

	require.NoError(t, te.app.Load(ctx, path))
	out := te.out.String()

	assert.Contains(t, out, "Loaded 4 files")
	assert.Contains(t, out, "Files (2 files, 2 system files hidden) | 1 PDF")
	assert.Contains(t, out, "docs/a.pdf [PDF]")
	assert.Contains(t, out, md5hex("aaaa"))
	assert.Contains(t, out, labelPending)
	assert.NotContains(t, out, "__MACOSX")

	te.out.Reset()
	require.NoError(t, te.app.List(ctx, true))
	assert.Contains(t, te.out.String(), "Files (4 files) | 1 PDF")
	assert.Contains(t, te.out.String(), "__MACOSX/._a.pdf")
}

func TestApp_LoadErrorsEmptyCatalog(t *testing.T) {
	te := newTestApp(t, false)
	ctx := context.Background()

	require.NoError(t, te.app.Load(ctx, writeZip(t, map[string]string{"a.pdf": "x"})))
	assert.Equal(t, 1, te.app.catalog.Stats().Total)

	bad := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip at all"), 0o600))

	err := te.app.Load(ctx, bad)
	assert.ErrorIs(t, err, archive.ErrArchiveDecode)
	assert.Zero(t, te.app.catalog.Stats().Total)
	assert.ErrorIs(t, te.app.List(ctx, false), errNoArchive)

	err = te.app.Load(ctx, filepath.Join(t.TempDir(), "notes.txt"))
	assert.ErrorIs(t, err, archive.ErrNotZip)
}

func TestApp_UploadFlow(t *testing.T) {
	te := newTestApp(t, true)
	ctx := context.Background()

	require.NoError(t, te.app.Load(ctx, writeZip(t, map[string]string{
		"a.pdf":      "aaaa",
		"broken.pdf": "bbbb",
		"readme.txt": "r",
	})))
	te.out.Reset()

	require.NoError(t, te.app.Upload(ctx))
	out := te.out.String()
	assert.Contains(t, out, "uploading blob... a.pdf")
	assert.Contains(t, out, "✓ done a.pdf -> knowledge_base/")
	assert.Contains(t, out, "✗ failed: blob publish failed: 500 Internal Server Error broken.pdf")
	assert.Contains(t, out, "Uploaded 1 of 2 files (1 failed)")
	assert.EqualValues(t, 2, te.blobCalls.Load())
	assert.EqualValues(t, 1, te.kbCalls.Load())

	a, _ := te.app.catalog.Get("a.pdf")
	assert.Equal(t, catalog.StateSucceeded, a.State)

	te.out.Reset()
	require.NoError(t, te.app.Upload(ctx))
	assert.Contains(t, te.out.String(), "No PDF files pending upload")
	assert.EqualValues(t, 2, te.blobCalls.Load(), "second run must not reselect entries")

	te.out.Reset()
	require.NoError(t, te.app.List(ctx, false))
	assert.Contains(t, te.out.String(), "| 2 PDF (1 uploaded)")

	te.out.Reset()
	require.NoError(t, te.app.History(ctx, 10))
	hist := te.out.String()
	assert.Contains(t, hist, "a.pdf")
	assert.Contains(t, hist, "failed: blob publish failed")

	te.out.Reset()
	require.NoError(t, te.app.HistoryOf(ctx, md5hex("aaaa")))
	byFile := te.out.String()
	assert.Contains(t, byFile, "a.pdf")
	assert.NotContains(t, byFile, "broken.pdf")

	te.out.Reset()
	require.NoError(t, te.app.HistoryOf(ctx, md5hex("never uploaded")))
	assert.Contains(t, te.out.String(), "No uploads recorded for "+md5hex("never uploaded"))

	te.out.Reset()
	require.NoError(t, te.app.ClearHistory(ctx))
	require.NoError(t, te.app.History(ctx, 10))
	assert.Contains(t, te.out.String(), "Upload history is empty")
}

func TestApp_UploadProgressShowsRemaining(t *testing.T) {
	te := newTestApp(t, false)
	ctx := context.Background()

	require.NoError(t, te.app.Load(ctx, writeZip(t, map[string]string{
		"a.pdf":      "aaaa",
		"broken.pdf": "bbbb",
	})))
	te.out.Reset()

	require.NoError(t, te.app.Upload(ctx))
	lines := strings.Split(strings.TrimSpace(te.out.String()), "\n")
	require.Len(t, lines, 6)

	assert.Equal(t, "  uploading blob... a.pdf [2 left]", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  registering... a.pdf -> knowledge_base/"))
	assert.True(t, strings.HasSuffix(lines[1], " [2 left]"))
	assert.True(t, strings.HasPrefix(lines[2], "  ✓ done a.pdf -> knowledge_base/"))
	assert.True(t, strings.HasSuffix(lines[2], " [1 left]"))
	assert.Equal(t, "  uploading blob... broken.pdf [1 left]", lines[3])
	assert.True(t, strings.HasSuffix(lines[4], "broken.pdf [0 left]"))
	assert.Equal(t, "Uploaded 1 of 2 files (1 failed)", lines[5])
}

func TestApp_UploadWithoutUser(t *testing.T) {
	te := newTestApp(t, false)
	ctx := context.Background()

	require.NoError(t, te.app.Load(ctx, writeZip(t, map[string]string{"a.pdf": "aaaa"})))
	te.app.SetUser("")

	err := te.app.Upload(ctx)
	assert.ErrorIs(t, err, upload.ErrConfiguration)
	assert.Zero(t, te.blobCalls.Load())
	assert.Zero(t, te.kbCalls.Load())

	a, _ := te.app.catalog.Get("a.pdf")
	assert.Equal(t, catalog.StatePending, a.State)
}

func TestApp_UploadUnknownEnvironment(t *testing.T) {
	te := newTestApp(t, false)
	ctx := context.Background()

	require.NoError(t, te.app.Load(ctx, writeZip(t, map[string]string{"a.pdf": "aaaa"})))
	te.app.envName = "staging"

	err := te.app.Upload(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, upload.ErrConfiguration)
	assert.ErrorIs(t, err, env.ErrUnknownProfile)
	assert.Contains(t, err.Error(), `environment "staging"`)
	assert.Zero(t, te.blobCalls.Load())

	a, _ := te.app.catalog.Get("a.pdf")
	assert.Equal(t, catalog.StatePending, a.State)
}

func TestApp_UploadWithoutArchive(t *testing.T) {
	te := newTestApp(t, false)
	assert.ErrorIs(t, te.app.Upload(context.Background()), errNoArchive)
}

func TestApp_Env(t *testing.T) {
	te := newTestApp(t, false)
	ctx := context.Background()

	require.NoError(t, te.app.Env(ctx, ""))
	assert.Contains(t, te.out.String(), "Environment: test")
	assert.Contains(t, te.out.String(), "Available: prod, test")

	require.NoError(t, te.app.Env(ctx, "prod"))
	assert.Equal(t, "113776@prod", te.app.prompt())

	assert.ErrorIs(t, te.app.Env(ctx, "staging"), env.ErrUnknownProfile)
	assert.Equal(t, "113776@prod", te.app.prompt(), "failed switch keeps the active profile")
}

func TestApp_HistoryDisabled(t *testing.T) {
	te := newTestApp(t, false)

	require.NoError(t, te.app.History(context.Background(), 5))
	require.NoError(t, te.app.HistoryOf(context.Background(), md5hex("x")))
	require.NoError(t, te.app.ClearHistory(context.Background()))
	assert.Equal(t, 3, strings.Count(te.out.String(), "Upload history is disabled"))
}

func TestApp_Run(t *testing.T) {
	out := captureOutput(t)
	te := newTestApp(t, false)
	path := writeZip(t, map[string]string{"a.pdf": "aaaa"})

	te.app.Run(context.Background(), strings.NewReader("load "+path+"\nnoise on\nparent 5\nexit\n"))

	assert.Contains(t, te.out.String(), "Loaded 1 files")
	assert.Contains(t, te.out.String(), "System files are shown")
	assert.Contains(t, te.out.String(), "Parent ID: 5")
	assert.Contains(t, strings.Join(*out, "\n"), "Bye!")
}

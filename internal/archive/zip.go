// Package archive decodes uploaded ZIP archives and classifies their members.
//
// The package has three independent pieces: Classify decides whether a member
// is platform noise or an eligible PDF, Digest computes the member fingerprint,
// and Reader enumerates members with lazy, repeatable access to their bytes.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Member is a single file inside an archive.
//
// Open materializes the member's bytes; every call decompresses the entry
// again and returns identical content.
type Member struct {
	Path string
	Size int64
	Open func() ([]byte, error)
}

// Reader enumerates the file members of a ZIP archive.
type Reader struct {
	zr      *zip.Reader
	closer  io.Closer
	members []Member
}

// Open reads the archive stored at name. The file is kept open until Close.
func Open(name string) (*Reader, error) {
	if !strings.EqualFold(filepath.Ext(name), ".zip") {
		return nil, fmt.Errorf("%s: %w", name, ErrNotZip)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	r, err := NewReader(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader decodes an archive from r. The caller keeps ownership of r.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveDecode, err)
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	return &Reader{zr: zr, members: collect(zr)}, nil
}

// collect lists file members in central-directory order. When the archive
// holds the same path more than once the last occurrence wins.
func collect(zr *zip.Reader) []Member {
	index := make(map[string]int, len(zr.File))
	members := make([]Member, 0, len(zr.File))

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		m := Member{
			Path: f.Name,
			Size: int64(f.UncompressedSize64),
			Open: openFunc(f),
		}
		if i, ok := index[f.Name]; ok {
			members[i] = m
			continue
		}
		index[f.Name] = len(members)
		members = append(members, m)
	}
	return members
}

func openFunc(f *zip.File) func() ([]byte, error) {
	return func() ([]byte, error) {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()

		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return b, nil
	}
}

// Members returns the archive's file members. Directories are omitted.
func (r *Reader) Members() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}


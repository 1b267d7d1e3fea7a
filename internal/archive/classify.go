package archive

import (
	"path"
	"strings"
)

const (
	// metadataPrefix is the folder macOS Finder adds to every archive it creates.
	metadataPrefix = "__MACOSX/"
	// resourceForkPrefix marks AppleDouble files carrying resource forks.
	resourceForkPrefix = "._"

	folderMetadataFile = ".DS_Store"
	thumbnailCacheFile = "Thumbs.db"

	// EligibleExt is the extension (compared case-insensitively) of files that
	// go through the upload pipeline.
	EligibleExt = ".pdf"
)

// Class is the result of classifying a single archive path.
type Class struct {
	Noise    bool
	Eligible bool
}

// Classify reports whether path is platform noise and whether it is an
// eligible content file. Paths are archive-relative and slash separated.
func Classify(p string) Class {
	noise := IsNoise(p)
	return Class{
		Noise:    noise,
		Eligible: !noise && strings.EqualFold(path.Ext(Base(p)), EligibleExt),
	}
}

// IsNoise reports whether p was generated by the platform that produced the
// archive rather than by the user.
func IsNoise(p string) bool {
	if strings.HasPrefix(p, metadataPrefix) {
		return true
	}
	if strings.HasPrefix(Base(p), resourceForkPrefix) {
		return true
	}
	return isArtifact(p, folderMetadataFile) || isArtifact(p, thumbnailCacheFile)
}

// IsEligible reports whether p should be scheduled for upload.
func IsEligible(p string) bool {
	return Classify(p).Eligible
}

func isArtifact(p, name string) bool {
	return p == name || strings.HasSuffix(p, "/"+name)
}

// Base returns the last element of a slash-separated archive path.
// Unlike filepath.Base it never interprets backslashes, so results are the
// same on every platform.
func Base(p string) string {
	p = strings.TrimSuffix(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

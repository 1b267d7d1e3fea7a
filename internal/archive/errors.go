package archive

import "errors"

var (
	// ErrArchiveDecode is returned when the input is not a readable ZIP archive.
	ErrArchiveDecode = errors.New("archive decode error")

	// ErrNotZip is returned when the file name does not carry a .zip extension.
	ErrNotZip = errors.New("not a zip file")
)

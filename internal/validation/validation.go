// Package validation checks paths and files handed to the interlin tools
// before anything parses them.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on user-supplied input.
const (
	// MaxFileSize is the largest input file accepted (64 MB).
	MaxFileSize = 64 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrFileTooLarge     = errors.New("file too large")
	ErrTypeMismatch     = errors.New("file type mismatch")
	ErrBinaryContent    = errors.New("binary content in text file")
)

// ValidatePath checks length limits and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// FileType is the kind of file an interlin command reads.
type FileType string

const (
	FileTypeFlexText FileType = "flextext"
	FileTypeText     FileType = "text"
	FileTypeSQLite   FileType = "sqlite"
	FileTypeXZ       FileType = "xz"
	FileTypeZip      FileType = "zip"
	FileTypeGzip     FileType = "gzip"
	FileTypeUnknown  FileType = "unknown"
)

var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeSQLite, []byte("SQLite format 3\x00")},
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{FileTypeGzip, []byte{0x1f, 0x8b}},
}

// DetectFileType classifies header, the first bytes of filename. Binary
// signatures win; text is FLExText when it opens with markup.
func DetectFileType(header []byte, filename string) (FileType, error) {
	detected := detectFileTypeFromMagic(header)
	expected := detectFileTypeFromExtension(filename)

	if detected != FileTypeUnknown {
		if expected == FileTypeUnknown || expected == detected {
			return detected, nil
		}
		return FileTypeUnknown, fmt.Errorf("%w: extension suggests %s but content is %s", ErrTypeMismatch, expected, detected)
	}
	if expected == FileTypeSQLite {
		return FileTypeUnknown, fmt.Errorf("%w: %s is not an SQLite database", ErrTypeMismatch, filename)
	}
	if len(header) == 0 {
		if expected == FileTypeUnknown {
			return FileTypeText, nil
		}
		return expected, nil
	}
	if !isLikelyText(header) {
		return FileTypeUnknown, ErrBinaryContent
	}

	markup := looksLikeMarkup(header)
	switch expected {
	case FileTypeFlexText:
		if !markup {
			return FileTypeUnknown, fmt.Errorf("%w: %s does not start with XML", ErrTypeMismatch, filename)
		}
		return FileTypeFlexText, nil
	case FileTypeText:
		return FileTypeText, nil
	}
	if markup {
		return FileTypeFlexText, nil
	}
	return FileTypeText, nil
}

// SniffFile stats path, checks its size and classifies its header.
func SniffFile(path string) (FileType, error) {
	if err := ValidatePath(path); err != nil {
		return FileTypeUnknown, err
	}
	f, err := os.Open(path)
	if err != nil {
		return FileTypeUnknown, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FileTypeUnknown, err
	}
	if info.IsDir() {
		return FileTypeUnknown, fmt.Errorf("%w: %s is a directory", ErrTypeMismatch, path)
	}
	if info.Size() > MaxFileSize {
		return FileTypeUnknown, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	return DetectFileType(buf[:n], path)
}

func detectFileTypeFromMagic(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	return FileTypeUnknown
}

func detectFileTypeFromExtension(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".flextext", ".xml":
		return FileTypeFlexText
	case ".txt", ".text":
		return FileTypeText
	case ".db", ".sqlite", ".sqlite3":
		return FileTypeSQLite
	case ".xz":
		return FileTypeXZ
	case ".zip":
		return FileTypeZip
	case ".gz":
		return FileTypeGzip
	default:
		return FileTypeUnknown
	}
}

func looksLikeMarkup(buf []byte) bool {
	buf = bytes.TrimPrefix(buf, []byte("\xef\xbb\xbf"))
	buf = bytes.TrimLeft(buf, " \t\r\n")
	return len(buf) > 0 && buf[0] == '<'
}

// isLikelyText reports whether buf is UTF-8 with few control characters. A
// rune cut off at the end of buf is allowed.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 || bytes.IndexByte(buf, 0) != -1 {
		return false
	}
	for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
		if utf8.RuneStart(buf[i]) {
			if !utf8.FullRune(buf[i:]) {
				buf = buf[:i]
			}
			break
		}
	}
	if !utf8.Valid(buf) {
		return false
	}

	printable, control := 0, 0
	for _, r := range string(buf) {
		if r == '\t' || r == '\n' || r == '\r' || !unicode.IsControl(r) {
			printable++
		} else {
			control++
		}
	}
	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}

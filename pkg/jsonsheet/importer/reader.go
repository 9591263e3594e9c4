// Package importer reads JSON files incrementally with progress reporting
// and cooperative cancellation.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Progress checkpoints of an import, in percent.
const (
	// ProgressReadShare is the part of the import budget spent reading bytes.
	ProgressReadShare = 70
	// ProgressParseQueued is reported once all bytes are decoded.
	ProgressParseQueued = 75
	// ProgressParsing is reported when the JSON parse starts.
	ProgressParsing = 85
	// ProgressDone is reported by the caller once the document is committed.
	ProgressDone = 100
)

// DefaultChunkSize is the number of bytes read per step.
const DefaultChunkSize = 64 * 1024

// ProgressFunc receives completion percentages. It may be nil.
type ProgressFunc func(percent int)

// Options configures reading.
type Options struct {
	// ChunkSize is the number of bytes read between cancellation checks.
	ChunkSize int
	// MaxBytes rejects inputs larger than this many bytes. Zero means no limit.
	MaxBytes int64
	// Encoding is a WHATWG encoding label ("utf-8", "utf-16le", "shift_jis", ...).
	// Empty means UTF-8 unless a byte order mark says otherwise.
	Encoding string
}

// DefaultOptions returns default read options.
func DefaultOptions() Options {
	return Options{
		ChunkSize: DefaultChunkSize,
	}
}

// Read consumes src chunk by chunk and returns its decoded text.
// ctx is checked before every chunk; a chunk read already started is
// allowed to finish. Progress runs from 0 to ProgressReadShare in
// proportion to size; when size is unknown (<= 0) nothing is reported.
func Read(ctx context.Context, src io.Reader, size int64, opts Options, progress ProgressFunc) (string, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	decoder, err := newDecoder(opts.Encoding)
	if err != nil {
		return "", &DecodeError{Err: err}
	}
	return read(ctx, src, size, chunkSize, opts.MaxBytes, decoder, progress)
}

func read(ctx context.Context, src io.Reader, size int64, chunkSize int, maxBytes int64, decoder transform.Transformer, progress ProgressFunc) (string, error) {
	var text strings.Builder
	if size > 0 {
		text.Grow(int(size))
	}
	w := transform.NewWriter(&text, decoder)

	buf := make([]byte, chunkSize)
	var consumed int64
	for {
		if ctx.Err() != nil {
			return "", ErrCancelled
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			consumed += int64(n)
			if maxBytes > 0 && consumed > maxBytes {
				return "", ErrTooLarge
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return "", &DecodeError{Offset: consumed, Err: err}
			}
			if size > 0 {
				report(progress, readPercent(consumed, size))
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("read file: %w", readErr)
		}
	}

	if err := w.Close(); err != nil {
		return "", &DecodeError{Offset: consumed, Err: err}
	}
	return text.String(), nil
}

func newDecoder(label string) (transform.Transformer, error) {
	if label == "" {
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

func readPercent(consumed, size int64) int {
	p := int(consumed * ProgressReadShare / size)
	if p > ProgressReadShare {
		return ProgressReadShare
	}
	return p
}

func report(progress ProgressFunc, percent int) {
	if progress != nil {
		progress(percent)
	}
}

package bytesource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"unicode/utf8"
)

// probeSize is the number of leading bytes sniffed to decide whether an
// artifact should be treated as text or binary.
const probeSize = 1024

// OpenAutoMode opens path from store and reports whether its content looks
// like valid UTF-8 text (by probing up to probeSize leading bytes) alongside
// a reader positioned at the start of the content.
func OpenAutoMode(ctx context.Context, store Store, path string) (r io.ReadCloser, isText bool, err error) {
	raw, err := store.Open(ctx, path)
	if err != nil {
		return nil, false, err
	}

	br := bufio.NewReaderSize(raw, probeSize)
	probe, err := br.Peek(probeSize)
	if err != nil && err != io.EOF {
		_ = raw.Close()
		return nil, false, fmt.Errorf("failed to probe artifact %s: %w", path, err)
	}

	return readCloser{Reader: br, closer: raw}, utf8.Valid(probe), nil
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (r readCloser) Close() error { return r.closer.Close() }

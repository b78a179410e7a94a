package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// Read failures. Callers distinguish a cancelled read from a broken one so
// the user can be told whether to simply retry.
var (
	ErrReadAborted = errors.New("workbook: read aborted")
	ErrReadFailed  = errors.New("workbook: read failed")
	ErrTooLarge    = errors.New("workbook: file too large")
	ErrMalformed   = errors.New("workbook: not a readable spreadsheet")
)

const chunkSize = 64 << 10

// Source delivers the raw bytes of an upload. Both implementations yield the
// same byte slice; which one is used depends only on what the caller's reader
// can do.
type Source interface {
	// ReadAll returns the full content. limit <= 0 disables the size check.
	ReadAll(ctx context.Context, limit int64) ([]byte, error)
}

// NewSource picks a read strategy for r. Readers that support random access
// and report a size (files, multipart parts backed by temp files, byte
// readers) are read with positioned reads into a buffer sized up front.
// Anything else is consumed as a stream.
func NewSource(r io.Reader, size int64) Source {
	if ra, ok := r.(io.ReaderAt); ok && size >= 0 {
		return &randomAccessSource{ra: ra, size: size}
	}
	return &streamSource{r: r}
}

// Bytes wraps an in-memory payload as a Source.
func Bytes(b []byte) Source {
	return NewSource(bytes.NewReader(b), int64(len(b)))
}

type randomAccessSource struct {
	ra   io.ReaderAt
	size int64
}

func (s *randomAccessSource) ReadAll(ctx context.Context, limit int64) ([]byte, error) {
	if limit > 0 && s.size > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, s.size, limit)
	}

	buf := make([]byte, s.size)
	var off int64
	for off < s.size {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadAborted, err)
		}
		end := off + chunkSize
		if end > s.size {
			end = s.size
		}
		n, err := s.ra.ReadAt(buf[off:end], off)
		off += int64(n)
		if err == io.EOF && off == end {
			err = nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
	}
	return buf, nil
}

type streamSource struct {
	r io.Reader
}

func (s *streamSource) ReadAll(ctx context.Context, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadAborted, err)
		}
		n, err := s.r.Read(chunk)
		buf.Write(chunk[:n])
		if limit > 0 && int64(buf.Len()) > limit {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", ErrReadAborted, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
	}
}

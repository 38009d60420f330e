// Package chunk reads a byte range of a file as a sequence of bounded chunks.
//
// A Reader owns its file handle. The handle is closed when the range is
// exhausted, when a read fails, when StreamTo stops early, or when Close is
// called, whichever happens first.
package chunk

import (
	"context"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/jsphweid/vidstream/model"
	"github.com/jsphweid/vidstream/util"
	"github.com/pkg/errors"
)

const DefaultChunkSize = 1024 * 1024

type File interface {
	io.Reader
	io.Seeker
	io.Closer
}

type flusher interface {
	Flush()
}

type Reader struct {
	file   File
	cursor int64
	end    int64
	buf    []byte

	// error from a read that also returned data, reported on the next call
	pending error

	reads     int
	truncated bool
	closed    bool
}

// Open opens name read-only on fs and returns a Reader over r.
func Open(fs billy.Filesystem, name string, r model.ByteRange, chunkSize int) (*Reader, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open %v", name)
	}
	return NewReader(f, r, chunkSize)
}

// NewReader takes ownership of f and positions it at r.Start. f is closed if
// positioning fails.
func NewReader(f File, r model.ByteRange, chunkSize int) (*Reader, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if r.Start < 0 || r.End < r.Start {
		f.Close()
		return nil, errors.Errorf("bad interval %d-%d", r.Start, r.End)
	}
	if _, err := f.Seek(r.Start, io.SeekStart); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "seek to %d", r.Start)
	}

	bufSize := util.Min(int64(chunkSize), r.Length())
	return &Reader{
		file:   f,
		cursor: r.Start,
		end:    r.End,
		buf:    make([]byte, bufSize),
	}, nil
}

// Next returns the next chunk of the range, or io.EOF once the range is
// exhausted or the file ends early. The returned slice is reused by the
// following call.
func (r *Reader) Next() ([]byte, error) {
	if r.pending != nil {
		err := r.pending
		r.pending = nil
		r.Close()
		return nil, err
	}
	if r.closed {
		return nil, io.EOF
	}
	if r.cursor > r.end {
		r.Close()
		return nil, io.EOF
	}

	want := util.Min(int64(len(r.buf)), r.end-r.cursor+1)
	n, err := r.file.Read(r.buf[:want])
	r.reads++

	if n > 0 {
		r.cursor += int64(n)
		if err != nil && err != io.EOF {
			r.pending = errors.Wrapf(err, "read at %d", r.cursor)
		}
		return r.buf[:n], nil
	}

	if err == nil || err == io.EOF {
		// file is shorter than it was when the range was computed
		r.truncated = true
		r.Close()
		return nil, io.EOF
	}

	r.Close()
	return nil, errors.Wrapf(err, "read at %d", r.cursor)
}

// StreamTo copies the remaining chunks to w, stopping at the first chunk
// boundary after ctx is done. The file is always released on return.
func (r *Reader) StreamTo(ctx context.Context, w io.Writer) (int64, error) {
	defer r.Close()

	f, _ := w.(flusher)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, errors.Wrap(err, "stream stopped")
		}

		b, err := r.Next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}

		n, err := w.Write(b)
		written += int64(n)
		if err != nil {
			return written, errors.Wrap(err, "write chunk")
		}
		if f != nil {
			f.Flush()
		}
	}
}

func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// Reads is the number of read calls issued against the file so far.
func (r *Reader) Reads() int {
	return r.reads
}

// Truncated reports whether the file ended before the range did.
func (r *Reader) Truncated() bool {
	return r.truncated
}

func (r *Reader) Remaining() int64 {
	return util.Max(r.end-r.cursor+1, 0)
}

// Package byterange resolves a client supplied Range header against the size
// of the file it addresses.
//
// Only a single "bytes=start-end" interval is understood; the end may be
// empty or left out entirely. A missing start is
// read as 0 rather than as a suffix length, so "bytes=-500" means the first
// 501 bytes, not the last 500.
package byterange

import (
	"strconv"
	"strings"

	"github.com/jsphweid/vidstream/model"
	"github.com/pkg/errors"
)

const unitPrefix = "bytes="

var ErrInvalidRange = errors.New("invalid range")

// Full returns the interval covering a whole file of the given size.
func Full(size int64) (model.ByteRange, error) {
	if size <= 0 {
		return model.ByteRange{}, errors.Wrapf(ErrInvalidRange, "file of size %d has no bytes to serve", size)
	}
	return model.ByteRange{Start: 0, End: size - 1}, nil
}

// Parse turns a raw Range header into a validated interval. An empty header
// selects the whole file. The end bound is clamped to the last byte of the
// file; an empty file never yields a valid interval.
func Parse(header string, size int64) (model.ByteRange, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Full(size)
	}
	if size <= 0 {
		return model.ByteRange{}, errors.Wrapf(ErrInvalidRange, "%q against empty file", header)
	}

	value := strings.TrimSpace(strings.TrimPrefix(header, unitPrefix))
	parts := strings.Split(value, "-")
	if len(parts) > 2 {
		return model.ByteRange{}, errors.Wrapf(ErrInvalidRange, "%q is not a single start-end interval", header)
	}

	var r model.ByteRange
	var err error

	if left := strings.TrimSpace(parts[0]); left != "" {
		if r.Start, err = parseBound(left); err != nil {
			return model.ByteRange{}, errors.Wrapf(err, "start of %q", header)
		}
	}

	// an absent end, as in "bytes=100", runs to the end of the file
	r.End = size - 1
	if len(parts) == 2 {
		if right := strings.TrimSpace(parts[1]); right != "" {
			if r.End, err = parseBound(right); err != nil {
				return model.ByteRange{}, errors.Wrapf(err, "end of %q", header)
			}
		}
	}

	if r.End >= size {
		r.End = size - 1
	}
	if r.Start > r.End {
		return model.ByteRange{}, errors.Wrapf(ErrInvalidRange, "%q resolves to start %d after end %d", header, r.Start, r.End)
	}
	return r, nil
}

func parseBound(s string) (int64, error) {
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errors.Wrapf(ErrInvalidRange, "bound %q is not a number", s)
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidRange, "bound %q: %v", s, err)
	}
	return n, nil
}

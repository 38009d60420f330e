package model

import "fmt"

// StreamRequest is what the HTTP layer extracts from an inbound stream request.
type StreamRequest struct {
	Filename    string
	RangeHeader string
	HasRange    bool
}

// ByteRange is an inclusive [Start, End] interval of byte offsets within a file.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the value of a Content-Range header for a file of the given size.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

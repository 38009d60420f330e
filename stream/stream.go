// Package stream answers HTTP requests for videos in a file.Library.
//
// Every successful stream is a 206 with a Content-Range, including requests
// that carry no Range header; those get the whole file as 0-(size-1).
// Unsatisfiable ranges get a 416 with "bytes */size". Once headers are out,
// a failed or short read can only end the body early: the client sees fewer
// bytes than Content-Length promised and nothing is retried.
package stream

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/vidstream/byterange"
	"github.com/jsphweid/vidstream/chunk"
	"github.com/jsphweid/vidstream/db"
	"github.com/jsphweid/vidstream/file"
	"github.com/jsphweid/vidstream/log"
	"github.com/jsphweid/vidstream/model"
	"github.com/jsphweid/vidstream/util"
	"github.com/pkg/errors"
)

const notFoundMessage = "File not found"

type Handler struct {
	library   *file.Library
	chunkSize int
	metadata  db.Source
}

// New builds a Handler. metadata may be nil.
func New(library *file.Library, chunkSize int, metadata db.Source) *Handler {
	if chunkSize <= 0 {
		chunkSize = chunk.DefaultChunkSize
	}
	return &Handler{
		library:   library,
		chunkSize: chunkSize,
		metadata:  metadata,
	}
}

// Register adds the stream, index and listing routes to router.
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/", h.ServeIndex).Methods(http.MethodGet)
	router.HandleFunc("/stream-video/{filename}", h.ServeVideo).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/videos", h.ServeList).Methods(http.MethodGet)
	router.HandleFunc("/api/rescan", h.ServeRescan).Methods(http.MethodPost)
}

func (h *Handler) ServeVideo(w http.ResponseWriter, r *http.Request) {
	req := newStreamRequest(r)
	id := uuid.New().String()
	w.Header().Set("X-Request-Id", id)
	logger := log.S().With("request_id", id, "file", req.Filename, "range", req.RangeHeader)

	size, err := h.library.Stat(req.Filename)
	if err != nil {
		if errors.Is(err, file.ErrNotFound) {
			logger.Infof("Not found: %v", err)
			http.Error(w, notFoundMessage, http.StatusNotFound)
			return
		}
		logger.Errorf("Could not stat: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rng, err := byterange.Parse(req.RangeHeader, size)
	if err != nil {
		logger.Infof("Unsatisfiable range: %v", err)
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, http.StatusText(http.StatusRequestedRangeNotSatisfiable), http.StatusRequestedRangeNotSatisfiable)
		return
	}

	reader, err := h.library.OpenRange(req.Filename, rng, h.chunkSize)
	if err != nil {
		if errors.Is(err, file.ErrNotFound) {
			logger.Infof("Removed before open: %v", err)
			http.Error(w, notFoundMessage, http.StatusNotFound)
			return
		}
		logger.Errorf("Could not open: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	header := w.Header()
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Range", rng.ContentRange(size))
	header.Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
	header.Set("Content-Type", ContentType(req.Filename))
	w.WriteHeader(http.StatusPartialContent)

	if r.Method == http.MethodHead {
		return
	}

	n, err := reader.StreamTo(r.Context(), w)
	if err != nil {
		logger.Warnf("Stream ended after %d of %d bytes: %v", n, rng.Length(), err)
		return
	}
	if reader.Truncated() {
		logger.Warnf("File ended after %d of %d bytes, %d unsent", n, rng.Length(), reader.Remaining())
		return
	}
	logger.Debugf("Streamed %d bytes in %d reads", n, reader.Reads())
}

// ContentType maps a filename to the MIME type sent with its stream.
func ContentType(name string) string {
	if ct, ok := util.VideoContentType(name); ok {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func newStreamRequest(r *http.Request) model.StreamRequest {
	values := r.Header.Values("Range")
	req := model.StreamRequest{
		Filename: mux.Vars(r)["filename"],
		HasRange: len(values) > 0,
	}
	if req.HasRange {
		req.RangeHeader = values[0]
	}
	return req
}

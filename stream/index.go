package stream

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/jsphweid/vidstream/log"
	"github.com/jsphweid/vidstream/model"
)

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"pathEscape": url.PathEscape,
	"humanSize":  humanSize,
}).ParseFS(templates, "templates/index.html"))

type indexPage struct {
	Videos []model.Video
}

// ServeIndex renders the current listing and asks the library to rescan in
// the background, so new files show up on a later load.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	videos := h.withMetadata(r.Context(), h.library.Videos())
	h.library.RequestRescan()

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, indexPage{Videos: videos}); err != nil {
		log.S().Errorf("Could not render index: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	videos := h.withMetadata(r.Context(), h.library.Videos())
	writeJSON(w, http.StatusOK, model.VideoListResponse{NumVideos: len(videos), Videos: videos})
}

func (h *Handler) ServeRescan(w http.ResponseWriter, r *http.Request) {
	videos, err := h.library.Scan()
	if err != nil {
		log.S().Errorf("Rescan failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "rescan failed"})
		return
	}
	videos = h.withMetadata(r.Context(), videos)
	writeJSON(w, http.StatusOK, model.VideoListResponse{NumVideos: len(videos), Videos: videos})
}

func (h *Handler) withMetadata(ctx context.Context, videos []model.Video) []model.Video {
	if h.metadata == nil || len(videos) == 0 {
		return videos
	}

	names := make([]string, 0, len(videos))
	for _, v := range videos {
		names = append(names, v.Name)
	}
	metadatas, err := h.metadata.GetVideoMetadatas(ctx, names)
	if err != nil {
		log.S().Warnf("Listing without metadata: %v", err)
	}
	for i := range videos {
		if m, ok := metadatas[videos[i].Name]; ok {
			m := m
			videos[i].Metadata = &m
		}
	}
	return videos
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.S().Errorf("Could not encode response: %v", err)
	}
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

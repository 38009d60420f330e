package model

type Video struct {
	Name        string         `json:"name"`
	Size        int64          `json:"size"`
	ContentType string         `json:"content_type"`
	Metadata    *VideoMetadata `json:"metadata,omitempty"`
}

type VideoMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Year        uint   `json:"year,omitempty"`
}

package model

type VideoListResponse struct {
	NumVideos int     `json:"num_videos"`
	Videos    []Video `json:"videos"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

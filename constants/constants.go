package constants

import (
	"os"
	"strconv"
	"time"

	"github.com/jsphweid/vidstream/log"
	"github.com/jsphweid/vidstream/util"
)

const DefaultChunkSize = 1024 * 1024

const DefaultPort = 8080

const DefaultRescanDebounce = 2 * time.Second

const DefaultMetadataTable = "vidstream-metadata"

const DefaultMetadataRegion = "us-east-1"

func GetVideoDir() string {
	path := os.Getenv("VIDEO_PATH")
	if path != "" {
		return path
	}
	return "./videos"
}

func GetPort() int {
	return getInt("PORT", DefaultPort)
}

func GetChunkSize() int {
	return getInt("CHUNK_SIZE", DefaultChunkSize)
}

func GetCorsOrigins() []string {
	origins := util.SplitList(os.Getenv("CORS_ORIGINS"))
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func GetRescanDebounce() time.Duration {
	val := os.Getenv("RESCAN_DEBOUNCE")
	if val == "" {
		return DefaultRescanDebounce
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		log.S().Warnf("Ignoring RESCAN_DEBOUNCE=%q, using %v", val, DefaultRescanDebounce)
		return DefaultRescanDebounce
	}
	return d
}

// GetMetadataEndpoint returns the DynamoDB endpoint used for video metadata.
// Empty means metadata lookups are disabled.
func GetMetadataEndpoint() string {
	return os.Getenv("METADATA_ENDPOINT")
}

func GetMetadataTable() string {
	table := os.Getenv("METADATA_TABLE")
	if table != "" {
		return table
	}
	return DefaultMetadataTable
}

func GetMetadataRegion() string {
	region := os.Getenv("METADATA_REGION")
	if region != "" {
		return region
	}
	return DefaultMetadataRegion
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		log.S().Warnf("Ignoring %v=%q, using %v", key, val, fallback)
		return fallback
	}
	return n
}

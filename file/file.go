// Package file owns the video directory: name validation, lookups and the
// snapshot of discoverable videos.
package file

import (
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jsphweid/vidstream/chunk"
	"github.com/jsphweid/vidstream/log"
	"github.com/jsphweid/vidstream/model"
	"github.com/jsphweid/vidstream/util"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("file not found")

type Library struct {
	fs   billy.Filesystem
	root string

	mu     sync.RWMutex
	videos []model.Video

	debounced func(f func())
}

type Option func(*Library)

// WithRescanDebounce sets how long RequestRescan waits for quiet before
// scanning the directory.
func WithRescanDebounce(d time.Duration) Option {
	return func(l *Library) {
		l.debounced = debounce.New(d)
	}
}

// NewLibrary serves videos from root. Paths are resolved inside root and can
// not escape it.
func NewLibrary(root string, opts ...Option) (*Library, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "video directory %v", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("video directory %v is not a directory", root)
	}
	l := NewLibraryFS(osfs.New(root, osfs.WithBoundOS()), opts...)
	l.root = root
	return l, nil
}

// NewLibraryFS serves videos from the root of an arbitrary billy filesystem.
func NewLibraryFS(fs billy.Filesystem, opts ...Option) *Library {
	l := &Library{fs: fs, root: fs.Root()}
	for _, opt := range opts {
		opt(l)
	}
	if l.debounced == nil {
		l.debounced = debounce.New(2 * time.Second)
	}
	return l
}

func (l *Library) FS() billy.Filesystem {
	return l.fs
}

func (l *Library) Root() string {
	return l.root
}

// ValidName reports whether name can address a file directly inside the
// video directory.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	return !strings.HasPrefix(name, "..")
}

// Stat returns the size of a regular file in the video directory.
func (l *Library) Stat(name string) (int64, error) {
	if !ValidName(name) {
		return 0, errors.Wrapf(ErrNotFound, "rejected name %q", name)
	}
	info, err := l.fs.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.Wrapf(ErrNotFound, "%q", name)
		}
		return 0, errors.Wrapf(err, "stat %q", name)
	}
	if !info.Mode().IsRegular() {
		return 0, errors.Wrapf(ErrNotFound, "%q is not a regular file", name)
	}
	return info.Size(), nil
}

// OpenRange opens name for streaming r. The returned reader owns the file
// handle.
func (l *Library) OpenRange(name string, r model.ByteRange, chunkSize int) (*chunk.Reader, error) {
	if !ValidName(name) {
		return nil, errors.Wrapf(ErrNotFound, "rejected name %q", name)
	}
	reader, err := chunk.Open(l.fs, name, r, chunkSize)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "%q", name)
		}
		return nil, err
	}
	return reader, nil
}

// Scan lists the recognized videos in the directory and replaces the current
// snapshot.
func (l *Library) Scan() ([]model.Video, error) {
	infos, err := l.fs.ReadDir(".")
	if err != nil {
		return nil, errors.Wrapf(err, "read video directory %v", l.root)
	}

	var videos []model.Video
	for _, info := range infos {
		name := info.Name()
		if !info.Mode().IsRegular() || !util.IsVideoFile(name) {
			continue
		}
		ct, _ := util.VideoContentType(name)
		videos = append(videos, model.Video{
			Name:        name,
			Size:        info.Size(),
			ContentType: ct,
		})
	}
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].Name < videos[j].Name
	})

	l.mu.Lock()
	l.videos = videos
	l.mu.Unlock()

	log.S().Infof("Scanned %v: %v videos", l.root, len(videos))
	return copyVideos(videos), nil
}

// Videos returns the most recent scan.
func (l *Library) Videos() []model.Video {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyVideos(l.videos)
}

// RequestRescan schedules a Scan once requests stop arriving for the
// debounce interval.
func (l *Library) RequestRescan() {
	l.debounced(func() {
		if _, err := l.Scan(); err != nil {
			log.S().Errorf("Rescan failed: %v", err)
		}
	})
}

func copyVideos(videos []model.Video) []model.Video {
	res := make([]model.Video, len(videos))
	copy(res, videos)
	return res
}

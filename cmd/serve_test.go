package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jsphweid/vidstream/file"
	"github.com/jsphweid/vidstream/stream"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(t *testing.T, origins []string) http.Handler {
	t.Helper()
	fs := memfs.New()
	if err := util.WriteFile(fs, "clip.mp4", bytes.Repeat([]byte{7}, 500), 0644); err != nil {
		t.Fatal(err)
	}
	lib := file.NewLibraryFS(fs)
	if _, err := lib.Scan(); err != nil {
		t.Fatal(err)
	}
	return NewRouter(stream.New(lib, 128, nil), origins)
}

func TestRouterExposesRangeHeaders(t *testing.T) {
	router := newTestRouter(t, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/stream-video/clip.mp4", nil)
	req.Header.Set("Origin", "http://player.example")
	req.Header.Set("Range", "bytes=0-9")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()

	assert := assert.New(t)
	assert.Equal(http.StatusPartialContent, resp.StatusCode)
	assert.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(resp.Header.Get("Access-Control-Expose-Headers"), "Content-Range")
	assert.Equal("bytes 0-9/500", resp.Header.Get("Content-Range"))
}

func TestRouterAllowsRangePreflight(t *testing.T) {
	router := newTestRouter(t, []string{"http://player.example"})

	req := httptest.NewRequest(http.MethodOptions, "/stream-video/clip.mp4", nil)
	req.Header.Set("Origin", "http://player.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "range")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()

	assert := assert.New(t)
	assert.Equal("http://player.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(strings.ToLower(resp.Header.Get("Access-Control-Allow-Headers")), "range")
}

func TestRouterRejectsUnknownOrigin(t *testing.T) {
	router := newTestRouter(t, []string{"http://player.example"})

	req := httptest.NewRequest(http.MethodGet, "/stream-video/clip.mp4", nil)
	req.Header.Set("Origin", "http://elsewhere.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Result().Header.Get("Access-Control-Allow-Origin"))
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	lib, err := file.NewLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := util.WriteFile(lib.FS(), "b.mkv", []byte("bb"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := util.WriteFile(lib.FS(), "a.mp4", []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := util.WriteFile(lib.FS(), "notes.txt", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := &cobra.Command{RunE: listCmd.RunE}
	cmd.SetOut(&out)
	listDir = dir
	err = cmd.RunE(cmd, nil)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal("a.mp4\t1\tvideo/mp4\nb.mkv\t2\tvideo/x-matroska\n2 videos in "+dir+"\n", out.String())
}

func TestNoMetadataSourceWithoutEndpoint(t *testing.T) {
	src, err := newMetadataSource(serveOptions{})
	assert.NoError(t, err)
	assert.Nil(t, src)
}

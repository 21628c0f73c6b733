package ddragon

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLatestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/versions.json", r.URL.Path)
		w.Write([]byte(`["14.10.1", "14.9.1"]`))
	}))
	defer server.Close()

	client := &Client{baseURL: server.URL, httpClient: server.Client(), fallbackVersion: "14.3.1"}
	assert.Equal(t, "14.10.1", client.LatestVersion(context.Background()))
}

func TestLatestVersionFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := &Client{baseURL: server.URL, httpClient: server.Client(), fallbackVersion: "14.3.1"}
	assert.Equal(t, "14.3.1", client.LatestVersion(context.Background()))
}

func TestDownloadChampionIcons(t *testing.T) {
	icon := testPNG(t, 120)
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/Missing.png") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(icon)
	}))
	defer server.Close()

	client := &Client{baseURL: server.URL, httpClient: server.Client(), fallbackVersion: "14.3.1"}
	dir := t.TempDir()

	err := client.DownloadChampionIcons(context.Background(), "14.10.1", []string{"Ahri", "Missing"}, dir)
	require.NoError(t, err)

	// Missing icon is skipped, not fatal
	_, err = os.Stat(filepath.Join(dir, "Missing.png"))
	assert.True(t, os.IsNotExist(err))

	// Downloaded icon is rescaled to the standard size
	f, err := os.Open(filepath.Join(dir, "Ahri.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, IconSize, img.Bounds().Dx())
	assert.Equal(t, IconSize, img.Bounds().Dy())

	// Existing icons are not fetched again
	before := len(requests)
	require.NoError(t, client.DownloadChampionIcons(context.Background(), "14.10.1", []string{"Ahri"}, dir))
	assert.Equal(t, before, len(requests))
}

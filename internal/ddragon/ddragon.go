package ddragon

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"
)

const defaultBaseURL = "https://ddragon.leagueoflegends.com"

// IconSize is the edge length of downloaded champion icons
const IconSize = 64

// Client fetches static game data (versions, champion icons) from Data Dragon
type Client struct {
	baseURL         string
	httpClient      *http.Client
	fallbackVersion string
}

// NewClient creates a Data Dragon client. fallbackVersion is used when the
// version endpoint is unreachable.
func NewClient(fallbackVersion string) *Client {
	return &Client{
		baseURL:         defaultBaseURL,
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		fallbackVersion: fallbackVersion,
	}
}

// LatestVersion returns the newest game data version. Failures fall back to
// the configured version so report generation keeps working offline.
func (c *Client) LatestVersion(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/versions.json", nil)
	if err != nil {
		return c.fallbackVersion
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("ddragon version lookup failed, using %s: %v", c.fallbackVersion, err)
		return c.fallbackVersion
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("ddragon version lookup returned %d, using %s", resp.StatusCode, c.fallbackVersion)
		return c.fallbackVersion
	}

	var versions []string
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil || len(versions) == 0 {
		log.Printf("ddragon version decode failed, using %s", c.fallbackVersion)
		return c.fallbackVersion
	}
	return versions[0]
}

// DownloadChampionIcons fetches the square icon for each champion into
// outputDir as <Champion>.png, scaled to IconSize. Icons that already exist
// on disk are skipped.
func (c *Client) DownloadChampionIcons(ctx context.Context, version string, champions []string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating icon dir: %w", err)
	}

	for _, champion := range champions {
		if err := ctx.Err(); err != nil {
			return err
		}
		outputPath := filepath.Join(outputDir, champion+".png")
		if _, err := os.Stat(outputPath); err == nil {
			continue
		}
		if err := c.downloadIcon(ctx, version, champion, outputPath); err != nil {
			log.Printf("Skipping icon for %s: %v", champion, err)
		}
	}
	return nil
}

func (c *Client) downloadIcon(ctx context.Context, version, champion, outputPath string) error {
	endpoint := fmt.Sprintf("%s/cdn/%s/img/champion/%s.png", c.baseURL, version, champion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		return fmt.Errorf("decode PNG: %w", err)
	}

	return writeScaledPNG(img, outputPath, IconSize)
}

// writeScaledPNG scales img to a targetSize square and saves it as PNG
func writeScaledPNG(img image.Image, outputPath string, targetSize int) error {
	// Scale using Catmull-Rom (bicubic) interpolation for crisp small icons
	bounds := img.Bounds()
	if bounds.Dx() != targetSize || bounds.Dy() != targetSize {
		dst := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	return png.Encode(out, img)
}

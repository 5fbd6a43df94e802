package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"

	"dealerscraper/internal/config"
	"dealerscraper/internal/models"
)

// Store downloads listing images into a content directory. Downloads are
// best-effort: a failed image is logged and skipped, never fatal to the
// vehicle save.
type Store struct {
	dir    string
	client *resty.Client
}

// NewStore creates an image store rooted at cfg.ImageDir.
func NewStore(cfg config.FetchConfig) *Store {
	client := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(cfg.Timeout)

	return &Store{dir: cfg.ImageDir, client: client}
}

// Download fetches each URL and returns one image record per successfully
// stored file, sequence numbers following discovery order.
func (s *Store) Download(ctx context.Context, vehicleID int64, urls []string) []models.VehicleImage {
	if len(urls) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		log.Printf("❌ Cannot create image directory %s: %v", s.dir, err)
		return nil
	}

	var stored []models.VehicleImage
	for i, imageURL := range urls {
		filename := s.filename(vehicleID, i, imageURL)
		if err := s.download(ctx, imageURL, filename); err != nil {
			log.Printf("⏭️  Skipping image %s: %v", imageURL, err)
			continue
		}
		stored = append(stored, models.VehicleImage{
			VehicleID: vehicleID,
			URL:       imageURL,
			Filename:  filename,
			Sequence:  i,
		})
	}
	return stored
}

func (s *Store) download(ctx context.Context, imageURL, filename string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetOutput(filepath.Join(s.dir, filename)).
		Get(imageURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("status %d", resp.StatusCode())
	}
	return nil
}

// filename derives a stable name from the vehicle id, sequence and URL hash,
// keeping the source extension when it looks like one.
func (s *Store) filename(vehicleID int64, sequence int, imageURL string) string {
	ext := ".jpg"
	if parsed, err := url.Parse(imageURL); err == nil {
		if e := strings.ToLower(path.Ext(parsed.Path)); e == ".jpg" || e == ".jpeg" || e == ".png" || e == ".webp" {
			ext = e
		}
	}
	sum := sha256.Sum256([]byte(imageURL))
	return fmt.Sprintf("%d_%02d_%s%s", vehicleID, sequence, hex.EncodeToString(sum[:6]), ext)
}

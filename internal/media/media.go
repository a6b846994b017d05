// Package media stores uploaded product images.
//
// Two drivers are available:
//   - "local" writes under a directory that the server exposes at UPLOAD_URL
//   - "s3"    writes to an S3-compatible bucket (AWS S3, MinIO, R2)
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/alextreichler/spiritflow/internal/config"
)

// Disk persists a file and returns the public URL it can be fetched from.
type Disk interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Open builds the disk selected by cfg.MediaDriver.
func Open(ctx context.Context, cfg *config.Config) (Disk, error) {
	switch cfg.MediaDriver {
	case "", "local":
		return NewLocalDisk(cfg.UploadDir, cfg.UploadURL)
	case "s3":
		return NewS3Disk(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.MediaDriver)
	}
}

// LocalDisk is the local-filesystem driver.
type LocalDisk struct {
	root    string
	baseURL string
}

func NewLocalDisk(root, baseURL string) (*LocalDisk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media/local: mkdir: %w", err)
	}
	return &LocalDisk{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *LocalDisk) Root() string { return d.root }

func (d *LocalDisk) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("media/local: mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("media/local: write %s: %w", name, err)
	}
	return d.baseURL + "/" + name, nil
}

const MaxImageWidth = 800

// ProcessImage decodes a PNG or JPEG upload, scales it down to MaxImageWidth
// keeping the aspect ratio, and re-encodes it as JPEG under a random name.
func ProcessImage(r io.Reader, filename string) (name string, data []byte, err error) {
	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		img, err = png.Decode(r)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(r)
	default:
		return "", nil, ErrUnsupportedFormat
	}
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > MaxImageWidth {
		img = resize.Resize(MaxImageWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", nil, fmt.Errorf("encode image: %w", err)
	}
	return "products/" + uuid.New().String() + ".jpg", buf.Bytes(), nil
}

var ErrUnsupportedFormat = errors.New("unsupported image format, only PNG, JPG, JPEG are allowed")

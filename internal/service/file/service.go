package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuadm/first-step-greet/internal/pkg/storage"
	"golang.org/x/image/draw"
)

var ErrUnsupportedFileType = errors.New("unsupported file type: only pdf, jpg, jpeg, png allowed")

// Evidence photos are recompressed into this size range.
const (
	evidenceMaxImageSize = 300 * 1024
	evidenceMinImageSize = 50 * 1024
)

type FileService interface {
	// UploadEvidence stores a file backing a compliance record and returns its storage path
	UploadEvidence(ctx context.Context, complianceTypeID, recordID string, file io.Reader, filename string) (string, error)

	// Generic operations
	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// UploadEvidence uploads a spot check photo or signed PDF.
// Images are recompressed to JPEG before upload.
func (s *fileServiceImpl) UploadEvidence(ctx context.Context, complianceTypeID, recordID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var body io.Reader = file
	contentType := "application/pdf"
	switch ext {
	case ".pdf":
	case ".jpg", ".jpeg", ".png":
		buffer, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to read image: %w", err)
		}
		compressed, err := compressImage(buffer, evidenceMaxImageSize, evidenceMinImageSize)
		if err != nil {
			return "", fmt.Errorf("failed to compress image: %w", err)
		}
		body = bytes.NewReader(compressed)
		contentType = "image/jpeg"
		ext = ".jpg"
	default:
		return "", ErrUnsupportedFileType
	}

	// evidence/{typeID}/{recordID}/{uuid}.{ext}
	newFilename := uuid.New().String() + ext
	key := path.Join("evidence", complianceTypeID, recordID, newFilename)

	uploadedPath, err := s.storage.Upload(ctx, body, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload evidence: %w", err)
	}

	return uploadedPath, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}

// compressImage re-encodes an image as JPEG until it fits between minSize and
// maxSize bytes, lowering quality first and then downscaling.
func compressImage(buffer []byte, maxSize int, minSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	quality := 85
	var compressed []byte

	for quality >= 50 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()

		if len(compressed) <= maxSize {
			return compressed, nil
		}
		quality -= 5
	}

	// Still too large: scale towards the middle of the range
	targetSize := (maxSize + minSize) / 2
	ratio := math.Sqrt(float64(targetSize) / float64(len(compressed)))
	newWidth := int(float64(originalWidth) * ratio)
	newHeight := int(float64(originalHeight) * ratio)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	resized := resizeImage(img, newWidth, newHeight)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 70}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

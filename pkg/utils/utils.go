package utils

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image/jpeg"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ValidateAudioFile(file *multipart.FileHeader) error
	DownscaleImage(imageData []byte, maxSize int) ([]byte, error)
	HashBytes(data []byte) string
}

type utils struct {
	maxImageSize int64
	maxAudioSize int64
}

func New() IUtils {
	return &utils{
		maxImageSize: 5 * 1024 * 1024,
		maxAudioSize: 25 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	if file.Size > u.maxImageSize {
		return errors.New("file size exceeds limit")
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return errors.New("uploaded file is not an image")
	}

	return nil
}

func (u *utils) ValidateAudioFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	if file.Size > u.maxAudioSize {
		return errors.New("file size exceeds limit")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".wav", ".mp3", ".m4a", ".ogg", ".flac":
		return nil
	}
	return errors.New("uploaded file is not a supported audio format")
}

// DownscaleImage shrinks an image so its longest side is at most maxSize,
// keeping aspect ratio, and re-encodes it as JPEG. Images already within
// bounds are only re-encoded.
func (u *utils) DownscaleImage(imageData []byte, maxSize int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxSize || bounds.Dy() > maxSize {
		img = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (u *utils) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

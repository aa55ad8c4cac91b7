package storage

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	resizeWidth = 800
	jpegQuality = 80
)

// NormalizeImage decodes an uploaded image, scales it down to the
// standard listing width keeping aspect ratio, and re-encodes it as
// JPEG. Images narrower than the target width keep their size.
func NormalizeImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("storage: decode image: %w", err)
	}

	if img.Bounds().Dx() > resizeWidth {
		img = imaging.Resize(img, resizeWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("storage: encode image: %w", err)
	}

	return buf.Bytes(), nil
}

package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

const avatarMaxSide = 512

var ErrNotAnImage = errors.New("file is not a supported image")

// PrepareAvatar decodes an uploaded picture, applies its EXIF orientation,
// shrinks it to fit avatarMaxSide and re-encodes it as JPEG.
func PrepareAvatar(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotAnImage
	}

	img = imaging.Fit(img, avatarMaxSide, avatarMaxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// Item photos larger than this on either side get downscaled before
// whitening so catalog thumbnails stay cheap to serve.
const maxItemPhotoDimension = 1280

// NormalizeItemPhoto downscales an item photo to fit the catalog size while
// keeping the aspect ratio. Smaller images pass through untouched.
func NormalizeItemPhoto(imageBytes []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxItemPhotoDimension && bounds.Dy() <= maxItemPhotoDimension {
		return imageBytes, nil
	}
	resized := imaging.Fit(img, maxItemPhotoDimension, maxItemPhotoDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}

// WhitenBackgroundSmooth composites the item photo over a white background
// using a blurred luminance mask, so the clothing edge blends without halos.
// - threshold: brightness (0-255) used to mark background pixels in the mask.
// - blurSigma: Gaussian blur strength for the mask, 3.0 to 5.0 works well.
func WhitenBackgroundSmooth(imageBytes []byte, threshold uint8, blurSigma float64) ([]byte, error) {
	originalImg, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := originalImg.Bounds()
	width, height := bounds.Max.X, bounds.Max.Y

	// Hard mask first. White = background, black = clothing to keep.
	mask := image.NewGray(bounds)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := originalImg.At(x, y)
			r, g, b, _ := c.RGBA()
			r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)

			luminance := 0.299*float64(r8) + 0.587*float64(g8) + 0.114*float64(b8)

			if luminance >= float64(threshold) {
				mask.SetGray(x, y, color.Gray{Y: 255})
			} else {
				mask.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}

	// Feather the mask edge. blurSigma controls how wide the transition is.
	blurredMask := imaging.Blur(mask, blurSigma)

	finalImg := image.NewNRGBA(bounds)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := originalImg.At(x, y).RGBA()

			maskAlpha, _, _, _ := blurredMask.At(x, y).RGBA()

			// Mask logic inverted: white on mask means background, so the
			// original pixel contributes nothing there.
			alpha := 1.0 - float64(maskAlpha)/65535.0

			finalR := float64(r)*alpha + 65535.0*(1.0-alpha)
			finalG := float64(g)*alpha + 65535.0*(1.0-alpha)
			finalB := float64(b)*alpha + 65535.0*(1.0-alpha)

			finalImg.SetNRGBA(x, y, color.NRGBA{
				R: uint8(finalR / 257),
				G: uint8(finalG / 257),
				B: uint8(finalB / 257),
				A: uint8(a / 257),
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, finalImg); err != nil {
		return nil, fmt.Errorf("failed to encode final image: %w", err)
	}
	return buf.Bytes(), nil
}

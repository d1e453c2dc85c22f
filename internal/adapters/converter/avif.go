package converter

import (
	"avifd/internal/core/domain"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	Quality = 80
	Speed   = 10
	// MaxDimension caps the source and requested output size on each axis.
	MaxDimension = 16384
)

var errDimensionTooLarge = errors.New("requested dimension too large")

// AVIFConverter decodes any registered source format and re-encodes it as AVIF.
type AVIFConverter struct {
	quality int
	speed   int
}

func NewAVIFConverter() *AVIFConverter {
	return &AVIFConverter{quality: Quality, speed: Speed}
}

func (c *AVIFConverter) Transform(raw []byte, width, height uint32) (domain.EncodedImage, error) {
	// The header is checked first so a forged size never reaches the pixel allocation.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		err = fmt.Errorf("error reading image header: %w: %w", domain.ErrDecodeFailed, err)
		log.Error().Err(err).Int("bytes", len(raw)).Send()
		return domain.EncodedImage{}, err
	}

	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		err = fmt.Errorf("%w: %w: source is %dx%d", domain.ErrDecodeFailed, errDimensionTooLarge, cfg.Width,
			cfg.Height)
		log.Error().Err(err).Send()
		return domain.EncodedImage{}, err
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		err = fmt.Errorf("error decoding image: %w: %w", domain.ErrDecodeFailed, err)
		log.Error().Err(err).Int("bytes", len(raw)).Send()
		return domain.EncodedImage{}, err
	}

	pixels := imaging.Clone(src)

	log.Debug().
		Str("format", format).
		Int("srcWidth", pixels.Bounds().Dx()).
		Int("srcHeight", pixels.Bounds().Dy()).
		Msg("decoded source image")

	if width > 0 && height > 0 {
		if width > MaxDimension || height > MaxDimension {
			err = fmt.Errorf("%w: %w: %dx%d", domain.ErrEncodeFailed, errDimensionTooLarge, width, height)
			log.Error().Err(err).Send()
			return domain.EncodedImage{}, err
		}

		pixels = imaging.Resize(pixels, int(width), int(height), imaging.Lanczos)
	}

	var buf bytes.Buffer
	err = avif.Encode(&buf, toYCbCr(pixels), avif.Options{
		Quality:           c.quality,
		Speed:             c.speed,
		ChromaSubsampling: image.YCbCrSubsampleRatio444,
	})
	if err != nil {
		err = fmt.Errorf("error encoding avif: %w: %w", domain.ErrEncodeFailed, err)
		log.Error().Err(err).Send()
		return domain.EncodedImage{}, err
	}

	return domain.EncodedImage{ContentType: domain.ContentType, Data: buf.Bytes()}, nil
}

// toYCbCr converts straight RGBA samples to full resolution YCbCr. The alpha channel is dropped and color
// channels are taken as they are, so transparent pixels keep their stored color.
func toYCbCr(src *image.NRGBA) *image.YCbCr {
	b := src.Bounds()
	dst := image.NewYCbCr(image.Rect(0, 0, b.Dx(), b.Dy()), image.YCbCrSubsampleRatio444)

	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+3]
			yy, cb, cr := color.RGBToYCbCr(p[0], p[1], p[2])
			dst.Y[dst.YOffset(x, y)] = yy
			ci := dst.COffset(x, y)
			dst.Cb[ci] = cb
			dst.Cr[ci] = cr
		}
	}

	return dst
}

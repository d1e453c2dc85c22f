package converter

import (
	"avifd/internal/core/domain"
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gen2brain/avif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := avif.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestTransformDimensions(t *testing.T) {
	source := encodePNG(t, solidImage(64, 48, color.NRGBA{R: 10, G: 120, B: 200, A: 255}))

	tests := []struct {
		name       string
		width      uint32
		height     uint32
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "pass through when unset",
			wantWidth:  64,
			wantHeight: 48,
		},
		{
			name:       "exact downscale",
			width:      50,
			height:     75,
			wantWidth:  50,
			wantHeight: 75,
		},
		{
			name:       "exact upscale",
			width:      100,
			height:     100,
			wantWidth:  100,
			wantHeight: 100,
		},
		{
			name:       "only width set passes through",
			width:      10,
			wantWidth:  64,
			wantHeight: 48,
		},
		{
			name:       "only height set passes through",
			height:     200,
			wantWidth:  64,
			wantHeight: 48,
		},
	}

	c := NewAVIFConverter()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := c.Transform(source, tc.width, tc.height)
			require.NoError(t, err)
			assert.Equal(t, domain.ContentType, out.ContentType)

			w, h := decodedSize(t, out.Data)
			assert.Equal(t, tc.wantWidth, w)
			assert.Equal(t, tc.wantHeight, h)
		})
	}
}

func TestTransformDropsAlpha(t *testing.T) {
	// fully transparent red: the stored color survives, the transparency does not
	source := encodePNG(t, solidImage(16, 16, color.NRGBA{R: 255, A: 0}))

	out, err := NewAVIFConverter().Transform(source, 0, 0)
	require.NoError(t, err)

	img, err := avif.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)

	r, g, b, a := img.At(8, 8).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.InDelta(t, 0xffff, r, 0x1000)
	assert.InDelta(t, 0, g, 0x1000)
	assert.InDelta(t, 0, b, 0x1000)
}

func TestTransformOtherSourceFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, solidImage(20, 10, color.NRGBA{G: 255, A: 255})))

	out, err := NewAVIFConverter().Transform(buf.Bytes(), 0, 0)
	require.NoError(t, err)

	w, h := decodedSize(t, out.Data)
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)

	// output can itself be used as a source
	again, err := NewAVIFConverter().Transform(out.Data, 5, 5)
	require.NoError(t, err)
	w, h = decodedSize(t, again.Data)
	assert.Equal(t, 5, w)
	assert.Equal(t, 5, h)
}

func TestTransformDecodeFailed(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "html", raw: []byte("<html>not an image</html>")},
		{name: "empty", raw: []byte{}},
		{name: "truncated png", raw: encodePNG(t, solidImage(8, 8, color.NRGBA{A: 255}))[:20]},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAVIFConverter().Transform(tc.raw, 10, 10)
			require.ErrorIs(t, err, domain.ErrDecodeFailed)
		})
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring width x height, with no pixel data.
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], width)
	binary.BigEndian.PutUint32(ihdr[4:], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	chunk := append([]byte("IHDR"), ihdr...)

	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))

	return buf.Bytes()
}

func TestTransformRejectsOversizedSource(t *testing.T) {
	tests := []struct {
		name   string
		raw    []byte
		width  uint32
		height uint32
	}{
		{name: "forged header", raw: pngHeader(20000, 20000)},
		{name: "forged header with resize", raw: pngHeader(20000, 20000), width: 10, height: 10},
		{name: "forged height only", raw: pngHeader(1, MaxDimension+1)},
		{name: "real wide source", raw: encodePNG(t, solidImage(MaxDimension+1, 1, color.NRGBA{A: 255}))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAVIFConverter().Transform(tc.raw, tc.width, tc.height)
			require.ErrorIs(t, err, domain.ErrDecodeFailed)
			assert.ErrorIs(t, err, errDimensionTooLarge)
		})
	}
}

func TestPNGHeaderIsReadable(t *testing.T) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(pngHeader(20000, 30000)))
	require.NoError(t, err)
	assert.Equal(t, 20000, cfg.Width)
	assert.Equal(t, 30000, cfg.Height)
}

func TestTransformDimensionTooLarge(t *testing.T) {
	source := encodePNG(t, solidImage(4, 4, color.NRGBA{A: 255}))

	_, err := NewAVIFConverter().Transform(source, MaxDimension+1, 10)
	require.ErrorIs(t, err, domain.ErrEncodeFailed)
}

func TestToYCbCr(t *testing.T) {
	src := solidImage(3, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 0})

	dst := toYCbCr(src)
	require.Equal(t, image.Rect(0, 0, 3, 2), dst.Bounds())
	assert.Equal(t, image.YCbCrSubsampleRatio444, dst.SubsampleRatio)

	wantY, wantCb, wantCr := color.RGBToYCbCr(200, 100, 50)
	got := dst.YCbCrAt(2, 1)
	assert.Equal(t, color.YCbCr{Y: wantY, Cb: wantCb, Cr: wantCr}, got)
}

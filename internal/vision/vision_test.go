package vision

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/spakin/netpbm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noise(seed int64, w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}
	return img
}

func crop(img image.Image, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

func TestMatchSmallTemplate(t *testing.T) {
	screen := noise(1, 200, 120)
	area := image.Rect(57, 33, 57+10, 33+8)

	res, ok := Match(screen, crop(screen, area), 0.8)
	require.True(t, ok)
	assert.Equal(t, area, res.Bounds)
	assert.Equal(t, image.Pt(62, 37), res.Center)
	assert.InDelta(t, 1.0, res.Score, 1e-6)
}

func TestMatchLargeTemplateUsesCoarseSearch(t *testing.T) {
	screen := noise(2, 320, 240)
	area := image.Rect(131, 77, 131+48, 77+40)
	require.Greater(t, scaleFor(grayPlane(crop(screen, area))), 1)

	res, ok := Match(screen, crop(screen, area), 0.8)
	require.True(t, ok)
	assert.Equal(t, area, res.Bounds)
}

func TestMatchNotFound(t *testing.T) {
	screen := noise(3, 160, 100)
	other := noise(4, 20, 20)

	_, ok := Match(screen, other, 0.8)
	assert.False(t, ok)
}

func TestMatchTemplateLargerThanScreen(t *testing.T) {
	_, ok := Match(noise(5, 10, 10), noise(6, 20, 5), 0.5)
	assert.False(t, ok)
}

func TestMatchHonoursHaystackOrigin(t *testing.T) {
	base := noise(7, 100, 80)
	shifted := base.SubImage(image.Rect(20, 10, 100, 80))
	area := image.Rect(40, 30, 52, 42)

	res, ok := Match(shifted, crop(base, area), 0.8)
	require.True(t, ok)
	assert.Equal(t, area, res.Bounds)
}

func TestMatchFlatTemplate(t *testing.T) {
	screen := noise(8, 60, 60)
	draw.Draw(screen, image.Rect(20, 20, 30, 30), &image.Uniform{C: color.RGBA{R: 10, G: 200, B: 30, A: 255}}, image.Point{}, draw.Src)
	tpl := image.NewRGBA(image.Rect(0, 0, 6, 6))
	draw.Draw(tpl, tpl.Bounds(), &image.Uniform{C: color.RGBA{R: 10, G: 200, B: 30, A: 255}}, image.Point{}, draw.Src)

	res, ok := Match(screen, tpl, 0.8)
	require.True(t, ok)
	assert.True(t, res.Bounds.In(image.Rect(20, 20, 30, 30)))
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	img := noise(9, 8, 6)

	pngPath := filepath.Join(dir, "btn.png")
	f, err := os.Create(pngPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	loaded, err := Load(pngPath)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), loaded.Bounds())

	pgmPath := filepath.Join(dir, "btn.pgm")
	f, err = os.Create(pgmPath)
	require.NoError(t, err)
	require.NoError(t, netpbm.Encode(f, img, &netpbm.EncodeOptions{Format: netpbm.PGM, MaxValue: 255}))
	require.NoError(t, f.Close())

	loaded, err = Load(pgmPath)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), loaded.Bounds())

	_, err = Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0644))
	_, err = Load(junk)
	assert.Error(t, err)
}

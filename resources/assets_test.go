package resources

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRendersPNG(t *testing.T) {
	for _, icon := range []Icon{IconApp, IconActive, IconPaused, IconBreak} {
		t.Run(string(icon), func(t *testing.T) {
			resource, err := Load(icon)
			require.NoError(t, err)
			assert.Equal(t, string(icon)+".png", resource.Name())

			img, err := png.Decode(bytes.NewReader(resource.Content()))
			require.NoError(t, err)
			assert.Equal(t, iconSize, img.Bounds().Dx())

			_, _, _, alpha := img.At(iconSize/2, iconSize/2).RGBA()
			assert.Zero(t, alpha, "pupil is transparent")
			_, _, _, alpha = img.At(iconSize/2, 4).RGBA()
			assert.NotZero(t, alpha, "ring is filled")
		})
	}
}

func TestLoadCaches(t *testing.T) {
	first := MustLoad(IconActive)
	second := MustLoad(IconActive)
	assert.Same(t, first, second)
}

func TestLoadUnknownIcon(t *testing.T) {
	_, err := Load(Icon("missing"))
	assert.Error(t, err)
	assert.Panics(t, func() { MustLoad(Icon("missing")) })
}

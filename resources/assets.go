// Package resources provides the application and tray icons.
package resources

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"
)

// Icon identifies one of the generated icons.
type Icon string

const (
	IconApp    Icon = "app"
	IconActive Icon = "active"
	IconPaused Icon = "paused"
	IconBreak  Icon = "break"
)

const iconSize = 64

var iconColors = map[Icon]color.NRGBA{
	IconApp:    {R: 52, G: 152, B: 219, A: 255},
	IconActive: {R: 46, G: 204, B: 113, A: 255},
	IconPaused: {R: 149, G: 165, B: 166, A: 255},
	IconBreak:  {R: 232, G: 190, B: 66, A: 255},
}

var iconCache sync.Map

// Load returns a Fyne resource for the given icon.
func Load(icon Icon) (fyne.Resource, error) {
	if cached, ok := iconCache.Load(icon); ok {
		return cached.(fyne.Resource), nil
	}

	fill, ok := iconColors[icon]
	if !ok {
		return nil, fmt.Errorf("unknown icon %q", icon)
	}
	data, err := renderIcon(fill)
	if err != nil {
		return nil, fmt.Errorf("render icon %s: %w", icon, err)
	}

	resource := fyne.NewStaticResource(string(icon)+".png", data)
	iconCache.Store(icon, resource)
	return resource, nil
}

// MustLoad returns a Fyne resource or panics on error.
func MustLoad(icon Icon) fyne.Resource {
	resource, err := Load(icon)
	if err != nil {
		panic(err)
	}
	return resource
}

// renderIcon draws an eye: a filled disc with a transparent pupil.
func renderIcon(fill color.NRGBA) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize-1) / 2
	outer := float64(iconSize) / 2
	pupil := outer / 3

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			distance := dx*dx + dy*dy
			if distance <= outer*outer && distance > pupil*pupil {
				img.SetNRGBA(x, y, fill)
			}
		}
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Package resources provides the tray and notification icon.
package resources

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"
)

// IconSize is the edge length of the generated icon in pixels.
const IconSize = 64

// ErrIconNotFound is returned when no icon could be produced.
var ErrIconNotFound = errors.New("icon data not available")

var (
	background = color.RGBA{R: 0x2b, G: 0x5f, B: 0xd9, A: 0xff}
	foreground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

var (
	iconOnce sync.Once
	pngData  []byte
	icoData  []byte
	iconErr  error
)

// GetIcon returns the icon in the format the system tray expects on this
// platform: ICO on Windows, PNG elsewhere.
func GetIcon() ([]byte, error) {
	return iconFor(runtime.GOOS)
}

func iconFor(goos string) ([]byte, error) {
	iconOnce.Do(func() {
		pngData, iconErr = encodePNG(drawIcon(IconSize))
		if iconErr == nil {
			icoData, iconErr = wrapICO(pngData, IconSize)
		}
	})
	if iconErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrIconNotFound, iconErr)
	}
	if goos == "windows" {
		return icoData, nil
	}
	return pngData, nil
}

// drawIcon paints a rounded square holding two text lines of unequal
// length, the second one an arrow.
func drawIcon(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	radius := size / 6
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if insideRoundedRect(x, y, size, radius) {
				img.SetRGBA(x, y, background)
			}
		}
	}

	unit := size / 16
	fill(img, 3*unit, 4*unit, 13*unit, 6*unit)
	fill(img, 3*unit, 10*unit, 10*unit, 12*unit)
	for i := 0; i < 3*unit; i++ {
		fill(img, 10*unit+i, 8*unit+i, 10*unit+i+1, 14*unit-i)
	}
	return img
}

func insideRoundedRect(x, y, size, r int) bool {
	cx, cy := x, y
	switch {
	case x < r:
		cx = r
	case x >= size-r:
		cx = size - r - 1
	}
	switch {
	case y < r:
		cy = r
	case y >= size-r:
		cy = size - r - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

func fill(img *image.RGBA, x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, foreground)
		}
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrapICO stores a PNG image as the single entry of an ICO file.
func wrapICO(pngBytes []byte, size int) ([]byte, error) {
	if size <= 0 || size > 256 {
		return nil, fmt.Errorf("unsupported icon size %d", size)
	}
	const headerLen = 6 + 16
	dim := byte(size)
	if size == 256 {
		dim = 0
	}

	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1})
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, le, [2]uint16{1, 32})
	_ = binary.Write(&buf, le, [2]uint32{uint32(len(pngBytes)), headerLen})
	buf.Write(pngBytes)
	return buf.Bytes(), nil
}

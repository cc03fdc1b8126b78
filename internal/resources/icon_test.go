package resources

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconFor_PNG(t *testing.T) {
	data, err := iconFor("linux")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, IconSize, img.Bounds().Dx())
	assert.Equal(t, IconSize, img.Bounds().Dy())

	// Corners are transparent, the center is painted.
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = img.At(IconSize/2, IconSize/2).RGBA()
	assert.NotZero(t, a)
}

func TestIconFor_ICO(t *testing.T) {
	ico, err := iconFor("windows")
	require.NoError(t, err)
	pngData, err := iconFor("darwin")
	require.NoError(t, err)

	le := binary.LittleEndian
	assert.Equal(t, uint16(0), le.Uint16(ico[0:]))
	assert.Equal(t, uint16(1), le.Uint16(ico[2:]), "type icon")
	assert.Equal(t, uint16(1), le.Uint16(ico[4:]), "one image")
	assert.Equal(t, byte(IconSize), ico[6])
	assert.Equal(t, byte(IconSize), ico[7])
	assert.Equal(t, uint16(32), le.Uint16(ico[12:]))
	assert.Equal(t, uint32(len(pngData)), le.Uint32(ico[14:]))
	assert.Equal(t, uint32(22), le.Uint32(ico[18:]))
	assert.Equal(t, pngData, ico[22:])
}

func TestWrapICO_RejectsSize(t *testing.T) {
	_, err := wrapICO([]byte{1}, 512)
	assert.Error(t, err)
}

func TestGetIcon(t *testing.T) {
	data, err := GetIcon()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

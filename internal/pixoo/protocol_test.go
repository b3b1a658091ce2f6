package pixoo

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldStacksHalves(t *testing.T) {
	f := domain.NewFrame(128, 32)
	f.SetPixel(0, 0, domain.NewRGB(255, 0, 0))
	f.SetPixel(63, 31, domain.NewRGB(0, 255, 0))
	f.SetPixel(64, 0, domain.NewRGB(0, 0, 255))
	f.SetPixel(127, 31, domain.NewRGB(1, 2, 3))

	out := Fold(f, Size)

	require.Equal(t, Size, out.Width)
	require.Equal(t, Size, out.Height)
	assert.Equal(t, domain.NewRGB(255, 0, 0), *out.GetPixel(0, 0))
	assert.Equal(t, domain.NewRGB(0, 255, 0), *out.GetPixel(63, 31))
	assert.Equal(t, domain.NewRGB(0, 0, 255), *out.GetPixel(0, 32))
	assert.Equal(t, domain.NewRGB(1, 2, 3), *out.GetPixel(63, 63))
}

func TestFoldNarrowFrame(t *testing.T) {
	f := domain.NewFrame(32, 16)
	f.Fill(domain.NewRGB(9, 9, 9))

	out := Fold(f, Size)

	assert.Equal(t, domain.NewRGB(9, 9, 9), *out.GetPixel(31, 15))
	assert.Equal(t, domain.RGB{}, *out.GetPixel(32, 0))
	assert.Equal(t, domain.RGB{}, *out.GetPixel(0, 16))
}

func TestFoldDropsOverflow(t *testing.T) {
	f := domain.NewFrame(256, 32)
	f.SetPixel(200, 0, domain.NewRGB(255, 255, 255))

	out := Fold(f, Size)

	for i := 0; i < len(out.Pixels); i++ {
		require.Zero(t, out.Pixels[i])
	}
}

func TestEncodeDecodeBase64(t *testing.T) {
	f := domain.NewFrame(2, 2)
	f.SetPixel(1, 1, domain.NewRGB(10, 20, 30))

	encoded := EncodeFrameToBase64(f)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, f.Pixels, raw)

	back, err := DecodeBase64ToFrame(encoded, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestDecodeBase64Errors(t *testing.T) {
	_, err := DecodeBase64ToFrame("not base64!", 2, 2)
	assert.Error(t, err)

	_, err = DecodeBase64ToFrame(base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), 2, 2)
	assert.Error(t, err)
}

func TestCreateFrameCommand(t *testing.T) {
	f := domain.NewFrame(Size, Size)
	cmd := CreateFrameCommand(f, 7)

	assert.Equal(t, "Draw/SendHttpGif", cmd.Command)
	assert.Equal(t, 1, cmd.PicNum)
	assert.Equal(t, Size, cmd.PicWidth)
	assert.Equal(t, 7, cmd.PicID)
	assert.Equal(t, EncodeFrameToBase64(f), cmd.PicData)

	data, err := json.Marshal(cmd)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"PicID":7`)
}

func TestCreateBrightnessCommandClamps(t *testing.T) {
	assert.Equal(t, 0, CreateBrightnessCommand(-5).Brightness)
	assert.Equal(t, 55, CreateBrightnessCommand(55).Brightness)
	assert.Equal(t, 100, CreateBrightnessCommand(150).Brightness)
	assert.Equal(t, "Draw/ResetHttpGifId", CreateResetGifIDCommand().Command)
}

func TestPanelBrightness(t *testing.T) {
	assert.Equal(t, 0, PanelBrightness(0, 128))
	assert.Equal(t, 15, PanelBrightness(20, 128))
	assert.Equal(t, 100, PanelBrightness(126, 126))
	assert.Equal(t, 0, PanelBrightness(10, 0))
}

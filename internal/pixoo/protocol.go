// Package pixoo mirrors the panel to a Divoom Pixoo64 over its local HTTP API.
//
// Endpoint: POST http://<ip>/post with a JSON command. Frames are 64x64
// RGB, base64 encoded. The 128x32 panel is folded into the square: the
// left half on top, the right half below it.
package pixoo

import (
	"encoding/base64"
	"fmt"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// Size is the edge length of the Pixoo64 display.
const Size = 64

// PixooCommand represents a Pixoo API command.
type PixooCommand struct {
	Command string `json:"Command"`
}

// FrameCommand represents a Draw/SendHttpGif command.
type FrameCommand struct {
	Command   string `json:"Command"`
	PicNum    int    `json:"PicNum"`
	PicWidth  int    `json:"PicWidth"`
	PicOffset int    `json:"PicOffset"`
	PicID     int    `json:"PicID"`
	PicSpeed  int    `json:"PicSpeed"`
	PicData   string `json:"PicData"`
}

// BrightnessCommand represents a Channel/SetBrightness command.
type BrightnessCommand struct {
	Command    string `json:"Command"`
	Brightness int    `json:"Brightness"`
}

// Response is the reply to every command.
type Response struct {
	ErrorCode int `json:"error_code"`
}

// Fold tiles a wide frame into a size x size square, one strip of size
// columns per band of rows. Pixels that do not fit are dropped; uncovered
// areas stay black.
func Fold(f *domain.Frame, size int) *domain.Frame {
	out := domain.NewFrame(size, size)
	strips := (f.Width + size - 1) / size
	for s := 0; s < strips; s++ {
		oy := s * f.Height
		if oy >= size {
			break
		}
		strip := f.Crop(s*size, 0, size, f.Height)
		out.Blit(strip, 0, oy)
	}
	return out
}

// EncodeFrameToBase64 encodes frame pixels to base64 for Pixoo API.
func EncodeFrameToBase64(frame *domain.Frame) string {
	return base64.StdEncoding.EncodeToString(frame.Pixels)
}

// DecodeBase64ToFrame decodes base64 to a frame.
func DecodeBase64ToFrame(encoded string, width, height int) (*domain.Frame, error) {
	pixels, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	expectedSize := width * height * domain.BytesPerPixel
	if len(pixels) != expectedSize {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", expectedSize, len(pixels))
	}

	return &domain.Frame{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

// CreateFrameCommand creates a single picture Draw/SendHttpGif command.
// The device ignores a PicID it has already shown, so callers count up.
func CreateFrameCommand(frame *domain.Frame, picID int) FrameCommand {
	return FrameCommand{
		Command:   "Draw/SendHttpGif",
		PicNum:    1,
		PicWidth:  frame.Width,
		PicOffset: 0,
		PicID:     picID,
		PicSpeed:  1000,
		PicData:   EncodeFrameToBase64(frame),
	}
}

// CreateResetGifIDCommand resets the device picture id counter.
func CreateResetGifIDCommand() PixooCommand {
	return PixooCommand{Command: "Draw/ResetHttpGifId"}
}

// CreateBrightnessCommand creates a Channel/SetBrightness command.
func CreateBrightnessCommand(brightness int) BrightnessCommand {
	return BrightnessCommand{
		Command:    "Channel/SetBrightness",
		Brightness: min(max(brightness, 0), 100),
	}
}

// PanelBrightness maps a panel brightness level (lit columns out of width)
// to the device percentage.
func PanelBrightness(level, width int) int {
	if width <= 0 {
		return 0
	}
	return min(max(level*100/width, 0), 100)
}

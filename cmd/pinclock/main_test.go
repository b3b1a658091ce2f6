package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/jwulff/pinclock-go/internal/config"
	"github.com/jwulff/pinclock-go/internal/logging"
	"github.com/jwulff/pinclock-go/internal/storage/sqlite"
)

func TestApplyOverrides(t *testing.T) {
	store, err := sqlite.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.SetConfig(ctx, "delays.ani", "45"))
	require.NoError(t, store.SetConfig(ctx, "power.mode", "2"))
	require.NoError(t, store.SetConfig(ctx, "power.day.h", "99"))
	require.NoError(t, store.SetConfig(ctx, "unrelated", "x"))

	cfg := config.Default()
	require.NoError(t, applyOverrides(ctx, store, &cfg, logging.Nop()))

	assert.Equal(t, 45, cfg.Delays.Animation)
	assert.Equal(t, config.PowerDayNight, cfg.Power.Mode)
	assert.Equal(t, 9, cfg.Power.Day.Hour, "invalid overrides are skipped")
}

// writeBMFont stores a BMFont with one 2x3 character 'A' whose atlas has
// fill in red and outline in green.
func writeBMFont(t *testing.T, prefix string) {
	t.Helper()
	le := binary.LittleEndian
	var buf bytes.Buffer
	block := func(kind byte, data []byte) {
		buf.WriteByte(kind)
		binary.Write(&buf, le, uint32(len(data)))
		buf.Write(data)
	}
	buf.WriteString("BMF\x03")

	info := make([]byte, 14)
	le.PutUint16(info, 8)
	block(1, append(info, "Score\x00"...))

	common := make([]byte, 15)
	le.PutUint16(common, 4)
	le.PutUint16(common[2:], 3)
	le.PutUint16(common[4:], 4)
	le.PutUint16(common[6:], 3)
	le.PutUint16(common[8:], 1)
	block(2, common)

	char := make([]byte, 20)
	le.PutUint32(char, 'A')
	le.PutUint16(char[8:], 2)
	le.PutUint16(char[10:], 3)
	le.PutUint16(char[16:], 3)
	block(4, char)
	require.NoError(t, os.WriteFile(prefix+".fnt", buf.Bytes(), 0o644))

	atlas := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		atlas.Set(0, y, color.RGBA{R: 0xFF, G: 0xFF, A: 0xFF})
		atlas.Set(1, y, color.RGBA{G: 0xFF, A: 0xFF})
	}
	var img bytes.Buffer
	require.NoError(t, bmp.Encode(&img, atlas))
	require.NoError(t, os.WriteFile(prefix+"_0.bmp", img.Bytes(), 0o644))
}

func TestDescribeBitmapFont(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "score")
	writeBMFont(t, prefix)

	bm, err := isBitmapFont(prefix + ".fnt")
	require.NoError(t, err)
	require.True(t, bm)

	var out bytes.Buffer
	require.NoError(t, describeBitmapFont(&out, prefix+".fnt", "AZ"))

	s := out.String()
	assert.Contains(t, s, "name:        Score")
	assert.Contains(t, s, "line height: 4")
	assert.Contains(t, s, "chars:       1")
	assert.Contains(t, s, "missing:     Z")
	assert.Equal(t, 3, bytes.Count(out.Bytes(), []byte("|\n")), "one preview row per glyph row")
	assert.Contains(t, s, "#+")
}

func TestIsBitmapFontCompact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000.fnt")
	require.NoError(t, os.WriteFile(path, []byte{0xBE, 0x54, 0x5A, 0x00}, 0o644))

	bm, err := isBitmapFont(path)
	require.NoError(t, err)
	assert.False(t, bm)
}

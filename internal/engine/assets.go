package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jwulff/pinclock-go/internal/animation"
	"github.com/jwulff/pinclock-go/internal/font"
	"github.com/jwulff/pinclock-go/internal/storage"
)

// maxFonts bounds the numbered font files that are looked for.
const maxFonts = 1000

// FontPath returns the path of numbered font n below dir.
func FontPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%03d.fnt", n))
}

// CountFonts counts the consecutive numbered fonts starting at 000.fnt.
func CountFonts(dir string) int {
	n := 0
	for n < maxFonts {
		if _, err := os.Stat(FontPath(dir, n)); err != nil {
			break
		}
		n++
	}
	return n
}

func (e *Engine) loadAssets() {
	p := e.cfg.Paths

	anis, err := animation.OpenFile(p.Animations)
	if err != nil {
		e.anisErr = err
		e.log.Warn("animations unavailable", "path", p.Animations, "error", err)
	} else {
		e.anis = anis
		h := anis.Header()
		e.log.Info("animations loaded", "count", h.Count, "build", h.BuildTag)
	}

	cf, err := font.LoadCompact(p.ConsoleFont)
	if err != nil {
		e.log.Warn("console font unavailable, using built-in", "path", p.ConsoleFont, "error", err)
		cf = font.Builtin()
	}
	e.consoleFont = cf
	e.console = font.NewConsole(e.writer, e.consoleFont)

	e.fonts = CountFonts(p.Fonts)
	e.log.Info("fonts found", "dir", p.Fonts, "count", e.fonts)
}

// loadFont switches the clock to numbered font n. On failure the current
// font stays.
func (e *Engine) loadFont(n int) {
	path := FontPath(e.cfg.Paths.Fonts, n)
	f, err := font.LoadCompact(path)
	if err != nil {
		e.log.Warn("failed to load font", "path", path, "error", err)
		return
	}
	prev := e.writer.SetFont(f)
	if prev != nil && prev != e.consoleFont {
		prev.Close()
	}
	e.log.Debug("font loaded", "path", path, "name", f.Name(), "glyphs", f.Glyphs())
}

// indexCatalog stores the archive's entries when the store has none for
// this build.
func (e *Engine) indexCatalog(ctx context.Context) error {
	if e.store == nil || e.anis == nil {
		return nil
	}
	tag := e.anis.Header().BuildTag
	c, err := e.store.GetCatalog(ctx)
	if err != nil && !storage.IsNotFound(err) {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if c != nil && c.BuildTag == tag {
		return nil
	}

	entries, err := e.anis.Entries()
	if err != nil && !errors.Is(err, animation.ErrCorruptEntry) {
		e.log.Warn("animation scan stopped early", "indexed", len(entries), "error", err)
	}
	if err := e.store.SaveCatalog(ctx, tag, CatalogRecords(entries)); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	e.log.Info("animation catalog indexed", "build", tag, "animations", len(entries))
	return nil
}

// CatalogRecords converts archive entries to catalog rows.
func CatalogRecords(entries []*animation.Entry) []storage.AnimationRecord {
	out := make([]storage.AnimationRecord, 0, len(entries))
	for _, en := range entries {
		w, h := en.Size()
		out = append(out, storage.AnimationRecord{
			Index:    en.Index,
			Name:     en.Name,
			ID:       int(en.ID),
			Width:    w,
			Height:   h,
			Frames:   en.StoredFrames,
			Steps:    en.FrameEntries,
			Duration: en.Duration(),
		})
	}
	return out
}

package main

import (
	"context"
	"errors"
	"fmt"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/encoding/charmap"

	"github.com/jwulff/pinclock-go/internal/animation"
	"github.com/jwulff/pinclock-go/internal/config"
	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/engine"
	"github.com/jwulff/pinclock-go/internal/font"
	"github.com/jwulff/pinclock-go/internal/framebuffer"
	"github.com/jwulff/pinclock-go/internal/storage/sqlite"
)

func aniCmd(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: pinclock ani list|pack")
	}
	switch args[0] {
	case "list":
		return aniList(args[1:])
	case "pack":
		return aniPack(args[1:])
	default:
		return fmt.Errorf("unknown ani command %q", args[0])
	}
}

func aniList(args []string) error {
	fs, path := commandFlags("ani list")
	fs.Parse(args)
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}

	r, err := animation.OpenFile(cfg.Paths.Animations)
	if err != nil {
		return err
	}
	defer r.Close()

	h := r.Header()
	fmt.Printf("%s: %d animations, build %s\n\n", cfg.Paths.Animations, h.Count, h.BuildTag)
	bad := 0
	for i := 0; i < h.Count; i++ {
		e, err := r.Entry(i)
		if err != nil {
			fmt.Printf("  %4d  %v\n", i, err)
			bad++
			continue
		}
		w, ht := e.Size()
		fmt.Printf("  %4d  %-31s  id %5d  %3dx%-3d  %3d frames  %3d steps  %v\n",
			e.Index, e.Name, e.ID, w, ht, e.StoredFrames, e.FrameEntries, e.Duration())
	}
	if bad > 0 {
		fmt.Printf("\n%d corrupt entries will be skipped\n", bad)
	}
	return nil
}

func aniPack(args []string) error {
	fs, path := commandFlags("ani pack")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) < 3 {
		return errors.New("usage: pinclock ani pack <out> <tag> <gif>...")
	}
	out, tag, inputs := rest[0], rest[1], rest[2:]
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}

	anis := make([]animation.Animation, 0, len(inputs))
	for i, in := range inputs {
		g, err := readGIF(in)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		if len(name) > 31 {
			name = name[:31]
		}
		a, err := animation.FromGIF(name, uint16(i), g, cfg.Panel.Width, cfg.Panel.Height)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		anis = append(anis, a)
		fmt.Printf("  %-31s  %3d frames  %3d steps\n", a.Name, len(a.Frames), len(a.Steps))
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := animation.Encode(f, tag, anis); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	st, err := os.Stat(out)
	if err != nil {
		return err
	}
	fmt.Printf("\nWrote %d animations to %s (%s)\n", len(anis), out, humanize.Bytes(uint64(st.Size())))
	return nil
}

func readGIF(path string) (*gif.GIF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func fontCmd(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: pinclock font <file.fnt> [text]")
	}
	text := "0123456789:"
	if len(args) > 1 {
		text = args[1]
	}
	bm, err := isBitmapFont(args[0])
	if err != nil {
		return err
	}
	if bm {
		return describeBitmapFont(os.Stdout, args[0], text)
	}

	f, err := font.LoadCompact(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", args[0], humanize.Bytes(uint64(st.Size())))
	fmt.Printf("  name:      %s\n", f.Name())
	fmt.Printf("  glyphs:    %d\n", f.Glyphs())
	fmt.Printf("  linespace: %d\n", f.Linespace())
	fmt.Printf("  y shift:   %d\n", f.YShift())
	fmt.Printf("  outline:   %v\n", f.HasOutline())

	var missing []string
	for _, r := range text {
		if _, ok := f.GlyphIndex(r); !ok {
			missing = append(missing, string(r))
		}
	}
	if len(missing) > 0 {
		fmt.Printf("  missing:   %s\n", strings.Join(missing, " "))
	}
	return nil
}

// isBitmapFont reports whether path is a binary BMFont rather than a
// compact font.
func isBitmapFont(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	var magic [3]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false, nil
	}
	return string(magic[:]) == "BMF", nil
}

// describeBitmapFont prints the metrics of a BMFont and text drawn centred
// on a panel sized layer.
func describeBitmapFont(w io.Writer, path, text string) error {
	f, err := font.LoadBitmap(strings.TrimSuffix(path, filepath.Ext(path)))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (BMFont)\n", path)
	fmt.Fprintf(w, "  name:        %s\n", f.Name)
	fmt.Fprintf(w, "  size:        %d\n", f.Size)
	fmt.Fprintf(w, "  line height: %d\n", f.LineHeight)
	fmt.Fprintf(w, "  base:        %d\n", f.Base)
	fmt.Fprintf(w, "  atlas:       %dx%d, %d page(s)\n", f.ScaleW, f.ScaleH, f.Pages)
	fmt.Fprintf(w, "  chars:       %d\n", f.Chars())

	var missing []string
	for _, r := range text {
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			missing = append(missing, string(r))
			continue
		}
		if _, ok := f.CharInfo(b); !ok {
			missing = append(missing, string(r))
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(w, "  missing:     %s\n", strings.Join(missing, " "))
	}

	buf := framebuffer.New(domain.PanelWidth, domain.PanelHeight, 1)
	f.DrawCentered(buf, 0, text, domain.White, domain.Red)
	fmt.Fprintln(w)
	for y := 0; y < buf.Height(); y++ {
		var line strings.Builder
		lit := false
		for x := 0; x < buf.Width(); x++ {
			p := buf.GetPixel(0, x, y)
			switch {
			case p.A() < 0x80:
				line.WriteByte(' ')
			case p.G() < 0x80:
				line.WriteByte('#')
				lit = true
			default:
				line.WriteByte('+')
				lit = true
			}
		}
		if lit {
			fmt.Fprintf(w, "  |%s|\n", strings.TrimRight(line.String(), " "))
		}
	}
	return nil
}

func scheduleCmd(args []string) error {
	fs, path := commandFlags("schedule")
	fs.Parse(args)
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}

	p := cfg.Power
	fmt.Printf("Power mode %d, day %02d:%02d (p %d), night %02d:%02d (p %d)\n\n",
		p.Mode, p.Day.Hour, p.Day.Minute, p.Day.Brightness,
		p.Night.Hour, p.Night.Minute, p.Night.Brightness)

	day := time.Date(2000, 1, 1, 0, 0, 0, 0, cfg.Location())
	prev := -1
	for m := 0; m < 24*60; m++ {
		t := day.Add(time.Duration(m) * time.Minute)
		level, _ := engine.Brightness(p, t)
		if level != prev {
			fmt.Printf("  %s  brightness %d\n", t.Format("15:04"), level)
			prev = level
		}
	}
	return nil
}

func configCmd(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: pinclock config list|get|set|unset")
	}
	fs, path := commandFlags("config " + args[0])
	fs.Parse(args[1:])
	rest := fs.Args()

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	store, err := sqlite.NewFileStore(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()

	switch args[0] {
	case "list":
		for _, key := range config.OverrideKeys {
			value, err := store.GetConfig(ctx, key)
			if err == nil {
				fmt.Printf("%s = %s\n", key, value)
			}
		}
		return nil
	case "get":
		if len(rest) != 1 {
			return errors.New("usage: pinclock config get <key>")
		}
		value, err := store.GetConfig(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	case "set":
		if len(rest) != 2 {
			return errors.New("usage: pinclock config set <key> <value>")
		}
		if err := cfg.Set(rest[0], rest[1]); err != nil {
			return err
		}
		return store.SetConfig(ctx, rest[0], rest[1])
	case "unset":
		if len(rest) != 1 {
			return errors.New("usage: pinclock config unset <key>")
		}
		return store.DeleteConfig(ctx, rest[0])
	default:
		return fmt.Errorf("unknown config command %q", args[0])
	}
}

func statsCmd(args []string) error {
	fs, path := commandFlags("stats")
	since := fs.Duration("since", time.Hour, "how far back to look")
	fs.Parse(args)
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	store, err := sqlite.NewFileStore(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now()
	samples, err := store.QueryStats(context.Background(), now.Add(-*since), now)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("No samples.")
		return nil
	}
	for _, s := range samples {
		fmt.Printf("  %-16s  %5.1f fps  %s frames  timeouts %d/%d  brightness %d\n",
			humanize.Time(s.At), s.FPS, humanize.Comma(int64(s.Frames)),
			s.StartTimeouts, s.WaitTimeouts, s.Brightness)
	}
	return nil
}

func lastCmd(args []string) error {
	fs, path := commandFlags("last")
	n := fs.Int("n", 10, "number of playbacks")
	fs.Parse(args)
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	store, err := sqlite.NewFileStore(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	plays, err := store.RecentPlaybacks(context.Background(), *n)
	if err != nil {
		return err
	}
	for _, p := range plays {
		fmt.Printf("  %-16s  %4d  %-31s  %v\n", humanize.Time(p.StartedAt), p.AnimationIndex, p.Name,
			p.Duration.Round(10*time.Millisecond))
	}
	return nil
}

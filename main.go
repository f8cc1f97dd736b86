// Package main is the dungeonforge command: it generates a dungeon from a seed
// and prints it, or regenerates one from a share code.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/leonelquinteros/gotext"

	"dungeonforge/pkg/engine/telemetry"
	"dungeonforge/pkg/engine/terminal"
	"dungeonforge/pkg/engine/world"
	"dungeonforge/pkg/game/config"
	"dungeonforge/pkg/game/devtools"
	"dungeonforge/pkg/game/dungeon"
	"dungeonforge/pkg/game/seed"
)

var (
	colorTitle  = color.Style{color.FgMagenta, color.OpBold}
	colorLabel  = color.Style{color.FgGray}
	colorValue  = color.Style{color.FgGreen, color.OpBold}
	colorDenied = color.Style{color.FgRed, color.OpBold}
)

type options struct {
	seed       int64
	share      string
	configPath string
	dumpPath   string
	html       bool
	devMap     bool
	quiet      bool
	noColor    bool
	progress   bool
	debug      bool
}

func main() {
	cfg := config.Default()
	var opts options

	flag.Int64Var(&opts.seed, "seed", -1, "primary seed in [0, 4294967295]; -1 picks one from the clock")
	flag.StringVar(&opts.share, "share", "", "regenerate the dungeon for a share code")
	flag.StringVar(&opts.configPath, "config", "", "JSON configuration file; flags override it")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "grid width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "grid height")
	flag.IntVar(&cfg.RoomCount, "rooms", cfg.RoomCount, "target room count")
	flag.IntVar(&cfg.RoomSize.Min, "min", cfg.RoomSize.Min, "minimum room side")
	flag.IntVar(&cfg.RoomSize.Max, "max", cfg.RoomSize.Max, "maximum room side")
	flag.IntVar(&cfg.Spacing, "spacing", cfg.Spacing, "minimum gap between rooms")
	algorithm := flag.String("algorithm", string(cfg.Algorithm), fmt.Sprintf("layout algorithm %v", config.Algorithms()))
	corridor := flag.String("corridor", string(cfg.BSP.Corridor), "bsp corridor style (lshape, straight, astar)")
	flag.StringVar(&opts.dumpPath, "dump", "", "write a full debug dump to this file")
	flag.BoolVar(&opts.html, "html", false, "save an HTML snapshot of the map")
	flag.BoolVar(&opts.devMap, "devmap", false, "print the hand-built developer map instead of generating")
	flag.BoolVar(&opts.quiet, "quiet", false, "print only the summary, not the map")
	flag.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	flag.BoolVar(&opts.progress, "progress", false, "report generation progress on stderr")
	flag.BoolVar(&opts.debug, "debug", false, "log ignored out-of-bounds grid writes")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Note: .env file not loaded: %v", err)
		}
	}
	initGettext()

	out := terminal.Stdout()
	color.Enable = out.IsTerminal() && !opts.noColor

	if opts.debug {
		world.SetDebugLogger(log.New(os.Stderr, "debug: ", log.Lmicroseconds))
	}

	if opts.configPath != "" {
		if err := loadConfig(opts.configPath, &cfg); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		// Flags given explicitly win over the file.
		flag.Visit(func(f *flag.Flag) {
			if err := flag.Set(f.Name, f.Value.String()); err != nil {
				log.Printf("Ignoring flag %s: %v", f.Name, err)
			}
		})
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["algorithm"] || opts.configPath == "" {
		cfg.Algorithm = config.Algorithm(*algorithm)
	}
	if set["corridor"] || opts.configPath == "" {
		cfg.BSP.Corridor = config.CorridorStyle(*corridor)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if telemetry.Requested() {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			log.Printf("Warning: telemetry setup failed: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Printf("Error shutting down telemetry: %v", err)
				}
			}()
		}
	}

	d, err := build(ctx, cfg, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, colorDenied.Sprint(gotext.Get("Generation failed: %v", err)))
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				fmt.Fprintf(os.Stderr, "  - %s\n", f)
			}
		}
		os.Exit(1)
	}

	printSummary(d)

	if !opts.quiet {
		if out.IsTerminal() && !out.Fits(d.Width(), d.Height()) {
			log.Print(gotext.Get("Map is %dx%d but the terminal is smaller; lines will wrap", d.Width(), d.Height()))
		}
		if err := devtools.WriteMap(os.Stdout, d, color.Enable); err != nil {
			log.Fatalf("Failed to print map: %v", err)
		}
	}

	if opts.dumpPath != "" {
		path, err := devtools.DumpToFile(d, opts.dumpPath)
		if err != nil {
			log.Fatalf("Failed to write dump: %v", err)
		}
		fmt.Println(gotext.Get("Dump written to %s", path))
	}
	if opts.html {
		path, err := devtools.SaveScreenshotHTML(d)
		if err != nil {
			log.Fatalf("Failed to write HTML snapshot: %v", err)
		}
		fmt.Println(gotext.Get("HTML snapshot written to %s", path))
	}
}

// initGettext loads translations when DUNGEONFORGE_LOCALES points at a
// gettext locales directory. Untranslated messages print as written.
func initGettext() {
	dir := os.Getenv("DUNGEONFORGE_LOCALES")
	if dir == "" {
		return
	}
	lang := os.Getenv("DUNGEONFORGE_LANG")
	if lang == "" {
		lang = "en_GB"
	}
	gotext.Configure(dir, lang, "default")
}

func loadConfig(path string, cfg *config.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func build(ctx context.Context, cfg config.Config, opts options) (*dungeon.Dungeon, error) {
	if opts.devMap {
		return devtools.DevDungeon(), nil
	}
	if code := strings.TrimSpace(opts.share); code != "" {
		return dungeon.FromShareCode(ctx, code, cfg)
	}

	s := opts.seed
	if s < 0 {
		s = time.Now().UnixNano() % (int64(seed.MaxPrimary) + 1)
	}
	var progress dungeon.ProgressFunc
	switch {
	case !opts.progress:
	case terminal.For(os.Stderr).IsTerminal():
		progress = func(percent int, phase string) {
			fmt.Fprintf(os.Stderr, "\r%3d%% %-24s", percent, phase)
			if percent == 100 {
				fmt.Fprintln(os.Stderr)
			}
		}
	default:
		// One line per phase when stderr is a pipe or file
		progress = func(percent int, phase string) {
			fmt.Fprintf(os.Stderr, "%3d%% %s\n", percent, phase)
		}
	}
	return dungeon.GenerateAsync(ctx, s, cfg, progress)
}

func printSummary(d *dungeon.Dungeon) {
	line := func(label string, value any) {
		fmt.Printf("%s %s\n", colorLabel.Sprint(label), colorValue.Sprint(value))
	}
	colorTitle.Println(gotext.Get("Dungeon %dx%d", d.Width(), d.Height()))
	line(gotext.Get("Seed:"), d.Seeds.Primary)
	line(gotext.Get("Share code:"), d.ShareCode())
	line(gotext.Get("Checksum:"), d.Checksum)
	line(gotext.Get("Algorithm:"), d.Config.Algorithm)
	line(gotext.Get("Rooms:"), len(d.Rooms))
	line(gotext.Get("Locks:"), len(d.Locks))
	line(gotext.Get("Path:"), d.Path)
	for _, r := range d.Rooms {
		fmt.Printf("  %s %s %s\n", colorLabel.Sprintf("%3d", r.ID), colorValue.Sprint(r.Type), r.Name)
	}
	fmt.Println()
}

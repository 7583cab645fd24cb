package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	outpaint "github.com/menta2k/aspect-outpaint"
	"github.com/menta2k/aspect-outpaint/internal/config"
	"github.com/menta2k/aspect-outpaint/internal/utils"
	"github.com/menta2k/aspect-outpaint/pkg/caption"
	"github.com/menta2k/aspect-outpaint/pkg/params"
	"github.com/menta2k/aspect-outpaint/pkg/processing"
	"github.com/menta2k/aspect-outpaint/pkg/types"
)

type padOptions struct {
	configPath   string
	previousSeed int64
	jobs         int
	cfg          *config.Config
}

// sidecar is written next to each canvas
type sidecar struct {
	Source   string           `json:"source"`
	Canvas   string           `json:"canvas"`
	Mask     string           `json:"mask"`
	Info     string           `json:"info"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Offsets  types.PadOffsets `json:"offsets"`
	Resolved types.Resolved   `json:"resolved"`
	Prompt   string           `json:"prompt,omitempty"`
}

func newPadCmd() *cobra.Command {
	opts := &padOptions{cfg: config.Default()}
	cfg := opts.cfg

	cmd := &cobra.Command{
		Use:   "pad [flags] <image|dir|url>...",
		Short: "Pad images onto an aspect-ratio canvas and write outpaint masks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyConfigFile(cmd); err != nil {
				return err
			}
			return runPad(cmd.Context(), opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (json, toml or yaml)")
	f.IntVarP(&opts.jobs, "jobs", "j", 4, "images processed concurrently")
	f.Int64Var(&opts.previousSeed, "previous-seed", -1, "legacy variant: re-choose the aspect ratio when this differs from --seed")

	f.StringVarP(&cfg.Defaults.AspectRatio, "aspect-ratio", "a", cfg.Defaults.AspectRatio, "target aspect ratio W:H or random")
	f.StringVarP(&cfg.Defaults.Placement, "placement", "p", cfg.Defaults.Placement, "foreground placement (see presets)")
	f.StringVar(&cfg.Defaults.Scale, "scale", cfg.Defaults.Scale, "foreground scale percent (50-100 step 10) or random")
	f.StringVar(&cfg.Defaults.Rotation, "rotation", cfg.Defaults.Rotation, "rotation degrees (multiples of 30) or random")
	f.StringVar(&cfg.Defaults.Background, "background", cfg.Defaults.Background, "background: white, black or grey")
	f.Uint32Var(&cfg.Defaults.Seed, "seed", cfg.Defaults.Seed, "seed for random choices")
	f.IntVar(&cfg.Defaults.Feathering, "feathering", cfg.Defaults.Feathering, "mask feather radius in pixels")

	f.StringVar((*string)(&cfg.Pipeline.Variant), "variant", string(cfg.Pipeline.Variant), "pipeline variant: extended or legacy")
	f.BoolVar(&cfg.Pipeline.Strict, "strict", cfg.Pipeline.Strict, "fail on invalid parameters instead of falling back")
	f.BoolVar(&cfg.Pipeline.Reproducible, "reproducible", cfg.Pipeline.Reproducible, "derive every random choice from --seed")

	f.StringVarP(&cfg.Output.OutputDir, "out", "o", cfg.Output.OutputDir, "output directory")
	f.StringVar(&cfg.Output.Format, "format", cfg.Output.Format, "output format: png, jpg or webp")
	f.IntVar(&cfg.Output.Quality, "quality", cfg.Output.Quality, "JPEG/WebP quality (1-100)")
	f.BoolVar(&cfg.Output.Lossless, "lossless", cfg.Output.Lossless, "lossless WebP output")
	f.BoolVar(&cfg.Output.Debug, "debug", cfg.Output.Debug, "also write a debug overlay")

	f.BoolVar(&cfg.Caption.Enabled, "caption", cfg.Caption.Enabled, "ask a vision model for an outpaint prompt")
	f.StringVar(&cfg.Caption.URL, "caption-url", cfg.Caption.URL, "Ollama server URL")
	f.StringVar(&cfg.Caption.Model, "caption-model", cfg.Caption.Model, "Ollama vision model")

	return cmd
}

// applyConfigFile loads the config file, then re-applies any flags given on
// the command line so they win over the file.
func (o *padOptions) applyConfigFile(cmd *cobra.Command) error {
	path := o.configPath
	if path == "" {
		if def := config.GetConfigPath(); utils.FileExists(def) {
			path = def
		}
	}
	if path != "" {
		explicit := map[string]string{}
		cmd.Flags().Visit(func(fl *pflag.Flag) {
			if fl.Name != "config" {
				explicit[fl.Name] = fl.Value.String()
			}
		})

		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return err
		}
		*o.cfg = *loaded
		for name, value := range explicit {
			if err := cmd.Flags().Set(name, value); err != nil {
				return fmt.Errorf("invalid --%s: %w", name, err)
			}
		}
		loggerFromContext(cmd.Context()).Debug("loaded config", "path", path)
	}
	return o.cfg.Validate()
}

func runPad(ctx context.Context, opts *padOptions, args []string) error {
	logger := loggerFromContext(ctx)
	cfg := opts.cfg

	if opts.previousSeed > params.MaxSeed {
		return fmt.Errorf("--previous-seed must fit in 31 bits, got %d", opts.previousSeed)
	}

	inputs, err := utils.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no images found in %s", strings.Join(args, ", "))
	}
	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	padder := outpaint.NewWithConfig(outpaint.Config{
		Variant:         cfg.Pipeline.Variant,
		Strict:          cfg.Pipeline.Strict,
		NonReproducible: !cfg.Pipeline.Reproducible,
		Logger:          logger,
	})
	proc := processing.NewProcessor()

	var describer caption.Describer
	if cfg.Caption.Enabled {
		cc := caption.DefaultConfig()
		cc.URL = cfg.Caption.URL
		cc.Model = cfg.Caption.Model
		client, err := caption.NewClient(cc)
		if err != nil {
			return fmt.Errorf("failed to create caption client: %w", err)
		}
		describer = client
	}

	p := cfg.Defaults
	if opts.previousSeed >= 0 {
		prev := uint32(opts.previousSeed)
		p.PreviousSeed = &prev
	}

	stems := utils.UniqueBaseNames(inputs)
	prog := newProgress(logger)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.jobs, 1))
	for i, in := range inputs {
		g.Go(func() error {
			if err := padOne(gctx, logger, padder, proc, describer, cfg, p, in, stems[i]); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("pad failed", "err", err)
		return err
	}
	prog.done("padded images", "count", len(inputs), "last_aspect_ratio", padder.LastAspectRatio())
	return nil
}

func padOne(ctx context.Context, logger *log.Logger, padder *outpaint.Outpainter, proc *processing.Processor,
	describer caption.Describer, cfg *config.Config, p types.Params, in, stem string) error {
	img, err := proc.LoadImageSmart(in)
	if err != nil {
		return err
	}
	if err := proc.ValidateImage(img); err != nil {
		return err
	}
	info := proc.GetImageInfo(img)
	logger.Debug("loaded", "input", in, "width", info.Width, "height", info.Height)

	result, err := padder.ProcessImage(img, p)
	if err != nil {
		return err
	}

	out := cfg.Output
	format := strings.ToLower(out.Format)
	canvasPath := utils.OutputPath(out.OutputDir, stem, out.Suffix, format)
	maskExt := "png"
	if format == "webp" {
		maskExt = "webp"
	}
	maskPath := utils.OutputPath(out.OutputDir, stem, out.MaskSuffix, maskExt)

	if err := proc.SaveResult(result.Image, result.Mask, canvasPath, maskPath, format, out.Quality, out.Lossless); err != nil {
		return err
	}
	logger.Info("wrote", "canvas", canvasPath, "mask", maskPath, "info", result.Info, "size", fileSize(canvasPath))

	if out.Debug {
		dbg := proc.CreateDebugOverlay(result.Image.ToImage(0), result.Mask, result.Offsets)
		dbgPath := utils.OutputPath(out.OutputDir, stem, "_debug", "png")
		if err := proc.SaveImage(dbg, dbgPath, "png", 100, true); err != nil {
			logger.Warn("debug overlay save failed", "path", dbgPath, "err", err)
		} else {
			logger.Debug("wrote", "debug", dbgPath)
		}
	}

	meta := sidecar{
		Source:   in,
		Canvas:   filepath.Base(canvasPath),
		Mask:     filepath.Base(maskPath),
		Info:     result.Info,
		Width:    result.CanvasWidth,
		Height:   result.CanvasHeight,
		Offsets:  result.Offsets,
		Resolved: result.Resolved,
	}
	if describer != nil {
		prompt, err := describer.Describe(ctx, img)
		if err != nil {
			logger.Warn("caption failed", "input", in, "err", err)
		} else {
			meta.Prompt = prompt
			logger.Info("caption", "input", in, "prompt", prompt)
		}
	}

	js, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(utils.OutputPath(out.OutputDir, stem, "_info", "json"), js, 0o644)
}

func fileSize(path string) string {
	st, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return utils.FormatFileSize(st.Size())
}

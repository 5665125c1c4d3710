// termspec draws a live RF spectrum and waterfall in the terminal from a
// synthetic tone, an IQ recording or an RTL-SDR dongle.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olivier-w/termspec/internal/config"
	"github.com/olivier-w/termspec/internal/logging"
	"github.com/olivier-w/termspec/internal/pipeline"
	"github.com/olivier-w/termspec/internal/render"
	"github.com/olivier-w/termspec/internal/source"
	"github.com/olivier-w/termspec/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"source":          "source.kind",
	"format":          "source.format",
	"frequency":       "source.center_frequency",
	"sample-rate":     "source.sample_rate",
	"gain":            "source.gain",
	"loop":            "source.loop",
	"monitor":         "source.monitor",
	"device":          "source.device_index",
	"fft-size":        "render.frame_size",
	"window":          "render.window",
	"palette":         "render.palette",
	"fps":             "render.frame_rate",
	"reference-level": "render.reference_level",
	"dynamic-range":   "render.dynamic_range",
	"span":            "render.spectrum_span",
	"log-level":       "logging.level",
	"log-file":        "logging.file",
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		dump    bool
	)
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "termspec [file]",
		Short: "Terminal spectrum analyzer and waterfall",
		Long: `termspec shows a live spectrum trace and a scrolling waterfall of complex
baseband samples. Samples come from a synthetic test tone, an IQ recording or
audio file (wav, flac, ogg, mp3, cu8, cs8, cs16), or an RTL-SDR dongle when
built with -tags rtlsdr.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(cfgFile)
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			if len(args) == 1 {
				v.Set("source.kind", source.KindFile)
				v.Set("source.path", args[0])
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if dump {
				out, err := config.Dump(cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfgFile, "config", "c", "termspec.yaml", "config file")
	f.BoolVar(&dump, "dump-config", false, "print the effective configuration and exit")
	f.StringP("source", "s", def.Source.Kind, "sample source: tone, file or rtlsdr")
	f.String("format", "", "file format (default: from the extension)")
	f.Float64P("frequency", "f", def.Source.CenterFrequency, "center frequency (Hz)")
	f.Float64P("sample-rate", "r", def.Source.SampleRate, "sample rate (Hz), required for raw IQ files")
	f.Float64P("gain", "g", def.Source.Gain, "gain (dB)")
	f.Bool("loop", def.Source.Loop, "loop file playback")
	f.Bool("monitor", def.Source.Monitor, "play audio files through the sound card")
	f.Int("device", def.Source.DeviceIndex, "RTL-SDR device index")
	f.IntP("fft-size", "n", def.Render.FrameSize, "FFT size, 0 sizes it to the terminal")
	f.StringP("window", "w", def.Render.Window, "window function")
	f.StringP("palette", "p", def.Render.Palette, "colour palette")
	f.Int("fps", def.Render.FrameRate, "display frame rate")
	f.Float64("reference-level", def.Render.ReferenceLevel, "top of the scale (dB)")
	f.Float64("dynamic-range", def.Render.DynamicRange, "scale depth (dB)")
	f.String("span", def.Render.SpectrumSpan, "displayed span: half or full")
	f.String("log-level", def.Logging.Level, "log level")
	f.String("log-file", def.Logging.File, "log file, empty disables logging")
	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

func run(ctx context.Context, cfg config.Config) error {
	log, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	src, err := source.New(cfg.Source, log)
	if err != nil {
		return err
	}
	defer src.Close()
	cfg.Source.SampleRate = src.SampleRate()

	display := ui.NewDisplay(ui.Options{
		Title: src.Title(),
		Steps: ui.Steps{
			Frequency: cfg.Source.FrequencyStep,
			Gain:      cfg.Source.GainStep,
			Reference: cfg.Render.ReferenceStep,
		},
		Profile: render.DetectProfile(),
	})
	session, err := pipeline.NewSession(cfg, src, display, log)
	if err != nil {
		return err
	}
	log.Info("starting", zap.String("session", session.ID), zap.String("profile", render.DetectProfile().String()))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		err := session.Run(ctx)
		display.Close()
		done <- err
	}()

	uiErr := display.Run()
	stop()
	return errors.Join(uiErr, <-done)
}

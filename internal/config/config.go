// Package config holds the render, source and logging settings of a
// termspec run, their defaults, and loading through viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"

	"github.com/olivier-w/termspec/internal/dsp"
	"github.com/olivier-w/termspec/internal/render"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. TERMSPEC_RENDER_FRAME_RATE.
const EnvPrefix = "TERMSPEC"

// Config is the complete run configuration.
type Config struct {
	Render  Render  `mapstructure:"render" yaml:"render"`
	Source  Source  `mapstructure:"source" yaml:"source"`
	Logging Logging `mapstructure:"logging" yaml:"logging"`
}

// Render controls the signal processing and drawing.
type Render struct {
	FrameSize           int     `mapstructure:"frame_size" yaml:"frame_size"` // N; 0 derives it from the terminal width
	HopSize             int     `mapstructure:"hop_size" yaml:"hop_size"`     // 0 means N/2
	Window              string  `mapstructure:"window" yaml:"window"`
	Transform           string  `mapstructure:"transform" yaml:"transform"`
	Averaging           float64 `mapstructure:"averaging" yaml:"averaging"` // α in [0,1]
	Smoothing           string  `mapstructure:"smoothing" yaml:"smoothing"`
	ReferenceLevel      float64 `mapstructure:"reference_level" yaml:"reference_level"` // dB
	DynamicRange        float64 `mapstructure:"dynamic_range" yaml:"dynamic_range"`     // dB
	ReferenceStep       float64 `mapstructure:"reference_step" yaml:"reference_step"`   // dB per keypress
	Palette             string  `mapstructure:"palette" yaml:"palette"`
	PaletteSteps        int     `mapstructure:"palette_steps" yaml:"palette_steps"`
	FrameRate           int     `mapstructure:"frame_rate" yaml:"frame_rate"`
	SpectrumDownsample  string  `mapstructure:"spectrum_downsample" yaml:"spectrum_downsample"`
	WaterfallDownsample string  `mapstructure:"waterfall_downsample" yaml:"waterfall_downsample"`
	SpectrumSpan        string  `mapstructure:"spectrum_span" yaml:"spectrum_span"`
	SpectrumFill        bool    `mapstructure:"spectrum_fill" yaml:"spectrum_fill"`
	StatusBar           bool    `mapstructure:"status_bar" yaml:"status_bar"`
	FFTRate             float64 `mapstructure:"fft_rate" yaml:"fft_rate"`         // transforms per second; 0 is unlimited
	MaxBacklog          int     `mapstructure:"max_backlog" yaml:"max_backlog"` // samples; 0 picks a default
}

// Source selects and tunes the sample source.
type Source struct {
	Kind            string  `mapstructure:"kind" yaml:"kind"` // tone, file or rtlsdr
	Path            string  `mapstructure:"path" yaml:"path"`
	Format          string  `mapstructure:"format" yaml:"format"`           // file format; empty guesses from the extension
	SampleRate      float64 `mapstructure:"sample_rate" yaml:"sample_rate"` // Hz; 0 takes the source's own rate
	CenterFrequency float64 `mapstructure:"center_frequency" yaml:"center_frequency"`
	BlockSize       int     `mapstructure:"block_size" yaml:"block_size"`
	Gain            float64 `mapstructure:"gain" yaml:"gain"`
	FrequencyStep   float64 `mapstructure:"frequency_step" yaml:"frequency_step"`
	GainStep        float64 `mapstructure:"gain_step" yaml:"gain_step"`
	Loop            bool    `mapstructure:"loop" yaml:"loop"`
	Monitor         bool    `mapstructure:"monitor" yaml:"monitor"` // play audio files while displaying them
	ToneOffset      float64 `mapstructure:"tone_offset" yaml:"tone_offset"`
	ToneAmplitude   float64 `mapstructure:"tone_amplitude" yaml:"tone_amplitude"`
	Noise           float64 `mapstructure:"noise" yaml:"noise"`
	DeviceIndex     int     `mapstructure:"device_index" yaml:"device_index"`
}

// Logging controls the log file.
type Logging struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"` // empty disables logging
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Render: Render{
			FrameSize:           1024,
			Window:              string(dsp.WindowHann),
			Transform:           string(dsp.TransformFourier),
			Averaging:           0.5,
			Smoothing:           string(dsp.SmoothExponential),
			ReferenceLevel:      0,
			DynamicRange:        80,
			ReferenceStep:       5,
			Palette:             string(render.ThemeClassic),
			PaletteSteps:        64,
			FrameRate:           30,
			SpectrumDownsample:  string(render.DownsamplePeak),
			WaterfallDownsample: string(render.DownsampleAverage),
			SpectrumSpan:        string(dsp.SpanHalf),
			StatusBar:           true,
		},
		Source: Source{
			Kind:            "tone",
			CenterFrequency: 100e6,
			BlockSize:       16384,
			FrequencyStep:   100e3,
			GainStep:        1,
			ToneOffset:      250e3,
			ToneAmplitude:   0.5,
			Noise:           0.01,
		},
		Logging: Logging{
			Level: "info",
			File:  "termspec.log",
		},
	}
}

// Resolved carries the enumerated render options in their typed form.
type Resolved struct {
	Window              dsp.WindowKind
	Transform           dsp.TransformKind
	Smoothing           dsp.Smoothing
	Span                dsp.Span
	Theme               render.Theme
	SpectrumDownsample  render.Downsample
	WaterfallDownsample render.Downsample
}

// Resolve parses the enumerated options.
func (r Render) Resolve() (Resolved, error) {
	var (
		out  Resolved
		err  error
		errs []error
	)
	if out.Window, err = dsp.ParseWindow(r.Window); err != nil {
		errs = append(errs, err)
	}
	switch k := dsp.TransformKind(strings.ToLower(r.Transform)); k {
	case dsp.TransformFourier, dsp.TransformRadix2:
		out.Transform = k
	case "":
		out.Transform = dsp.TransformFourier
	default:
		errs = append(errs, fmt.Errorf("unknown transform %q", r.Transform))
	}
	if out.Smoothing, err = dsp.ParseSmoothing(r.Smoothing); err != nil {
		errs = append(errs, err)
	}
	if out.Span, err = dsp.ParseSpan(r.SpectrumSpan); err != nil {
		errs = append(errs, err)
	}
	if out.Theme, err = render.ParseTheme(r.Palette); err != nil {
		errs = append(errs, err)
	}
	if out.SpectrumDownsample, err = render.ParseDownsample(r.SpectrumDownsample); err != nil {
		errs = append(errs, err)
	}
	if out.WaterfallDownsample, err = render.ParseDownsample(r.WaterfallDownsample); err != nil {
		errs = append(errs, err)
	}
	return out, errors.Join(errs...)
}

// AutoFrameSize reports whether N follows the terminal width.
func (r Render) AutoFrameSize() bool { return r.FrameSize == 0 }

// Hop returns the hop size for frame size n.
func (r Render) Hop(n int) int {
	if r.HopSize <= 0 || r.HopSize > n {
		return max(n/2, 1)
	}
	return r.HopSize
}

// Magnitude returns the magnitude stage settings.
func (r Render) Magnitude() dsp.MagnitudeConfig {
	res, _ := r.Resolve()
	return dsp.MagnitudeConfig{
		Averaging:      r.Averaging,
		ReferenceLevel: r.ReferenceLevel,
		DynamicRange:   r.DynamicRange,
		Span:           res.Span,
		Smoothing:      res.Smoothing,
		SpringFPS:      r.FrameRate,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	r := c.Render
	_, err := r.Resolve()
	errs := []error{err}
	if r.FrameSize != 0 {
		errs = append(errs, dsp.ValidateGeometry(r.FrameSize, r.Hop(r.FrameSize)))
		if r.HopSize > r.FrameSize {
			errs = append(errs, fmt.Errorf("hop size %d exceeds frame size %d", r.HopSize, r.FrameSize))
		}
	}
	if r.HopSize < 0 {
		errs = append(errs, fmt.Errorf("hop size %d is negative", r.HopSize))
	}
	errs = append(errs, r.Magnitude().Validate())
	if r.PaletteSteps < 2 || r.PaletteSteps > render.MaxPaletteSteps {
		errs = append(errs, fmt.Errorf("palette steps %d outside [2, %d]", r.PaletteSteps, render.MaxPaletteSteps))
	}
	if r.FrameRate < 1 || r.FrameRate > 240 {
		errs = append(errs, fmt.Errorf("frame rate %d outside [1, 240]", r.FrameRate))
	}
	if r.FFTRate < 0 || math.IsNaN(r.FFTRate) {
		errs = append(errs, fmt.Errorf("fft rate %v is negative", r.FFTRate))
	}
	if r.MaxBacklog < 0 {
		errs = append(errs, fmt.Errorf("max backlog %d is negative", r.MaxBacklog))
	}

	s := c.Source
	switch s.Kind {
	case "tone", "rtlsdr":
	case "file":
		if s.Path == "" {
			errs = append(errs, errors.New("file source needs a path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source kind %q (must be tone, file or rtlsdr)", s.Kind))
	}
	if s.SampleRate < 0 || math.IsNaN(s.SampleRate) {
		errs = append(errs, fmt.Errorf("sample rate %v is negative", s.SampleRate))
	}
	if s.BlockSize < 1 {
		errs = append(errs, fmt.Errorf("block size %d must be positive", s.BlockSize))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

// SetDefaults registers every key of Default with v, so environment
// variables and flags can override keys absent from the config file.
func SetDefaults(v *viper.Viper) error {
	raw, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return err
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// NewViper returns a viper instance with defaults and TERMSPEC_ environment
// overrides wired. configFile may be empty or name a missing file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	if err := SetDefaults(v); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configFile == "" {
		return v, nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read config %s: %w", configFile, err)
	}
	return v, nil
}

// Load decodes the effective configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Dump renders cfg as YAML.
func Dump(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

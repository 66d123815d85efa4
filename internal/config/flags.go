package config

import "flag"

// Flags are command-line overrides registered on a FlagSet.
type Flags struct {
	fs *flag.FlagSet

	Config         *string
	Debug          *bool
	LogFile        *string
	BlurStrength   *float64
	BlurIterations *int
	CleanAngle     *float64
	DirtAngle      *float64
	DirtOnly       *bool
	PaintMask      *bool
	Weld           *bool
	BaseColor      *string
}

// RegisterFlags adds the shared vertexdirt flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:             fs,
		Config:         fs.String("config", "", "Path to config file"),
		Debug:          fs.Bool("debug", false, "Enable debug logging"),
		LogFile:        fs.String("log-file", "", "Also log to this rotating file"),
		BlurStrength:   fs.Float64("blur-strength", 0, "Blur strength per iteration (0.01-1)"),
		BlurIterations: fs.Int("blur-iterations", 0, "Number of blur passes (0-40)"),
		CleanAngle:     fs.Float64("clean-angle", 0, "Highlight angle in degrees (0-180)"),
		DirtAngle:      fs.Float64("dirt-angle", 0, "Dirt angle in degrees (0-180)"),
		DirtOnly:       fs.Bool("dirt-only", false, "Don't calculate cleans for convex areas"),
		PaintMask:      fs.Bool("paint-mask", false, "Only paint selected faces"),
		Weld:           fs.Bool("weld", true, "Merge coincident vertices after import"),
		BaseColor:      fs.String("base-color", "", "Hex fill colour for new colour layers"),
	}
}

// Apply copies every flag that was set explicitly onto cfg.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if *f.Debug {
				cfg.Logging.Level = "debug"
			}
		case "log-file":
			cfg.Logging.LogFile = *f.LogFile
		case "blur-strength":
			cfg.Dirt.BlurStrength = *f.BlurStrength
		case "blur-iterations":
			cfg.Dirt.BlurIterations = *f.BlurIterations
		case "clean-angle":
			cfg.Dirt.CleanAngle = *f.CleanAngle
		case "dirt-angle":
			cfg.Dirt.DirtAngle = *f.DirtAngle
		case "dirt-only":
			cfg.Dirt.DirtOnly = *f.DirtOnly
		case "paint-mask":
			cfg.Dirt.UsePaintMask = *f.PaintMask
		case "weld":
			cfg.Import.Weld = *f.Weld
		case "base-color":
			cfg.Import.BaseColor = *f.BaseColor
		}
	})
}

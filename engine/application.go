package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
)

type ApplicationConfig struct {
	// The application name, used in logs.
	Name string `toml:"name"`
	// Canvas starting width.
	StartWidth uint32 `toml:"width"`
	// Canvas starting height.
	StartHeight uint32        `toml:"height"`
	LogLevel    core.LogLevel `toml:"log_level"`
	// Directory watched for textures and fonts. Empty disables asset loading.
	AssetsDir string `toml:"assets_dir"`
	// The last frame is written to this PNG file when the engine stops.
	OutputPath string `toml:"output"`
	// Number of frames to run, 0 runs until Stop.
	MaxFrames uint64 `toml:"max_frames"`
	// 0 does not limit the frame rate.
	TargetFPS     float64    `toml:"target_fps"`
	ClearColor    [4]float32 `toml:"clear_color"`
	ItemSpacing   [2]float32 `toml:"item_spacing"`
	Padding       [2]float32 `toml:"padding"`
	TextureRepeat string     `toml:"texture_repeat"`
	// Bitmap font loaded from <assets_dir>/fonts on start.
	FontName            string `toml:"font"`
	JobWorkers          int    `toml:"job_workers"`
	MaxTextureCount     uint32 `toml:"max_textures"`
	MaxFontCount        int    `toml:"max_fonts"`
	AssetEventQueueSize int    `toml:"asset_event_queue"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:                "anima-ui",
		StartWidth:          640,
		StartHeight:         480,
		LogLevel:            core.LogLevelInfo,
		TargetFPS:           60,
		ClearColor:          [4]float32{0.1, 0.1, 0.12, 1},
		ItemSpacing:         [2]float32{8, 4},
		Padding:             [2]float32{8, 8},
		TextureRepeat:       string(metadata.TextureRepeatClampToEdge),
		JobWorkers:          2,
		MaxTextureCount:     256,
		MaxFontCount:        8,
		AssetEventQueueSize: 64,
	}
}

// LoadApplicationConfig reads a TOML file over the defaults. A missing file
// is not an error, the defaults are returned as they are.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("config file %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("invalid canvas size %dx%d", c.StartWidth, c.StartHeight)
	}
	level, err := core.ParseLogLevel(string(c.LogLevel))
	if err != nil {
		return err
	}
	c.LogLevel = level
	if _, err := metadata.ParseTextureRepeat(c.TextureRepeat); err != nil {
		return err
	}
	if c.TargetFPS < 0 {
		return fmt.Errorf("target_fps must be >= 0, got %v", c.TargetFPS)
	}
	if c.JobWorkers <= 0 {
		return fmt.Errorf("job_workers must be > 0, got %d", c.JobWorkers)
	}
	if c.MaxTextureCount == 0 || c.MaxFontCount <= 0 {
		return fmt.Errorf("max_textures and max_fonts must be > 0")
	}
	if c.AssetsDir != "" && c.AssetEventQueueSize <= 0 {
		return fmt.Errorf("asset_event_queue must be > 0, got %d", c.AssetEventQueueSize)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Map     MapConfig     `mapstructure:"map"`
	Zoom    ZoomConfig    `mapstructure:"zoom"`
	Gesture GestureConfig `mapstructure:"gesture"`
	Tiles   TilesConfig   `mapstructure:"tiles"`
	Window  WindowConfig  `mapstructure:"window"`
	Log     LogConfig     `mapstructure:"log"`
}

type MapConfig struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLng float64 `mapstructure:"center_lng"`
	DistanceM float64 `mapstructure:"distance_m"`
}

type ZoomConfig struct {
	MinDelta      float64 `mapstructure:"min_delta"`
	MaxDelta      float64 `mapstructure:"max_delta"`
	RearmListener bool    `mapstructure:"rearm_listener"`
}

type GestureConfig struct {
	Simultaneous bool `mapstructure:"simultaneous"`
}

type TilesConfig struct {
	URL       string  `mapstructure:"url"`
	UserAgent string  `mapstructure:"user_agent"`
	Offline   bool    `mapstructure:"offline"`
	Workers   int     `mapstructure:"workers"`
	RPS       float64 `mapstructure:"rps"`
	CacheSize int     `mapstructure:"cache_size"`
}

type WindowConfig struct {
	Title  string `mapstructure:"title"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("map.center_lat", 37.364612)
	v.SetDefault("map.center_lng", -122.034747)
	v.SetDefault("map.distance_m", 5000)
	v.SetDefault("zoom.min_delta", 0.01)
	v.SetDefault("zoom.max_delta", 10.0)
	v.SetDefault("zoom.rearm_listener", false)
	v.SetDefault("gesture.simultaneous", true)
	v.SetDefault("tiles.url", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("tiles.user_agent", "gio-pulsemap/1.0 (+https://github.com/olablt/gio-pulsemap)")
	v.SetDefault("tiles.offline", false)
	v.SetDefault("tiles.workers", 4)
	v.SetDefault("tiles.rps", 2.0)
	v.SetDefault("tiles.cache_size", 512)
	v.SetDefault("window.title", "Pulse Map")
	v.SetDefault("window.width", 400)
	v.SetDefault("window.height", 720)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from file and environment variables.
// Extra paths are searched for config.yaml before the working directory.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: PULSEMAP_TILES_OFFLINE → tiles.offline
	v.SetEnvPrefix("PULSEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("map.center_lat must be -90..90, got %v", c.Map.CenterLat))
	}
	if c.Map.CenterLng < -180 || c.Map.CenterLng > 180 {
		errs = append(errs, fmt.Sprintf("map.center_lng must be -180..180, got %v", c.Map.CenterLng))
	}
	if c.Map.DistanceM <= 0 {
		errs = append(errs, fmt.Sprintf("map.distance_m must be positive, got %v", c.Map.DistanceM))
	}
	if c.Zoom.MinDelta <= 0 || c.Zoom.MaxDelta <= c.Zoom.MinDelta {
		errs = append(errs, fmt.Sprintf("zoom bounds must satisfy 0 < min_delta < max_delta, got %v..%v", c.Zoom.MinDelta, c.Zoom.MaxDelta))
	}
	if !c.Tiles.Offline && c.Tiles.URL == "" {
		errs = append(errs, "tiles.url is required unless tiles.offline is set")
	}
	if c.Tiles.Workers <= 0 {
		errs = append(errs, fmt.Sprintf("tiles.workers must be positive, got %d", c.Tiles.Workers))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Sprintf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

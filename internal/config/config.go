package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Journal JournalConfig
	Player  PlayerConfig
	Scene   SceneConfig
}

// JournalConfig holds write journal settings.
type JournalConfig struct {
	Path      string
	Enabled   bool
	BatchSize int `mapstructure:"batch_size"`
}

// PlayerConfig holds playback settings shared by the player and `run`.
// A zero Duration means the scene's last keyframe end.
type PlayerConfig struct {
	FPS      int
	Duration float64
	Loop     bool
}

// SceneConfig names the default scene file.
type SceneConfig struct {
	Path string
}

// Load reads configuration from file and env. Env var overrides use prefix TWEENFLOW_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("journal.path", filepath.Join(os.Getenv("HOME"), ".tweenflow", "journal.db"))
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.batch_size", 256)
	v.SetDefault("player.fps", 30)
	v.SetDefault("player.duration", 0.0)
	v.SetDefault("player.loop", true)
	v.SetDefault("scene.path", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TWEENFLOW_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "tweenflow"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TWEENFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Journal.BatchSize <= 0 {
		c.Journal.BatchSize = 256
	}
	if c.Player.FPS <= 0 {
		c.Player.FPS = 30
	}
	return c, nil
}

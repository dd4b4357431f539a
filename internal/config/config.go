// Package config loads the test-harness configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the acceptance tests need to reach the system
// under test and to launch the browser.
type Config struct {
	BaseURL string

	Browser   BrowserConfig
	Artifacts ArtifactsConfig
}

// BrowserConfig holds Chrome launch settings.
type BrowserConfig struct {
	ChromePath   string
	Headless     bool
	WindowWidth  int
	WindowHeight int
	NavTimeout   time.Duration
	HumanInput   bool
}

// ArtifactsConfig holds failure-artifact settings.
type ArtifactsConfig struct {
	Dir string
}

// Load reads configuration from file and env. Env var overrides use
// prefix WARNINGS_UI_, e.g. WARNINGS_UI_BROWSER_HEADLESS=false.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1400)
	v.SetDefault("browser.window_height", 1000)
	v.SetDefault("browser.nav_timeout", "30s")
	v.SetDefault("browser.human_input", false)
	v.SetDefault("artifacts.dir", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("WARNINGS_UI_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("uitests")
	}

	v.SetEnvPrefix("WARNINGS_UI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional
	_ = v.ReadInConfig()

	timeout, err := time.ParseDuration(v.GetString("browser.nav_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("browser.nav_timeout: %w", err)
	}

	return Config{
		BaseURL: v.GetString("base_url"),
		Browser: BrowserConfig{
			ChromePath:   v.GetString("browser.chrome_path"),
			Headless:     v.GetBool("browser.headless"),
			WindowWidth:  v.GetInt("browser.window_width"),
			WindowHeight: v.GetInt("browser.window_height"),
			NavTimeout:   timeout,
			HumanInput:   v.GetBool("browser.human_input"),
		},
		Artifacts: ArtifactsConfig{
			Dir: v.GetString("artifacts.dir"),
		},
	}, nil
}

// Package config loads user settings from file, environment and flags.
// Environment overrides use the DEVMIRROR_ prefix with "." replaced by "_",
// e.g. DEVMIRROR_DEVICE_IP.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/acquirer"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/platform"
)

const (
	envPrefix      = "DEVMIRROR"
	configName     = "devmirror"
	DefaultPort    = "5555"
	socketFileName = "devmirrord.sock"
)

// Config holds application configuration.
type Config struct {
	ADB      ToolConfig     `mapstructure:"adb"`
	Scrcpy   ToolConfig     `mapstructure:"scrcpy"`
	Device   DeviceConfig   `mapstructure:"device"`
	Binaries BinariesConfig `mapstructure:"binaries"`
	Server   ServerConfig   `mapstructure:"server"`
}

// ToolConfig holds a per-tool binary override.
type ToolConfig struct {
	Path string `mapstructure:"path"`
}

// DeviceConfig is the default network debugging target.
type DeviceConfig struct {
	IP   string `mapstructure:"ip"`
	Port string `mapstructure:"port"`
}

// BinariesConfig controls the download cache.
type BinariesConfig struct {
	CacheDir        string        `mapstructure:"cache_dir"`
	DownloadBase    string        `mapstructure:"download_base"`
	FallbackBase    string        `mapstructure:"fallback_base"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// ServerConfig holds the control daemon address, "unix:///path" or "host:port".
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

var _ lib.ConfigProvider = Config{}

// flagBindings maps config keys to the flag names that may override them.
var flagBindings = map[string]string{
	"server.address": "address",
	"adb.path":       "adb-path",
	"scrcpy.path":    "scrcpy-path",
	"device.ip":      "ip",
	"device.port":    "port",
}

// Load reads configuration. file may be empty, in which case DEVMIRROR_CONFIG
// and then devmirror.yaml in the usual config directories are tried; a
// missing default file is not an error. Flags present in flags and changed on
// the command line take precedence over everything else.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetDefault("adb.path", "")
	v.SetDefault("scrcpy.path", "")
	v.SetDefault("device.ip", "")
	v.SetDefault("device.port", DefaultPort)
	v.SetDefault("binaries.cache_dir", defaultCacheDir())
	v.SetDefault("binaries.download_base", "")
	v.SetDefault("binaries.fallback_base", "")
	v.SetDefault("binaries.download_timeout", acquirer.DefaultTimeout)
	v.SetDefault("server.address", DefaultAddress())

	if file == "" {
		file = os.Getenv(envPrefix + "_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		for _, dir := range configDirs() {
			v.AddConfigPath(dir)
		}
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// OverridePath returns the configured binary path for tool, or "".
func (c Config) OverridePath(tool string) string {
	switch tool {
	case lib.ToolBridge:
		return c.ADB.Path
	case lib.ToolMirror:
		return c.Scrcpy.Path
	default:
		return ""
	}
}

// DefaultTarget returns the configured device endpoint.
func (c Config) DefaultTarget() lib.Target {
	if c.Device.IP == "" {
		return lib.Target{}
	}
	return lib.Target{IP: c.Device.IP, Port: c.Device.Port}
}

// Acquirer returns the download settings, or false when no download base is configured.
func (c Config) Acquirer() (acquirer.Config, bool) {
	if c.Binaries.DownloadBase == "" {
		return acquirer.Config{}, false
	}
	return acquirer.Config{
		PrimaryBase:  c.Binaries.DownloadBase,
		FallbackBase: c.Binaries.FallbackBase,
		CacheRoot:    c.Binaries.CacheDir,
		Timeout:      c.Binaries.DownloadTimeout,
	}, true
}

// DefaultAddress is a unix socket in the user runtime directory.
func DefaultAddress() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return "unix://" + filepath.ToSlash(filepath.Join(dir, socketFileName))
}

func defaultCacheDir() string {
	root, err := platform.DefaultCacheRoot()
	if err != nil {
		return ""
	}
	return root
}

func configDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, configName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", configName))
	}
	return append(dirs, ".")
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/ownermap/internal/common"
)

// Config holds all configuration for the application
type Config struct {
	Input     InputConfig     `mapstructure:"input"`
	Output    OutputConfig    `mapstructure:"output"`
	Colors    ColorsConfig    `mapstructure:"colors"`
	Ownership OwnershipConfig `mapstructure:"ownership"`
	States    StatesConfig    `mapstructure:"states"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Watch     WatchSettings   `mapstructure:"watch"`
}

// InputConfig holds the mod-relative input paths
type InputConfig struct {
	ProvincesBitmap string `mapstructure:"provinces_bitmap"`
	Definition      string `mapstructure:"definition"`
	StatesDir       string `mapstructure:"states_dir"`
	CountryColors   string `mapstructure:"country_colors"`
	Encoding        string `mapstructure:"encoding"`
	Delimiter       string `mapstructure:"delimiter"`
}

// OutputConfig holds where and how the recolored map is written
type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

// ColorsConfig holds the two fallback colors. UnresolvedTag is given to
// tags that are neither players nor puppets of one; Unowned is painted on
// pixels with no owner color at all.
type ColorsConfig struct {
	UnresolvedTag [3]int `mapstructure:"unresolved_tag"`
	Unowned       [3]int `mapstructure:"unowned"`
}

// OwnershipConfig holds the player and puppet tables. Puppets are
// "PUPPET:OVERLORD" pairs: viper lowercases map keys and tags are case
// sensitive.
type OwnershipConfig struct {
	Players     []string `mapstructure:"players"`
	Puppets     []string `mapstructure:"puppets"`
	ColorLookup string   `mapstructure:"color_lookup"`
}

// StatesConfig holds state file handling
type StatesConfig struct {
	Order     string `mapstructure:"order"`
	Conflicts string `mapstructure:"conflicts"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WatchSettings holds settings for the watch command
type WatchSettings struct {
	DebounceMs int `mapstructure:"debounce_ms"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// defaultPuppets mirrors ownership.DefaultPuppets in config form
var defaultPuppets = []string{
	"VN9:FKE",
	"SRC:GNG", "STA:GNG", "TAB:GNG", "TGL:GNG",
	"NMD:IMP", "ZAC:IMP", "WEK:IMP", "VAE:IMP", "VIR:IMP", "BRY:IMP",
	"VN1:SPE", "VN2:SPE", "VN3:SPE", "VN4:SPE", "VN5:SPE", "VN6:SPE", "VN7:SPE",
}

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Input defaults
	v.SetDefault("input.provinces_bitmap", "map/provinces.bmp")
	v.SetDefault("input.definition", "map/definition.csv")
	v.SetDefault("input.states_dir", "history/states")
	v.SetDefault("input.country_colors", "common/countries/colors.txt")
	v.SetDefault("input.encoding", "utf-8")
	v.SetDefault("input.delimiter", ";")

	// Output defaults
	v.SetDefault("output.path", "map.png")
	v.SetDefault("output.format", "png")

	// Color defaults
	v.SetDefault("colors.unresolved_tag", []int{64, 64, 64})
	v.SetDefault("colors.unowned", []int{0, 0, 64})

	// Ownership defaults
	v.SetDefault("ownership.players", []string{
		"FKE", "SPE", "OMN", "LKR", "HBC", "FEC",
		"ENC", "SWL", "ENH", "TAB", "M27", "HAV",
	})
	v.SetDefault("ownership.puppets", defaultPuppets)
	v.SetDefault("ownership.color_lookup", "parsed")

	// State defaults
	v.SetDefault("states.order", "lexical")
	v.SetDefault("states.conflicts", "last_wins")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("watch.debounce_ms", 250)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("ownermap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("OWNERMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Only the default search locations may be absent
		if _, ok := err.(viper.ConfigFileNotFoundError); configPath != "" || !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// Default returns the built-in configuration, ignoring files and environment
func Default() *Config {
	dv := viper.New()
	setViperDefaults(dv)
	c := &Config{}
	if err := dv.Unmarshal(c); err != nil {
		panic("failed to decode default config: " + err.Error())
	}
	return c
}

// LoadEnvironmentConfig merges ownermap.<env>.yaml from the working
// directory over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("ownermap.%s.yaml", env)
	base := v.ConfigFileUsed()

	v.SetConfigFile(envFile)
	err := v.MergeInConfig()
	// Keep watching the base file
	if base != "" {
		v.SetConfigFile(base)
	}
	if err != nil {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	return Validate(cfg)
}

// Set allows runtime config updates, e.g. from command line flags
func Set(key string, value interface{}) {
	v.Set(key, value)
	v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. onChange receives the
// validation error if the new contents are rejected; the previous config
// stays in effect in that case.
func WatchConfig(onChange func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil {
			onChange(fmt.Errorf("unable to decode config into struct: %w", err))
			return
		}
		if err := Validate(next); err != nil {
			onChange(fmt.Errorf("config validation failed: %w", err))
			return
		}
		*cfg = *next
		onChange(nil)
	})
	v.WatchConfig()
}

// Debounce returns the watch debounce interval
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// PuppetMap parses the puppet pairs
func (c Config) PuppetMap() (map[string]string, error) {
	out := make(map[string]string, len(c.Ownership.Puppets))
	for _, pair := range c.Ownership.Puppets {
		puppet, overlord, ok := strings.Cut(pair, ":")
		puppet, overlord = strings.TrimSpace(puppet), strings.TrimSpace(overlord)
		if !ok || !common.IsValidTag(puppet) || !common.IsValidTag(overlord) {
			return nil, fmt.Errorf("ownership.puppets entry %q must be PUPPET:OVERLORD", pair)
		}
		out[puppet] = overlord
	}
	return out, nil
}

// UnresolvedTagColor returns colors.unresolved_tag as RGB
func (c Config) UnresolvedTagColor() common.RGB {
	rgb, _ := common.FromTriple(c.Colors.UnresolvedTag)
	return rgb
}

// UnownedColor returns colors.unowned as RGB
func (c Config) UnownedColor() common.RGB {
	rgb, _ := common.FromTriple(c.Colors.Unowned)
	return rgb
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Input.ProvincesBitmap == "" || c.Input.Definition == "" ||
		c.Input.StatesDir == "" || c.Input.CountryColors == "" {
		return fmt.Errorf("input paths must not be empty")
	}
	switch strings.ToLower(c.Input.Encoding) {
	case "utf-8", "utf8", "windows-1252", "cp1252":
	default:
		return fmt.Errorf("input.encoding must be utf-8 or windows-1252")
	}
	if c.Input.Delimiter == "" {
		return fmt.Errorf("input.delimiter must not be empty")
	}

	if c.Output.Path == "" {
		return fmt.Errorf("output.path must not be empty")
	}
	switch strings.ToLower(c.Output.Format) {
	case "png", "bmp":
	default:
		return fmt.Errorf("output.format must be png or bmp")
	}

	validateRGB := func(rgb [3]int, name string) error {
		for i, v := range rgb {
			if v < 0 || v > 255 {
				return fmt.Errorf("%s[%d] must be between 0 and 255", name, i)
			}
		}
		return nil
	}
	if err := validateRGB(c.Colors.UnresolvedTag, "colors.unresolved_tag"); err != nil {
		return err
	}
	if err := validateRGB(c.Colors.Unowned, "colors.unowned"); err != nil {
		return err
	}

	for _, p := range c.Ownership.Players {
		if !common.IsValidTag(p) {
			return fmt.Errorf("ownership.players entry %q is not a country tag", p)
		}
	}
	if _, err := c.PuppetMap(); err != nil {
		return err
	}
	switch c.Ownership.ColorLookup {
	case "parsed", "substring":
	default:
		return fmt.Errorf("ownership.color_lookup must be parsed or substring")
	}

	switch c.States.Order {
	case "lexical", "id":
	default:
		return fmt.Errorf("states.order must be lexical or id")
	}
	switch c.States.Conflicts {
	case "last_wins", "report":
	default:
		return fmt.Errorf("states.conflicts must be last_wins or report")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}

	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must be non-negative")
	}

	return nil
}

package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/config"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/templates"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/utils"
)

// ConfigFileNames are looked up from the working directory upwards
var ConfigFileNames = []string{"reversal.yaml", "reversal.yml"}

// EnvPrefix prefixes environment overrides, e.g. REVERSAL_OUTPUT_JVM
const EnvPrefix = "REVERSAL"

// OutputSettings holds the output root of each platform
type OutputSettings struct {
	JVM string `mapstructure:"jvm"`
	JS  string `mapstructure:"js"`
}

// LogSettings configures the structured logger
type LogSettings struct {
	JSON bool `mapstructure:"json"`
}

// Settings is the project configuration of a generation pass
type Settings struct {
	Output  OutputSettings `mapstructure:"output"`
	Strict  bool           `mapstructure:"strict"`
	Workers int            `mapstructure:"workers"`
	// Markers are alias annotation classes declared outside the inputs
	Markers  []string        `mapstructure:"marker"`
	Header   string          `mapstructure:"header"`
	Log      LogSettings     `mapstructure:"log"`
	Defaults config.Defaults `mapstructure:"defaults"`

	// ConfigFile is the file the settings were read from, empty if none
	ConfigFile string `mapstructure:"-"`
}

// Roots returns the output directory of each platform
func (s *Settings) Roots() map[models.Platform]string {
	return map[models.Platform]string{
		models.PlatformJVM: s.Output.JVM,
		models.PlatformJS:  s.Output.JS,
	}
}

// SetDefaults registers the default of every configuration key
func SetDefaults(v *viper.Viper) {
	d := config.SchemaDefaults()

	v.SetDefault("output.jvm", filepath.Join("build", "generated", "reversal", "jvmMain", "kotlin"))
	v.SetDefault("output.js", filepath.Join("build", "generated", "reversal", "jsMain", "kotlin"))
	v.SetDefault("strict", d.Strict)
	v.SetDefault("workers", runtime.GOMAXPROCS(0))
	v.SetDefault("marker", []string{})
	v.SetDefault("header", templates.DefaultHeader)
	v.SetDefault("log.json", false)

	profile := func(key string, pd config.ProfileDefaults) {
		v.SetDefault("defaults."+key+".enabled", pd.Enabled)
		v.SetDefault("defaults."+key+".prefix", pd.Prefix)
		v.SetDefault("defaults."+key+".suffix", pd.Suffix)
	}
	profile("jblocking", d.JBlocking)
	profile("jasync", d.JAsync)
	profile("jsasync", d.JsAsync)
	v.SetDefault("defaults.markjvmsynthetic", d.MarkJvmSynthetic)
}

// NewViper creates a viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// FindConfigFile walks up from dir looking for a project configuration file
func FindConfigFile(dir string) string {
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadSettings reads configFile, or the nearest project configuration file
// when configFile is empty, into settings. Precedence from lowest: defaults,
// file, environment, flags bound to v.
func LoadSettings(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile == "" {
		if wd, err := os.Getwd(); err == nil {
			configFile = FindConfigFile(wd)
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapFileSystemError("read", configFile, err).
				WithSuggestion("Check that the configuration file is valid YAML")
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrapf(errors.ValidationErrorCode, err, "invalid configuration")
	}
	s.ConfigFile = configFile
	s.Defaults.Strict = s.Strict

	if err := s.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ValidationErrorCode, err, "invalid configuration").
			WithContext("config_file", configFile)
	}
	return &s, nil
}

// Validate checks the settings
func (s *Settings) Validate() error {
	if err := utils.NotEmpty("output.jvm")(s.Output.JVM); err != nil {
		return err
	}
	if err := utils.NotEmpty("output.js")(s.Output.JS); err != nil {
		return err
	}
	if err := utils.AtLeast("workers", 1)(s.Workers); err != nil {
		return err
	}
	header := utils.NewValidatorChain(
		utils.NotEmpty("header"),
		utils.Custom("header", "must be a single line comment", func(h string) bool {
			return strings.HasPrefix(h, "//") && !strings.ContainsAny(h, "\r\n")
		}),
	)
	if err := header.Validate(s.Header); err != nil {
		return err
	}
	for _, m := range s.Markers {
		if err := utils.IsQualifiedName("marker")(m); err != nil {
			return err
		}
	}
	return s.Defaults.Validate()
}

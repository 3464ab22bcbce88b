// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccdmb/catastrophy/internal/hmmer"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings,
// CATAS_MODEL_DIR for --model-dir for example.
const EnvPrefix = "CATAS"

// Version is a release of dbCAN that a model was trained with.
type Version string

// Supported dbCAN versions, oldest first.
const (
	V4  Version = "v4"
	V5  Version = "v5"
	V6  Version = "v6"
	V7  Version = "v7"
	V8  Version = "v8"
	V9  Version = "v9"
	V10 Version = "v10"
)

// Versions lists every supported Version, oldest first.
var Versions = []Version{V4, V5, V6, V7, V8, V9, V10}

// Latest is the newest supported Version.
const Latest = V10

// ParseVersion accepts a version as "v10", "V10" or "10".
func ParseVersion(s string) (Version, error) {
	v := Version("v" + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "v"))
	for _, known := range Versions {
		if v == known {
			return v, nil
		}
	}

	names := make([]string, len(Versions))
	for i, known := range Versions {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown dbCAN version %q, expected one of %s", s, strings.Join(names, ", "))
}

// PipelineConfig is settings for searching proteomes
type PipelineConfig struct {
	// where outputs are written
	OutDir string `mapstructure:"outdir"`

	// a local dbCAN HMMER database, downloaded if empty
	HMMs string `mapstructure:"hmms"`

	// paths to the HMMER executables
	HMMScan  string `mapstructure:"hmmscan-path"`
	HMMPress string `mapstructure:"hmmpress-path"`

	// the maximum number of hmmscan processes
	NCPU int `mapstructure:"ncpu"`

	// whether to fix common problems with the proteomes
	Correct bool `mapstructure:"correct"`
}

// Config is the root-level settings struct and is a mix
// of settings available in a settings file, the environment
// and the command line
type Config struct {
	// the format of the search results
	Format string `mapstructure:"format"`

	// the dbCAN version of the model
	Version string `mapstructure:"model-version"`

	// a directory of models named model_<version>.npz
	ModelDir string `mapstructure:"model-dir"`

	// a model file, used instead of the model dir
	ModelFile string `mapstructure:"model-file"`

	// the RCD at or above which a class is ancillary
	Threshold float64 `mapstructure:"threshold"`

	// a nomenclature to plot by, or empty for no plot
	Plot string `mapstructure:"plot"`

	// only log warnings and errors
	Quiet bool `mapstructure:"quiet"`

	Pipeline PipelineConfig `mapstructure:",squash"`

	// FileType is Format, parsed
	FileType hmmer.FileType `mapstructure:"-"`

	// ModelVersion is Version, parsed
	ModelVersion Version `mapstructure:"-"`
}

// keys are the settings that can be set from the environment
var keys = []string{
	"format", "model-version", "model-dir", "model-file", "threshold", "plot", "quiet",
	"outdir", "hmms", "hmmscan-path", "hmmpress-path", "ncpu", "correct",
}

// Setup reads the settings file, if there is one, and binds
// environment variables. It is called once before New.
func Setup(settings string) error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, k := range keys {
		if err := viper.BindEnv(k); err != nil {
			return err
		}
	}

	if settings == "" {
		return nil
	}

	viper.SetConfigFile(settings)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read settings file %s", settings)
	}
	return nil
}

// New returns a new Config struct populated by Viper settings
// and checks its values.
func New() (*Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unable to decode settings")
	}

	if c.Format != "" {
		f, err := hmmer.ParseFileType(c.Format)
		if err != nil {
			return nil, err
		}
		c.FileType = f
	}

	if c.Version != "" {
		v, err := ParseVersion(c.Version)
		if err != nil {
			return nil, err
		}
		c.ModelVersion = v
	}

	if c.Threshold < 0 || c.Threshold > 1 {
		return nil, fmt.Errorf("the threshold must be between 0 and 1, got %v", c.Threshold)
	}

	return &c, nil
}

// ModelPath is the model file to use: ModelFile if set, otherwise the
// model of ModelVersion in ModelDir.
func (c *Config) ModelPath() (string, error) {
	if c.ModelFile != "" {
		return c.ModelFile, nil
	}
	if c.ModelVersion == "" {
		return "", fmt.Errorf("either a model file or a model version is required")
	}

	dir := c.ModelDir
	if dir == "" {
		var err error
		if dir, err = DefaultModelDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, fmt.Sprintf("model_%s.npz", c.ModelVersion)), nil
}

// DefaultModelDir is where models are looked for without a model dir setting.
func DefaultModelDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to find a model dir")
	}
	return filepath.Join(dir, "catastrophy", "models"), nil
}

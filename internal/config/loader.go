package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForRun loads configuration for a run: defaults, then the global
// config file, then a local one found near the source file, then flags.
func (l *Loader) LoadForRun(cmd *cobra.Command, sourceFile, extension string, args []string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(sourceFile)
	l.bindCommandFlags(cmd)

	return Load(sourceFile, extension, args)
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("timeout", DefaultTimeout)
	viper.SetDefault("memory", DefaultMemory)
	viper.SetDefault("sandbox", false)
	viper.SetDefault("no-cache", false)
	viper.SetDefault("max-age", DefaultMaxAgeDays)
	viper.SetDefault("verbose", false)
}

// loadGlobalConfig loads global configuration from the user config directory
func (l *Loader) loadGlobalConfig() {
	base, err := os.UserConfigDir()
	if err != nil {
		return
	}

	globalDir := filepath.Join(base, "runx")

	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig loads local configuration from the source file's directory
func (l *Loader) loadLocalConfig(sourceFile string) {
	if sourceFile == "" {
		return
	}

	abs, err := filepath.Abs(sourceFile)
	if err != nil {
		return // silently ignore, Load() will handle validation
	}

	localPath := FindLocalConfig(filepath.Dir(abs))
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.ReadInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("memory", cmd.Flags().Lookup("memory"))
	_ = viper.BindPFlag("sandbox", cmd.Flags().Lookup("sandbox"))
	_ = viper.BindPFlag("no-cache", cmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("max-age", cmd.Flags().Lookup("max-age"))
	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
}

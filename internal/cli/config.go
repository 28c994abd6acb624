package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envFiles are loaded from the working directory at startup, first match
// wins per variable. Variables already set in the environment are kept.
var envFiles = []string{".env.local", ".env"}

// newConfig creates the viper instance every command reads its settings
// from. Keys are flag names; ACKNOWLEDGE_THRESHOLD overrides --threshold
// and so on.
func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Tokens are never flags. The conventional variables are accepted too.
	_ = v.BindEnv("github-token", envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("gitlab-token", envPrefix+"_GITLAB_TOKEN", "GITLAB_TOKEN")
	return v
}

// bind registers every flag in fs as a config key.
func (c *CLI) bind(fs *pflag.FlagSet) {
	if err := c.config.BindPFlags(fs); err != nil {
		c.Logger.Warn("bind flags", "error", err)
	}
}

// loadConfig reads .env files and the YAML config file. A missing default
// config file is fine; a missing explicit one is an error.
func (c *CLI) loadConfig(path string) error {
	loadEnvFiles()

	c.config.SetConfigType("yaml")
	if path != "" {
		c.config.SetConfigFile(path)
	} else {
		c.config.SetConfigName("config")
		if dir, err := configDir(); err == nil {
			c.config.AddConfigPath(dir)
		}
	}

	if err := c.config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && stderrors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	c.Logger.Debug("loaded config", "file", c.config.ConfigFileUsed())
	return nil
}

func loadEnvFiles() {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		_ = godotenv.Load(file)
	}
}

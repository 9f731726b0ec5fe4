package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// UserConfigDir is the directory under $HOME holding config.json.
const UserConfigDir = ".learninghour"

// LoadFromUserConfig copies every non-empty key of ~/.learninghour/config.json
// into the process environment.
func LoadFromUserConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		// Best-effort: if we can't resolve home, just skip file loading.
		return nil
	}
	return loadConfigFile(filepath.Join(home, UserConfigDir, "config.json"))
}

func loadConfigFile(configPath string) error {
	file, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var cfg map[string]string
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return err
	}

	for key, value := range cfg {
		if value == "" {
			continue
		}
		// Values from config.json take precedence over existing env vars.
		_ = os.Setenv(key, value)
	}

	return nil
}

// LoadDotEnv reads .env files (default: ./.env) without overriding variables
// that are already set. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

package configs

import (
	"flag"
	"os"

	"github.com/tmarcken/hushroom/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file from the --config flag, the
// HUSHROOM_CONFIG env var, or a list of conventional locations. An empty
// result means built-in defaults apply.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("HUSHROOM_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/hushroom/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}

package shared

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvCredentialsPath = "GOOGLE_CREDENTIALS_PATH"
	EnvConfigPath      = "BOT_CONFIG_PATH"
	EnvLogLevel        = "LOG_LEVEL"
)

// LoadEnv loads variables from the given .env files (default ".env") without overriding the process environment.
//
// Missing files are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	present := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// ResolveConfigPath picks the config file: explicit flag, then BOT_CONFIG_PATH, then [DefaultConfigPath].
func ResolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

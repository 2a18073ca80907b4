// Package dotenv loads optional .env files before configuration parsing.
package dotenv

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var once sync.Once

// LoadOnce loads environment variables from a .env file exactly once per
// process. ENV_FILE overrides the path; existing OS variables are never
// overwritten. Set NO_DOTENV=1 to skip entirely.
func LoadOnce() {
	once.Do(func() {
		if os.Getenv("NO_DOTENV") == "1" {
			return
		}
		if envFile := os.Getenv("ENV_FILE"); envFile != "" {
			_ = godotenv.Load(envFile)
			return
		}
		_ = godotenv.Load(".env")
	})
}

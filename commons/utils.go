// SPDX-License-Identifier: GPL-3.0-only

package commons

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var envLoaded = false

// LoadEnvFile loads the file named by --env-file, or ./.env when present.
// Variables already set in the process environment win.
func LoadEnvFile() {
	if envLoaded {
		return
	}
	envLoaded = true

	envFile := ""
	args := os.Args[1:]
	for i, arg := range args {
		if arg == "--env-file" && i+1 < len(args) {
			envFile = args[i+1]
			break
		}
	}

	if envFile == "" {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		envFile = ".env"
	}

	fmt.Printf("Loading environment variables from file: %s\n", envFile)
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Failed to load env file: %s\n", err)
	}
}

func GetEnv(key string, fallback ...string) string {
	LoadEnvFile()
	if v := os.Getenv(key); v != "" {
		return v
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return ""
}

func GetEnvInt(key string, fallback int) int {
	v := GetEnv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		Logger.Warnf("Invalid integer for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return i
}

func GetEnvBool(key string, fallback bool) bool {
	v := GetEnv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		Logger.Warnf("Invalid boolean for %s: %q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

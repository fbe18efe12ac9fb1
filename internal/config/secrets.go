package config

import (
	"os"
	"strings"
)

// GetSecret resolves a secret from, in order:
//  1. the environment variable itself (e.g. METRICS_TOKEN)
//  2. the file named by its _FILE variant (e.g. METRICS_TOKEN_FILE=/run/secrets/metrics_token)
//  3. defaultValue
func GetSecret(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}

	if value, ok := readSecretFile(os.Getenv(envVar + "_FILE")); ok {
		return value
	}

	return defaultValue
}

func readSecretFile(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

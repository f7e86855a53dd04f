package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// env returns parse(value) for a set variable, and fallback when the
// variable is empty or does not parse.
func env[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envString(key, fallback string) string {
	return env(key, fallback, func(s string) (string, error) { return s, nil })
}

func envInt(key string, fallback int) int {
	return env(key, fallback, strconv.Atoi)
}

func envBool(key string, fallback bool) bool {
	return env(key, fallback, strconv.ParseBool)
}

func envDuration(key string, fallback time.Duration) time.Duration {
	return env(key, fallback, time.ParseDuration)
}

// envSeconds reads a whole number of seconds
func envSeconds(key string, fallback time.Duration) time.Duration {
	return env(key, fallback, func(s string) (time.Duration, error) {
		n, err := strconv.Atoi(s)
		return time.Duration(n) * time.Second, err
	})
}

// envList splits a comma-separated variable, dropping blanks
func envList(key string, fallback []string) []string {
	return env(key, fallback, func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) == 0 {
			return nil, strconv.ErrSyntax
		}
		return out, nil
	})
}

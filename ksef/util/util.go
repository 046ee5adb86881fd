package util

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("component", "ksef.util")

func DebugEnabled() bool {
	return boolEnv("KSEF_DEBUG")
}

func HttpTraceEnabled() bool {
	return boolEnv("KSEF_HTTP_TRACE")
}

func boolEnv(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func GetEnvOrFailed(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		logger.Fatal(key, " environment variable is not set")
	}
	return v
}

// GetEnvOr returns the variable value or def when unset or empty.
func GetEnvOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

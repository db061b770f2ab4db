package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Runtime holds process settings read from the environment. What to watch
// lives in the watch file (see File).
type Runtime struct {
	Addr          string        // status API bind address, e.g. "127.0.0.1:8080"; empty disables the API
	APIKeys       []string      // keys accepted by the status API; none means open
	LogDir        string        // logs directory
	LogLevel      string        // debug, info, warn, error
	ConfigPath    string        // watch file, JSON or YAML
	ProbeTimeout  time.Duration // bound for one TCP connect
	NotifyTimeout time.Duration // bound for one notification fan-out
}

func FromEnv() Runtime {
	addr, ok := os.LookupEnv("API_ADDR")
	if !ok {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	path := os.Getenv("WATCH_CONFIG")
	if path == "" {
		path = "config.json"
	}

	return Runtime{
		Addr:          addr,
		APIKeys:       splitCSV(os.Getenv("API_KEYS")),
		LogDir:        logDir,
		LogLevel:      level,
		ConfigPath:    path,
		ProbeTimeout:  msFromEnv("PROBE_TIMEOUT_MS", 5*time.Second),
		NotifyTimeout: msFromEnv("NOTIFY_TIMEOUT_MS", 10*time.Second),
	}
}

func msFromEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

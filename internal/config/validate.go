package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Validate checks the watch file and reports every problem at once.
// It MUST NOT mutate configuration.
func Validate(f *File) error {
	if f == nil {
		return fmt.Errorf("no configuration")
	}
	var err error
	if len(f.Hosts) == 0 {
		err = multierr.Append(err, fmt.Errorf("no hosts configured"))
	}
	if f.Telegram.HasChannel() && f.Telegram.Token == "" {
		err = multierr.Append(err, fmt.Errorf("telegram: channel_id is set but token is empty"))
	}

	for _, name := range sortedKeys(f.Hosts) {
		h := f.Hosts[name]
		if strings.TrimSpace(name) == "" {
			err = multierr.Append(err, fmt.Errorf("host with empty name"))
		}
		if strings.TrimSpace(h.Address) == "" {
			err = multierr.Append(err, fmt.Errorf("host %q: address is empty", name))
		}
		if h.Interval < 0 {
			err = multierr.Append(err, fmt.Errorf("host %q: interval must be > 0", name))
		}
		if len(h.Services) == 0 {
			err = multierr.Append(err, fmt.Errorf("host %q: no services", name))
		}
		for _, sname := range sortedKeys(h.Services) {
			s := h.Services[sname]
			if s.Port < 1 || s.Port > 65535 {
				err = multierr.Append(err, fmt.Errorf("host %q service %q: port %d out of range 1-65535", name, sname, s.Port))
			}
			if s.Interval < 0 {
				err = multierr.Append(err, fmt.Errorf("host %q service %q: interval must be > 0", name, sname))
			}
			if s.Interval == 0 && h.Interval <= 0 {
				err = multierr.Append(err, fmt.Errorf("host %q service %q: no interval on service or host", name, sname))
			}
		}
	}
	return err
}

// Lint returns warnings for settings that are valid but probably unintended.
func Lint(f *File, probeTimeout time.Duration) []string {
	var warns []string
	for _, name := range sortedKeys(f.Hosts) {
		h := f.Hosts[name]
		ports := map[int]string{}
		for _, sname := range sortedKeys(h.Services) {
			s := h.Services[sname]
			iv := s.Interval.Std()
			if iv == 0 {
				iv = h.Interval.Std()
			}
			if iv > 0 && iv < probeTimeout {
				warns = append(warns, fmt.Sprintf(
					"host %q service %q: interval %s is shorter than the %s probe timeout; an unreachable service is checked every %s at best",
					name, sname, iv, probeTimeout, probeTimeout))
			}
			if other, dup := ports[s.Port]; dup {
				warns = append(warns, fmt.Sprintf("host %q: services %q and %q share port %d", name, other, sname, s.Port))
			} else {
				ports[s.Port] = sname
			}
		}
	}
	if !f.Console() && f.Log.Filename == "" && !f.Telegram.Enabled() && f.Slack.Webhook == "" {
		warns = append(warns, "no notification channel enabled; transitions are only visible in the service log")
	}
	return warns
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

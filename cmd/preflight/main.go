// cmd/preflight/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/portwatch/internal/config"
	"github.com/hamed0406/portwatch/internal/probe"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	rt := config.FromEnv()
	path := rt.ConfigPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := config.Load(path)
	if err != nil {
		fail(err.Error())
	}
	if err := config.Validate(f); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(os.Stderr, "✖", e)
		}
		os.Exit(1)
	}
	ok("watch file " + path + " is valid")

	for _, w := range config.Lint(f, rt.ProbeTimeout) {
		warn(w)
	}

	hosts := config.Build(f)
	services := 0
	for _, h := range hosts {
		services += len(h.Services)
		dns := probe.CheckDNS(context.Background(), h.Address)
		if dns.Resolvable() {
			ok(fmt.Sprintf("%s: %s (%s)", h.Name, h.Address, dns.Class))
			continue
		}
		detail := string(dns.Class)
		if dns.ResolverError != "" {
			detail += ": " + dns.ResolverError
		}
		warn(fmt.Sprintf("%s: %s does not resolve (%s); it will be reported down", h.Name, h.Address, detail))
	}
	ok(fmt.Sprintf("%d hosts, %d services", len(hosts), services))

	var channels []string
	if f.Console() {
		channels = append(channels, "stdout")
	}
	if f.Log.Filename != "" {
		channels = append(channels, "file "+f.Log.Filename)
	}
	if f.Telegram.Enabled() {
		channels = append(channels, "telegram")
	}
	if f.Slack.Webhook != "" {
		channels = append(channels, "slack")
	}
	if len(channels) > 0 {
		ok("notify via " + strings.Join(channels, ", "))
	}

	if rt.Addr == "" {
		warn("API_ADDR is empty; the status API is disabled.")
	} else {
		ok("API_ADDR=" + rt.Addr)
	}
	if len(rt.APIKeys) == 0 && rt.Addr != "" && !strings.HasPrefix(rt.Addr, "127.0.0.1") && !strings.HasPrefix(rt.Addr, "localhost") {
		warn("API_KEYS is empty and the API is not bound to localhost; status is readable by anyone who can reach it.")
	}

	ok("preflight passed")
}

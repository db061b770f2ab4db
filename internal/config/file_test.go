package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const jsonWatchFile = `{
  "stdout": true,
  "log": {"filename": "uptime.log"},
  "telegram": {"token": "123:abc", "channel_id": -100123},
  "hosts": {
    "web": {
      "address": "10.0.0.1",
      "interval": 60,
      "services": {"ssh": 22, "http": {"port": 80, "interval": "15s"}}
    },
    "db": {
      "address": "db.internal",
      "interval": 1.5,
      "services": {"postgres": 5432}
    }
  }
}`

const yamlFile = `
stdout: false
slack:
  webhook: https://hooks.slack.test/x
hosts:
  router:
    address: 192.168.1.1
    interval: 2m
    services:
      dns: 53
      admin:
        port: 443
        interval: 30
`

func TestLoad_JSONWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonWatchFile), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(f))
	require.True(t, f.Console())
	require.Equal(t, "uptime.log", f.Log.Filename)
	require.Equal(t, "-100123", f.Telegram.ChannelID)
	require.True(t, f.Telegram.Enabled())

	hosts := Build(f)
	require.Len(t, hosts, 2)

	db, web := hosts[0], hosts[1]
	require.Equal(t, "db", db.Name)
	require.Equal(t, 1500*time.Millisecond, db.Interval)
	require.Equal(t, "web", web.Name)
	require.Equal(t, time.Minute, web.Interval)

	require.Len(t, web.Services, 2)
	http, ssh := web.Services[0], web.Services[1]
	require.Equal(t, "http", http.Name)
	require.Equal(t, uint16(80), http.Port)
	require.Equal(t, 15*time.Second, http.Interval)
	require.Equal(t, "ssh", ssh.Name)
	require.Equal(t, time.Minute, ssh.Interval)
	require.Same(t, web, ssh.Host)
}

func TestParse_YAML(t *testing.T) {
	f, err := Parse([]byte(yamlFile))
	require.NoError(t, err)
	require.NoError(t, Validate(f))
	require.False(t, f.Console())
	require.Equal(t, "https://hooks.slack.test/x", f.Slack.Webhook)

	hosts := Build(f)
	require.Len(t, hosts, 1)
	svc := hosts[0].Services
	require.Equal(t, "admin", svc[0].Name)
	require.Equal(t, 30*time.Second, svc[0].Interval)
	require.Equal(t, 2*time.Minute, svc[1].Interval)
}

func TestParse_RejectsUnknownKeysAndBadIntervals(t *testing.T) {
	_, err := Parse([]byte(`{"hosts": {}, "telegarm": {}}`))
	require.Error(t, err)

	_, err = Parse([]byte(`{"hosts": {"a": {"address": "x", "interval": "soon", "services": {"s": 1}}}}`))
	require.Error(t, err)

	_, err = Parse([]byte(`{"hosts": {"a": {"address": "x", "interval": 5, "services": {"s": "ssh"}}}}`))
	require.Error(t, err)
}

func TestParse_TelegramChannelUsername(t *testing.T) {
	f, err := Parse([]byte(`{
  "telegram": {"token": "1:a", "channel_id": "@ops_alerts"},
  "hosts": {"web": {"address": "10.0.0.1", "interval": 60, "services": {"ssh": 22}}}
}`))
	require.NoError(t, err)
	require.NoError(t, Validate(f))
	require.Equal(t, "@ops_alerts", f.Telegram.ChannelID)
	require.True(t, f.Telegram.Enabled())

	for _, off := range []TelegramConfig{{Token: "1:a"}, {Token: "1:a", ChannelID: "0"}, {ChannelID: "@ops_alerts"}} {
		require.False(t, off.Enabled(), "%+v", off)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	f := &File{
		Telegram: TelegramConfig{ChannelID: "42"},
		Hosts: map[string]HostConfig{
			"a": {Address: "", Interval: 0, Services: map[string]ServiceConfig{"s": {Port: 0}}},
			"b": {Address: "10.0.0.2", Interval: Duration(time.Second)},
			"c": {Address: "10.0.0.3", Interval: Duration(time.Second), Services: map[string]ServiceConfig{"big": {Port: 70000}}},
		},
	}
	err := Validate(f)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"telegram: channel_id is set but token is empty",
		`host "a": address is empty`,
		`host "a" service "s": port 0 out of range`,
		`host "a" service "s": no interval`,
		`host "b": no services`,
		`host "c" service "big": port 70000 out of range`,
	} {
		require.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}

	require.EqualError(t, Validate(&File{}), "no hosts configured")
}

func TestLint_WarnsOnShortIntervalAndSharedPorts(t *testing.T) {
	no := false
	f := &File{
		Stdout: &no,
		Hosts: map[string]HostConfig{
			"web": {Address: "10.0.0.1", Interval: Duration(2 * time.Second), Services: map[string]ServiceConfig{
				"http":  {Port: 80},
				"http2": {Port: 80, Interval: Duration(time.Minute)},
			}},
		},
	}
	warns := Lint(f, 5*time.Second)
	require.Len(t, warns, 3)
	require.Contains(t, warns[0], "shorter than the 5s probe timeout")
	require.Contains(t, warns[1], "share port 80")
	require.Contains(t, warns[2], "no notification channel")
}

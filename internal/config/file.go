package config

import (
	"bytes"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the watch file. JSON is valid YAML, so both formats load:
//
//	{
//	  "stdout": true,
//	  "log": {"filename": "uptime.log"},
//	  "telegram": {"token": "123:abc", "channel_id": -100123},
//	  "hosts": {
//	    "web": {"address": "10.0.0.1", "interval": 60,
//	            "services": {"ssh": 22, "http": {"port": 80, "interval": "15s"}}}
//	  }
//	}
type File struct {
	Stdout   *bool                 `yaml:"stdout"`
	Log      LogConfig             `yaml:"log"`
	Telegram TelegramConfig        `yaml:"telegram"`
	Slack    SlackConfig           `yaml:"slack"`
	Hosts    map[string]HostConfig `yaml:"hosts"`
}

type LogConfig struct {
	Filename string `yaml:"filename"`
}

// TelegramConfig.ChannelID is passed to the Bot API as chat_id untouched, so
// it holds either a numeric id or an @channelusername.
type TelegramConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
	APIBase   string `yaml:"api_base"`
}

// HasChannel reports whether a chat id is configured. "0" means disabled.
func (t TelegramConfig) HasChannel() bool {
	id := strings.TrimSpace(t.ChannelID)
	return id != "" && id != "0"
}

func (t TelegramConfig) Enabled() bool { return t.HasChannel() && t.Token != "" }

type SlackConfig struct {
	Webhook string `yaml:"webhook"`
}

type HostConfig struct {
	Address  string                   `yaml:"address"`
	Interval Duration                 `yaml:"interval"`
	Services map[string]ServiceConfig `yaml:"services"`
}

// ServiceConfig is either a bare port number or {port, interval}.
type ServiceConfig struct {
	Port     int      `yaml:"port"`
	Interval Duration `yaml:"interval"`
}

func (s *ServiceConfig) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*s = ServiceConfig{}
		return n.Decode(&s.Port)
	}
	type plain ServiceConfig
	return n.Decode((*plain)(s))
}

// Duration accepts a number of seconds or a Go duration string ("90s", "2m").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: interval must be a number of seconds or a duration", n.Line)
	}
	switch n.ShortTag() {
	case "!!int", "!!float":
		secs, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return errors.Wrapf(err, "line %d: interval", n.Line)
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(n.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d: interval", n.Line)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Console reports whether messages go to stdout; on by default.
func (f *File) Console() bool {
	return f.Stdout == nil || *f.Stdout
}

// Load reads and decodes a watch file. Unknown keys are rejected.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read watch file")
	}
	return Parse(b)
}

func Parse(b []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decode watch file")
	}
	return &f, nil
}

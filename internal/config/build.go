package config

import (
	"strings"

	"github.com/hamed0406/portwatch/internal/domain"
)

// Build turns a validated watch file into hosts ordered by name, each with
// its services ordered by name.
func Build(f *File) []*domain.Host {
	hosts := make([]*domain.Host, 0, len(f.Hosts))
	for _, name := range sortedKeys(f.Hosts) {
		hc := f.Hosts[name]
		h := &domain.Host{
			Name:     name,
			Address:  strings.TrimSpace(hc.Address),
			Interval: hc.Interval.Std(),
		}
		for _, sname := range sortedKeys(hc.Services) {
			sc := hc.Services[sname]
			h.AddService(sname, uint16(sc.Port), sc.Interval.Std())
		}
		hosts = append(hosts, h)
	}
	return hosts
}

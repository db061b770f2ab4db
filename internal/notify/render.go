package notify

import (
	"fmt"
	"time"

	"github.com/hamed0406/portwatch/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

const (
	BannerStarted = "✅ Logging started."
	BannerStopped = "🛑 Logging stopped."
)

const (
	glyphUp   = "🔵 up"
	glyphDown = "🔴 down"
)

// Render turns a transition into the single line shown to operators, e.g.
//
//	2024-05-01 10:00:00 ssh on web (10.0.0.1:22) went 🔴 down.
func Render(ev domain.TransitionEvent) string {
	verb := "went"
	if ev.Kind.Initial() {
		verb = "is"
	}
	glyph := glyphDown
	if ev.Kind.Up() {
		glyph = glyphUp
	}
	return fmt.Sprintf("%s %s on %s (%s:%d) %s %s.",
		ev.At.Format(timeLayout), ev.ServiceName, ev.HostName, ev.HostAddress, ev.Port, verb, glyph)
}

// Banner renders a lifecycle line such as BannerStarted.
func Banner(at time.Time, text string) string {
	return at.Format(timeLayout) + " " + text
}

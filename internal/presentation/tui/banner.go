package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cascade banner to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.Profile
	// Using a warm gradient (Amber/Red), one step per line
	lines := []struct{ text, color string }{
		{"   ___                        _      ", "#fbbf24"},
		{"  / __\\__ _ ___  ___ __ _  __| | ___ ", "#f59e0b"},
		{" / /  / _` / __|/ __/ _` |/ _` |/ _ \\", "#f97316"},
		{"/ /__| (_| \\__ \\ (_| (_| | (_| |  __/", "#ef4444"},
		{"\\____/\\__,_|___/\\___\\__,_|\\__,_|\\___|", "#dc2626"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}

package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cardflow ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                     _  __ _", "#22d3ee"},
		{"   ___ __ _ _ __ __| |/ _| | _____      __", "#38bdf8"},
		{"  / __/ _` | '__/ _` | |_| |/ _ \\ \\ /\\ / /", "#60a5fa"},
		{" | (_| (_| | | | (_| |  _| | (_) \\ V  V /", "#818cf8"},
		{"  \\___\\__,_|_|  \\__,_|_| |_|\\___/ \\_/\\_/", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status renders a coloured pass/fail marker followed by msg.
func Status(ok bool, msg string) string {
	p := termenv.ColorProfile()
	if ok {
		return termenv.String("✔ ").Foreground(p.Color("#22c55e")).String() + msg
	}
	return termenv.String("✘ ").Foreground(p.Color("#ef4444")).Bold().String() + msg
}

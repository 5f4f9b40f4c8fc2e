package main

import (
	"github.com/mattn/go-runewidth"

	"github.com/b/mediapanel/pkg/daemon"
)

const (
	playingIcon = "▶"
	pausedIcon  = "⏸"
)

// statusLine renders info on one line. With width > 0 the line is cut
// or padded to exactly width terminal cells.
func statusLine(info daemon.Info, width int) string {
	line := ""
	if info.Visible && info.Title != "" {
		icon := pausedIcon
		if info.Playing {
			icon = playingIcon
		}
		line = icon + " " + info.Title
	}
	if width <= 0 {
		return line
	}
	return runewidth.FillRight(runewidth.Truncate(line, width, "…"), width)
}

package media

import (
	"io"
	"log/slog"
	"time"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func track(title string, artists ...string) map[string]any {
	md := map[string]any{"xesam:title": title}
	if len(artists) > 0 {
		md["xesam:artist"] = artists
	}
	return md
}

func ids(ss Sources) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.ID)
	}
	return out
}

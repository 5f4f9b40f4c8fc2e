package title

// MarqueeSeparator is inserted between the end of the title and its
// restart when the window wraps.
const MarqueeSeparator = "   | "

// Window returns the part of t visible through a window of width
// characters starting at offset, and the offset for the next frame.
// Titles that fit (or width <= 0) are returned whole with offset
// unchanged.
func Window(t string, width, offset int) (string, int) {
	runes := []rune(t)
	if width <= 0 || len(runes) <= width {
		return t, offset
	}
	if offset < 0 || offset >= len(runes) {
		offset = 0
	}

	end := min(offset+width, len(runes))
	frame := string(runes[offset:end])
	if shown := end - offset; shown < width {
		frame += MarqueeSeparator + string(runes[:width-shown])
	}
	return frame, (offset + 1) % len(runes)
}

package etext

import (
	"iter"
	"slices"
	"strings"
)

var startMarkers = []string{
	"*** START OF THE PROJECT GUTENBERG",
	"*** START OF THIS PROJECT GUTENBERG",
	"***START OF THE PROJECT GUTENBERG",
	"*END*THE SMALL PRINT",
	"*END THE SMALL PRINT",
	"**Welcome To The World of Free Plain Vanilla Electronic Texts**",
}

// Credits lines that directly follow the start marker.
var creditMarkers = []string{
	"Produced by",
	"This etext was prepared by",
	"This Etext was prepared by",
	"E-text prepared by",
	"Transcribed from",
}

var endMarkers = []string{
	"*** END OF THE PROJECT GUTENBERG",
	"*** END OF THIS PROJECT GUTENBERG",
	"***END OF THE PROJECT GUTENBERG",
	"End of the Project Gutenberg",
	"End of The Project Gutenberg",
	"End of Project Gutenberg",
	"End of this Project Gutenberg",
	"Ende dieses Project Gutenberg",
}

// StripHeaders removes the license header and footer around the body of a
// Project Gutenberg text. Sources without a start marker keep everything
// before the footer. Lines are right-trimmed and surrounding blank lines are
// dropped.
func StripHeaders(lines iter.Seq[string]) iter.Seq[string] {
	all := slices.Collect(lines)

	start := 0
	for i, line := range all {
		if hasAnyPrefix(strings.TrimSpace(line), startMarkers) {
			start = i + 1
			break
		}
	}
	start = skipCredits(all, start)

	end := len(all)
	for i := start; i < len(all); i++ {
		if hasAnyPrefix(strings.TrimSpace(all[i]), endMarkers) {
			end = i
			break
		}
	}

	body := all[start:end]
	for len(body) > 0 && strings.TrimSpace(body[0]) == "" {
		body = body[1:]
	}
	for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
		body = body[:len(body)-1]
	}

	return func(yield func(string) bool) {
		for _, line := range body {
			if !yield(strings.TrimRight(line, " \t\r")) {
				return
			}
		}
	}
}

// skipCredits drops a credits paragraph that begins within the first few
// non-blank lines after the start marker.
func skipCredits(lines []string, start int) int {
	i := start
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) || !hasAnyPrefix(strings.TrimSpace(lines[i]), creditMarkers) {
		return start
	}
	for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
		i++
	}
	return i
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

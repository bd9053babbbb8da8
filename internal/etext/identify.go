package etext

import (
	"iter"
	"regexp"
	"strconv"
)

var identifierPattern = regexp.MustCompile(`(?i)\be-?(?:text|book)\s*(?:#|no\.?|number)\s*(\d+)`)

// ExtractIdentifier returns the first e-text number mentioned in lines, such
// as the 1342 in "[EBook #1342]".
func ExtractIdentifier(lines iter.Seq[string]) (int, error) {
	for line := range lines {
		match := identifierPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		id, err := strconv.Atoi(match[1])
		if err != nil || id <= 0 {
			continue
		}
		return id, nil
	}
	return 0, ErrNoIdentifier
}

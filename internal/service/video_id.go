package service

import (
	"fmt"
	"regexp"
	"strings"
)

var videoQueryPattern = regexp.MustCompile(`[?&]v=([0-9]+)`)

// videoPathMarkers are tried in order after the ?v= query form.
var videoPathMarkers = []string{"/videos/", "/reel/"}

// ExtractVideoID returns the numeric video id found in a Facebook video URL:
// watch links (?v=N), page video links (/videos/N) and reels (/reel/N).
func ExtractVideoID(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: url is empty", ErrInvalidURL)
	}

	if match := videoQueryPattern.FindStringSubmatch(raw); match != nil {
		return match[1], nil
	}

	for _, marker := range videoPathMarkers {
		idx := strings.Index(raw, marker)
		if idx < 0 {
			continue
		}
		rest := raw[idx+len(marker):]
		if cut := strings.Index(rest, "?"); cut >= 0 {
			rest = rest[:cut]
		}
		for _, segment := range strings.Split(rest, "/") {
			if onlyDigits(segment) {
				return segment, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrInvalidURL, raw)
}

func onlyDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

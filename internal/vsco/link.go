// Package vsco recognises VSCO post links and classifies resolved media URLs.
package vsco

import (
	"regexp"
	"strings"
)

var postLinkPattern = regexp.MustCompile(`https://vsco\.co/\w+/media/\w+`)

// PassesPrefilter is the cheap check run before anything else: the text must
// mention both "vsco" and "http". It is coarser than FindPostLinks.
func PassesPrefilter(text string) bool {
	return strings.Contains(text, "vsco") && strings.Contains(text, "http")
}

// FindPostLinks returns every VSCO post URL in text, or nil when there is none.
func FindPostLinks(text string) []string {
	return postLinkPattern.FindAllString(text, -1)
}

// FirstPostLink returns the first VSCO post URL in text.
func FirstPostLink(text string) (string, bool) {
	link := postLinkPattern.FindString(text)
	return link, link != ""
}

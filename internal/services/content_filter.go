package services

import (
	"regexp"
)

var bannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
}

// ContentFilter flags review text containing banned words. It never alters
// the text.
type ContentFilter struct {
	patterns []*regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{patterns: make([]*regexp.Regexp, 0, len(bannedWords))}
	for _, word := range bannedWords {
		f.patterns = append(f.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

func (f *ContentFilter) ContainsProfanity(text string) bool {
	if f == nil || text == "" {
		return false
	}
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Flagged reports whether any of texts contains a banned word.
func (f *ContentFilter) Flagged(texts ...string) bool {
	for _, t := range texts {
		if f.ContainsProfanity(t) {
			return true
		}
	}
	return false
}

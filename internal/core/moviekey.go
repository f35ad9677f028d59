package core

import "strings"

// UnknownLanguage is used when a movie key carries no language part.
const UnknownLanguage = "Unknown"

// MovieKey is the parsed identity behind a raw movie key string.
type MovieKey struct {
	Title    string
	Language string
}

// ParseMovieKey splits a raw movie key into title and language. Two historical
// formats are in circulation:
//
//	"Title | Language"
//	"Title [Format | Language]"
//
// In the bracketed form the base title is everything before the first '[' and
// the language is the last '|'-separated token inside the brackets; other
// bracketed tokens (format, screen type) are ignored. A key with neither shape
// is all title with language "Unknown".
func ParseMovieKey(raw string) MovieKey {
	raw = strings.TrimSpace(raw)

	if open := strings.Index(raw, "["); open >= 0 {
		title := strings.TrimSpace(raw[:open])
		inner := raw[open+1:]
		if end := strings.Index(inner, "]"); end >= 0 {
			inner = inner[:end]
		}
		lang := UnknownLanguage
		parts := strings.Split(inner, "|")
		if last := strings.TrimSpace(parts[len(parts)-1]); last != "" {
			lang = last
		}
		return MovieKey{Title: title, Language: lang}
	}

	if title, lang, ok := strings.Cut(raw, "|"); ok {
		key := MovieKey{Title: strings.TrimSpace(title), Language: strings.TrimSpace(lang)}
		if key.Language == "" {
			key.Language = UnknownLanguage
		}
		return key
	}

	return MovieKey{Title: raw, Language: UnknownLanguage}
}

// String renders the canonical "Title | Language" form.
func (k MovieKey) String() string {
	return k.Title + " | " + k.Language
}

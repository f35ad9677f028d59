package core

import "testing"

func TestParseMovieKey(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		title    string
		language string
	}{
		{
			name:     "plain pipe form",
			raw:      "Dhurandhar | Hindi",
			title:    "Dhurandhar",
			language: "Hindi",
		},
		{
			name:     "bracketed format and language",
			raw:      "Avatar: Fire and Ash [3D | Hindi]",
			title:    "Avatar: Fire and Ash",
			language: "Hindi",
		},
		{
			name:     "bracketed language only",
			raw:      "Kantara [Kannada]",
			title:    "Kantara",
			language: "Kannada",
		},
		{
			name:     "bracketed with three tokens takes the last",
			raw:      "Movie [IMAX | 3D | Telugu]",
			title:    "Movie",
			language: "Telugu",
		},
		{
			name:     "no separator at all",
			raw:      "Standalone Title",
			title:    "Standalone Title",
			language: "Unknown",
		},
		{
			name:     "pipe with empty language",
			raw:      "Title | ",
			title:    "Title",
			language: "Unknown",
		},
		{
			name:     "unclosed bracket",
			raw:      "Movie [Hindi",
			title:    "Movie",
			language: "Hindi",
		},
		{
			name:     "surrounding whitespace",
			raw:      "  Jawan | Tamil  ",
			title:    "Jawan",
			language: "Tamil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMovieKey(tt.raw)
			if got.Title != tt.title || got.Language != tt.language {
				t.Errorf("ParseMovieKey(%q) = (%q, %q), want (%q, %q)",
					tt.raw, got.Title, got.Language, tt.title, tt.language)
			}
		})
	}
}

func TestMovieKeyString(t *testing.T) {
	k := MovieKey{Title: "Dhurandhar", Language: "Hindi"}
	if got := k.String(); got != "Dhurandhar | Hindi" {
		t.Errorf("String() = %q, want %q", got, "Dhurandhar | Hindi")
	}
}

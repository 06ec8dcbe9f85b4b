package domain

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Winter Appeal", "winter-appeal"},
		{"already slug", "winter-appeal", "winter-appeal"},
		{"punctuation", "Back to School: 2026!", "back-to-school-2026"},
		{"accents fold to ascii", "Café  de  l'Été", "cafe-de-l-ete"},
		{"umlauts fold", "Über Spendenlauf", "uber-spendenlauf"},
		{"non-latin drops", "募金 drive", "drive"},
		{"leading trailing junk", "  --Hello--  ", "hello"},
		{"numbers kept", "Gala 2026", "gala-2026"},
		{"empty", "", ""},
		{"only punctuation", "?!?", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugifyLength(t *testing.T) {
	long := strings.Repeat("hello world ", 20)
	got := Slugify(long)
	if len(got) > maxSlugLength {
		t.Errorf("slug length = %d, want <= %d", len(got), maxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug must not end with hyphen: %q", got)
	}
}

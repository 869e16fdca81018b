package textutil

import "testing"

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "banana apple blueberry", "banana_apple_blueberry"},
		{"underscores", "a_b_c", "a_b_c"},
		{"periods", "a.b.c", "a.b.c"},
		{"leading period", ".abc", "abc"},
		{"leading underscore", "_abc", "abc"},
		{"bad chars", "a@$#b!)(*$%&^c`/\\\"';:<>,d", "abcd"},
		{"empty", "", ""},
		{"accents", "Café Noir", "Cafe_Noir"},
		{"flex title", "Bob's Big Apple Break, into the big apple! Part.365   H", "Bobs_Big_Apple_Break_into_the_big_apple_Part.365___H"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeID(tt.in); got != tt.want {
				t.Errorf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNodeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foo.X", "foo_X"},
		{"014_xf_seqGrade_v01", "CDL_014_xf_seqGrade_v01"},
		{"", "CDL"},
		{"Grade Ä", "Grade_A"},
	}
	for _, tt := range tests {
		if got := NodeName(tt.in); got != tt.want {
			t.Errorf("NodeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileStem(t *testing.T) {
	tests := map[string]string{
		"/shots/A001.v2.nk": "A001",
		"foo.nk":            "foo",
		"noext":             "noext",
		"dir/.hidden":       "",
	}
	for in, want := range tests {
		if got := FileStem(in); got != want {
			t.Errorf("FileStem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(" a/b:c*d?e "); got != "a-b-c-de" {
		t.Errorf("SanitizeFileName = %q", got)
	}
}

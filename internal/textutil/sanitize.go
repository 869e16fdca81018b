package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// FoldDiacritics strips combining marks so "Café" becomes "Cafe".
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeID turns free text into a correction id. Spaces become
// underscores, one leading underscore or period is dropped, and anything
// outside [A-Za-z0-9._] is removed after accents are folded.
func SanitizeID(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(FoldDiacritics(name), " ", "_")
	if name[0] == '_' || name[0] == '.' {
		name = name[1:]
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isIDRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NodeName turns an id into a valid compositor node name: only letters,
// digits and underscores, never starting with a digit.
func NodeName(id string) string {
	var b strings.Builder
	for _, r := range FoldDiacritics(id) {
		if r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "CDL"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "CDL_" + out
	}
	return out
}

// FileStem returns the base name of path up to its first period, so
// "/shots/A001.v2.nk" yields "A001".
func FileStem(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_':
		return true
	default:
		return false
	}
}

package convert

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/formats"
	"cdlconvert/internal/logging"
)

// VerifyResult compares a format's output with the output of re-reading it.
type VerifyResult struct {
	Format formats.Format
	First  string
	Second string
	// Diff is a unified patch from First to Second, empty when they match.
	Diff string
}

// Stable reports whether the second pass reproduced the first.
func (r *VerifyResult) Stable() bool { return r.First == r.Second }

// Verify serializes m, parses the text into a scratch registry and
// serializes it again. Lossy formats report the difference in Diff rather
// than an error.
func Verify(m cdl.Model, format formats.Format, wo formats.WriteOptions) (*VerifyResult, error) {
	codec, err := formats.Lookup(string(format))
	if err != nil {
		return nil, err
	}
	first, err := formats.Serialize(format, m, wo)
	if err != nil {
		return nil, err
	}
	source := m.Meta().Name
	if source == "" {
		source = "verify"
	}
	reparsed, err := formats.Parse(format, []byte(first), formats.ParseContext{
		Registry: cdl.NewRegistry(),
		Source:   source + "." + codec.Ext(),
		Logger:   logging.NewNop(),
	})
	if err != nil {
		return nil, err
	}
	second, err := formats.Serialize(format, reparsed, wo)
	if err != nil {
		return nil, err
	}

	res := &VerifyResult{Format: format, First: first, Second: second}
	if !res.Stable() {
		res.Diff = diffText(first, second)
	}
	return res, nil
}

// diffText renders a semantic line diff as patch text.
func diffText(a, b string) string {
	dmp := diffmatchpatch.New()
	ra, rb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(ra, rb, false))
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

package formats_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/formats"
)

func parseText(t *testing.T, format formats.Format, source, text string) (cdl.Model, *cdl.Registry) {
	t.Helper()
	reg := cdl.NewRegistry()
	m, err := formats.Parse(format, []byte(text), formats.ParseContext{Registry: reg, Source: source})
	require.NoError(t, err)
	return m, reg
}

func parseErr(t *testing.T, format formats.Format, source, text string) error {
	t.Helper()
	_, err := formats.Parse(format, []byte(text), formats.ParseContext{Registry: cdl.NewRegistry(), Source: source})
	require.Error(t, err)
	return err
}

func triple(values ...string) cdl.Triple {
	return cdl.Triple{cdl.MustParseValue(values[0]), cdl.MustParseValue(values[1]), cdl.MustParseValue(values[2])}
}

func requireTriple(t *testing.T, want cdl.Triple, got cdl.Triple, field string) {
	t.Helper()
	require.Truef(t, want.Equal(got), "%s = %s, want %s", field, got, want)
}

func requireValue(t *testing.T, want string, got cdl.Value) {
	t.Helper()
	require.Truef(t, cdl.MustParseValue(want).Equal(got), "value = %s, want %s", got, want)
}

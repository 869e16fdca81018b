package convert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/convert"
	"cdlconvert/internal/formats"
	"cdlconvert/internal/logging"
	"cdlconvert/internal/services"
)

const nkSingle = "OCIOCDLTransform {\n slope {1.1 0.05 0.52}\n offset {0.005 0.06 0}\n power {0.13 0.26 0.12}\n saturation 0.25\n name X\n}\n"

const nkPair = `OCIOCDLTransform {
 slope {1.1 1.2 1.3}
 name A
}
OCIOCDLTransform {
 power 0.9
 name B
}
`

func newConverter(opts convert.Options) *convert.Converter {
	return convert.New(cdl.NewRegistry(), logging.NewNop(), opts)
}

func TestConvertSingleInput(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC, formats.CCC}})
	out, err := c.Convert(context.Background(), convert.Input{Path: "/shots/foo.nk", Data: []byte(nkSingle)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Contains(t, out[formats.CC], `<ColorCorrection id="foo.X">`)
	require.Contains(t, out[formats.CC], "<Slope>1.1 0.05 0.52</Slope>")
	require.Contains(t, out[formats.CCC], `<ColorCorrectionCollection xmlns="urn:ASC:CDL:v1.01">`)

	_, ok := c.Registry().Lookup("foo.X")
	require.True(t, ok)
}

func TestConvertReadsFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.nk")
	require.NoError(t, os.WriteFile(path, []byte(nkSingle), 0o644))

	c := newConverter(convert.Options{Outputs: []formats.Format{formats.RCDL}})
	out, err := c.Convert(context.Background(), convert.Input{Path: path})
	require.NoError(t, err)
	require.Equal(t, "1.1 0.05 0.52 0.005 0.06 0 0.13 0.26 0.12 0.25\n", out[formats.RCDL])
}

func TestConvertKeepsOtherFormatsWhenOneFails(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC, formats.NK}})
	out, err := c.Convert(context.Background(), convert.Input{Path: "pair.nk", Data: []byte(nkPair)})
	require.ErrorIs(t, err, cdl.ErrUnsupportedCardinality)
	require.ErrorIs(t, err, services.ErrValidation)
	require.NotContains(t, out, formats.CC)
	require.Contains(t, out[formats.NK], "name pair_A")
}

func TestConvertAppliesPrecision(t *testing.T) {
	p := cdl.Fixed(3)
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC}, Precision: &p})
	out, err := c.Convert(context.Background(), convert.Input{Path: "foo.nk", Data: []byte(nkSingle)})
	require.NoError(t, err)
	require.Contains(t, out[formats.CC], "<Slope>1.100 0.050 0.520</Slope>")
	require.Contains(t, out[formats.CC], "<Saturation>0.250</Saturation>")
}

func TestConvertForcedInputFormat(t *testing.T) {
	c := newConverter(convert.Options{InputFormat: formats.NK, Outputs: []formats.Format{formats.CC}})
	out, err := c.Convert(context.Background(), convert.Input{Path: "script.txt", Data: []byte(nkSingle)})
	require.NoError(t, err)
	require.Contains(t, out[formats.CC], `id="script.X"`)
}

func TestRunSplitsSingles(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC, formats.CDL}, SplitSingles: true})
	report := c.Run(context.Background(), []convert.Input{{Path: "reel.nk", Data: []byte(nkPair)}})
	require.False(t, report.Failed(), "%v", report.Err())

	job := report.Jobs[0]
	require.Equal(t, convert.StateSerialized, job.State)
	require.True(t, report.Pending())
	require.Equal(t, formats.NK, job.Format)
	require.Len(t, job.Outputs, 3)
	require.Equal(t, "reel.A.cc", job.Outputs[0].Name)
	require.Equal(t, "reel.A", job.Outputs[0].ID)
	require.Equal(t, "reel.B.cc", job.Outputs[1].Name)
	require.Equal(t, "reel.cdl", job.Outputs[2].Name)
	require.Contains(t, job.Outputs[1].Content, "<Power>0.9 0.9 0.9</Power>")
}

func TestRunSingleFormatNamedByID(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC}})
	report := c.Run(context.Background(), []convert.Input{{Path: "foo.nk", Data: []byte(nkSingle)}})
	require.False(t, report.Failed())
	require.Equal(t, "foo.X.cc", report.Outputs()[0].Name)
}

func TestRunWithoutSplitFailsOnlyThatOutput(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC, formats.CCC}})
	report := c.Run(context.Background(), []convert.Input{{Path: "reel.nk", Data: []byte(nkPair)}})
	require.True(t, report.Failed())

	job := report.Jobs[0]
	require.Equal(t, convert.StateFailed, job.State)
	require.NoError(t, job.Err)
	require.ErrorIs(t, job.Outputs[0].Err, cdl.ErrUnsupportedCardinality)
	require.NoError(t, job.Outputs[1].Err)
	require.Equal(t, "reel.ccc", job.Outputs[1].Name)
}

func TestRunContinuesAfterFailedInput(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC}})
	report := c.Run(context.Background(), []convert.Input{
		{Path: "foo.nk", Data: []byte(nkSingle)},
		{Path: "foo.nk", Data: []byte(nkSingle)},
		{Path: "notes.txt", Data: []byte("hello")},
		{Path: filepath.Join(t.TempDir(), "missing.nk")},
	})
	require.Len(t, report.Jobs, 4)
	require.False(t, report.Jobs[0].Failed())

	require.ErrorIs(t, report.Jobs[1].Err, cdl.ErrDuplicateID)
	require.ErrorIs(t, report.Jobs[2].Err, cdl.ErrUnknownFormat)
	require.ErrorIs(t, report.Jobs[3].Err, services.ErrNotFound)
	require.Equal(t, services.StatusReview, services.FailureStatus(report.Jobs[3].Err))
	for _, j := range report.Jobs[1:] {
		require.Equal(t, convert.StateFailed, j.State)
	}
	require.Equal(t, "4 input(s), 1 output(s), 3 failed", convert.Summary(report))
}

func TestRunRollbackReleasesPartialIDs(t *testing.T) {
	broken := "OCIOCDLTransform {\n name good\n}\nOCIOCDLTransform {\n slope {{curve x1 1 x20 2} 1 1}\n name bad\n}\n"
	input := []convert.Input{{Path: "comp.nk", Data: []byte(broken)}}

	keep := newConverter(convert.Options{Outputs: []formats.Format{formats.CCC}})
	report := keep.Run(context.Background(), input)
	require.ErrorIs(t, report.Jobs[0].Err, cdl.ErrNumericFormat)
	_, ok := keep.Registry().Lookup("comp.good")
	require.True(t, ok, "best effort keeps ids registered before the failure")

	rollback := newConverter(convert.Options{Outputs: []formats.Format{formats.CCC}, RollbackOnError: true})
	rollback.Run(context.Background(), input)
	require.Equal(t, 0, rollback.Registry().Len())
}

func TestRunMergesInputs(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CCC}, Merge: true, CollectionName: "dailies"})
	report := c.Run(context.Background(), []convert.Input{
		{Path: "foo.nk", Data: []byte(nkSingle)},
		{Path: "reel.nk", Data: []byte(nkPair)},
	})
	require.False(t, report.Failed(), "%v", report.Err())
	require.NotNil(t, report.Merged)
	for _, j := range report.Jobs {
		require.Equal(t, convert.StateDone, j.State)
		require.Empty(t, j.Outputs)
	}

	outs := report.Merged.Outputs
	require.Len(t, outs, 1)
	require.Equal(t, "dailies.ccc", outs[0].Name)
	text := outs[0].Content
	require.Less(t, strings.Index(text, `id="foo.X"`), strings.Index(text, `id="reel.A"`))
	require.Less(t, strings.Index(text, `id="reel.A"`), strings.Index(text, `id="reel.B"`))
}

func TestRunMergeWithNothingParsed(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CCC}, Merge: true})
	report := c.Run(context.Background(), []convert.Input{{Path: "empty.nk", Data: []byte(" ")}})
	require.True(t, report.Failed())
	require.ErrorIs(t, report.Jobs[0].Err, cdl.ErrEmptyInput)
	require.ErrorIs(t, report.Merged.Err, services.ErrValidation)
}

func TestRunCheckCollectsFindings(t *testing.T) {
	text := "OCIOCDLTransform {\n slope {3.5 1 1}\n saturation 0.05\n name hot\n}\n"
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC}, Check: true})
	report := c.Run(context.Background(), []convert.Input{{Path: "hot.nk", Data: []byte(text)}})
	require.False(t, report.Failed())
	findings := report.Jobs[0].Findings
	require.Len(t, findings, 2)
	require.Equal(t, "slope", findings[0].Field)
	require.Equal(t, "saturation", findings[1].Field)
}

func TestRunClampsUnlessHalt(t *testing.T) {
	text := "OCIOCDLTransform {\n slope {1 -0.5 1}\n name neg\n}\n"

	lenient := newConverter(convert.Options{Outputs: []formats.Format{formats.CC}})
	report := lenient.Run(context.Background(), []convert.Input{{Path: "neg.nk", Data: []byte(text)}})
	require.False(t, report.Failed())
	require.Contains(t, report.Outputs()[0].Content, "<Slope>1 0.0 1</Slope>")
	require.Equal(t, 1, report.Jobs[0].Clamped)

	strict := newConverter(convert.Options{Outputs: []formats.Format{formats.CC}, Halt: true})
	report = strict.Run(context.Background(), []convert.Input{{Path: "neg.nk", Data: []byte(text)}})
	require.ErrorIs(t, report.Jobs[0].Err, cdl.ErrMalformedValue)
}

func TestRunDryRunFinishesJobs(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC}, DryRun: true})
	report := c.Run(context.Background(), []convert.Input{{Path: "foo.nk", Data: []byte(nkSingle)}})
	require.False(t, report.Failed())
	require.Equal(t, convert.StateDone, report.Jobs[0].State)
	require.False(t, report.Pending())
	require.NotEmpty(t, report.Outputs()[0].Content)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, c.Write(context.Background(), dir, report))
	require.Empty(t, report.Outputs()[0].Path)
	require.NoFileExists(t, filepath.Join(dir, "foo.X.cc"))
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC}})
	report := c.Run(ctx, []convert.Input{{Path: "foo.nk", Data: []byte(nkSingle)}})
	require.True(t, errors.Is(report.Jobs[0].Err, context.Canceled))
	require.Equal(t, 0, c.Registry().Len())
}

func TestResetRegistryAllowsReuse(t *testing.T) {
	c := newConverter(convert.Options{Outputs: []formats.Format{formats.CC}})
	in := convert.Input{Path: "foo.nk", Data: []byte(nkSingle)}
	_, err := c.Convert(context.Background(), in)
	require.NoError(t, err)
	_, err = c.Convert(context.Background(), in)
	require.ErrorIs(t, err, cdl.ErrDuplicateID)

	c.ResetRegistry()
	_, err = c.Convert(context.Background(), in)
	require.NoError(t, err)
}

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"cdlconvert/internal/testsupport"
)

func TestRootWithoutFilesPrintsHelp(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	requireContains(t, out, "cdlconvert [files...]")
}

func TestConvertWritesOutputs(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeFile(t, "foo.nk", nkSample)

	out, _, err := runCLI(t, []string{"-o", "cc,ccc", "-d", env.outDir, input}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v\n%s", err, out)
	}
	requireContains(t, out, "[OK] 1 correction(s) from nk")
	requireContains(t, out, "1 input(s), 2 output(s), 0 failed")

	cc, err := os.ReadFile(filepath.Join(env.outDir, "foo.X.cc"))
	if err != nil {
		t.Fatalf("read cc output: %v", err)
	}
	requireContains(t, string(cc), `<ColorCorrection id="foo.X">`)
	if _, err := os.Stat(filepath.Join(env.outDir, "foo.ccc")); err != nil {
		t.Fatalf("expected ccc output: %v", err)
	}
}

func TestConvertDryRunWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeFile(t, "foo.nk", nkSample)

	out, _, err := runCLI(t, []string{"--no-output", "-d", env.outDir, input}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "not written (dry run)")
	if _, err := os.Stat(env.outDir); !os.IsNotExist(err) {
		t.Fatalf("destination should not exist after a dry run: %v", err)
	}
}

func TestConvertFailureExitsNonZero(t *testing.T) {
	env := setupCLITestEnv(t)
	good := env.writeFile(t, "foo.nk", nkSample)
	bad := env.writeFile(t, "empty.nk", "set cut_paste_input [stack 0]\n")

	out, _, err := runCLI(t, []string{"-d", env.outDir, good, bad}, env.configPath)
	if err == nil {
		t.Fatal("expected error when an input fails")
	}
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, "review")
	requireContains(t, err.Error(), "2 input(s), 1 output(s), 1 failed")
	if _, err := os.Stat(filepath.Join(env.outDir, "foo.X.cc")); err != nil {
		t.Fatalf("good input should still be written: %v", err)
	}
}

func TestConvertHonoursConfigFileAndEnvironment(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeFile(t, "foo.nk", nkSample)
	env.cfg.Output.Formats = []string{"nk"}
	env.cfg.Output.Precision = 2
	testsupport.WriteConfig(t, env.configPath, env.cfg)

	if _, _, err := runCLI(t, []string{input}, env.configPath); err != nil {
		t.Fatalf("convert with config: %v", err)
	}
	nk, err := os.ReadFile(filepath.Join(env.outDir, "foo.nk"))
	if err != nil {
		t.Fatalf("read nk output: %v", err)
	}
	requireContains(t, string(nk), "slope {1.10 0.05 0.52}")

	t.Setenv("CDLCONVERT_OUTPUT_FORMATS", "rcdl")
	if _, _, err := runCLI(t, []string{input}, env.configPath); err != nil {
		t.Fatalf("convert with env override: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.outDir, "foo.X.rcdl")); err != nil {
		t.Fatalf("expected env override to select rcdl: %v", err)
	}

	if _, _, err := runCLI(t, []string{"-o", "cc", "--precision=-1", input}, env.configPath); err != nil {
		t.Fatalf("convert with flag override: %v", err)
	}
	cc, err := os.ReadFile(filepath.Join(env.outDir, "foo.X.cc"))
	if err != nil {
		t.Fatalf("expected flag to win over env: %v", err)
	}
	requireContains(t, string(cc), "<Slope>1.1 0.05 0.52</Slope>")
}

func TestConvertReportsClampedValues(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeFile(t, "neg.nk", "OCIOCDLTransform {\n slope {1 -0.5 1}\n name neg\n}\n")

	out, _, err := runCLI(t, []string{"--no-output", input}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "[CLAMPED] 1 correction(s) from nk, 1 field(s) clamped to zero")
	requireContains(t, out, "[SKIP] not written (dry run)")
}

func TestConvertRejectsUnknownOutputFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeFile(t, "foo.nk", nkSample)
	_, _, err := runCLI(t, []string{"-o", "edl", input}, env.configPath)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	requireContains(t, err.Error(), "edl")
}

const cccSample = `<ColorCorrectionCollection xmlns="urn:ASC:CDL:v1.01">
    <ColorCorrection id="sh010">
        <SOPNode>
            <Slope>1.1 1 1</Slope>
        </SOPNode>
    </ColorCorrection>
    <ColorCorrection id="sh020">
        <SatNode>
            <Saturation>0.8</Saturation>
        </SatNode>
    </ColorCorrection>
</ColorCorrectionCollection>
`

func TestConvertCollectionSplitsIntoSingleFilesByDefault(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeFile(t, "shots.ccc", cccSample)

	out, _, err := runCLI(t, []string{"-d", env.outDir, input}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v\n%s", err, out)
	}
	requireContains(t, out, "1 input(s), 2 output(s), 0 failed")
	for _, name := range []string{"sh010.cc", "sh020.cc"} {
		data, err := os.ReadFile(filepath.Join(env.outDir, name))
		if err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		requireContains(t, string(data), `<ColorCorrection id="`+strings.TrimSuffix(name, ".cc")+`">`)
	}
}

func TestConvertCollectionWithoutSplittingFails(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeFile(t, "shots.ccc", cccSample)

	out, _, err := runCLI(t, []string{"--split-singles=false", "-d", env.outDir, input}, env.configPath)
	if err == nil {
		t.Fatal("expected cardinality failure with splitting disabled")
	}
	requireContains(t, out, "unsupported cardinality")
	if _, err := os.Stat(env.outDir); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written: %v", err)
	}
}

func TestFormatsCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"formats"}, "")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	for _, want := range []string{"ale", "ccc", "flex", ".flx", "fit-6", "rcdl"} {
		requireContains(t, out, want)
	}
}

func TestInspectCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeFile(t, "foo.nk", nkSample)

	out, _, err := runCLI(t, []string{"inspect", input}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "foo.X")
	requireContains(t, out, "1.1 0.05 0.52")

	out, _, err = runCLI(t, []string{"inspect", "--json", input}, env.configPath)
	if err != nil {
		t.Fatalf("inspect --json: %v", err)
	}
	var snap modelSnapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if snap.Format != "nk" || len(snap.Corrections) != 1 || snap.Corrections[0].Saturation != "0.25" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	out, _, err = runCLI(t, []string{"inspect", "--yaml", input}, env.configPath)
	if err != nil {
		t.Fatalf("inspect --yaml: %v", err)
	}
	var fromYAML modelSnapshot
	if err := yaml.Unmarshal([]byte(out), &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if fromYAML.Corrections[0].ID != "foo.X" || fromYAML.Kind != "collection" {
		t.Fatalf("unexpected yaml snapshot %+v", fromYAML)
	}
}

func TestInspectMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"inspect", filepath.Join(env.dir, "nope.cc")}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestVerifyCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeFile(t, "foo.nk", nkSample)

	out, _, err := runCLI(t, []string{"verify", "-o", "ccc", input}, env.configPath)
	if err != nil {
		t.Fatalf("verify ccc: %v", err)
	}
	requireContains(t, out, "round trip is stable")

	out, _, err = runCLI(t, []string{"verify", input}, env.configPath)
	if err == nil {
		t.Fatal("expected nk round trip to drift")
	}
	requireContains(t, out, "+  name foo_foo_X")
}

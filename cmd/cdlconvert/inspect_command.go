package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/config"
	"cdlconvert/internal/formats"
	"cdlconvert/internal/services"
)

type correctionSnapshot struct {
	ID           string   `json:"id" yaml:"id"`
	MediaRef     string   `json:"media_ref,omitempty" yaml:"media_ref,omitempty"`
	Slope        string   `json:"slope" yaml:"slope"`
	Offset       string   `json:"offset" yaml:"offset"`
	Power        string   `json:"power" yaml:"power"`
	Saturation   string   `json:"saturation" yaml:"saturation"`
	Descriptions []string `json:"descriptions,omitempty" yaml:"descriptions,omitempty"`
}

type modelSnapshot struct {
	Source       string               `json:"source" yaml:"source"`
	Format       string               `json:"format" yaml:"format"`
	Name         string               `json:"name" yaml:"name"`
	Kind         string               `json:"kind" yaml:"kind"`
	Descriptions []string             `json:"descriptions,omitempty" yaml:"descriptions,omitempty"`
	Corrections  []correctionSnapshot `json:"corrections" yaml:"corrections"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON, asYAML bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the corrections a file holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON && asYAML {
				return errors.New("--json and --yaml are mutually exclusive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, format, model, err := loadModel(ctx, cfg, args[0])
			if err != nil {
				return err
			}
			snap := snapshot(source, format, model)
			switch {
			case asJSON:
				return writeJSON(cmd, snap)
			case asYAML:
				return writeYAML(cmd, snap)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, %s %q)\n", source, format, snap.Kind, snap.Name)
			rows := make([][]string, 0, len(snap.Corrections))
			for _, c := range snap.Corrections {
				rows = append(rows, []string{c.ID, c.Slope, c.Offset, c.Power, c.Saturation, strings.Join(c.Descriptions, "; ")})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"ID", "Slope", "Offset", "Power", "Sat", "Description"},
				aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				wrap:    []int{5},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the corrections as JSON")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the corrections as YAML")
	return cmd
}

// loadModel reads and parses one file into a fresh registry.
func loadModel(ctx *commandContext, cfg *config.Config, arg string) (string, formats.Format, cdl.Model, error) {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", "", nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		marker := services.ErrIO
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return "", "", nil, services.Wrap(marker, "read", "read input", path, err)
	}
	format := formats.Format(cfg.Conversion.InputFormat)
	if format == "" {
		if format, err = formats.Detect(path, data); err != nil {
			return "", "", nil, err
		}
	}
	model, err := formats.Parse(format, data, formats.ParseContext{
		Registry: cdl.NewRegistry(),
		Source:   path,
		Halt:     cfg.Conversion.Halt,
		Logger:   ctx.loggerValue(),
	})
	if err != nil {
		return "", "", nil, err
	}
	return path, format, model, nil
}

func snapshot(source string, format formats.Format, m cdl.Model) modelSnapshot {
	meta := m.Meta()
	snap := modelSnapshot{
		Source:       source,
		Format:       string(format),
		Name:         meta.Name,
		Kind:         "collection",
		Descriptions: meta.Descriptions,
	}
	if list, ok := m.(*cdl.DecisionList); ok {
		snap.Kind = "decision list"
		for _, d := range list.Decisions {
			if cc := d.Resolved(); cc != nil {
				c := snapshotCorrection(cc)
				c.MediaRef = d.MediaRef
				snap.Corrections = append(snap.Corrections, c)
			}
		}
		return snap
	}
	for _, cc := range m.Corrections() {
		snap.Corrections = append(snap.Corrections, snapshotCorrection(cc))
	}
	return snap
}

func snapshotCorrection(cc *cdl.ColorCorrection) correctionSnapshot {
	return correctionSnapshot{
		ID:           cc.ID(),
		Slope:        cc.Slope().String(),
		Offset:       cc.Offset().String(),
		Power:        cc.Power().String(),
		Saturation:   cc.Saturation().String(),
		Descriptions: cc.Descriptions,
	}
}

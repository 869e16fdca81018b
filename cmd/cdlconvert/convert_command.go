package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/config"
	"cdlconvert/internal/convert"
	"cdlconvert/internal/formats"
	"cdlconvert/internal/services"
)

type convertFlags struct {
	dryRun bool
}

func runConvert(cmd *cobra.Command, ctx *commandContext, flags convertFlags, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	opts := convertOptions(cfg)

	inputs := make([]convert.Input, 0, len(args))
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return err
		}
		inputs = append(inputs, convert.Input{Path: path})
	}

	opts.DryRun = flags.dryRun
	runCtx := ctx.runContext(cmd.Context())
	conv := convert.New(cdl.NewRegistry(), ctx.loggerValue(), opts)
	report := conv.Run(runCtx, inputs)

	if report.Pending() {
		if err := conv.Write(runCtx, cfg.Output.Destination, report); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, line := range reportLines(report, flags.dryRun, shouldColorize(out)) {
		fmt.Fprintln(out, line)
	}
	if report.Failed() {
		fmt.Fprintln(out, failureTable(report))
		return fmt.Errorf("conversion failed: %s", convert.Summary(report))
	}
	fmt.Fprintln(out, convert.Summary(report))
	return nil
}

func convertOptions(cfg *config.Config) convert.Options {
	outputs := make([]formats.Format, 0, len(cfg.Output.Formats))
	for _, name := range cfg.Output.Formats {
		outputs = append(outputs, formats.Format(name))
	}
	opts := convert.Options{
		InputFormat:     formats.Format(cfg.Conversion.InputFormat),
		Outputs:         outputs,
		Merge:           cfg.Output.MergeInputs,
		CollectionName:  cfg.Output.CollectionName,
		SplitSingles:    cfg.Output.SplitSingles,
		Halt:            cfg.Conversion.Halt,
		Check:           cfg.Conversion.Check,
		RollbackOnError: cfg.Conversion.RollbackOnError,
	}
	if cfg.Output.Precision >= 0 {
		p := cdl.Fixed(cfg.Output.Precision)
		opts.Precision = &p
	}
	return opts
}

// reportLines renders one status line per input and one per output.
func reportLines(report *convert.Report, dryRun, colorize bool) []string {
	var lines []string
	for _, job := range report.Jobs {
		label := filepath.Base(job.Source)
		if job.Err != nil {
			lines = append(lines, renderStatusLine(label, statusError, errorSummary(job.Err), colorize))
			continue
		}
		msg := fmt.Sprintf("%d correction(s) from %s", len(job.Model.Corrections()), job.Format)
		if job.Clamped > 0 {
			msg += fmt.Sprintf(", %d field(s) clamped to zero", job.Clamped)
		}
		if n := len(job.Findings); n > 0 {
			msg += fmt.Sprintf(", %d value(s) outside the usual range", n)
		}
		lines = append(lines, renderStatusLine(label, jobStatus(job.Clamped, len(job.Findings)), msg, colorize))
		lines = append(lines, outputLines(job, dryRun, colorize)...)
	}
	if report.Merged != nil {
		if report.Merged.Err != nil {
			lines = append(lines, renderStatusLine(report.Merged.Source, statusError, errorSummary(report.Merged.Err), colorize))
		} else {
			msg := fmt.Sprintf("%d correction(s) merged", len(report.Merged.Model.Corrections()))
			lines = append(lines, renderStatusLine(report.Merged.Source, statusInfo, msg, colorize))
			lines = append(lines, outputLines(report.Merged, dryRun, colorize)...)
		}
	}
	return lines
}

func outputLines(job *convert.Job, dryRun, colorize bool) []string {
	lines := make([]string, 0, len(job.Outputs))
	for _, o := range job.Outputs {
		label := "  " + o.Name
		if o.Name == "" {
			label = "  " + string(o.Format)
		}
		switch {
		case o.Err != nil:
			lines = append(lines, renderStatusLine(label, statusError, errorSummary(o.Err), colorize))
		case dryRun:
			lines = append(lines, renderStatusLine(label, statusSkipped, "not written (dry run)", colorize))
		default:
			lines = append(lines, renderStatusLine(label, statusOK, "-> "+o.Path, colorize))
		}
	}
	return lines
}

// failureTable lists every failure with its review status.
func failureTable(report *convert.Report) string {
	var rows [][]string
	add := func(source string, format formats.Format, err error) {
		rows = append(rows, []string{filepath.Base(source), string(format), string(services.FailureStatus(err)), err.Error()})
	}
	jobs := report.Jobs
	if report.Merged != nil {
		jobs = append(append([]*convert.Job(nil), jobs...), report.Merged)
	}
	for _, job := range jobs {
		if job.Err != nil {
			add(job.Source, job.Format, job.Err)
		}
		for _, o := range job.Outputs {
			if o.Err != nil {
				add(job.Source, o.Format, o.Err)
			}
		}
	}
	return renderTable(tableSpec{
		headers: []string{"Input", "Format", "Status", "Error"},
		wrap:    []int{3},
	}, rows)
}

// errorSummary keeps the domain part of a wrapped error for status lines.
func errorSummary(err error) string {
	var ce *cdl.Error
	if errors.As(err, &ce) {
		return ce.Error()
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		return msg[i+2:]
	}
	return msg
}

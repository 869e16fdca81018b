package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/formats"
	"cdlconvert/internal/logging"
	"cdlconvert/internal/services"
	"cdlconvert/internal/textutil"
)

const (
	stageRead      = "read"
	stageParse     = "parse"
	stageSerialize = "serialize"
)

// Options controls a conversion run.
type Options struct {
	// InputFormat forces the input format. Empty means detect per file.
	InputFormat formats.Format
	Outputs     []formats.Format
	// Merge combines every parsed input into one collection named
	// CollectionName before serializing.
	Merge          bool
	CollectionName string
	// SplitSingles writes one output per correction when a single-correction
	// format receives a model holding several.
	SplitSingles bool
	// Halt rejects negative slope, power and saturation instead of clamping.
	Halt bool
	// Check logs a warning for each value outside the usual grading range.
	Check bool
	// RollbackOnError unregisters the ids a failed parse registered.
	RollbackOnError bool
	// Precision overrides every format's numeral rendering when set.
	Precision *cdl.Precision
	// DryRun renders without writing. Jobs finish in StateDone once every
	// output rendered, and Write has nothing left to store.
	DryRun bool
}

// Converter runs conversions against one registry.
type Converter struct {
	reg    *cdl.Registry
	logger *slog.Logger
	opts   Options
}

// New builds a converter. A nil registry gets a fresh one.
func New(reg *cdl.Registry, logger *slog.Logger, opts Options) *Converter {
	if reg == nil {
		reg = cdl.NewRegistry()
	}
	if opts.CollectionName == "" {
		opts.CollectionName = "merged"
	}
	return &Converter{
		reg:    reg,
		logger: logging.NewComponentLogger(logger, "convert"),
		opts:   opts,
	}
}

// Registry returns the registry the converter parses into.
func (c *Converter) Registry() *cdl.Registry { return c.reg }

// ResetRegistry forgets every registered id.
func (c *Converter) ResetRegistry() {
	c.reg.Reset()
}

// Convert parses one input and renders it in every output format. Single
// formats are never split here: a model with several corrections fails
// for them while the other formats still render.
func (c *Converter) Convert(ctx context.Context, in Input) (map[formats.Format]string, error) {
	job := c.parse(ctx, in)
	if job.Err != nil {
		return nil, job.Err
	}
	out := make(map[formats.Format]string, len(c.opts.Outputs))
	var errs []error
	for _, f := range c.opts.Outputs {
		text, err := c.serialize(ctx, job.Source, f, job.Model)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[f] = text
	}
	return out, errors.Join(errs...)
}

// Run converts a batch. Every input gets a job in the report, in order.
func (c *Converter) Run(ctx context.Context, inputs []Input) *Report {
	report := &Report{Jobs: make([]*Job, 0, len(inputs))}
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			job := &Job{Source: in.Path, State: StateUnparsed}
			job.fail(err)
			report.Jobs = append(report.Jobs, job)
			continue
		}
		job := c.parse(ctx, in)
		report.Jobs = append(report.Jobs, job)
		if job.Err != nil || c.opts.Merge {
			continue
		}
		c.render(ctx, job)
	}

	if c.opts.Merge {
		report.Merged = c.merge(ctx, report.Jobs)
	}

	c.logger.Info("conversion finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("inputs", len(inputs)),
		logging.Int("outputs", len(report.Outputs())),
		logging.Bool("failed", report.Failed()),
	)
	return report
}

// parse reads and parses one input into a job.
func (c *Converter) parse(ctx context.Context, in Input) *Job {
	job := &Job{Source: in.Path, State: StateUnparsed}
	ctx = services.WithFile(ctx, in.Path)

	data := in.Data
	if data == nil {
		raw, err := os.ReadFile(in.Path)
		if err != nil {
			marker := services.ErrIO
			if errors.Is(err, os.ErrNotExist) {
				marker = services.ErrNotFound
			}
			job.fail(services.Wrap(marker, stageRead, "read input", in.Path, err))
			c.logFailure(ctx, stageRead, job.Err)
			return job
		}
		data = raw
	}

	format := c.opts.InputFormat
	if format == "" {
		detected, err := formats.Detect(in.Path, data)
		if err != nil {
			job.fail(services.Wrap(services.ErrValidation, stageParse, "detect format", "", err))
			c.logFailure(ctx, stageParse, job.Err)
			return job
		}
		format = detected
	}
	job.Format = format

	ctx = services.WithStage(ctx, stageParse)
	logger := logging.WithContext(ctx, c.logger)
	tracker := c.reg.Track()
	model, err := formats.Parse(format, data, formats.ParseContext{
		Registry: c.reg,
		Source:   in.Path,
		Halt:     c.opts.Halt,
		Logger:   logger,
		OnClamp:  func(string, string) { job.Clamped++ },
	})
	if err != nil {
		if c.opts.RollbackOnError {
			released := tracker.Rollback()
			logger.Debug("released ids after failed parse",
				logging.String(logging.FieldFormat, string(format)),
				logging.Int("released", len(released)),
			)
		} else {
			tracker.Close()
		}
		job.fail(services.Wrap(services.ErrValidation, stageParse, "parse "+string(format), "", err))
		c.logFailure(ctx, stageParse, job.Err)
		return job
	}
	tracker.Close()

	job.Model = model
	job.State = StateParsed
	logger.Info("input parsed",
		logging.String(logging.FieldFormat, string(format)),
		logging.Int("corrections", len(model.Corrections())),
	)
	if c.opts.Check {
		job.Findings = c.check(logger, model)
	}
	return job
}

// check logs a warning for every finding in m.
func (c *Converter) check(logger *slog.Logger, m cdl.Model) []cdl.Finding {
	var all []cdl.Finding
	for _, cc := range m.Corrections() {
		for _, f := range cdl.Check(cc) {
			all = append(all, f)
			attrs := []logging.Attr{
				logging.String(logging.FieldCorrectionID, f.ID),
				logging.String("field", f.Field),
				logging.String("value", f.Value.String()),
				logging.String(logging.FieldErrorHint, "confirm the grade with the colorist"),
				logging.String(logging.FieldImpact, "value is converted unchanged"),
			}
			if f.Channel >= 0 {
				attrs = append(attrs, logging.Int("channel", f.Channel))
			}
			logging.WarnWithContext(logger, "value outside the usual grading range", "check_finding", attrs...)
		}
	}
	return all
}

// merge folds every parsed job into one collection and renders it.
func (c *Converter) merge(ctx context.Context, jobs []*Job) *Job {
	merged := &Job{Source: c.opts.CollectionName, State: StateUnparsed}
	var models []cdl.Model
	for _, j := range jobs {
		if j.Model != nil && j.State != StateFailed {
			models = append(models, j.Model)
		}
	}
	if len(models) == 0 {
		merged.fail(services.Wrap(services.ErrValidation, stageParse, "merge inputs", "no input parsed", nil))
		return merged
	}
	merged.Model = cdl.Merge(c.opts.CollectionName, models...)
	merged.State = StateParsed
	for _, j := range jobs {
		if j.State == StateParsed {
			j.State = StateDone
		}
	}
	c.render(ctx, merged)
	return merged
}

// render serializes job.Model into every output format.
func (c *Converter) render(ctx context.Context, job *Job) {
	stem := textutil.FileStem(job.Source)
	if stem == "" {
		stem = job.Source
	}
	for _, f := range c.opts.Outputs {
		job.Outputs = append(job.Outputs, c.renderFormat(ctx, job.Source, stem, f, job.Model)...)
	}
	switch {
	case job.Failed():
		job.State = StateFailed
	case c.opts.DryRun:
		job.State = StateDone
	default:
		job.State = StateSerialized
	}
}

func (c *Converter) renderFormat(ctx context.Context, source, stem string, f formats.Format, m cdl.Model) []*Output {
	codec, err := formats.Lookup(string(f))
	if err != nil {
		return []*Output{{Format: f, Err: services.Wrap(services.ErrConfiguration, stageSerialize, "lookup format", "", err)}}
	}
	ccs := m.Corrections()
	if !codec.Single {
		out := &Output{Format: f, Name: outputName(stem, codec)}
		out.Content, out.Err = c.serialize(ctx, source, f, m)
		return []*Output{out}
	}
	if len(ccs) > 1 && c.opts.SplitSingles {
		outs := make([]*Output, 0, len(ccs))
		for _, cc := range ccs {
			one := cdl.NewCollection(cc.ID())
			one.Append(cc)
			out := &Output{Format: f, Name: outputName(cc.ID(), codec), ID: cc.ID()}
			out.Content, out.Err = c.serialize(ctx, source, f, one)
			outs = append(outs, out)
		}
		return outs
	}
	out := &Output{Format: f, Name: outputName(stem, codec)}
	if len(ccs) == 1 && ccs[0].ID() != "" {
		out.ID = ccs[0].ID()
		out.Name = outputName(out.ID, codec)
	}
	out.Content, out.Err = c.serialize(ctx, source, f, m)
	return []*Output{out}
}

func (c *Converter) serialize(ctx context.Context, source string, f formats.Format, m cdl.Model) (string, error) {
	text, err := formats.Serialize(f, m, formats.WriteOptions{Precision: c.opts.Precision})
	if err != nil {
		err = services.Wrap(services.ErrValidation, stageSerialize, "write "+string(f), source, err)
		c.logFailure(services.WithFile(ctx, source), stageSerialize, err)
		return "", err
	}
	return text, nil
}

func (c *Converter) logFailure(ctx context.Context, stage string, err error) {
	ctx = services.WithStage(ctx, stage)
	logging.ErrorWithContext(logging.WithContext(ctx, c.logger), "conversion step failed", stage+"_failed",
		logging.Error(err),
		logging.String("status", string(services.FailureStatus(err))),
		logging.String(logging.FieldErrorHint, hintFor(err)),
	)
}

// hintFor suggests a next step based on the domain error kind.
func hintFor(err error) string {
	switch cdl.KindOf(err) {
	case cdl.ErrUnknownFormat:
		return "pass --input to name the input format"
	case cdl.ErrUnsupportedCardinality:
		return "write a collection format or enable split_singles"
	case cdl.ErrDuplicateID:
		return "rename the correction or convert the files separately"
	case cdl.ErrNoNodesFound, cdl.ErrEmptyInput:
		return "check that the file holds color corrections"
	case cdl.ErrUnknownReference:
		return "include the file that defines the referenced correction"
	case nil:
		return "check the file path and permissions"
	default:
		return "fix the reported value and rerun"
	}
}

func outputName(base string, codec formats.Codec) string {
	name := textutil.SanitizeFileName(base)
	if name == "" {
		name = string(codec.Format)
	}
	return name + "." + codec.Ext()
}

// Summary returns a short count line for a report.
func Summary(r *Report) string {
	failed := 0
	for _, j := range r.all() {
		if j.Failed() {
			failed++
		}
	}
	return fmt.Sprintf("%d input(s), %d output(s), %d failed", len(r.Jobs), len(r.Outputs()), failed)
}

package convert

import (
	"errors"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/formats"
)

// State tracks a job through the pipeline. A job is done once every
// output it rendered is written, or once rendering finished on a dry run.
type State string

const (
	StateUnparsed   State = "unparsed"
	StateParsed     State = "parsed"
	StateSerialized State = "serialized"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Input is one file to convert. Data is read from Path when nil.
type Input struct {
	Path string
	Data []byte
}

// Output is one rendered file.
type Output struct {
	Format formats.Format
	// Name is the file name the output is written under.
	Name string
	// ID is set when the output holds a single correction.
	ID      string
	Content string
	// Path is filled in once the output is written.
	Path string
	Err  error
}

// Job records the progress of one input, or of the merged model when inputs
// are merged.
type Job struct {
	Source   string
	Format   formats.Format
	State    State
	Model    cdl.Model
	Outputs  []*Output
	Findings []cdl.Finding
	// Clamped counts the negative values the parser raised to zero.
	Clamped int
	Err     error
}

// Failed reports whether the job or any of its outputs failed.
func (j *Job) Failed() bool {
	if j.State == StateFailed || j.Err != nil {
		return true
	}
	for _, out := range j.Outputs {
		if out.Err != nil {
			return true
		}
	}
	return false
}

func (j *Job) fail(err error) {
	j.State = StateFailed
	j.Err = err
}

// Report collects every job of a batch.
type Report struct {
	Jobs []*Job
	// Merged holds the combined model when inputs were merged.
	Merged *Job
}

func (r *Report) all() []*Job {
	if r.Merged == nil {
		return r.Jobs
	}
	return append(append([]*Job(nil), r.Jobs...), r.Merged)
}

// Failed reports whether any job or output failed.
func (r *Report) Failed() bool {
	for _, j := range r.all() {
		if j.Failed() {
			return true
		}
	}
	return false
}

// Pending reports whether any job has rendered outputs waiting to be written.
func (r *Report) Pending() bool {
	for _, j := range r.all() {
		if j.State == StateSerialized {
			return true
		}
	}
	return false
}

// Outputs returns every output in job order, failed ones included.
func (r *Report) Outputs() []*Output {
	var out []*Output
	for _, j := range r.all() {
		out = append(out, j.Outputs...)
	}
	return out
}

// Err joins every job and output error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, j := range r.all() {
		if j.Err != nil {
			errs = append(errs, j.Err)
		}
		for _, out := range j.Outputs {
			if out.Err != nil {
				errs = append(errs, out.Err)
			}
		}
	}
	return errors.Join(errs...)
}

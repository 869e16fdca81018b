package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/services"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("foo.nk", statusError, "no nodes", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "foo.nk:", "[ERROR] no nodes")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("foo.nk", statusOK, "done", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderStatusLineTags(t *testing.T) {
	for kind, tag := range map[statusKind]string{
		statusClamped: "[CLAMPED]",
		statusSkipped: "[SKIP]",
		statusWarn:    "[WARN]",
		statusInfo:    "[INFO]",
	} {
		if got := renderStatusLine("shot.cc", kind, "", false); !strings.HasSuffix(got, tag) {
			t.Fatalf("kind %d rendered %q, want suffix %q", kind, got, tag)
		}
	}
}

func TestJobStatusPrefersClamped(t *testing.T) {
	tests := []struct {
		clamped, findings int
		want              statusKind
	}{
		{0, 0, statusOK},
		{0, 2, statusWarn},
		{1, 0, statusClamped},
		{1, 2, statusClamped},
	}
	for _, tt := range tests {
		if got := jobStatus(tt.clamped, tt.findings); got != tt.want {
			t.Fatalf("jobStatus(%d, %d) = %d, want %d", tt.clamped, tt.findings, got, tt.want)
		}
	}
}

func TestErrorSummaryPrefersDomainError(t *testing.T) {
	domain := &cdl.Error{Kind: cdl.ErrNoNodesFound, Detail: "no nodes"}
	wrapped := services.Wrap(services.ErrValidation, "parse", "parse nk", "", domain)
	if got := errorSummary(wrapped); got != domain.Error() {
		t.Fatalf("errorSummary = %q, want %q", got, domain.Error())
	}
	plain := services.Wrap(services.ErrIO, "write", "write output", "", errors.New("disk full"))
	if got := errorSummary(plain); got != "disk full" {
		t.Fatalf("errorSummary = %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(&strings.Builder{}) {
		t.Fatal("buffers are never terminals")
	}
}

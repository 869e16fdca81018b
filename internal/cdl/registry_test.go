package cdl_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"pgregory.net/rapid"

	"cdlconvert/internal/cdl"
)

func TestRegistryRejectsDuplicateUntilReset(t *testing.T) {
	reg := cdl.NewRegistry()
	if _, err := cdl.NewColorCorrection(reg, "uniqueId"); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := cdl.NewColorCorrection(reg, "uniqueId")
	if !errors.Is(err, cdl.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}

	reg.Reset()
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry after reset, got %d", reg.Len())
	}
	reg.Reset()
	if _, err := cdl.NewColorCorrection(reg, "uniqueId"); err != nil {
		t.Fatalf("registration after reset: %v", err)
	}
}

func TestRegistryIgnoresEmptyIDs(t *testing.T) {
	reg := cdl.NewRegistry()
	for i := 0; i < 3; i++ {
		if _, err := cdl.NewColorCorrection(reg, ""); err != nil {
			t.Fatalf("empty id %d: %v", i, err)
		}
	}
	if reg.Len() != 0 {
		t.Fatalf("empty ids should not be tracked, got %d", reg.Len())
	}
}

func TestSetIDReleasesOldID(t *testing.T) {
	reg := cdl.NewRegistry()
	if _, err := cdl.NewColorCorrection(reg, "uniqueId"); err != nil {
		t.Fatal(err)
	}
	cc, err := cdl.NewColorCorrection(reg, "betterId")
	if err != nil {
		t.Fatal(err)
	}

	if err := cc.SetID("uniqueId"); !errors.Is(err, cdl.ErrDuplicateID) {
		t.Fatalf("expected duplicate on rename, got %v", err)
	}
	if cc.ID() != "betterId" {
		t.Fatalf("failed rename changed id to %q", cc.ID())
	}

	if err := cc.SetID("betterishId"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, ok := reg.Lookup("betterId"); ok {
		t.Fatal("old id still registered after rename")
	}
	if got, ok := reg.Lookup("betterishId"); !ok || got != cc {
		t.Fatal("new id not registered to the renamed correction")
	}
}

func TestTrackerRollbackReleasesOnlyTrackedIDs(t *testing.T) {
	reg := cdl.NewRegistry()
	if _, err := cdl.NewColorCorrection(reg, "before"); err != nil {
		t.Fatal(err)
	}
	tr := reg.Track()
	for _, id := range []string{"a", "b"} {
		if _, err := cdl.NewColorCorrection(reg, id); err != nil {
			t.Fatal(err)
		}
	}
	released := tr.Rollback()
	if len(released) != 2 {
		t.Fatalf("expected 2 released ids, got %v", released)
	}
	if ids := reg.IDs(); len(ids) != 1 || ids[0] != "before" {
		t.Fatalf("unexpected ids after rollback: %v", ids)
	}

	tr = reg.Track()
	if _, err := cdl.NewColorCorrection(reg, "kept"); err != nil {
		t.Fatal(err)
	}
	tr.Close()
	if _, err := cdl.NewColorCorrection(reg, "after"); err != nil {
		t.Fatal(err)
	}
	if got := tr.IDs(); len(got) != 1 || got[0] != "kept" {
		t.Fatalf("closed tracker recorded %v", got)
	}
}

func TestRegistryConcurrentRegistration(t *testing.T) {
	reg := cdl.NewRegistry()
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := cdl.NewColorCorrection(reg, fmt.Sprintf("id%d", i%16))
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	dupes := 0
	for err := range errs {
		if !errors.Is(err, cdl.ErrDuplicateID) {
			t.Fatalf("unexpected error: %v", err)
		}
		dupes++
	}
	if reg.Len() != 16 || dupes != 48 {
		t.Fatalf("got %d ids and %d duplicates", reg.Len(), dupes)
	}
}

func TestRegistryUniquenessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := cdl.NewRegistry()
		ids := rapid.SliceOf(rapid.StringMatching(`[a-c]{1,2}`)).Draw(t, "ids")
		seen := map[string]bool{}
		for _, id := range ids {
			_, err := cdl.NewColorCorrection(reg, id)
			if seen[id] {
				if !errors.Is(err, cdl.ErrDuplicateID) {
					t.Fatalf("expected duplicate for %q, got %v", id, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("register %q: %v", id, err)
			}
			seen[id] = true
		}
		if reg.Len() != len(seen) {
			t.Fatalf("registry holds %d ids, want %d", reg.Len(), len(seen))
		}
	})
}

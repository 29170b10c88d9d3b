package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fairyhunter13/product-description-generator/internal/model"
)

func TestCreateAndGet(t *testing.T) {
	s := New(10)
	rec := s.Create("r1", model.TriggerSync, model.RunStateIdle)
	if rec.ID != "r1" || rec.State != model.RunStateIdle || rec.Trigger != model.TriggerSync {
		t.Fatalf("unexpected record: %+v", rec)
	}
	got, ok := s.Get("r1")
	if !ok || got.ID != "r1" {
		t.Fatalf("expected stored record, got %+v ok=%v", got, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("expected missing record")
	}
}

func TestCreateKeepsExisting(t *testing.T) {
	s := New(10)
	s.Create("r1", model.TriggerQueue, model.RunStateQueued)
	s.SetState("r1", model.RunStateFetching)
	rec := s.Create("r1", model.TriggerSync, model.RunStateIdle)
	if rec.State != model.RunStateFetching || rec.Trigger != model.TriggerQueue {
		t.Fatalf("existing record overwritten: %+v", rec)
	}
}

func TestSucceedFreezesRecord(t *testing.T) {
	s := New(10)
	s.Create("r1", model.TriggerSync, model.RunStateIdle)
	s.SetState("r1", model.RunStateGenerating)
	res := &model.RunResult{Message: "Successfully updated 0 products with new descriptions"}
	s.Succeed("r1", res)

	s.SetState("r1", model.RunStateFetching)
	s.Fail("r1", errors.New("late"), nil)

	got, _ := s.Get("r1")
	if got.State != model.RunStateSucceeded || got.Result != res || got.Error != "" {
		t.Fatalf("terminal record mutated: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatalf("expected finished_at")
	}
}

func TestFailRecordsWritten(t *testing.T) {
	s := New(10)
	s.Create("r1", model.TriggerSync, model.RunStateGenerating)
	s.Fail("r1", errors.New("failed to update product Chair: Title can't be blank"), []string{"p1"})
	got, _ := s.Get("r1")
	if got.State != model.RunStateFailed {
		t.Fatalf("expected failed, got %s", got.State)
	}
	if got.Error != "failed to update product Chair: Title can't be blank" {
		t.Fatalf("unexpected error: %q", got.Error)
	}
	if len(got.Written) != 1 || got.Written[0] != "p1" {
		t.Fatalf("unexpected written: %v", got.Written)
	}
}

func TestUnknownIDsIgnored(t *testing.T) {
	s := New(10)
	s.SetState("nope", model.RunStateFetching)
	s.Succeed("nope", &model.RunResult{})
	s.Fail("nope", errors.New("x"), nil)
	if len(s.List(0)) != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestListNewestFirstAndEviction(t *testing.T) {
	s := New(3)
	for i := 1; i <= 5; i++ {
		s.Create(fmt.Sprintf("r%d", i), model.TriggerQueue, model.RunStateQueued)
	}
	all := s.List(0)
	if len(all) != 3 {
		t.Fatalf("expected 3 records after eviction, got %d", len(all))
	}
	want := []string{"r5", "r4", "r3"}
	for i, rec := range all {
		if rec.ID != want[i] {
			t.Fatalf("position %d: want %s, got %s", i, want[i], rec.ID)
		}
	}
	if _, ok := s.Get("r1"); ok {
		t.Fatalf("expected r1 evicted")
	}
	if got := s.List(2); len(got) != 2 || got[0].ID != "r5" {
		t.Fatalf("unexpected limited list: %+v", got)
	}
}

func TestRemove(t *testing.T) {
	s := New(10)
	s.Create("r1", model.TriggerQueue, model.RunStateQueued)
	s.Remove("r1")
	if _, ok := s.Get("r1"); ok {
		t.Fatalf("expected r1 removed")
	}
	s.Remove("missing")
}

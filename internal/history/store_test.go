package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ppiankov/cmdwatch/internal/registry"
	"github.com/ppiankov/cmdwatch/internal/verify"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func verdictFor(line string) *verify.Verdict {
	reg := registry.Empty()
	reg.Commands["ls"] = registry.Entry{
		Name: "ls", Permission: registry.AlwaysAllow,
		Risk: registry.Risk{Level: registry.RiskLow},
	}
	return verify.Evaluate(line, reg)
}

func TestRecordAndRecent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, "cli", verdictFor("ls -la"), "allow"); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, "hook", verdictFor("frobnicate"), "deny"); err != nil {
		t.Fatal(err)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	// Newest first.
	if records[0].Command != "frobnicate" {
		t.Errorf("first record = %q, want newest", records[0].Command)
	}
	if records[0].Source != "hook" || records[0].Decision != "deny" {
		t.Errorf("record = %+v", records[0])
	}
	if len(records[0].Unknown) != 1 || records[0].Unknown[0] != "frobnicate" {
		t.Errorf("unknown round trip failed: %v", records[0].Unknown)
	}
}

func TestRecentLimit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, "cli", verdictFor("ls"), "allow"); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("records = %d, want 3", len(records))
	}
}

func TestSearch(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	store.Record(ctx, "cli", verdictFor("git push origin"), "ask")
	store.Record(ctx, "cli", verdictFor("ls -la"), "allow")

	records, err := store.Search(ctx, "push", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Command != "git push origin" {
		t.Errorf("search results = %+v", records)
	}
}

func TestStats(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	store.Record(ctx, "cli", verdictFor("ls"), "allow")
	store.Record(ctx, "cli", verdictFor("ls"), "allow")
	store.Record(ctx, "hook", verdictFor("rm x"), "ask")
	store.Record(ctx, "mcp", verdictFor("frobnicate"), "deny")

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 4 || stats.AllowCount != 2 || stats.AskCount != 1 || stats.DenyCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestOpenTwiceReusesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	store.Record(context.Background(), "cli", verdictFor("ls"), "allow")
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	records, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("records lost across reopen: %d", len(records))
	}
}

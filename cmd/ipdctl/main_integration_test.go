//go:build sqlite

package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ipdarena/internal/stats"
)

func TestRunCommandSQLitePersistsAcrossInvocations(t *testing.T) {
	out := captureStdout(t)
	workdir := t.TempDir()
	dbPath := filepath.Join(workdir, "ipdarena.db")
	artifacts := filepath.Join(workdir, "runs")
	common := []string{"-store", "sqlite", "-db-path", dbPath, "-artifacts-dir", artifacts, "-log-level", "error"}

	args := append([]string{"run", "-run-id", "sqlite-run", "-strategies", "defector,tit_for_tat", "-turns", "20", "-repetitions", "2"}, common...)
	if err := run(context.Background(), args); err != nil {
		t.Fatalf("run command: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite db at %s: %v", dbPath, err)
	}

	// Remove the CSV so scores can only come from the database.
	if err := os.Remove(filepath.Join(artifacts, "sqlite-run", "scores.csv")); err != nil {
		t.Fatalf("remove scores csv: %v", err)
	}

	out.Reset()
	if err := run(context.Background(), append([]string{"scores", "-run-id", "sqlite-run", "-json"}, common...)); err != nil {
		t.Fatalf("scores command: %v", err)
	}
	var players []struct {
		Name   string    `json:"name"`
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal(out.Bytes(), &players); err != nil {
		t.Fatalf("decode scores: %v", err)
	}
	if len(players) != 2 || len(players[0].Scores) != 2 {
		t.Fatalf("unexpected scores: %+v", players)
	}

	entries, err := stats.ListRunIndex(artifacts)
	if err != nil {
		t.Fatalf("list run index: %v", err)
	}
	if len(entries) != 1 || entries[0].RunID != "sqlite-run" {
		t.Fatalf("unexpected run index: %+v", entries)
	}
}

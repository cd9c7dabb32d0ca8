package main

import (
	"testing"
	"time"
)

func TestParseDayFlag(t *testing.T) {
	def := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	got, err := parseDayFlag("date", "", def)
	if err != nil || !got.Equal(def) {
		t.Errorf("empty flag: got %v, %v", got, err)
	}

	got, err = parseDayFlag("date", "2026-09-30", def)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := parseDayFlag("date", "30/09/2026", def); err == nil {
		t.Error("expected an error for a non ISO date")
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"snapshot", "export", "archive", "purge", "reset-password"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("env") == nil {
		t.Error("missing --env flag")
	}
}

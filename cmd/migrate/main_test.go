package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type recorder struct {
	upURL    string
	downURL  string
	steps    int
	upErr    error
	versionN uint
}

func (r *recorder) migrator() migrator {
	return migrator{
		up: func(url string) error {
			r.upURL = url
			return r.upErr
		},
		down: func(url string, steps int) error {
			r.downURL, r.steps = url, steps
			return nil
		},
		version: func(string) (uint, bool, error) {
			return r.versionN, false, nil
		},
	}
}

func TestRun_Up(t *testing.T) {
	rec := &recorder{}
	var out bytes.Buffer
	if err := run([]string{"up"}, "postgres://env/db", rec.migrator(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.upURL != "postgres://env/db" {
		t.Errorf("up called with %q", rec.upURL)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_FlagOverridesEnv(t *testing.T) {
	rec := &recorder{}
	err := run([]string{"down", "-steps=2", "-database-url=postgres://flag/db"}, "postgres://env/db", rec.migrator(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.downURL != "postgres://flag/db" || rec.steps != 2 {
		t.Errorf("down called with %q, %d", rec.downURL, rec.steps)
	}
}

func TestRun_Version(t *testing.T) {
	rec := &recorder{versionN: 1}
	var out bytes.Buffer
	if err := run([]string{"version"}, "postgres://env/db", rec.migrator(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "version 1 (dirty=false)" {
		t.Errorf("output = %q", got)
	}
}

func TestRun_Errors(t *testing.T) {
	rec := &recorder{upErr: errors.New("connection refused")}
	tests := []struct {
		name string
		args []string
		env  string
	}{
		{"no command", nil, "postgres://env/db"},
		{"no url", []string{"up"}, ""},
		{"unknown command", []string{"sideways"}, "postgres://env/db"},
		{"bad flag", []string{"up", "-nope"}, "postgres://env/db"},
		{"migration failure", []string{"up"}, "postgres://env/db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args, tt.env, rec.migrator(), &bytes.Buffer{}); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

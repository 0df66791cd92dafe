package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
)

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"video", "env-file"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("missing flag --%s", name)
		}
	}
	if got := cmd.Flags().Lookup("env-file").DefValue; got != ".env" {
		t.Fatalf("unexpected env-file default %q", got)
	}
}

func TestRootCmd_RejectsPositionalArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"bogus"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for unexpected arguments")
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "giggles ") || !strings.Contains(got, "commit: ") || !strings.Contains(got, "built: ") {
		t.Fatalf("unexpected version output: %q", got)
	}
}

func TestResolveVersionInfo(t *testing.T) {
	tests := []struct {
		name          string
		v, c, d       string
		moduleVersion string
		settings      map[string]string
		want          [3]string
	}{
		{
			name:          "ldflags win",
			v:             "v1.2.3",
			c:             "abc",
			d:             "2026-01-01",
			moduleVersion: "v9.9.9",
			settings:      map[string]string{"vcs.revision": "zzz", "vcs.time": "later"},
			want:          [3]string{"v1.2.3", "abc", "2026-01-01"},
		},
		{
			name:          "build info fills defaults",
			v:             "dev",
			c:             "none",
			d:             "unknown",
			moduleVersion: "v0.4.0",
			settings:      map[string]string{"vcs.revision": "0123456789abcdef", "vcs.time": "2026-02-03T04:05:06Z"},
			want:          [3]string{"v0.4.0", "0123456789ab", "2026-02-03T04:05:06Z"},
		},
		{
			name:          "devel module keeps dev",
			v:             "dev",
			c:             "none",
			d:             "unknown",
			moduleVersion: "(devel)",
			settings:      map[string]string{},
			want:          [3]string{"dev", "none", "unknown"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, c, d := resolveVersionInfo(tc.v, tc.c, tc.d, tc.moduleVersion, tc.settings)
			if got := [3]string{v, c, d}; got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestBuildSettingsMap(t *testing.T) {
	got := buildSettingsMap([]debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}, {Key: "vcs.time", Value: "now"}})
	if got["vcs.revision"] != "abc" || got["vcs.time"] != "now" {
		t.Fatalf("unexpected map: %v", got)
	}
}

func TestOpenLogger_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "giggles.log")
	logger, closeLog, err := openLogger(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("open logger: %v", err)
	}
	logger.Info("feed: loaded", "count", 3)
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "feed: loaded") || !strings.Contains(string(data), "count=3") {
		t.Fatalf("unexpected log output: %q", data)
	}
}

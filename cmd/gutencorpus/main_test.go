package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"gutencorpus/internal/config"
	"gutencorpus/internal/metadata"
	"gutencorpus/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "gutencorpus.toml")
	if err := cfg.Write(configPath); err != nil {
		t.Fatalf("write config: %v", err)
	}

	seed := metadata.NewIndex(cfg.Metadata.CachePath, metadata.ProviderFunc(func(context.Context) (map[int]metadata.Record, error) {
		return map[int]metadata.Record{
			10: {Author: "Melville, Herman", Title: "Moby Dick", Language: []string{"en"}},
			11: {Author: "Carroll, Lewis", Title: "Alice's Adventures in Wonderland"},
		}, nil
	}), nil)
	if _, err := seed.Get(context.Background()); err != nil {
		t.Fatalf("seed metadata: %v", err)
	}
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.yaml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote default configuration to "+target)
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	requireContains(t, string(data), "batch_size: 100")

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected init to refuse overwriting an existing file, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestLogLevelFlagIsValidated(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"stats", "--log-level", "verbos"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected log level error, got %v", err)
	}

	testsupport.WriteEtext(t, env.cfg.Download.DataPath, "a.txt", 10, "Call me Ishmael.")
	_, stderr, err := runCLI(t, []string{"ingest", "--log-level", "DEBUG"}, env.configPath)
	if err != nil {
		t.Fatalf("ingest --log-level DEBUG: %v", err)
	}
	requireContains(t, stderr, "staged record")
}

func TestLogFileReceivesCommandLogs(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Logging.File = filepath.Join(testsupport.BaseDir(env.cfg), "logs", "gutencorpus.log")
	if err := env.cfg.Write(env.configPath); err != nil {
		t.Fatalf("write config: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(env.cfg.Download.DataPath, "d.txt"), []byte("not an etext\n"))

	_, stderr, err := runCLI(t, []string{"ingest"}, env.configPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	requireContains(t, stderr, "skipping file")
	data, err := os.ReadFile(env.cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	requireContains(t, string(data), "skipping file")
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.API.Token = "hunter2"
	if err := env.cfg.Write(env.configPath); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "hunter2") {
		t.Fatalf("token leaked: %s", out)
	}
	requireContains(t, out, "[database]")
	requireContains(t, out, env.cfg.Download.DataPath)
}

func TestIngestListShowStats(t *testing.T) {
	env := setupCLITestEnv(t)
	data := env.cfg.Download.DataPath
	testsupport.WriteEtext(t, data, "a.txt", 10, "Call me Ishmael.")
	testsupport.WriteEtext(t, data, "b.txt", 11, "Alice was beginning to get very tired.")
	testsupport.WriteEtext(t, data, "c.txt", 10, "A second copy.")
	testsupport.WriteFile(t, filepath.Join(data, "d.txt"), []byte("not an etext\n"))

	out, stderr, err := runCLI(t, []string{"ingest"}, env.configPath)
	if err != nil {
		t.Fatalf("ingest: %v (stderr %s)", err, stderr)
	}
	requireContains(t, out, "Added:      2")
	requireContains(t, out, "Duplicates: 1")
	requireContains(t, out, "Failed:     1")
	requireContains(t, out, "d.txt [identify]")
	requireContains(t, stderr, "skipping file")

	out, _, err = runCLI(t, []string{"ingest", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	var summary ingestSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary %q: %v", out, err)
	}
	if summary.Added != 0 || summary.Duplicates != 3 || len(summary.Failed) != 1 {
		t.Fatalf("unexpected second run: %+v", summary)
	}

	out, _, err = runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %q", out)
	}
	if lines[0] != "ID\tAuthor\tTitle\tChars" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "10\tMelville, Herman\tMoby Dick\t") {
		t.Fatalf("unexpected first row %q", lines[1])
	}

	out, _, err = runCLI(t, []string{"show", "10"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Title:  Moby Dick")
	requireContains(t, out, "Call me Ishmael.")

	if _, _, err := runCLI(t, []string{"show", "99"}, env.configPath); err == nil {
		t.Fatal("expected show of a missing id to fail")
	}

	out, _, err = runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "Total\t2")
	requireContains(t, out, "Missing author\t0")
}

func TestIngestRefusesConcurrentRun(t *testing.T) {
	env := setupCLITestEnv(t)

	lock := flock.New(lockPath(env.cfg))
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock()

	_, _, err = runCLI(t, []string{"ingest"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock conflict, got %v", err)
	}
}

func TestMetadataWarmAndLookup(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"metadata", "warm"}, env.configPath)
	if err != nil {
		t.Fatalf("metadata warm: %v", err)
	}
	requireContains(t, out, "Entries:        2")

	out, _, err = runCLI(t, []string{"metadata", "lookup", "10", "12"}, env.configPath)
	if err != nil {
		t.Fatalf("metadata lookup: %v", err)
	}
	requireContains(t, out, "10\tMelville, Herman\tMoby Dick\ten")
	requireContains(t, out, "12\t-\t-\t-")
}

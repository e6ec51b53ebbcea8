package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"sortbox/internal/config"
	"sortbox/internal/daemon"
	"sortbox/internal/history"
	"sortbox/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("NO_COLOR", "1")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nwatch_dir = %q\ndestination_dir = %q\nlog_dir = %q\nstate_dir = %q\n\n[logging]\nformat = \"json\"\n",
		cfg.Paths.WatchDir,
		cfg.Paths.DestinationDir,
		cfg.Paths.LogDir,
		cfg.Paths.StateDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
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

func TestCategoriesJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"categories", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	var entries []struct {
		Extension string `json:"extension"`
		Category  string `json:"category"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	found := false
	for _, entry := range entries {
		if entry.Extension == ".pdf" && entry.Category == "pdf" {
			found = true
		}
	}
	if !found {
		t.Fatalf(".pdf missing from %s", out)
	}

	out, _, err = runCLI(t, []string{"categories"}, env.configPath)
	if err != nil {
		t.Fatalf("categories table: %v", err)
	}
	requireContains(t, out, "audio")
	requireContains(t, out, "uncategorized")
}

func TestClassifyFileAndFolder(t *testing.T) {
	env := setupCLITestEnv(t)
	watch := env.cfg.Paths.WatchDir
	testsupport.WriteFile(t, filepath.Join(watch, "report.pdf"), 4)
	testsupport.WriteTree(t, filepath.Join(watch, "mix"), "a.mp3", "b.mp3", "c.txt")

	out, _, err := runCLI(t, []string{"classify", filepath.Join(watch, "report.pdf"), filepath.Join(watch, "mix")}, env.configPath)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	requireContains(t, out, "report.pdf: pdf (file)")
	requireContains(t, out, "mix: audio (folder)")
	requireContains(t, out, "3 files: audio=2, text_files=1")

	out, _, err = runCLI(t, []string{"classify", filepath.Join(watch, "missing")}, env.configPath)
	if err != nil {
		t.Fatalf("classify missing: %v", err)
	}
	requireContains(t, out, "error:")
}

func TestOrganizeRequiresYes(t *testing.T) {
	env := setupCLITestEnv(t)
	source := filepath.Join(env.cfg.Paths.WatchDir, "report.pdf")
	testsupport.WriteFile(t, source, 4)

	out, _, err := runCLI(t, []string{"organize"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "report.pdf")
	requireContains(t, out, "1 of 1 entries would be sorted")
	requireContains(t, out, "Rerun with --yes")
	testsupport.MustExist(t, source)

	out, _, err = runCLI(t, []string{"organize", "--dry-run", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("organize dry-run: %v", err)
	}
	if strings.Contains(out, "Rerun with --yes") {
		t.Fatalf("dry-run should not prompt: %s", out)
	}
	testsupport.MustExist(t, source)
}

func TestOrganizeApplyAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.WatchDir, "report.pdf"), 4)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.WatchDir, "song.mp3"), 4)

	out, _, err := runCLI(t, []string{"organize", "--yes", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("organize --yes: %v", err)
	}
	var result organizeResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if result.Moved != 2 || result.Failed != 0 || result.DispatchID == "" {
		t.Fatalf("unexpected result %+v", result)
	}
	testsupport.MustExist(t, filepath.Join(env.cfg.Paths.DestinationDir, "pdf", "report.pdf"))
	testsupport.MustExist(t, filepath.Join(env.cfg.Paths.DestinationDir, "audio", "song.mp3"))

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []history.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(entries) != 2 || entries[0].DispatchID != result.DispatchID {
		t.Fatalf("unexpected history %+v", entries)
	}

	out, _, err = runCLI(t, []string{"history", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, "moved")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var summary statusSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if summary.Watching || !summary.WatchDirOK || len(summary.History) != 2 {
		t.Fatalf("unexpected status %+v", summary)
	}
}

func TestOrganizeRefusesWhileWatching(t *testing.T) {
	env := setupCLITestEnv(t)
	lock, err := daemon.TryLockRoot(env.cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Unlock()

	if _, _, err := runCLI(t, []string{"organize", "--yes"}, env.configPath); err == nil {
		t.Fatal("expected organize to fail while the root is locked")
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "[OK] running")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.WatchDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	testsupport.MustExist(t, target)

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsEffectiveTOML(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode shown config: %v\n%s", err, out)
	}
	if decoded.Paths.WatchDir != env.cfg.Paths.WatchDir {
		t.Fatalf("watch_dir = %q, want %q", decoded.Paths.WatchDir, env.cfg.Paths.WatchDir)
	}
	if decoded.Logging.Format != "json" {
		t.Fatalf("logging.format = %q, want json", decoded.Logging.Format)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[paths]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"categories"}, env.configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestLogsShowsTail(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := filepath.Join(env.cfg.Paths.LogDir, "sortbox.log")
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"msg":"entry sorted","dispatch_id":"aaa"}` + "\n" + `{"msg":"entry sorted","dispatch_id":"bbb"}` + "\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "bbb")
	if strings.Contains(out, "aaa") {
		t.Fatalf("expected only the last line, got %q", out)
	}

	out, _, err = runCLI(t, []string{"logs", "--dispatch", "aaa"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --dispatch: %v", err)
	}
	requireContains(t, out, "aaa")
	if strings.Contains(out, "bbb") {
		t.Fatalf("filter leaked other dispatches: %q", out)
	}
}

func TestHistoryPrune(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	old := history.Entry{Source: "/w/old.pdf", Status: history.StatusMoved, CreatedAt: time.Now().AddDate(0, 0, -200)}
	if err := store.Record(context.Background(), old); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(context.Background(), history.Entry{Source: "/w/new.pdf", Status: history.StatusMoved}); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"history", "prune", "--days", "30"}, env.configPath)
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 1 entries")

	if _, _, err := runCLI(t, []string{"history", "prune", "--days", "0"}, env.configPath); err == nil {
		t.Fatal("expected error for non-positive --days")
	}
}

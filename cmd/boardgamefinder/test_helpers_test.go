package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/wouterstultiens/boardgame-finder/internal/catalog"
	"github.com/wouterstultiens/boardgame-finder/internal/config"
	"github.com/wouterstultiens/boardgame-finder/internal/services/llm"
	"github.com/wouterstultiens/boardgame-finder/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv writes the fixture catalog and a config file pointing at
// it. Options adjust the config before it is written.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	opts = append([]testsupport.ConfigOption{testsupport.WithCatalogFile("boardgames.csv")}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	var csv bytes.Buffer
	if err := catalog.WriteCSV(&csv, testsupport.CatalogEntries()); err != nil {
		t.Fatalf("write catalog csv: %v", err)
	}
	if err := os.WriteFile(cfg.Catalog.Path, csv.Bytes(), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// useOracle swaps the LLM client factory for the duration of the test.
func useOracle(t *testing.T, oracle llm.Completer) {
	t.Helper()
	previous := newOracle
	newOracle = func(*config.Config) (llm.Completer, error) { return oracle, nil }
	t.Cleanup(func() { newOracle = previous })
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
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"webofworlds/internal/config"
	"webofworlds/internal/repository/sqlite"
)

const testCSV = `id,proper,x,y,z
0,Sol,0,0,0
1,Alpha,1,0,0
2,Beta,2,0,0
3,Gamma,0,5,0
4,Delta,10,0,0
`

// writeTestConfig writes a config with one linear and one directed empire
// over a five-star CSV catalog, all inside a temp dir
func writeTestConfig(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "stars.csv")
	if err := os.WriteFile(csvPath, []byte(testCSV), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "test.db")
	cfg.Catalog.Path = csvPath
	cfg.Logging.Level = "error"
	cfg.Export.Dir = filepath.Join(dir, "exports")
	cfg.Empires = []config.EmpireConfig{
		{
			Name:       "Terran",
			Algorithm:  config.AlgorithmLinear,
			Start:      "Sol",
			StartDate:  2100,
			Iterations: 10,
			Speed:      config.SpeedConfig{Kind: config.SpeedConstant, Value: 1},
			Wait:       config.WaitConfig{Kind: config.WaitNone},
		},
		{
			Name:      "Kree",
			Algorithm: config.AlgorithmDirected,
			Start:     "Sol",
			StartDate: 2200,
			Speed:     config.SpeedConfig{Kind: config.SpeedConstant, Value: 1},
			Wait:      config.WaitConfig{Kind: config.WaitNone},
			Directed:  config.DirectedConfig{End: "Delta", Limit: 1},
		},
	}

	path := filepath.Join(dir, "webofworlds.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	return path, cfg
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out, io.Discard)
	return out.String(), err
}

func TestGrowAndExport(t *testing.T) {
	cfgPath, cfg := writeTestConfig(t)

	out, err := runCLI(t, "-config", cfgPath, "grow")
	if err != nil {
		t.Fatalf("grow error: %v", err)
	}
	for _, want := range []string{"Terran", "Kree", "Delta"} {
		if !strings.Contains(out, want) {
			t.Errorf("grow output missing %q:\n%s", want, out)
		}
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	runs, err := repo.ListRuns(context.Background())
	repo.Close()
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}

	entries, err := os.ReadDir(cfg.Export.Dir)
	if err != nil || len(entries) != 2 {
		t.Errorf("export dir has %d entries (%v), want 2", len(entries), err)
	}

	var terranID string
	for _, r := range runs {
		if r.Empire == "Terran" {
			terranID = r.ID
		}
	}

	t.Run("runs lists stored runs", func(t *testing.T) {
		out, err := runCLI(t, "-config", cfgPath, "runs")
		if err != nil {
			t.Fatalf("runs error: %v", err)
		}
		if !strings.Contains(out, terranID) {
			t.Errorf("runs output missing %s:\n%s", terranID, out)
		}
	})

	t.Run("export writes yaml", func(t *testing.T) {
		out, err := runCLI(t, "-config", cfgPath, "export", "-format", "yaml", terranID)
		if err != nil {
			t.Fatalf("export error: %v", err)
		}
		if !strings.Contains(out, "empire: Terran") {
			t.Errorf("export output:\n%s", out)
		}
	})

	t.Run("export to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.json")
		if _, err := runCLI(t, "-config", cfgPath, "export", "-o", path, terranID); err != nil {
			t.Fatalf("export error: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil || !bytes.Contains(data, []byte(`"empire": "Terran"`)) {
			t.Errorf("export file = %s, %v", data, err)
		}
	})

	t.Run("stars overlays a run", func(t *testing.T) {
		out, err := runCLI(t, "-config", cfgPath, "stars", "-run", terranID)
		if err != nil {
			t.Fatalf("stars error: %v", err)
		}
		if got := strings.Count(out, "Terran"); got != 5 {
			t.Errorf("stars output names Terran %d times, want 5:\n%s", got, out)
		}
	})

	t.Run("grow a single empire", func(t *testing.T) {
		out, err := runCLI(t, "-config", cfgPath, "grow", "-empire", "Kree")
		if err != nil {
			t.Fatalf("grow error: %v", err)
		}
		if strings.Contains(out, "Terran") {
			t.Errorf("grow -empire Kree output:\n%s", out)
		}
		if _, err := runCLI(t, "-config", cfgPath, "grow", "-empire", "Skrull"); err == nil {
			t.Error("grow should fail for an unknown empire")
		}
	})
}

func TestImport(t *testing.T) {
	cfgPath, cfg := writeTestConfig(t)

	out, err := runCLI(t, "-config", cfgPath, "import", cfg.Catalog.Path)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if !strings.Contains(out, "imported 5 stars") {
		t.Errorf("import output = %q", out)
	}

	if _, err := runCLI(t, "-config", cfgPath, "import"); !errors.Is(err, errUsage) {
		t.Errorf("import without path = %v, want errUsage", err)
	}
	if _, err := runCLI(t, "-config", cfgPath, "import", "/nonexistent.csv"); err == nil {
		t.Error("import of a missing file should fail")
	}
}

func TestUsageErrors(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	if _, err := runCLI(t, "-config", cfgPath); !errors.Is(err, errUsage) {
		t.Errorf("no command = %v, want errUsage", err)
	}
	if _, err := runCLI(t, "-config", cfgPath, "teleport"); !errors.Is(err, errUsage) {
		t.Errorf("unknown command = %v, want errUsage", err)
	}
	if _, err := runCLI(t, "-config", filepath.Join(t.TempDir(), "missing.yaml"), "runs"); err == nil {
		t.Error("missing config file should fail")
	}
}

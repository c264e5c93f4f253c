package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestWeeksCommand(t *testing.T) {
	t.Setenv("PRODPLAN_DATA_DIR", t.TempDir())

	out := execute(t, "weeks", "--year", "2025", "--month", "5")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "May 2025" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 6 || lines[1] != "0\t28 Apr - 4 May" || lines[5] != "4\t26 May - 1 Jun" {
		t.Errorf("weeks = %q", lines)
	}
}

func TestExportCommand_CSVToStdout(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PRODPLAN_DATA_DIR", t.TempDir())

	out := execute(t, "export", "--year", "2025", "--month", "5", "--format", "csv", "--out", "-")
	if !strings.HasPrefix(out, "Raw Material Received Per Week\n") {
		t.Errorf("csv = %q", out)
	}
	if !strings.Contains(out, "28 Apr - 4 May") {
		t.Error("csv should list the first week")
	}
}

func TestExportCommand_XLSXFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PRODPLAN_DATA_DIR", t.TempDir())

	path := filepath.Join(t.TempDir(), "plan.xlsx")
	execute(t, "export", "--year", "2024", "--month", "1", "--format", "xlsx", "--out", path)
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Errorf("xlsx not written: %v", err)
	}
}

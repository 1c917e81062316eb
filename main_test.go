package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// writeTestConfig points the store at a throwaway path and returns the
// config file path to pass via -c.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	storePath := filepath.Join(dir, "breakdowns.csv")
	content := fmt.Sprintf("store_path: %s\n", storePath)
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, buf.String())
	}
	return buf.String()
}

func TestVersionCmd(t *testing.T) {
	out := runCmd(t, "version")
	if !strings.Contains(out, "breakdownr dev") {
		t.Errorf("expected output to contain 'breakdownr dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestRootCmdHelp(t *testing.T) {
	out := runCmd(t, "--help")
	for _, sub := range []string{"import", "export", "report", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q subcommand, got: %s", sub, out)
		}
	}
}

func TestExecuteError(t *testing.T) {
	cmd := &cobra.Command{
		Use:           "failing",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("intentional error")
		},
	}
	if code := execute(cmd); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestImportExportReport(t *testing.T) {
	cfgPath := writeTestConfig(t)

	upload := filepath.Join(t.TempDir(), "july.csv")
	content := "DATE,Machine no,AREA,Type,Time consumed,Performed by,Notification\n" +
		"2025-07-14,m1,filling,Mech,0:30:00,Dante,N123\n" +
		"2025-07-15,M3,filling,Electrical,0:15:00,Omar / Rita,N124\n" +
		"garbage-date,M1,filling,Mech,0:10:00,Dante,N125\n"
	if err := os.WriteFile(upload, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out := runCmd(t, "import", upload, "-c", cfgPath)
	if !strings.Contains(out, "Imported 2 of 3 rows") {
		t.Fatalf("import output: %s", out)
	}
	if !strings.Contains(out, "1 rows rejected") {
		t.Fatalf("import output missing rejection: %s", out)
	}
	if !strings.Contains(out, "Notification") {
		t.Fatalf("import output missing ignored column: %s", out)
	}

	// Summary report
	out = runCmd(t, "report", "-c", cfgPath)
	if !strings.Contains(out, "Records:        2") {
		t.Fatalf("report output: %s", out)
	}
	if !strings.Contains(out, "00:45:00") {
		t.Fatalf("report total wrong: %s", out)
	}

	// Machine rollup: zero-filled over the whole domain
	out = runCmd(t, "report", "machine", "-c", cfgPath)
	if !strings.Contains(out, "M1") || !strings.Contains(out, "M18") {
		t.Fatalf("machine report not zero-filled: %s", out)
	}
	if !strings.Contains(out, "00:30:00") {
		t.Fatalf("machine report missing M1 downtime: %s", out)
	}

	// Technician rollup gives both split names full credit
	out = runCmd(t, "report", "technician", "-c", cfgPath)
	for _, name := range []string{"Dante", "Omar", "Rita"} {
		if !strings.Contains(out, name) {
			t.Fatalf("technician report missing %s: %s", name, out)
		}
	}

	// Shift rollup: Day and Night always present even without shift data
	out = runCmd(t, "report", "shift", "-c", cfgPath)
	if !strings.Contains(out, "Day") || !strings.Contains(out, "Night") {
		t.Fatalf("shift report not zero-filled: %s", out)
	}

	// Classification rollup: defaulted from the machine number
	out = runCmd(t, "report", "classification", "-c", cfgPath)
	if !strings.Contains(out, "Filler") {
		t.Fatalf("classification report missing Filler: %s", out)
	}

	// Filtered report
	out = runCmd(t, "report", "--machine", "m3", "-c", cfgPath)
	if !strings.Contains(out, "Records:        1") {
		t.Fatalf("filtered report: %s", out)
	}

	// Export round trip
	exportPath := filepath.Join(t.TempDir(), "out.csv")
	out = runCmd(t, "export", exportPath, "-c", cfgPath)
	if !strings.Contains(out, "Exported 2 records") {
		t.Fatalf("export output: %s", out)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Machine No") {
		t.Fatal("export missing canonical header")
	}
}

func TestImportDryRun(t *testing.T) {
	cfgPath := writeTestConfig(t)

	upload := filepath.Join(t.TempDir(), "log.csv")
	content := "Date,Machine,Category,Time Consumed,Technician\n" +
		"2025-07-14,M1,Mech,0:30:00,Dante\n"
	if err := os.WriteFile(upload, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out := runCmd(t, "import", upload, "--dry-run", "-c", cfgPath)
	if !strings.Contains(out, "Would import 1 of 1 rows") {
		t.Fatalf("dry-run output: %s", out)
	}

	out = runCmd(t, "report", "-c", cfgPath)
	if !strings.Contains(out, "Records:        0") {
		t.Fatalf("dry-run wrote to store: %s", out)
	}
}

func TestImportMissingFile(t *testing.T) {
	cfgPath := writeTestConfig(t)

	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"import", "/nonexistent/file.csv", "-c", cfgPath})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing upload")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	cfgPath := writeTestConfig(t)

	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"export", "-f", "xml", "out.xml", "-c", cfgPath})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestExportJSONAndSQLite(t *testing.T) {
	cfgPath := writeTestConfig(t)
	dir := t.TempDir()

	upload := filepath.Join(dir, "log.csv")
	content := "Date,Machine,Category,Time Consumed,Technician\n" +
		"2025-07-14,M1,Mech,0:30:00,Dante\n"
	if err := os.WriteFile(upload, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	runCmd(t, "import", upload, "-c", cfgPath)

	jsonPath := filepath.Join(dir, "out.json")
	runCmd(t, "export", "-f", "json", jsonPath, "-c", cfgPath)
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\"machine\"") {
		t.Fatalf("json export missing machine field: %s", data)
	}

	dbPath := filepath.Join(dir, "out.db")
	runCmd(t, "export", "-f", "sqlite", dbPath, "-c", cfgPath)
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("sqlite export missing: %v", err)
	}
}

func TestBuildReportFilter(t *testing.T) {
	f, err := buildReportFilter("2025-01-01", "2025-12-31", "m2", "elec")
	if err != nil {
		t.Fatal(err)
	}
	if f.DateFrom.IsZero() || f.DateTo.IsZero() {
		t.Fatal("dates not parsed")
	}
	if len(f.Machines) != 1 || f.Machines[0] != "M2" {
		t.Fatalf("machines = %v", f.Machines)
	}
	if f.Category != "Electrical" {
		t.Fatalf("category = %q", f.Category)
	}

	if _, err := buildReportFilter("bad", "", "", ""); err == nil {
		t.Fatal("expected error for bad from date")
	}
}

func TestReportUnknownDimension(t *testing.T) {
	cfgPath := writeTestConfig(t)

	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"report", "sideways", "-c", cfgPath})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown dimension")
	}
}

package delivery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureJobDirCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	resolvedRoot, jobDir, err := EnsureJobDir(root, 123)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(jobDir) != "123" {
		t.Fatalf("job dir base = %q, want 123", filepath.Base(jobDir))
	}
	if _, err := os.Stat(jobDir); err != nil {
		t.Fatalf("job dir not created: %v", err)
	}
	if _, err := os.Stat(resolvedRoot); err != nil {
		t.Fatalf("delivery root not created: %v", err)
	}
}

func TestWriteTextFileEnforcesTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteTextFile(dir, "REPORT.md", "hello")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("got %q", data)
	}
}

func TestWriteJSONFileIsPrettyPrinted(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteJSONFile(dir, "JOB_SNAPSHOT.json", map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"a\": 1\n}\n"
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestMissingRequiredFields(t *testing.T) {
	req := map[string]interface{}{
		"a": "x",
		"b": "",
		"c": "   ",
		"d": nil,
	}
	got := MissingRequiredFields(req, []string{"a", "b", "c", "d", "e"})
	want := []string{"b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestResolveDeliveryRootHonorsEnvOverride(t *testing.T) {
	t.Setenv("ACP_DELIVERY_ROOT", "/tmp/custom-delivery-root")
	if got := ResolveDeliveryRoot(); got != "/tmp/custom-delivery-root" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildNeedsInfoValue(t *testing.T) {
	v := BuildNeedsInfoValue(1, "offering", "/tmp/delivery/1", []string{"/tmp/delivery/1/INTAKE_REQUEST.md"}, "/tmp/delivery/1/INTAKE_REQUEST.md")
	if v.Status != "needs_info" {
		t.Fatalf("status = %q", v.Status)
	}
	if len(v.FileRefs) != 1 || v.FileRefs[0].Filename != "INTAKE_REQUEST.md" {
		t.Fatalf("fileRefs = %#v", v.FileRefs)
	}
	if v.IntakeFile != "INTAKE_REQUEST.md" {
		t.Fatalf("intakeFile = %q", v.IntakeFile)
	}
}

func TestBuildWrittenValue(t *testing.T) {
	v := BuildWrittenValue(1, "offering", "/tmp/delivery/1", []string{"/tmp/delivery/1/REPORT.md"}, "/tmp/delivery/1/REPORT.md")
	if v.Status != "written" {
		t.Fatalf("status = %q", v.Status)
	}
	if v.ReportFile != "REPORT.md" {
		t.Fatalf("reportFile = %q", v.ReportFile)
	}
}

package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type stubHandlers struct {
	BaseHandlers
}

func (stubHandlers) ExecuteJob(ctx context.Context, requirements map[string]interface{}, jc JobContext) (ExecuteJobResult, error) {
	return ExecuteJobResult{Deliverable: "done"}, nil
}

func writeOfferingConfig(t *testing.T, root, dirName, name string) {
	t.Helper()
	dir := filepath.Join(root, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := `{"name":"` + name + `","description":"d","jobFee":1,"jobFeeType":"fixed","requiredFunds":false}`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadOfferingDirectMatch(t *testing.T) {
	root := t.TempDir()
	writeOfferingConfig(t, root, "typescript_api_development", "typescript_api_development")

	r := New(root)
	r.RegisterNative("typescript_api_development", func() Handlers { return stubHandlers{} })

	cfg, h, err := r.LoadOffering(context.Background(), "typescript_api_development")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "typescript_api_development" {
		t.Fatalf("cfg.Name = %q", cfg.Name)
	}
	if h == nil {
		t.Fatal("expected handlers")
	}
}

func TestLoadOfferingScansForNameMismatch(t *testing.T) {
	root := t.TempDir()
	// directory name differs from config.name
	writeOfferingConfig(t, root, "some-dir", "renamed-offering")

	r := New(root)
	r.RegisterNative("renamed-offering", func() Handlers { return stubHandlers{} })

	cfg, h, err := r.LoadOffering(context.Background(), "renamed-offering")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "renamed-offering" || h == nil {
		t.Fatalf("got cfg=%#v h=%v", cfg, h)
	}
}

func TestLoadOfferingNotFound(t *testing.T) {
	root := t.TempDir()
	r := New(root)
	if _, _, err := r.LoadOffering(context.Background(), "missing"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadOfferingMissingHandler(t *testing.T) {
	root := t.TempDir()
	writeOfferingConfig(t, root, "no-handler", "no-handler")

	r := New(root)
	if _, _, err := r.LoadOffering(context.Background(), "no-handler"); err == nil {
		t.Fatal("expected error for missing handler")
	}
}

func TestListOfferings(t *testing.T) {
	root := t.TempDir()
	writeOfferingConfig(t, root, "a", "a")
	writeOfferingConfig(t, root, "b", "b")

	r := New(root)
	names, err := r.ListOfferings()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("got %v", names)
	}
}

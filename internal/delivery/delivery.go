// Package delivery computes per-job deliverable directories and writes
// the on-disk artifact contract buyers read: JOB_SNAPSHOT.json,
// INTAKE_REQUEST.md / REPORT.md, plus whatever files an offering's
// handler writes alongside them.
package delivery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const deliveryRootEnv = "ACP_DELIVERY_ROOT"

// ResolveDeliveryRoot returns the ACP_DELIVERY_ROOT override if set,
// otherwise a workspace-aware default: <workspace>/deliverables/acp-delivery
// when the process is running from a skills/<name> layout, else
// <repoRoot>/deliverables/acp-delivery.
func ResolveDeliveryRoot() string {
	if v := strings.TrimSpace(os.Getenv(deliveryRootEnv)); v != "" {
		return v
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".", "deliverables", "acp-delivery")
	}

	if root, ok := skillsWorkspaceRoot(cwd); ok {
		return filepath.Join(root, "deliverables", "acp-delivery")
	}

	return filepath.Join(repoRoot(cwd), "deliverables", "acp-delivery")
}

// skillsWorkspaceRoot walks up from dir looking for a "skills" path
// segment; if found, the workspace root is the directory containing
// "skills".
func skillsWorkspaceRoot(dir string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(dir), "/")
	for i, part := range parts {
		if part == "skills" && i > 0 {
			return filepath.FromSlash(strings.Join(parts[:i], "/")), true
		}
	}
	return "", false
}

// repoRoot walks up from dir looking for a go.mod; if none is found,
// dir itself is returned.
func repoRoot(dir string) string {
	cur := dir
	for {
		if _, err := os.Stat(filepath.Join(cur, "go.mod")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}

// EnsureJobDir creates deliveryRoot and deliveryRoot/<jobID> if they do
// not already exist and returns their absolute paths.
func EnsureJobDir(deliveryRoot string, jobID int64) (resolvedRoot, jobDir string, err error) {
	abs, err := filepath.Abs(deliveryRoot)
	if err != nil {
		return "", "", fmt.Errorf("resolve delivery root: %w", err)
	}
	dir := filepath.Join(abs, strconv.FormatInt(jobID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create job dir: %w", err)
	}
	return abs, dir, nil
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// WriteTextFile writes content to jobDir/name, enforcing a trailing
// newline, and returns the absolute path written.
func WriteTextFile(jobDir, name, content string) (string, error) {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	path := filepath.Join(jobDir, name)
	if err := atomicWrite(path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}

// WriteJSONFile pretty-prints obj and writes it to jobDir/name,
// returning the absolute path written.
func WriteJSONFile(jobDir, name string, obj interface{}) (string, error) {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(jobDir, name)
	if err := atomicWrite(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// MissingRequiredFields returns the subset of keys that are absent,
// nil, or a whitespace-only string in req.
func MissingRequiredFields(req map[string]interface{}, keys []string) []string {
	var missing []string
	for _, k := range keys {
		v, ok := req[k]
		if !ok || v == nil {
			missing = append(missing, k)
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

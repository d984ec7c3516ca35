package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteFile writes x into dir under x.Filename and returns the full path.
// x.Filename must be a plain file name.
// The content goes to a temp file that is synced and renamed into place, so
// a reader never sees a partial export.
func WriteFile(dir string, x *Export) (string, error) {
	switch name := x.Filename; {
	case name == "", name == ".", name == "..", strings.ContainsAny(name, `/\`):
		return "", fmt.Errorf("export filename %q is not a plain file name", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, x.Filename)

	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) (string, error) {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(x.Content); err != nil {
		return fail("writing export", err)
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("setting export mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return path, nil
}

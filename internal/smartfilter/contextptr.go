package smartfilter

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/standardbeagle/mantic/internal/errors"
)

const legacyPointerFile = "session.json"

// LoadContextPointer reads the legacy cross-session pointer at
// `.mantic/session.json`. Returns (nil, nil) when absent or corrupt —
// context carryover is an optional refinement, never a hard dependency.
func LoadContextPointer(root string) (*ContextPointer, error) {
	full := filepath.Join(root, ".mantic", legacyPointerFile)
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewComponentError("smartfilter", "read-pointer", err)
	}

	var ptr ContextPointer
	if err := json.Unmarshal(data, &ptr); err != nil {
		return nil, nil
	}
	return &ptr, nil
}

// SaveContextPointer atomically writes the current query's keywords and
// surviving result paths as the next query's carryover context.
func SaveContextPointer(root string, ptr *ContextPointer) error {
	dir := filepath.Join(root, ".mantic")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewComponentError("smartfilter", "mkdir", err)
	}

	data, err := json.MarshalIndent(ptr, "", "  ")
	if err != nil {
		return errors.NewComponentError("smartfilter", "marshal", err)
	}

	target := filepath.Join(dir, legacyPointerFile)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.NewComponentError("smartfilter", "write", err)
	}
	return os.Rename(tmp, target)
}

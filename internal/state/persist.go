package state

import (
	"encoding/json"
	"log"
	"os"

	"HomeDash/internal/model"
)

// LoadSnapshot reads the snapshot from a JSON file, merging on-disk keys over
// defaults. Unknown keys are ignored, missing keys keep their defaults, and
// wrong-shaped lists are reset, so partial or schema-evolved files load
// without crashing.
func LoadSnapshot(filePath string) *model.Snapshot {
	snap := model.DefaultSnapshot()
	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] read state %s: %v, starting fresh", filePath, err)
		}
		return snap
	}
	if err := json.Unmarshal(data, snap); err != nil {
		// Type errors leave the valid fields decoded; keep those and let
		// Normalize repair the rest.
		log.Printf("[WARN] decode state %s: %v, keeping recognized fields", filePath, err)
	}
	snap.Normalize()
	return snap
}

// SaveSnapshot writes the whole snapshot to a JSON file, replacing prior
// content.
func SaveSnapshot(filePath string, snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

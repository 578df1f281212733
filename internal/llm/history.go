package llm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxHistoryTurns bounds how much prior conversation is replayed into the
// prompt. Older turns are dropped from the front.
const maxHistoryTurns = 20

// LoadHistory reads a conversation transcript from path. A missing file is
// an empty conversation, not an error.
func LoadHistory(path string) ([]Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file %s: %w", path, err)
	}
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", path, err)
	}
	return turns, nil
}

// SaveHistory writes the transcript back, trimming to the most recent
// turns. The write goes through a temp file so a crash never leaves a
// truncated transcript behind.
func SaveHistory(path string, turns []Turn) error {
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close history file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace history file %s: %w", path, err)
	}
	return nil
}

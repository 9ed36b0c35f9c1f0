package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// LocalUserFile stores the user id of the command-line tool.
const LocalUserFile = "user.id"

// LocalUserID returns the user id kept in dir, creating one on first use.
func LocalUserID(fs afero.Fs, dir string) (string, error) {
	path := filepath.Join(dir, LocalUserFile)

	data, err := afero.ReadFile(fs, path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to save user id: %w", err)
	}
	return id, nil
}

package testutil

import (
	"os"
	"path/filepath"
)

func writeFile(dir, name, contents string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644)
}

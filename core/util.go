package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var errNoProjectRoot = errors.New("project root not found")

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Getwd finds the project root, the closest parent directory holding go.mod.
// go test runs in the package directory, so the working directory alone is not enough.
func Getwd() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir, nil
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return "", errNoProjectRoot
		}
		currDir = newDir
	}
}

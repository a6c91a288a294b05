//go:build !linux

package watcher

import (
	"os"
	"path/filepath"
)

func detectFilesystemType(path string) FilesystemType {
	p := probePath(path)
	if p == "" {
		return FSTypeUnknown
	}
	if _, err := os.Stat(p); err != nil {
		if _, err := os.Stat(filepath.Dir(p)); err != nil {
			return FSTypeUnknown
		}
	}
	return FSTypeLocal
}

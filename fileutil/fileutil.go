package fileutil

import (
	"strings"

	"github.com/rainycape/unidecode"
)

var safePathReplacer = strings.NewReplacer(
	"\x00", "",
	":", "",
	"/", " ",
	"\\", " ",
)

// SafePath makes a single path element safe to create on the local filesystem.
func SafePath(path string) string {
	path = safePathReplacer.Replace(path)
	path = unidecode.Unidecode(path)
	path = strings.Join(strings.Fields(path), " ")
	switch path {
	case "", ".", "..":
		return "_"
	}
	return path
}

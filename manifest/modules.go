package manifest

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/chazu/prose/compiler"
)

// ModuleName derives the dotted module name of file relative to root:
// "src/net/http.prose" under "src" -> "net.http".
func ModuleName(root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", file, root)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "."), nil
}

// ModuleFile is the inverse of ModuleName: "net.http" -> "net/http.prose".
// A name written as a path ("net/http.prose") is accepted too.
func ModuleFile(name, ext string) string {
	name = strings.TrimSuffix(filepath.ToSlash(name), ext)
	name = strings.ReplaceAll(name, ".", "/")
	return filepath.FromSlash(name) + ext
}

// normalizeModule turns an import spelling into a dotted module name.
func normalizeModule(name, ext string) string {
	name = strings.TrimSuffix(filepath.ToSlash(name), ext)
	return strings.ReplaceAll(name, "/", ".")
}

// IsImportable reports whether name can be written as a bare dotted path in
// an import statement. Every segment must be an identifier and must not be
// a reserved word; other names need the quoted form.
func IsImportable(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if !isIdentifier(seg) {
			return false
		}
		if _, reserved := compiler.LookupKeyword(seg); reserved {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

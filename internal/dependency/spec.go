// Package dependency extracts per-file import/imported-by relationships
// without ever hand-rolling language-specific parsing logic inline: import
// extraction is driven by a declarative table of per-language structural
// query patterns (the same data-driven shape internal/runtime uses for
// interpreter resolution), and "imported by" is answered by shelling out to
// an external full-text search tool rather than re-implementing one.
package dependency

import "regexp"

// ImportQuery describes, for one language, how to recognize an import
// statement's module-name node. Pattern captures exactly the module name in
// a capture group (where a pattern has alternative groups, the first
// non-empty one is used) so the caller's job is a uniform "strip surrounding
// quotes" — never bespoke per-language string surgery.
type ImportQuery struct {
	Extensions []string
	Pattern    *regexp.Regexp
}

// specs is the declarative table. Patterns are line-oriented: matched once
// per source line rather than against the whole file, which keeps them
// simple regexes instead of a hand-rolled recursive-descent parser — the
// same trade the runtime resolver's toolchain-file rules make.
var specs = map[string]ImportQuery{
	"go": {
		Extensions: []string{".go"},
		Pattern:    regexp.MustCompile(`^\s*(?:import\s+)?"([^"]+)"\s*$`),
	},
	"python": {
		Extensions: []string{".py"},
		Pattern:    regexp.MustCompile(`^\s*(?:from\s+(\S+)\s+import|import\s+(\S+))`),
	},
	"typescript": {
		Extensions: []string{".ts", ".tsx"},
		Pattern:    regexp.MustCompile(`^\s*import\b.*from\s+['"]([^'"]+)['"]`),
	},
	"javascript": {
		Extensions: []string{".js", ".jsx"},
		Pattern:    regexp.MustCompile(`^\s*(?:import\b.*from\s+['"]([^'"]+)['"]|(?:const|let|var)\s+.*require\(['"]([^'"]+)['"]\))`),
	},
	"rust": {
		Extensions: []string{".rs"},
		Pattern:    regexp.MustCompile(`^\s*use\s+([a-zA-Z0-9_:]+)`),
	},
}

// languageForExtension maps a file extension to the language key in specs.
func languageForExtension(ext string) (string, bool) {
	for lang, q := range specs {
		for _, e := range q.Extensions {
			if e == ext {
				return lang, true
			}
		}
	}
	return "", false
}

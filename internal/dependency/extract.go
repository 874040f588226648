package dependency

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/otter-ide/otter/internal/apperror"
)

// Direction selects which half (or both) of a dependency_extraction query
// to answer.
type Direction string

const (
	DirectionImports    Direction = "imports"
	DirectionImportedBy Direction = "imported_by"
	DirectionBoth       Direction = "both"
)

// Result is the response to analyze_dependencies.
type Result struct {
	File       string   `json:"file"`
	Imports    []string `json:"imports,omitempty"`
	ImportedBy []string `json:"imported_by,omitempty"`
}

// Reference is one imported_by hit: a file that imports the target.
type Reference struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Analyze extracts the requested direction(s) of dependency information for
// file, rooted at projectRoot for the imported_by full-text search scope.
func Analyze(ctx context.Context, projectRoot, file string, direction Direction) (Result, error) {
	result := Result{File: file}

	ext := filepath.Ext(file)
	lang, ok := languageForExtension(ext)
	if !ok {
		return Result{}, apperror.DependencyMissing(
			fmt.Sprintf("structural query for file type %q", ext),
			"analyze_dependencies supports go, python, typescript, javascript, rust",
		)
	}

	if direction == DirectionImports || direction == DirectionBoth {
		imports, err := extractImports(file, specs[lang])
		if err != nil {
			return Result{}, err
		}
		result.Imports = imports
	}

	if direction == DirectionImportedBy || direction == DirectionBoth {
		refs, err := searchImportedBy(ctx, projectRoot, file, specs[lang])
		if err != nil {
			return Result{}, err
		}
		for _, r := range refs {
			result.ImportedBy = append(result.ImportedBy, r.File)
		}
	}

	return result, nil
}

// extractImports runs query's pattern over file line by line, capturing the
// module-name node from whichever capture group matched and stripping
// surrounding quotes uniformly.
func extractImports(file string, query ImportQuery) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	defer f.Close()

	var imports []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	for scanner.Scan() {
		m := query.Pattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		for _, group := range m[1:] {
			if group != "" {
				imports = append(imports, strings.Trim(group, `"'`))
				break
			}
		}
	}
	return imports, nil
}

// searchImportedBy shells out to ripgrep to find every source file under
// projectRoot that references file's module name, rather than re-deriving
// a project-wide import graph in process.
func searchImportedBy(ctx context.Context, projectRoot, file string, query ImportQuery) ([]Reference, error) {
	moduleName := moduleNameFor(file)

	globArgs := []string{"--line-number", "--with-filename", "--color=never"}
	for _, ext := range query.Extensions {
		globArgs = append(globArgs, "--glob", "*"+ext)
	}
	globArgs = append(globArgs, regexpQuote(moduleName), projectRoot)

	cmd := exec.CommandContext(ctx, "rg", globArgs...)
	output, err := cmd.Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// ripgrep exits 1 with no matches; that is a legal empty result.
			return nil, nil
		}
		return nil, apperror.DependencyMissing("ripgrep (rg)",
			"install ripgrep: https://github.com/BurntSushi/ripgrep#installation")
	}

	var refs []Reference
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 3 {
			continue
		}
		if parts[0] == file {
			continue
		}
		lineNum, _ := strconv.Atoi(parts[1])
		refs = append(refs, Reference{File: parts[0], Line: lineNum})
	}
	return refs, nil
}

func moduleNameFor(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func regexpQuote(s string) string {
	replacer := strings.NewReplacer(
		".", `\.`, "+", `\+`, "*", `\*`, "?", `\?`, "(", `\(`, ")", `\)`,
		"[", `\[`, "]", `\]`, "{", `\{`, "}", `\}`, "^", `\^`, "$", `\$`, "|", `\|`,
	)
	return replacer.Replace(s)
}

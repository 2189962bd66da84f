package graph

import (
	"path"
)

// marker maps a project marker filename to the language/project type it
// indicates and the level it aggregates at.
type marker struct {
	file        string
	language    string
	projectType string
	level       ModuleLevel
}

// markers is checked in order; the first marker found walking upward from
// a file's directory wins (Open Question 4: nearest marker wins). Two
// markers in the same directory are resolved by their order in this list.
var markers = []marker{
	{"go.mod", "go", "module", ModuleLevelModule},
	{"Cargo.toml", "rust", "crate", ModuleLevelCrate},
	{"package.json", "typescript", "package", ModuleLevelModule},
	{"pyproject.toml", "python", "package", ModuleLevelModule},
	{"setup.py", "python", "package", ModuleLevelModule},
	{"pom.xml", "java", "module", ModuleLevelModule},
	{"build.gradle", "java", "module", ModuleLevelModule},
}

// DirLister abstracts the filesystem lookup a module detector needs:
// does this directory contain this file. Lets callers back it with a
// real tree walk or, in tests, a fixed set.
type DirLister interface {
	HasFile(dir, name string) bool
}

// DetectModule walks upward from the directory containing filePath,
// returning the nearest enclosing Module. Returns ok=false if no marker
// is found in any directory up to and including the top of the path. New detector: the teacher's
// module_aggregator.go computed per-module statistics but had no
// marker-based detection step to ground this against (it assumed
// `module_path` was already known per file); this implements the
// detection step spec.md's monorepo-module requirement actually needs.
func DetectModule(lister DirLister, filePath string) (Module, bool) {
	dir := path.Dir(filePath)
	for {
		for _, m := range markers {
			if lister.HasFile(dir, m.file) {
				return Module{
					ID:          "module:" + dir,
					Name:        path.Base(dir),
					Path:        dir,
					Language:    m.language,
					ProjectType: m.projectType,
				}, true
			}
		}
		if dir == "." || dir == "/" {
			break
		}
		dir = path.Dir(dir)
	}
	return Module{}, false
}

package yl

import (
	"os"
	"path/filepath"
)

// ModuleLoader resolves an import path to source text. Splitting this
// out from the VM lets cmd/yl wire a real filesystem loader while
// tests wire an in-memory one (§5's module system plus the ambient
// "test tooling" expansion).
type ModuleLoader interface {
	Load(path string) (source string, resolvedPath string, err error)
}

// FileModuleLoader resolves import paths against a list of search
// directories, trying "<dir>/<path>.yl" for each in order.
type FileModuleLoader struct {
	SearchPaths []string
}

func (l *FileModuleLoader) Load(path string) (string, string, error) {
	for _, dir := range l.SearchPaths {
		candidate := filepath.Join(dir, path+".yl")
		data, err := os.ReadFile(candidate)
		if err == nil {
			abs, _ := filepath.Abs(candidate)
			return string(data), abs, nil
		}
	}
	return "", "", NewError(ImportError, 0, "module %q not found", path)
}

// MapModuleLoader serves fixed in-memory sources, used by tests so
// they don't need real files on disk.
type MapModuleLoader struct {
	Sources map[string]string
}

func (l *MapModuleLoader) Load(path string) (string, string, error) {
	if src, ok := l.Sources[path]; ok {
		return src, path, nil
	}
	return "", "", NewError(ImportError, 0, "module %q not found", path)
}

// moduleState tracks one resolved path's lifecycle in the
// process-wide cache: importing while already importing (Done ==
// false) is a cyclic import (§5).
type moduleState struct {
	module *ObjModule
}

// ModuleCache is the process-wide path→Module table (§9: modules are
// loaded and run at most once per process).
type ModuleCache struct {
	loader  ModuleLoader
	entries map[string]*moduleState
}

func NewModuleCache(loader ModuleLoader) *ModuleCache {
	return &ModuleCache{loader: loader, entries: make(map[string]*moduleState)}
}

// StartImport resolves path, returning the already-cached module
// immediately if it has finished loading, an ImportError if it is
// mid-load (a cycle), or the freshly-read source for the VM to
// compile and run if this is the first time path is seen.
func (c *ModuleCache) StartImport(path string, cls *ObjClass) (mod *ObjModule, source string, needsRun bool, err error) {
	source, resolved, err := c.loader.Load(path)
	if err != nil {
		return nil, "", false, err
	}
	if st, ok := c.entries[resolved]; ok {
		if !st.module.Done {
			return nil, "", false, NewError(ImportError, 0, "cyclic import of module %q", path)
		}
		return st.module, "", false, nil
	}
	mod = NewModule(resolved, cls)
	c.entries[resolved] = &moduleState{module: mod}
	return mod, source, true, nil
}

func (c *ModuleCache) FinishImport(mod *ObjModule) {
	mod.Done = true
}

func (c *ModuleCache) GCRoots(mark func(Value)) {
	for _, st := range c.entries {
		mark(ObjectValue(st.module))
	}
}

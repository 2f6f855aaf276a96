package resolver

import (
	"classlint/internal/core/errors"
	"classlint/internal/engine/classfile"
	"classlint/internal/engine/model"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Source loads a class by internal name. Implementations may block on I/O.
type Source interface {
	Load(name string) (*model.Class, error)
}

func notFound(name string) error {
	return errors.AddContext(errors.New(errors.CodeNotFound, "class not found"), errors.CtxClass, name)
}

// MemorySource serves classes that are already parsed, typically the
// analyzed set itself.
type MemorySource struct {
	mu      sync.RWMutex
	classes map[string]*model.Class
}

func NewMemorySource(classes ...*model.Class) *MemorySource {
	s := &MemorySource{classes: make(map[string]*model.Class, len(classes))}
	s.Add(classes...)
	return s
}

// Add registers classes; the first class registered under a name wins.
func (s *MemorySource) Add(classes ...*model.Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range classes {
		if c == nil {
			continue
		}
		if _, exists := s.classes[c.Name]; !exists {
			s.classes[c.Name] = c
		}
	}
}

func (s *MemorySource) Load(name string) (*model.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.classes[name]; ok {
		return c, nil
	}
	return nil, notFound(name)
}

func (s *MemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.classes)
}

// ClasspathSource loads classes from directories and jar files in classpath
// order.
type ClasspathSource struct {
	entries []classpathEntry
}

type classpathEntry struct {
	dir string
	jar *classfile.Jar
}

// NewClasspathSource opens every entry up front. Missing entries are an error;
// callers decide whether to drop them.
func NewClasspathSource(paths []string) (*ClasspathSource, error) {
	s := &ClasspathSource{}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			s.Close()
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "classpath entry"), errors.CtxPath, p)
		}
		if info.IsDir() {
			s.entries = append(s.entries, classpathEntry{dir: p})
			continue
		}
		if !strings.HasSuffix(strings.ToLower(p), ".jar") {
			s.Close()
			return nil, errors.AddContext(errors.New(errors.CodeValidationError, "classpath entry is neither a directory nor a jar"), errors.CtxPath, p)
		}
		jar, err := classfile.OpenJar(p)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.entries = append(s.entries, classpathEntry{jar: jar})
	}
	return s, nil
}

func (s *ClasspathSource) Load(name string) (*model.Class, error) {
	for _, e := range s.entries {
		if e.jar != nil {
			if e.jar.Has(name) {
				return e.jar.Load(name)
			}
			continue
		}
		path := filepath.Join(e.dir, filepath.FromSlash(name)+".class")
		if _, err := os.Stat(path); err == nil {
			return classfile.ParseFile(path)
		}
	}
	return nil, notFound(name)
}

func (s *ClasspathSource) Close() error {
	var first error
	for _, e := range s.entries {
		if e.jar == nil {
			continue
		}
		if err := e.jar.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ChainSource asks each source in turn. A NotFound answer moves on to the
// next source; any other error is returned as is.
type ChainSource []Source

func (c ChainSource) Load(name string) (*model.Class, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		class, err := s.Load(name)
		if err == nil {
			return class, nil
		}
		if !errors.IsCode(err, errors.CodeNotFound) {
			return nil, err
		}
	}
	return nil, notFound(name)
}

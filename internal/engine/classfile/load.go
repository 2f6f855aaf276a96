package classfile

import (
	"archive/zip"
	"classlint/internal/core/errors"
	"classlint/internal/engine/model"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// ParseFile reads and parses a single .class file.
func ParseFile(path string) (*model.Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read class file"), errors.CtxPath, path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	c.Origin = path
	return c, nil
}

// Jar gives random access to the classes of one archive. It is safe for
// concurrent use.
type Jar struct {
	path string

	mu      sync.Mutex
	zr      *zip.ReadCloser
	entries map[string]*zip.File
}

func OpenJar(path string) (*Jar, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeMalformedClass, "open jar"), errors.CtxPath, path)
	}
	j := &Jar{path: path, zr: zr, entries: make(map[string]*zip.File)}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		name := strings.TrimSuffix(f.Name, ".class")
		if name == "module-info" || strings.HasPrefix(name, "META-INF/") {
			continue
		}
		j.entries[name] = f
	}
	return j, nil
}

func (j *Jar) Path() string { return j.path }

// Names lists the internal names of the classes in the archive, sorted.
func (j *Jar) Names() []string {
	names := make([]string, 0, len(j.entries))
	for name := range j.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (j *Jar) Has(name string) bool {
	_, ok := j.entries[name]
	return ok
}

// Load parses the class with the given internal name.
func (j *Jar) Load(name string) (*model.Class, error) {
	f, ok := j.entries[name]
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotFound, "class not in jar"), errors.CtxClass, name)
	}
	j.mu.Lock()
	data, err := readEntry(f)
	j.mu.Unlock()
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, j.path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, j.path+"!"+f.Name)
	}
	c.Origin = j.path + "!" + f.Name
	return c, nil
}

func (j *Jar) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.zr == nil {
		return nil
	}
	err := j.zr.Close()
	j.zr = nil
	return err
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedClass, "open jar entry")
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedClass, "read jar entry")
	}
	return data, nil
}

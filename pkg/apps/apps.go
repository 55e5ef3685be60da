package apps

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"appfactory/pkg/types"
)

const (
	SourceFile = "app.py"
	MetaFile   = "meta.json"
)

var (
	ErrNotFound    = errors.New("saved app not found")
	ErrInvalidName = errors.New("invalid app name")
)

type meta struct {
	Prompt string `json:"prompt"`
}

// Repository keeps one directory per saved app under root.
type Repository struct {
	root string
}

// Open creates root if needed.
func Open(root string) (*Repository, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create apps dir: %w", err)
	}
	return &Repository{root: root}, nil
}

func (r *Repository) Root() string {
	return r.root
}

// List returns the names of all app directories, sorted by name.
func (r *Repository) List() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Save writes the source file and then the metadata file. An empty name is a
// no-op. Each file is replaced atomically; the pair is not.
func (r *Repository) Save(name, prompt, sourceCode string) error {
	if name == "" {
		return nil
	}
	dir, err := r.dir(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create app dir: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(dir, SourceFile), []byte(sourceCode)); err != nil {
		return fmt.Errorf("save %s source: %w", name, err)
	}

	data, err := json.MarshalIndent(meta{Prompt: prompt}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s meta: %w", name, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, MetaFile), data); err != nil {
		return fmt.Errorf("save %s meta: %w", name, err)
	}
	return nil
}

// Load reads both files of the named app.
func (r *Repository) Load(name string) (types.SavedApp, error) {
	dir, err := r.dir(name)
	if err != nil {
		return types.SavedApp{}, err
	}

	source, err := os.ReadFile(filepath.Join(dir, SourceFile))
	if err != nil {
		return types.SavedApp{}, readErr(name, SourceFile, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return types.SavedApp{}, readErr(name, MetaFile, err)
	}
	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return types.SavedApp{}, fmt.Errorf("parse %s/%s: %w", name, MetaFile, err)
	}

	return types.SavedApp{Name: name, Prompt: m.Prompt, SourceCode: string(source)}, nil
}

func (r *Repository) dir(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(r.root, name), nil
}

func readErr(name, file string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, name, file)
	}
	return fmt.Errorf("read %s/%s: %w", name, file, err)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".save-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

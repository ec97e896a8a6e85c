package run

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Handle identifies an engine held by a Registry. The zero Handle is never
// issued.
type Handle int

type registryEntry struct {
	engine   *Engine
	parent   Handle
	children []Handle
}

// Registry owns a family of engines: a base run and the clones derived from
// it. Parents keep their children's handles and children keep their
// parent's, so removal never leaves dangling references. Safe for
// concurrent use; the engines themselves are not.
type Registry struct {
	mu      sync.Mutex
	next    Handle
	entries map[Handle]*registryEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Handle]*registryEntry)}
}

// Add registers a root engine.
func (r *Registry) Add(e *Engine) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(e, 0)
}

func (r *Registry) addLocked(e *Engine, parent Handle) Handle {
	r.next++
	h := r.next
	r.entries[h] = &registryEntry{engine: e, parent: parent}
	if p, ok := r.entries[parent]; ok {
		p.children = append(p.children, h)
	}
	return h
}

// Clone creates a child of h with its own copy of the input file and an
// output path carrying the same "_clone_<n>_<uuid>" suffix, then
// initializes it. The clone is registered before the copy and the
// initialization run, and those happen without holding the registry lock.
// An initialization failure is reported through the clone's Status and
// Message; the returned error covers only failures to create the clone.
func (r *Registry) Clone(h Handle) (Handle, error) {
	r.mu.Lock()
	parent, ok := r.entries[h]
	if !ok {
		r.mu.Unlock()
		return 0, fmt.Errorf("unknown engine handle %d", h)
	}

	suffix := fmt.Sprintf("_clone_%d_%s", len(parent.children), uuid.NewString())
	opts := parent.engine.Options()
	src := ""
	if opts.InputFile != "" && dirExists(filepath.Dir(opts.InputFile)) {
		src = opts.InputFile
		opts.InputFile = withSuffix(opts.InputFile, suffix)
	}
	if opts.OutputCSV != "" && dirExists(filepath.Dir(opts.OutputCSV)) {
		opts.OutputCSV = withSuffix(opts.OutputCSV, suffix)
	}

	clone := New(opts)
	child := r.addLocked(clone, h)
	r.mu.Unlock()

	if src != "" {
		if err := copyFile(src, opts.InputFile); err != nil {
			r.Remove(child)
			return 0, fmt.Errorf("copy input file: %w", err)
		}
	}
	if err := clone.Initialize(); err != nil {
		clone.log.Warn().Err(err).Str("input_file", opts.InputFile).Msg("clone failed to initialize")
	}
	return child, nil
}

// Remove drops h and, recursively, its clones.
func (r *Registry) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[h]
	if !ok {
		return false
	}
	if p, ok := r.entries[e.parent]; ok {
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	r.removeLocked(h)
	return true
}

func (r *Registry) removeLocked(h Handle) {
	e, ok := r.entries[h]
	if !ok {
		return
	}
	for _, c := range e.children {
		r.removeLocked(c)
	}
	delete(r.entries, h)
}

func (r *Registry) Engine(h Handle) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return nil, false
	}
	return e.engine, true
}

// Parent returns the handle h was cloned from.
func (r *Registry) Parent(h Handle) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok || e.parent == 0 {
		return 0, false
	}
	return e.parent, true
}

func (r *Registry) Children(h Handle) []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return nil
	}
	return append([]Handle(nil), e.children...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// withSuffix inserts suffix before the file extension.
func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

package sim

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned when opening a path that does not exist.
var ErrNotFound = errors.New("no such file")

// File is an open file. Duplicates share the same File.
type File struct {
	Path string
	refs int
}

// Dir is a directory reference.
type Dir struct {
	Path string
	refs int
}

// FileSystem is a flat, in-memory file system with reference counted
// files and directories. It is safe for concurrent use.
type FileSystem struct {
	mu    sync.Mutex
	paths map[string]struct{}
	open  map[*File]struct{}
	root  *Dir
	ops   int
}

// NewFileSystem returns a file system containing the given paths.
func NewFileSystem(paths ...string) *FileSystem {
	fs := &FileSystem{
		paths: make(map[string]struct{}),
		open:  make(map[*File]struct{}),
		root:  &Dir{Path: "/"},
	}
	for _, p := range paths {
		fs.paths[p] = struct{}{}
	}
	return fs
}

// Create adds path.
func (fs *FileSystem) Create(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.paths[path] = struct{}{}
}

// Root returns a new reference to "/".
func (fs *FileSystem) Root() (any, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.root.refs++
	return fs.root, nil
}

// Open opens path.
func (fs *FileSystem) Open(path string) (any, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.paths[path]; !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	f := &File{Path: path, refs: 1}
	fs.open[f] = struct{}{}
	return f, nil
}

// Dup adds a reference to f.
func (fs *FileSystem) Dup(f any) (any, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	file, ok := f.(*File)
	if !ok || file.refs < 1 {
		return nil, fmt.Errorf("dup: %w", ErrForeignHandle)
	}
	file.refs++
	return file, nil
}

// Close drops a reference to f.
func (fs *FileSystem) Close(f any) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	file, ok := f.(*File)
	if !ok || file.refs < 1 {
		panic("sim: close of closed file")
	}
	file.refs--
	if file.refs == 0 {
		delete(fs.open, file)
	}
}

// DupDir adds a reference to d.
func (fs *FileSystem) DupDir(d any) any {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if dir, ok := d.(*Dir); ok {
		dir.refs++
	}
	return d
}

// PutDir drops a reference to d.
func (fs *FileSystem) PutDir(d any) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	dir, ok := d.(*Dir)
	if !ok {
		return
	}
	if dir.refs < 1 {
		panic("sim: put of released directory")
	}
	dir.refs--
}

// BeginOp starts a file system transaction.
func (fs *FileSystem) BeginOp() {
	fs.mu.Lock()
	fs.ops++
	fs.mu.Unlock()
}

// EndOp ends a file system transaction.
func (fs *FileSystem) EndOp() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.ops == 0 {
		panic("sim: end_op without begin_op")
	}
	fs.ops--
}

// OpenFiles returns the paths of files with live references, sorted.
func (fs *FileSystem) OpenFiles() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]string, 0, len(fs.open))
	for f := range fs.open {
		out = append(out, f.Path)
	}
	sort.Strings(out)
	return out
}

// RootRefs returns the reference count of "/".
func (fs *FileSystem) RootRefs() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.root.refs
}

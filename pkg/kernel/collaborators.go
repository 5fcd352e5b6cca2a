package kernel

// Opaque handles owned by the collaborators. The kernel only stores them
// and hands them back.
type (
	AddressSpace = any
	Frame        = any
	File         = any
	Dir          = any
)

//go:generate mockgen -destination=../mocks/mocks.go -package=mocks github.com/poltergeist/mlfq/pkg/kernel AddressSpaces,FileSystem

// AddressSpaces manages user memory.
type AddressSpaces interface {
	// Create returns an empty address space.
	Create() (AddressSpace, error)
	// Copy duplicates the first size bytes of src into dst.
	Copy(src, dst AddressSpace, size uint64) error
	// Resize grows or shrinks the mapped size and returns the new size.
	Resize(as AddressSpace, oldSize, newSize uint64) (uint64, error)
	// Destroy frees an address space of the given size.
	Destroy(as AddressSpace, size uint64)
	CopyOut(as AddressSpace, addr uint64, data []byte) error
	CopyIn(as AddressSpace, addr uint64, n int) ([]byte, error)
	// AllocFrame allocates the page backing a trapframe.
	AllocFrame() (Frame, error)
	FreeFrame(f Frame)
}

// FileSystem manages open files and directories. Its calls may block.
type FileSystem interface {
	Root() (Dir, error)
	Open(path string) (File, error)
	Dup(f File) (File, error)
	Close(f File)
	DupDir(d Dir) Dir
	PutDir(d Dir)
	BeginOp()
	EndOp()
}

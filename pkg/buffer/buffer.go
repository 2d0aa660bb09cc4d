package buffer

// Buffer is the editing contract shared by text containers.
type Buffer interface {
	Insert(idx int, s string) error
	Remove(idx int, n int) error
	Len() int
	String() string
}

var _ Buffer = (*Builder)(nil)

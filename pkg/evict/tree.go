package evict

// Tree holds the tree-wide state this core is allowed to touch
// directly: the root address/size. RootRef
// plays the role a SUPER_NODE distinguished parent plays in
// pkg/btree - the root's Ref has no owning parent page, but is still a
// Ref like any other so the rest of this package's state machine (C2,
// C5) needs no root-specific branch beyond the isRoot check C8 and C5
// already make explicit.
type Tree struct {
	RootRef *Ref
}

// NewTree constructs a Tree whose root starts out on-disk at the given
// address/size (InvalidAddr/0 for a brand new, empty tree).
func NewTree(rootAddr, rootSize int64) *Tree {
	ref := NewRef(StateOnDisk)
	ref.Addr = rootAddr
	ref.Size = rootSize
	return &Tree{RootRef: ref}
}

package concurrency

// Indicates whether a lock is a reader or a writer lock.
type LockType int

const (
	R_LOCK LockType = 0
	W_LOCK LockType = 1
)

// A Resource refers to a page within a tree, uniquely identified by
// the tree's name and the page's address (its "key").
type Resource struct {
	tableName string
	key       int64
}

func (r *Resource) GetTableName() string {
	return r.tableName
}

func (r *Resource) GetResourceKey() int64 {
	return r.key
}

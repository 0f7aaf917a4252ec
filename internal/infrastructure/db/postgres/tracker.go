package postgres

import "github.com/google/uuid"

type changeKind int

const (
	changeCreate changeKind = iota
	changeUpdate
	changeDelete
)

func (k changeKind) String() string {
	switch k {
	case changeCreate:
		return "create"
	case changeUpdate:
		return "update"
	case changeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// change is one staged mutation. entity is the pointer handed to the
// repository, so later in-memory edits before Commit are flushed too.
type change struct {
	kind   changeKind
	entity any
	id     uuid.UUID
}

// ChangeTracker records staged mutations in the order they were made. Every
// repository and the unit of work of one scope share a single tracker; a
// scope belongs to one request, so the tracker is not safe for concurrent use.
type ChangeTracker struct {
	changes []change
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{}
}

func (t *ChangeTracker) stage(c change) {
	t.changes = append(t.changes, c)
}

// pending returns a snapshot of the staged changes.
func (t *ChangeTracker) pending() []change {
	out := make([]change, len(t.changes))
	copy(out, t.changes)
	return out
}

// discard drops the first n changes, keeping anything staged after the
// snapshot that was committed.
func (t *ChangeTracker) discard(n int) {
	if n >= len(t.changes) {
		t.changes = nil
		return
	}
	t.changes = append([]change(nil), t.changes[n:]...)
}

// Len reports how many changes are waiting for a commit.
func (t *ChangeTracker) Len() int {
	return len(t.changes)
}

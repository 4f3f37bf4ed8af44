package store

// Record keys. The values are the undecorated JSON arrays described in the
// package documentation and carry no schema version.
const (
	KeyEvents    = "events"
	KeyBookmarks = "bookmarks"
)

// Keys lists every record the store owns.
func Keys() []string {
	return []string{KeyEvents, KeyBookmarks}
}

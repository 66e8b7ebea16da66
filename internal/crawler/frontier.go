package crawler

// frontierEntry is one unit of pending crawl work: a location and the
// depth it was discovered at.
type frontierEntry struct {
	location string
	depth    int
}

// frontier is the pending-work queue: a FIFO of (location, depth)
// pairs. FIFO order is load-bearing — it is what makes the traversal
// breadth-first, so every depth-N location is processed before any
// depth-N+1 location discovered from it.
type frontier struct {
	entries []frontierEntry
}

// push appends an entry to the back of the queue.
func (f *frontier) push(location string, depth int) {
	f.entries = append(f.entries, frontierEntry{location: location, depth: depth})
}

// pop removes and returns the oldest entry. ok is false when empty.
func (f *frontier) pop() (entry frontierEntry, ok bool) {
	if len(f.entries) == 0 {
		return frontierEntry{}, false
	}
	entry = f.entries[0]
	f.entries = f.entries[1:]
	return entry, true
}

// len returns the number of pending entries.
func (f *frontier) len() int {
	return len(f.entries)
}

// visitedSet tracks locations already dequeued and processed during one
// crawl run. It only ever grows, and it is scoped to a single run.
// Membership is by exact string equality; no canonicalization is
// applied beyond what the caller did.
type visitedSet map[string]struct{}

// contains reports whether the location was already visited.
func (v visitedSet) contains(location string) bool {
	_, ok := v[location]
	return ok
}

// add marks a location as visited.
func (v visitedSet) add(location string) {
	v[location] = struct{}{}
}

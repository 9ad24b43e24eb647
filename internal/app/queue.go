package app

import "github.com/sharkusmanch/modrinth-updater/internal/domain"

// QueueEntry is a dependency waiting to be processed.
type QueueEntry struct {
	ProjectID string
	// Origin is the slug of the project that required it.
	Origin string
}

// Queue is the run's work queue of dependencies. It remembers every project
// id it has seen, whether processed or queued, so that no project is handled
// twice in a run.
type Queue struct {
	seen    map[string]bool
	pending []QueueEntry
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{seen: make(map[string]bool)}
}

// Mark records id as seen. It returns false if id was already seen.
func (q *Queue) Mark(id string) bool {
	if id == "" || q.seen[id] {
		return false
	}
	q.seen[id] = true
	return true
}

// Push queues id unless it was already seen.
func (q *Queue) Push(id, origin string) bool {
	if !q.Mark(id) {
		return false
	}
	q.pending = append(q.pending, QueueEntry{ProjectID: id, Origin: origin})
	return true
}

// Next pops the oldest entry.
func (q *Queue) Next() (QueueEntry, bool) {
	if len(q.pending) == 0 {
		return QueueEntry{}, false
	}
	e := q.pending[0]
	q.pending = q.pending[1:]
	return e, true
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Expand queues the required dependencies of v that have not been seen and
// returns the ids that were newly queued. Optional dependencies are ignored.
func (q *Queue) Expand(v *domain.VersionRecord, origin string) []string {
	var queued []string
	for _, id := range v.RequiredDependencies() {
		if q.Push(id, origin) {
			queued = append(queued, id)
		}
	}
	return queued
}

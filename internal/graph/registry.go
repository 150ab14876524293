// # internal/graph/registry.go
package graph

import (
	"sort"
	"strings"
	"sync"

	"intmap/internal/errors"
)

// Registry interns fully-qualified names into sequential ids. Ids start at 1;
// 0 is reserved as the unresolved sentinel. Once frozen, lookups succeed and
// allocations fail, which enforces the barrier between hierarchy construction
// and edge extraction.
type Registry struct {
	mu     sync.RWMutex
	byFQN  map[string]ComponentID
	byID   map[ComponentID]string
	next   ComponentID
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{
		byFQN: make(map[string]ComponentID),
		byID:  make(map[ComponentID]string),
		next:  1,
	}
}

func validFQN(fqn string) bool {
	if fqn == "" {
		return false
	}
	if strings.HasPrefix(fqn, ".") || strings.HasSuffix(fqn, ".") {
		return false
	}
	return !strings.Contains(fqn, "..")
}

// GetOrCreate returns the id for fqn, allocating the next sequential id on
// first sight. Calling the same fqn twice returns the same id.
func (r *Registry) GetOrCreate(fqn string) (ComponentID, error) {
	if !validFQN(fqn) {
		return Unresolved, errors.New(errors.CodeInvalidIdentifier, "invalid fully-qualified name").
			WithContext(errors.CtxFQN, fqn)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byFQN[fqn]; ok {
		return id, nil
	}
	if r.frozen {
		return Unresolved, errors.New(errors.CodeValidationError, "registry is frozen").
			WithContext(errors.CtxFQN, fqn)
	}
	id := r.next
	r.next++
	r.byFQN[fqn] = id
	r.byID[id] = fqn
	return id, nil
}

// Lookup resolves fqn without allocating. The second result reports presence.
func (r *Registry) Lookup(fqn string) (ComponentID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byFQN[fqn]
	return id, ok
}

// FQN returns the name registered for id, or "" when id is unknown or the
// unresolved sentinel.
func (r *Registry) FQN(id ComponentID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// Freeze forbids further allocation. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byFQN)
}

// FQNs returns all registered names in id order.
func (r *Registry) FQNs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]ComponentID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}

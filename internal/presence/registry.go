package presence

import "sync"

// Registry tracks which browser softphone identities are currently online,
// per workspace. Identities are ephemeral: they exist only while the owning
// browser keeps its signaling socket open, and are never persisted.
//
// Concurrency: many browsers connect and disconnect at once; all operations
// take the registry lock. Cross-workspace operations never coordinate.
type Registry struct {
	mu sync.RWMutex

	byWorkspace map[string]map[string]struct{}
	byIdentity  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byWorkspace: map[string]map[string]struct{}{},
		byIdentity:  map[string]string{},
	}
}

// Register marks identity online for workspaceID. Registering the same
// identity twice is a no-op.
func (r *Registry) Register(workspaceID, identity string) {
	if workspaceID == "" || identity == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.byWorkspace[workspaceID]
	if !ok {
		set = map[string]struct{}{}
		r.byWorkspace[workspaceID] = set
	}
	set[identity] = struct{}{}
	r.byIdentity[identity] = workspaceID
}

// Unregister removes identity. Unknown identities are ignored.
func (r *Registry) Unregister(workspaceID, identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.byWorkspace[workspaceID]; ok {
		delete(set, identity)
		if len(set) == 0 {
			delete(r.byWorkspace, workspaceID)
		}
	}
	// Only drop the reverse entry if it still points at this workspace.
	if wid, ok := r.byIdentity[identity]; ok && wid == workspaceID {
		delete(r.byIdentity, identity)
	}
}

// Identities returns the online identities of a workspace.
// The returned slice is a copy.
func (r *Registry) Identities(workspaceID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byWorkspace[workspaceID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// WorkspaceFor is the reverse lookup used when a provider event only carries
// a client identity and not a workspace.
func (r *Registry) WorkspaceFor(identity string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wid, ok := r.byIdentity[identity]
	return wid, ok
}

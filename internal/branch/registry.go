package branch

import (
	"sort"
	"strings"
)

// Registry holds every known Branch, indexed both by display name and by
// source path-prefix. On lookup by path, the longest matching prefix
// wins; ties are broken by insertion order (earlier registrations win).
type Registry struct {
	byName    map[string]*Branch
	byPrefix  map[string]*Branch
	order     []string // prefixes in insertion order, for tie-breaking
}

// NewRegistry returns an empty Registry. The default branch (name
// "master") is created lazily, on first use, by Default.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*Branch),
		byPrefix: make(map[string]*Branch),
	}
}

// Register adds a branch if one with this prefix does not already exist,
// returning the (possibly pre-existing) Branch. Safe to call repeatedly
// as the apply engine discovers branch conventions during prescan.
func (r *Registry) Register(name, prefix string, isTag bool) *Branch {
	prefix = strings.Trim(prefix, "/")
	if existing, ok := r.byPrefix[prefix]; ok {
		return existing
	}
	b := newBranch(name, prefix, isTag)
	r.byName[name] = b
	r.byPrefix[prefix] = b
	r.order = append(r.order, prefix)
	return b
}

// ByName returns the branch with the given display name, if any.
func (r *Registry) ByName(name string) (*Branch, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// Default returns the fallback branch: whichever branch is currently
// registered under DefaultName, creating it with an empty prefix if no
// branch convention has claimed that name yet. Resolving by name, not by
// a fixed empty-prefix slot, matters because a convention like "trunk"
// maps onto the very same name ("master") the default uses: once that
// convention registers, Default must follow it rather than keep pointing
// at a stale, never-written stand-in branch.
func (r *Registry) Default() *Branch {
	if b, ok := r.byName[DefaultName]; ok {
		return b
	}
	return r.Register(DefaultName, "", false)
}

// ByPath returns the branch whose prefix is the longest match for path,
// or the default branch if none matches. Ties between equal-length
// prefixes are broken by insertion order.
func (r *Registry) ByPath(path string) (b *Branch, subpath string) {
	path = strings.Trim(path, "/")

	bestPrefix := ""
	bestLen := -1
	bestOrder := -1
	for i, prefix := range r.order {
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			if len(prefix) > bestLen || (len(prefix) == bestLen && i < bestOrder) {
				bestPrefix = prefix
				bestLen = len(prefix)
				bestOrder = i
			}
		}
	}

	if bestLen < 0 {
		return r.Default(), path
	}
	branch := r.byPrefix[bestPrefix]
	sub := strings.TrimPrefix(path, bestPrefix)
	sub = strings.TrimPrefix(sub, "/")
	return branch, sub
}

// All returns every registered branch, sorted lexicographically by name
// (the Commit driver's deterministic-ordering requirement, §4.7).
func (r *Registry) All() []*Branch {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Branch, 0, len(names))
	for _, name := range names {
		out = append(out, r.byName[name])
	}
	return out
}

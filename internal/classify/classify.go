// Package classify implements the path classifier (component C5):
// deciding, for a given source path, which branch it belongs to and the
// intra-branch subpath, and extending the branch registry when a path
// matches a configured branch/tag convention for the first time.
package classify

import (
	"strings"

	"github.com/gitbridge/svn2git/internal/branch"
	"github.com/gitbridge/svn2git/internal/config"
)

// Classifier holds the configured branch rules and the registry they
// populate. Classification is pure with respect to the registry's
// current state: it never reclassifies previously written content.
type Classifier struct {
	rules    []config.BranchRule
	registry *branch.Registry
}

// New returns a Classifier wired to registry, using rules in priority
// order (first structural match wins when a new branch boundary is
// discovered).
func New(registry *branch.Registry, rules []config.BranchRule) *Classifier {
	return &Classifier{rules: rules, registry: registry}
}

// Classify returns (branch, subpath) for path, extending the registry if
// path matches a rule whose prefix has not yet been registered (branch
// boundary detection, §4.6). Paths matching no rule fall to the already-
// registered branch with the longest matching prefix, or to the default
// branch.
func (c *Classifier) Classify(path string) (*branch.Branch, string) {
	trimmed := strings.Trim(path, "/")

	for _, rule := range c.rules {
		name, prefix, ok := matchRule(rule, trimmed)
		if !ok {
			continue
		}
		c.registry.Register(name, prefix, rule.IsTag)
		break
	}

	return c.registry.ByPath(trimmed)
}

// matchRule reports whether path matches rule, and if so the concrete
// branch name and prefix it implies. A rule ending in "/*" takes the
// first path segment after the prefix as the branch name; a literal
// rule matches its prefix exactly and uses rule.Name verbatim.
func matchRule(rule config.BranchRule, path string) (name, prefix string, ok bool) {
	if strings.HasSuffix(rule.Prefix, "/*") {
		base := strings.TrimSuffix(rule.Prefix, "/*")
		var rest string
		if base == "" {
			rest = path
		} else if path == base {
			return "", "", false
		} else if strings.HasPrefix(path, base+"/") {
			rest = strings.TrimPrefix(path, base+"/")
		} else {
			return "", "", false
		}
		segs := strings.SplitN(rest, "/", 2)
		if segs[0] == "" {
			return "", "", false
		}
		branchName := segs[0]
		fullPrefix := branchName
		if base != "" {
			fullPrefix = base + "/" + branchName
		}
		return branchName, fullPrefix, true
	}

	if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/") {
		name := rule.Name
		if name == "" {
			name = rule.Prefix
		}
		return name, rule.Prefix, true
	}
	return "", "", false
}

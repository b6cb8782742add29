package organizer

import (
	"path/filepath"
	"strings"
)

// PathPolicy validates the names an external caller hands to the tools and
// resolves them to absolute paths confined to the target directory. Every
// check runs before any filesystem call; rejection is by construction, not
// by canonicalize-and-compare after the fact.
type PathPolicy struct {
	root       string
	exclusions ExclusionSet
}

// NewPathPolicy builds a policy rooted at root. The root is cleaned to an
// absolute path once so later parent checks compare like with like.
func NewPathPolicy(root string, exclusions ExclusionSet) (*PathPolicy, error) {
	if strings.TrimSpace(root) == "" {
		return nil, E(KindIOFailure, "target directory is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, Wrap(err, KindIOFailure, "cannot resolve target directory '%s': %v", root, err)
	}
	if exclusions.empty() {
		exclusions = NewExclusionSet(nil, nil)
	}
	return &PathPolicy{root: filepath.Clean(abs), exclusions: exclusions}, nil
}

// Root returns the absolute target directory the policy confines to.
func (p *PathPolicy) Root() string { return p.root }

// Exclusions returns the protected-name set bound to this policy.
func (p *PathPolicy) Exclusions() ExclusionSet { return p.exclusions }

// ValidateName rejects names that could reference anything but a direct
// child of the root: empty or whitespace-only names, names carrying a path
// separator, and names containing a parent reference.
func (p *PathPolicy) ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return E(KindInvalidName, "name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return E(KindInvalidName, "name '%s' must not contain path separators", name)
	}
	if strings.Contains(name, "..") {
		return E(KindInvalidName, "name '%s' must not contain parent references", name)
	}
	return nil
}

// Resolve validates name and joins it under the root. The resolved path's
// parent must be exactly the root: the tools operate one level deep only.
// Protected names are rejected here no matter how valid they look, so no
// caller can forget the check.
func (p *PathPolicy) Resolve(name string) (string, error) {
	if err := p.ValidateName(name); err != nil {
		return "", err
	}
	if p.exclusions.IsExcluded(name) {
		return "", E(KindProtected, "'%s' is protected and cannot be touched", name)
	}
	path := filepath.Join(p.root, name)
	if filepath.Dir(path) != p.root {
		return "", E(KindPathEscape, "path escapes the target directory: %s", name)
	}
	return path, nil
}

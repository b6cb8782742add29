package organizer

import "sort"

// Built-in protected names. Callers extend these per session; nothing can
// shrink them. The per-directory override file protects itself.
var (
	DefaultExcludedFiles   = []string{".env", ".DS_Store", ".deeporg.yaml"}
	DefaultExcludedFolders = []string{".git", "venv", "node_modules", "__pycache__"}
)

// ExclusionSet holds the file and folder names that are immune to every
// tool operation. Matching is by name only, never by path: an excluded
// name is protected wherever it appears among the root's children.
type ExclusionSet struct {
	files   map[string]struct{}
	folders map[string]struct{}
}

// NewExclusionSet unions the built-in defaults with caller-supplied names.
// The two sets are kept disjoint: a name listed as a file is dropped from
// the folder set, since lookups treat the union anyway.
func NewExclusionSet(extraFiles, extraFolders []string) ExclusionSet {
	s := ExclusionSet{
		files:   make(map[string]struct{}),
		folders: make(map[string]struct{}),
	}
	for _, name := range DefaultExcludedFiles {
		s.files[name] = struct{}{}
	}
	for _, name := range extraFiles {
		if name != "" {
			s.files[name] = struct{}{}
		}
	}
	for _, name := range DefaultExcludedFolders {
		s.addFolder(name)
	}
	for _, name := range extraFolders {
		s.addFolder(name)
	}
	return s
}

func (s ExclusionSet) addFolder(name string) {
	if name == "" {
		return
	}
	if _, dup := s.files[name]; dup {
		return
	}
	s.folders[name] = struct{}{}
}

// IsExcluded reports whether name appears in either set.
func (s ExclusionSet) IsExcluded(name string) bool {
	if _, ok := s.files[name]; ok {
		return true
	}
	_, ok := s.folders[name]
	return ok
}

// Files returns the protected file names, sorted for stable output.
func (s ExclusionSet) Files() []string { return sorted(s.files) }

// Folders returns the protected folder names, sorted for stable output.
func (s ExclusionSet) Folders() []string { return sorted(s.folders) }

// Names returns the union of both sets, sorted.
func (s ExclusionSet) Names() []string {
	all := make(map[string]struct{}, len(s.files)+len(s.folders))
	for n := range s.files {
		all[n] = struct{}{}
	}
	for n := range s.folders {
		all[n] = struct{}{}
	}
	return sorted(all)
}

func (s ExclusionSet) empty() bool { return s.files == nil && s.folders == nil }

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

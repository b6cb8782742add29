package organizer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"unicode/utf8"

	"github.com/h2non/filetype"
)

// DefaultMaxReadBytes bounds read_file previews when a session does not set
// its own limit.
const DefaultMaxReadBytes = 2000

// ListingEntry is one direct child of the target directory that survived
// exclusion filtering. Order follows directory enumeration; callers must
// not rely on it being stable across filesystems.
type ListingEntry struct {
	Name string
	Dir  bool
}

// FileOps implements the four primitive operations exposed to the agent.
// Every operation consults the path policy first and reports failure as a
// kind-tagged error instead of letting a raw fault escape. Operations are
// invoked strictly sequentially within a session, so FileOps keeps no
// internal locking.
type FileOps struct {
	policy       *PathPolicy
	maxReadBytes int
	dryRun       bool

	// dryCreated remembers folders "created" during a dry run so a
	// subsequent simulated move into them is not rejected as missing.
	dryCreated map[string]struct{}
}

// NewFileOps binds the operations to a target directory and its policy.
func NewFileOps(root string, exclusions ExclusionSet, maxReadBytes int, dryRun bool) (*FileOps, error) {
	policy, err := NewPathPolicy(root, exclusions)
	if err != nil {
		return nil, err
	}
	if maxReadBytes <= 0 {
		maxReadBytes = DefaultMaxReadBytes
	}
	return &FileOps{
		policy:       policy,
		maxReadBytes: maxReadBytes,
		dryRun:       dryRun,
		dryCreated:   make(map[string]struct{}),
	}, nil
}

// Root returns the absolute target directory.
func (o *FileOps) Root() string { return o.policy.Root() }

// DryRun reports whether mutations are simulated.
func (o *FileOps) DryRun() bool { return o.dryRun }

// MaxReadBytes returns the configured read preview limit.
func (o *FileOps) MaxReadBytes() int { return o.maxReadBytes }

// Exclusions returns the protected-name set in effect.
func (o *FileOps) Exclusions() ExclusionSet { return o.policy.Exclusions() }

// List enumerates the direct children of the target directory, dropping
// every excluded name. Enumeration failure is reported, never raised: the
// orchestration loop must be able to carry on or stop on its own terms.
func (o *FileOps) List() ([]ListingEntry, error) {
	dirEntries, err := os.ReadDir(o.policy.Root())
	if err != nil {
		return nil, Wrap(err, KindIOFailure, "cannot list '%s': %v", o.policy.Root(), err)
	}
	entries := make([]ListingEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if o.policy.Exclusions().IsExcluded(de.Name()) {
			continue
		}
		entries = append(entries, ListingEntry{Name: de.Name(), Dir: de.IsDir()})
	}
	return entries, nil
}

// CreateFolder creates a directory named name directly under the root.
// Creating a folder that already exists is success, and the message says
// so explicitly so the agent learns the folder was not fresh. In dry-run
// mode the name is validated and remembered but nothing is created.
func (o *FileOps) CreateFolder(name string) (string, error) {
	path, err := o.policy.Resolve(name)
	if err != nil {
		return "", err
	}
	if info, err := os.Lstat(path); err == nil {
		if info.IsDir() {
			return fmt.Sprintf("Folder '%s' already exists at %s", name, path), nil
		}
		return "", E(KindIOFailure, "cannot create folder '%s': a file with that name already exists", name)
	}
	if o.dryRun {
		o.dryCreated[name] = struct{}{}
		return fmt.Sprintf("[dry run] Folder '%s' would be created at %s", name, path), nil
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Sprintf("Folder '%s' already exists at %s", name, path), nil
		}
		return "", Wrap(err, KindIOFailure, "failed to create folder '%s': %v", name, err)
	}
	return fmt.Sprintf("Folder '%s' created at %s", name, path), nil
}

// MoveFile moves a regular file into an existing folder, both direct
// children of the root. The destination is never auto-created. A dry run
// accepts destinations planned by an earlier simulated CreateFolder.
func (o *FileOps) MoveFile(name, destFolder string) (string, error) {
	src, err := o.policy.Resolve(name)
	if err != nil {
		return "", err
	}
	destDir, err := o.policy.Resolve(destFolder)
	if err != nil {
		return "", err
	}

	info, err := os.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", E(KindNotFound, "source file '%s' does not exist", name)
		}
		return "", Wrap(err, KindIOFailure, "cannot stat '%s': %v", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", E(KindNotAFile, "'%s' is not a regular file", name)
	}

	destInfo, err := os.Lstat(destDir)
	destExists := err == nil && destInfo.IsDir()

	if o.dryRun {
		if !destExists {
			if _, planned := o.dryCreated[destFolder]; !planned {
				return "", E(KindDestMissing, "destination folder '%s' does not exist", destFolder)
			}
		}
		return fmt.Sprintf("[dry run] File '%s' would be moved to '%s'", name, destFolder), nil
	}

	if !destExists {
		return "", E(KindDestMissing, "destination folder '%s' does not exist", destFolder)
	}
	if err := movePath(src, filepath.Join(destDir, name), info.Mode()); err != nil {
		return "", Wrap(err, KindIOFailure, "failed to move '%s' to '%s': %v", name, destFolder, err)
	}
	return fmt.Sprintf("File '%s' moved to '%s'", name, destFolder), nil
}

// ReadFile returns up to maxBytes of a text file. Truncation is always
// visible in the returned string itself: the caller must never need
// side-channel metadata to detect it. Content that fails the text sniff
// is refused outright rather than returned as partial garbage.
func (o *FileOps) ReadFile(name string, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		maxBytes = o.maxReadBytes
	}
	path, err := o.policy.Resolve(name)
	if err != nil {
		return "", err
	}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", E(KindNotFound, "file '%s' does not exist", name)
		}
		return "", Wrap(err, KindIOFailure, "cannot stat '%s': %v", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", E(KindNotAFile, "'%s' is not a regular file", name)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", Wrap(err, KindIOFailure, "cannot open '%s': %v", name, err)
	}
	defer f.Close()

	// Read one byte past the limit so truncation is detectable without a
	// second stat of a file that may be changing under us.
	head := make([]byte, maxBytes+1)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", Wrap(err, KindIOFailure, "failed to read '%s': %v", name, err)
	}
	data := head[:n]

	if isBinary(data) {
		return "", E(KindNotText, "file '%s' is not a text file", name)
	}

	if n <= maxBytes {
		return string(data), nil
	}
	content := trimToRuneBoundary(data[:maxBytes])
	marker := fmt.Sprintf("\n\n[content truncated: %d bytes total, showing first %d bytes]", info.Size(), maxBytes)
	return string(content) + marker, nil
}

// movePath renames src to dst, falling back to copy-then-delete when the
// two sit on different filesystems.
func movePath(src, dst string, mode fs.FileMode) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyThenDelete(src, dst, mode)
}

func copyThenDelete(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// isBinary sniffs content the way the read tool refuses it: a known binary
// magic number, a NUL byte, or invalid UTF-8 all disqualify the file.
func isBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return true
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}
	return !utf8.Valid(trimToRuneBoundary(data))
}

// trimToRuneBoundary drops a trailing partial rune left by a byte-limited
// read so truncation never splits a character.
func trimToRuneBoundary(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

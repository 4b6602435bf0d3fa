// Package safety confines thread storage paths to their root directory.
package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Violation is a path policy failure with a machine-readable code.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e Violation) Error() string {
	return e.Code + ": " + e.Message
}

// ResolveRoot makes root absolute and resolves symlinks so later boundary
// checks compare like with like. An empty root means the working directory.
// The root does not need to exist yet.
func ResolveRoot(root string) (string, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("abs(%s): %w", root, err)
	}
	return evalExisting(abs), nil
}

// evalExisting resolves symlinks in the deepest existing ancestor of p and
// rejoins the missing tail.
func evalExisting(p string) string {
	rest := ""
	for cur := p; ; {
		if r, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(r, rest)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}

// resolveUnder joins relPath to absRoot and returns the candidate together
// with its slash-separated form relative to the root.
func resolveUnder(absRoot, relPath string) (string, string, error) {
	if filepath.IsAbs(relPath) {
		return "", "", Violation{Code: "ERR_PATH_OUTSIDE_ROOT", Message: "absolute paths are not allowed"}
	}

	// Resolving through the deepest existing ancestor catches an escape via a
	// symlinked directory even when the leaf does not exist yet.
	candidate := evalExisting(filepath.Join(absRoot, filepath.Clean(relPath)))

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", Violation{Code: "ERR_PATH_OUTSIDE_ROOT", Message: "path resolves outside the storage root"}
	}
	return candidate, filepath.ToSlash(rel), nil
}

func underHidden(rel string) bool {
	for _, dir := range []string{".git", ".agent"} {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

// ValidateRelPath returns the absolute form of relPath for reading. It rejects
// absolute inputs, parent traversal, symlink escapes and anything under .git/
// or .agent/.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolveUnder(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underHidden(rel) {
		return "", Violation{Code: "ERR_DENIED_READ", Message: "reads under .git/ or .agent/ are not allowed"}
	}
	return candidate, nil
}

// ValidateWritePath is ValidateRelPath for writes. Writing the root itself is
// also denied.
func ValidateWritePath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolveUnder(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", Violation{Code: "ERR_DENIED_WRITE", Message: "cannot write the storage root itself"}
	}
	if underHidden(rel) {
		return "", Violation{Code: "ERR_DENIED_WRITE", Message: "writes under .git/ or .agent/ are not allowed"}
	}
	return candidate, nil
}

// ValidName reports whether s can serve as a single directory or file name
// inside the storage root: non-empty, not a dot element, no separators and
// not a denied hidden directory.
func ValidName(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) || underHidden(s) {
		return Violation{Code: "ERR_INVALID_NAME", Message: fmt.Sprintf("%q is not a valid path element", s)}
	}
	return nil
}

// ThreadFilePath returns the validated location
// <absRoot>/<assistant>/<threadID>/<name>. Every component must pass
// ValidName.
func ThreadFilePath(absRoot, assistant, threadID, name string) (string, error) {
	for _, part := range []string{assistant, threadID, name} {
		if err := ValidName(part); err != nil {
			return "", err
		}
	}
	return ValidateWritePath(absRoot, filepath.Join(assistant, threadID, name))
}

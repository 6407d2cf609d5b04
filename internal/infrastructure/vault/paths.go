// Package vault confines every document operation to a single root
// directory and implements the atomic move protocol over it.
package vault

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

type Vault struct {
	root string

	// verify is the post-write comparison of the move protocol. Tests
	// override it to inject verification failures.
	verify func(want, got []byte) bool
}

// New roots a vault at basePath, creating the workflow folders. All later
// path resolution is confined under this root.
func New(basePath string) (*Vault, error) {
	if basePath == "" {
		basePath = "./data/vault"
	}
	root, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	for _, folder := range domain.Folders() {
		if err := os.MkdirAll(filepath.Join(root, string(folder)), 0o755); err != nil {
			return nil, fmt.Errorf("create vault folder %s: %w", folder, err)
		}
	}
	return &Vault{root: root, verify: bytes.Equal}, nil
}

func (v *Vault) Root() string { return v.root }

// Resolve maps a vault-relative path to an absolute one. It is the sole
// gate in front of the filesystem: absolute paths and traversal outside the
// root fail with ErrAccessDenied, and any extension other than the document
// extension fails with ErrInvalidDocumentType.
func (v *Vault) Resolve(rel string) (string, error) {
	if rel == "" {
		return "", domain.WrapError(domain.ErrAccessDenied, "resolve path",
			fmt.Errorf("empty path"))
	}
	if filepath.IsAbs(rel) {
		return "", domain.WrapError(domain.ErrAccessDenied, "resolve path",
			fmt.Errorf("absolute path %q", rel))
	}
	if filepath.Ext(rel) != domain.DocumentExt {
		return "", domain.WrapError(domain.ErrInvalidDocumentType, "resolve path",
			fmt.Errorf("extension %q, want %q", filepath.Ext(rel), domain.DocumentExt))
	}
	abs := filepath.Join(v.root, filepath.Clean(rel))
	inside, err := filepath.Rel(v.root, abs)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", domain.WrapError(domain.ErrAccessDenied, "resolve path",
			fmt.Errorf("path %q escapes vault root", rel))
	}
	return abs, nil
}

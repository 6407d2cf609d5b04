package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

// Read loads and parses a document. A vanished file maps to
// ErrAlreadyProcessed: another processor won the race, which is benign.
func (v *Vault) Read(_ context.Context, rel string) (*domain.TaskDocument, error) {
	abs, err := v.Resolve(rel)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.WrapError(domain.ErrAlreadyProcessed, "read document", err)
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	identity, err := domain.IdentityFromFilename(filepath.Base(rel))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	meta, body := ParseDocument(string(raw))
	return &domain.TaskDocument{Identity: identity, Meta: meta, Body: body}, nil
}

// Locate finds a document by identity across every folder, including the
// prefixed pseudo-state names in Inbox.
func (v *Vault) Locate(_ context.Context, identity string) (string, domain.Folder, error) {
	name := identity + domain.DocumentExt
	candidates := []struct {
		folder domain.Folder
		name   string
	}{
		{domain.FolderNeedsAction, name},
		{domain.FolderDone, name},
		{domain.FolderInbox, name},
		{domain.FolderInbox, domain.PrefixClarification + name},
		{domain.FolderInbox, domain.PrefixBlocked + name},
	}
	for _, c := range candidates {
		rel := filepath.Join(string(c.folder), c.name)
		if _, err := os.Stat(filepath.Join(v.root, rel)); err == nil {
			return rel, c.folder, nil
		}
	}
	return "", "", domain.WrapError(domain.ErrAlreadyProcessed, "locate document",
		fmt.Errorf("identity %s not found in vault", identity))
}

// CountByFolder reports how many documents sit in each workflow folder.
func (v *Vault) CountByFolder(_ context.Context) (map[domain.Folder]int, error) {
	counts := make(map[domain.Folder]int, len(domain.Folders()))
	for _, folder := range domain.Folders() {
		entries, err := os.ReadDir(filepath.Join(v.root, string(folder)))
		if err != nil {
			return nil, fmt.Errorf("count folder %s: %w", folder, err)
		}
		n := 0
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), domain.DocumentExt) {
				n++
			}
		}
		counts[folder] = n
	}
	return counts, nil
}

// List returns the document names in a folder, for watcher catch-up scans.
func (v *Vault) List(_ context.Context, folder domain.Folder) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(v.root, string(folder)))
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folder, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), domain.DocumentExt) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// DisambiguatedName suffixes a destination path with a timestamp so a
// caller can retry around a DestinationConflict without overwriting.
func DisambiguatedName(rel string, now time.Time) string {
	base := strings.TrimSuffix(rel, domain.DocumentExt)
	return base + "-" + now.UTC().Format("150405") + domain.DocumentExt
}

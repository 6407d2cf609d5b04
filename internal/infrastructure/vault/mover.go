package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

// Move relocates a document with the write-before-delete protocol:
//
//  1. resolve both paths through the vault gate
//  2. reject an occupied destination unless overwrite is set
//  3. read the source in full (ENOENT means another processor won the race)
//  4. merge the new metadata fields into the parsed header
//  5. write the merged document to the destination, atomically for readers
//     (temp file in the destination directory, then rename)
//  6. re-read and byte-compare; on mismatch remove the destination and fail
//     with IntegrityFailure, leaving the source untouched
//  7. delete the source
//  8. verify the source is gone; if not, fail with RollbackRequired — the
//     destination is authoritative but a duplicate now exists
//
// Until step 5 commits, the source is unmodified and recoverable. After
// step 7 the destination is the sole copy.
func (v *Vault) Move(_ context.Context, src, dst string, fields []domain.Field, overwrite bool) error {
	srcAbs, err := v.Resolve(src)
	if err != nil {
		return err
	}
	dstAbs, err := v.Resolve(dst)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, err := os.Stat(dstAbs); err == nil {
			return domain.WrapError(domain.ErrDestinationConflict, "move document",
				fmt.Errorf("destination %s already exists", dst))
		}
	}

	raw, err := os.ReadFile(srcAbs)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.WrapError(domain.ErrAlreadyProcessed, "move document", err)
		}
		return fmt.Errorf("read source: %w", err)
	}

	meta, body := ParseDocument(string(raw))
	meta.Merge(fields)
	content := []byte(SerializeDocument(meta, body))

	if err := v.writeAtomic(dstAbs, content); err != nil {
		return fmt.Errorf("write destination: %w", err)
	}

	written, err := os.ReadFile(dstAbs)
	if err != nil || !v.verify(content, written) {
		_ = os.Remove(dstAbs)
		return domain.WrapError(domain.ErrIntegrityFailure, "move document",
			fmt.Errorf("destination %s failed post-write verification", dst))
	}

	if err := os.Remove(srcAbs); err != nil && !os.IsNotExist(err) {
		return domain.WrapError(domain.ErrRollbackRequired, "move document",
			fmt.Errorf("destination written but source %s not deleted: %w", src, err))
	}
	if _, err := os.Stat(srcAbs); err == nil {
		return domain.WrapError(domain.ErrRollbackRequired, "move document",
			fmt.Errorf("destination written but source %s still present", src))
	}
	return nil
}

// Rewrite replaces a document's content in place with the same
// temp-then-rename discipline, verifying the result. Used by the
// summarizer to append sections without exposing a half-written file.
func (v *Vault) Rewrite(_ context.Context, rel string, doc *domain.TaskDocument) error {
	abs, err := v.Resolve(rel)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return domain.WrapError(domain.ErrAlreadyProcessed, "rewrite document", err)
		}
		return fmt.Errorf("stat document: %w", err)
	}
	content := []byte(SerializeDocument(doc.Meta, doc.Body))
	if err := v.writeAtomic(abs, content); err != nil {
		return fmt.Errorf("rewrite document: %w", err)
	}
	written, err := os.ReadFile(abs)
	if err != nil || !v.verify(content, written) {
		return domain.WrapError(domain.ErrIntegrityFailure, "rewrite document",
			fmt.Errorf("document %s failed post-write verification", rel))
	}
	return nil
}

// writeAtomic writes through a temp file in the target directory and
// renames it over the destination, so readers never observe a partial file.
func (v *Vault) writeAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}
	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/naruebet/worklog-api/internal/upload"
)

var (
	// ErrNotFound: no record with that id exists.
	ErrNotFound = errors.New("record not found")
	// ErrNotOwner: the record exists but belongs to another user. The HTTP
	// layer answers 404 for both so a caller cannot probe for existence.
	ErrNotOwner = errors.New("record owned by another user")
)

// Record is the capability set a row type needs for owner-scoped CRUD with
// an optional file artifact attached.
type Record interface {
	PrimaryID() uint
	OwnerID() uint
	Artifact() string
	SetArtifact(string)
}

// Owned is the one ownership-checked store shared by worklogs and gallery
// images. Rows and file artifacts live in different systems with no common
// transaction, so every mutation runs the same two-phase sequence: commit
// the artifact first, then the row, and compensate by deleting the fresh
// artifact when the row write fails. Cleanup of replaced or orphaned
// artifacts is best-effort and never blocks the row mutation.
type Owned[R any, P interface {
	*R
	Record
}] struct {
	DB    *gorm.DB
	Files *upload.Manager
	Order string // ListMine ordering, newest first
}

// Create stores the optional upload, then the row. On a row failure the
// just-written artifact is deleted so no file is left claimed by nothing.
func (s *Owned[R, P]) Create(ctx context.Context, rec P, file *multipart.FileHeader) error {
	if file != nil {
		name, err := s.Files.Accept(file)
		if err != nil {
			return err
		}
		rec.SetArtifact(name)
	}

	if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
		s.Files.Remove(rec.Artifact())
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (s *Owned[R, P]) ListMine(ctx context.Context, ownerID uint) ([]R, error) {
	var recs []R
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order(s.Order).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return recs, nil
}

// Get loads one record and enforces strict owner equality.
func (s *Owned[R, P]) Get(ctx context.Context, id, ownerID uint) (P, error) {
	rec := P(new(R))
	if err := s.DB.WithContext(ctx).First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load record: %w", err)
	}
	if rec.OwnerID() != ownerID {
		return nil, ErrNotOwner
	}
	return rec, nil
}

// Update mutates an owned record. Exactly one of three file paths applies:
// a new upload replaces the old artifact, deleteFile clears it, or the
// existing reference is left untouched.
func (s *Owned[R, P]) Update(ctx context.Context, id, ownerID uint, apply func(P), file *multipart.FileHeader, deleteFile bool) (P, error) {
	rec, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	apply(rec)

	old := rec.Artifact()
	switch {
	case file != nil:
		name, err := s.Files.Accept(file)
		if err != nil {
			return nil, err
		}
		rec.SetArtifact(name)
		if err := s.DB.WithContext(ctx).Save(rec).Error; err != nil {
			s.Files.Remove(name)
			return nil, fmt.Errorf("update record: %w", err)
		}
		if old != name {
			s.Files.Remove(old)
		}
	case deleteFile:
		rec.SetArtifact("")
		if err := s.DB.WithContext(ctx).Save(rec).Error; err != nil {
			return nil, fmt.Errorf("update record: %w", err)
		}
		s.Files.Remove(old)
	default:
		if err := s.DB.WithContext(ctx).Save(rec).Error; err != nil {
			return nil, fmt.Errorf("update record: %w", err)
		}
	}

	return rec, nil
}

// Delete removes the row, then its artifact. Artifact removal cannot fail
// the call, so the record never survives its own deletion.
func (s *Owned[R, P]) Delete(ctx context.Context, id, ownerID uint) error {
	rec, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.DB.WithContext(ctx).Delete(rec).Error; err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.Files.Remove(rec.Artifact())
	return nil
}

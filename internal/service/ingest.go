package service

import (
	"context"
	"fmt"

	"github.com/kstepanov/dormhub/internal/errs"
	"github.com/kstepanov/dormhub/internal/model"
	"github.com/kstepanov/dormhub/internal/repository"
)

// Notifier fans a status message out to every connected viewer.
type Notifier interface {
	Broadcast(n model.Notification)
}

// IngestService accepts batch uploads of the two record kinds and announces
// successful updates. Callers must already be authenticated; no re-check here.
type IngestService interface {
	// UploadGroups appends group rows and returns the count written.
	UploadGroups(ctx context.Context, rows []model.Group) (int, error)
	// UploadHostels appends hostel rows and returns the count written.
	UploadHostels(ctx context.Context, rows []model.Hostel) (int, error)
	// ListGroups returns all stored group rows.
	ListGroups(ctx context.Context) ([]model.Group, error)
	// ListHostels returns all stored hostel rows.
	ListHostels(ctx context.Context) ([]model.Hostel, error)
	// AnnounceGroups broadcasts a groups-updated notification to all viewers.
	// Called by the HTTP layer only after the uploader's response is written.
	AnnounceGroups()
	// AnnounceHostels broadcasts a hostels-updated notification.
	AnnounceHostels()
}

type IngestServiceImpl struct {
	repo     repository.RecordRepository
	notify   Notifier
	maxBatch int
}

// NewIngestService constructs IngestService with batch limits.
func NewIngestService(repo repository.RecordRepository, notify Notifier, maxBatch int) *IngestServiceImpl {
	if maxBatch <= 0 {
		maxBatch = 1000
	}
	return &IngestServiceImpl{repo: repo, notify: notify, maxBatch: maxBatch}
}

// UploadGroups appends the batch in input order. An empty batch is a no-op
// success (count 0). On a mid-batch store failure the count of rows already
// written is returned alongside errs.ErrPartialWrite; there is no rollback.
func (s *IngestServiceImpl) UploadGroups(ctx context.Context, rows []model.Group) (int, error) {
	if err := s.checkBatch(len(rows)); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := s.repo.AppendGroups(ctx, rows)
	return n, wrapAppendErr(n, len(rows), err)
}

// UploadHostels appends the batch in input order; semantics match UploadGroups.
func (s *IngestServiceImpl) UploadHostels(ctx context.Context, rows []model.Hostel) (int, error) {
	if err := s.checkBatch(len(rows)); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := s.repo.AppendHostels(ctx, rows)
	return n, wrapAppendErr(n, len(rows), err)
}

// ListGroups returns all stored group rows.
func (s *IngestServiceImpl) ListGroups(ctx context.Context) ([]model.Group, error) {
	return s.repo.ListGroups(ctx)
}

// ListHostels returns all stored hostel rows.
func (s *IngestServiceImpl) ListHostels(ctx context.Context) ([]model.Hostel, error) {
	return s.repo.ListHostels(ctx)
}

// AnnounceGroups broadcasts the groups-updated notification.
func (s *IngestServiceImpl) AnnounceGroups() { s.notify.Broadcast(model.GroupsUpdated()) }

// AnnounceHostels broadcasts the hostels-updated notification.
func (s *IngestServiceImpl) AnnounceHostels() { s.notify.Broadcast(model.HostelsUpdated()) }

func (s *IngestServiceImpl) checkBatch(n int) error {
	if n > s.maxBatch {
		return fmt.Errorf("validation: batch too large (%d > %d)", n, s.maxBatch)
	}
	return nil
}

// wrapAppendErr tags a mid-batch failure as a partial write; a failure before
// any row landed is a plain store error.
func wrapAppendErr(written, total int, err error) error {
	if err == nil {
		return nil
	}
	if written > 0 {
		return fmt.Errorf("%d/%d rows written: %w: %w", written, total, errs.ErrPartialWrite, err)
	}
	return err
}

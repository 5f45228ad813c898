package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kstepanov/dormhub/internal/errs"
	"github.com/kstepanov/dormhub/internal/model"
	"github.com/kstepanov/dormhub/internal/repository"
)

type fakeRecords struct {
	groups  []model.Group
	hostels []model.Hostel

	// failAt makes the append fail before writing the row at this index (-1 = never).
	failAt  int
	listErr error
}

var _ repository.RecordRepository = (*fakeRecords)(nil)

func (f *fakeRecords) AppendGroups(_ context.Context, rows []model.Group) (int, error) {
	for i, g := range rows {
		if f.failAt >= 0 && i == f.failAt {
			return i, errors.New("store gone")
		}
		f.groups = append(f.groups, g)
	}
	return len(rows), nil
}

func (f *fakeRecords) AppendHostels(_ context.Context, rows []model.Hostel) (int, error) {
	for i, h := range rows {
		if f.failAt >= 0 && i == f.failAt {
			return i, errors.New("store gone")
		}
		f.hostels = append(f.hostels, h)
	}
	return len(rows), nil
}

func (f *fakeRecords) ListGroups(context.Context) ([]model.Group, error) {
	return f.groups, f.listErr
}

func (f *fakeRecords) ListHostels(context.Context) ([]model.Hostel, error) {
	return f.hostels, f.listErr
}

type fakeNotifier struct{ sent []model.Notification }

func (f *fakeNotifier) Broadcast(n model.Notification) { f.sent = append(f.sent, n) }

func threeGroups() []model.Group {
	return []model.Group{
		{GroupID: 1, Members: 4, Gender: "M"},
		{GroupID: 2, Members: 2, Gender: "F"},
		{GroupID: 3, Members: 5, Gender: "M"},
	}
}

func TestIngest_UploadGroups_FullSuccess(t *testing.T) {
	t.Parallel()
	repo := &fakeRecords{failAt: -1}
	nt := &fakeNotifier{}
	s := NewIngestService(repo, nt, 100)

	n, err := s.UploadGroups(context.Background(), threeGroups())
	if err != nil {
		t.Fatalf("UploadGroups: %v", err)
	}
	if n != 3 || len(repo.groups) != 3 {
		t.Fatalf("count=%d stored=%d, want 3/3", n, len(repo.groups))
	}
	// Persisting never broadcasts by itself; announce is a separate step.
	if len(nt.sent) != 0 {
		t.Fatalf("unexpected broadcast during persist: %v", nt.sent)
	}
}

func TestIngest_UploadGroups_EmptyBatchIsNoopSuccess(t *testing.T) {
	t.Parallel()
	repo := &fakeRecords{failAt: -1}
	nt := &fakeNotifier{}
	s := NewIngestService(repo, nt, 100)

	n, err := s.UploadGroups(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("empty batch: n=%d err=%v, want 0/nil", n, err)
	}
	if len(nt.sent) != 0 {
		t.Fatalf("empty batch must not broadcast")
	}
}

func TestIngest_UploadGroups_PartialWrite(t *testing.T) {
	t.Parallel()
	repo := &fakeRecords{failAt: 2}
	s := NewIngestService(repo, &fakeNotifier{}, 100)

	n, err := s.UploadGroups(context.Background(), threeGroups())
	if !errors.Is(err, errs.ErrPartialWrite) {
		t.Fatalf("want ErrPartialWrite, got %v", err)
	}
	if n != 2 {
		t.Fatalf("rows written = %d, want 2", n)
	}
}

func TestIngest_UploadGroups_StoreUnavailable(t *testing.T) {
	t.Parallel()
	repo := &fakeRecords{failAt: 0}
	s := NewIngestService(repo, &fakeNotifier{}, 100)

	n, err := s.UploadGroups(context.Background(), threeGroups())
	if err == nil || errors.Is(err, errs.ErrPartialWrite) {
		t.Fatalf("want plain store error, got %v", err)
	}
	if n != 0 {
		t.Fatalf("rows written = %d, want 0", n)
	}
}

func TestIngest_UploadHostels_BatchTooLarge(t *testing.T) {
	t.Parallel()
	s := NewIngestService(&fakeRecords{failAt: -1}, &fakeNotifier{}, 1)

	rows := []model.Hostel{
		{HostelName: "North", RoomNumber: 1, Capacity: 2, Gender: "F"},
		{HostelName: "North", RoomNumber: 2, Capacity: 2, Gender: "F"},
	}
	if _, err := s.UploadHostels(context.Background(), rows); err == nil {
		t.Fatalf("want batch too large error")
	}
}

func TestIngest_Announce(t *testing.T) {
	t.Parallel()
	nt := &fakeNotifier{}
	s := NewIngestService(&fakeRecords{failAt: -1}, nt, 100)

	s.AnnounceGroups()
	s.AnnounceHostels()

	if len(nt.sent) != 2 {
		t.Fatalf("broadcasts = %d, want 2", len(nt.sent))
	}
	if nt.sent[0].Kind != model.KindGroupsUpdated || nt.sent[1].Kind != model.KindHostelsUpdated {
		t.Fatalf("kinds = %s/%s", nt.sent[0].Kind, nt.sent[1].Kind)
	}
	if nt.sent[0].Event != "update" || nt.sent[0].Message != "Groups updated" {
		t.Fatalf("unexpected payload: %+v", nt.sent[0])
	}
}

func TestIngest_Lists(t *testing.T) {
	t.Parallel()
	repo := &fakeRecords{failAt: -1, groups: threeGroups()}
	s := NewIngestService(repo, &fakeNotifier{}, 100)

	got, err := s.ListGroups(context.Background())
	if err != nil || len(got) != 3 {
		t.Fatalf("ListGroups: n=%d err=%v", len(got), err)
	}

	repo.listErr = errors.New("down")
	if _, err := s.ListHostels(context.Background()); err == nil {
		t.Fatalf("want list error propagated")
	}
}

package repository

import (
	"context"

	"github.com/kstepanov/dormhub/internal/model"
)

// RecordRepository provides append-only access to the uploaded datasets.
//
// Append methods write rows one by one in input order and report how many rows
// made it in, even when the batch fails partway. There is no rollback; a
// mid-batch failure leaves the rows already written in place.
type RecordRepository interface {
	// AppendGroups appends group rows and returns the number written.
	AppendGroups(ctx context.Context, rows []model.Group) (int, error)
	// AppendHostels appends hostel rows and returns the number written.
	AppendHostels(ctx context.Context, rows []model.Hostel) (int, error)
	// ListGroups returns all stored group rows in insertion order.
	ListGroups(ctx context.Context) ([]model.Group, error)
	// ListHostels returns all stored hostel rows in insertion order.
	ListHostels(ctx context.Context) ([]model.Hostel, error)
}

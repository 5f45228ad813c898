package postgres

import (
	"context"
	"fmt"

	"github.com/kstepanov/dormhub/internal/model"
)

// RecordRepo implements RecordRepository using PostgreSQL.
//
// Appends run row by row without a transaction: the batch is best-effort
// ordered and a mid-batch failure leaves earlier rows in place. The caller
// learns how many rows were written.
type RecordRepo struct{ db *DB }

// NewRecordRepo constructs a record repository.
func NewRecordRepo(db *DB) *RecordRepo { return &RecordRepo{db: db} }

// AppendGroups appends group rows in input order and returns the count written.
func (r *RecordRepo) AppendGroups(ctx context.Context, rows []model.Group) (int, error) {
	const q = `
INSERT INTO groups (group_id, members, gender)
VALUES ($1, $2, $3)`
	for i, g := range rows {
		if _, err := r.db.Pool.Exec(ctx, q, g.GroupID, g.Members, g.Gender); err != nil {
			return i, fmt.Errorf("insert group row %d: %w", i, err)
		}
	}
	return len(rows), nil
}

// AppendHostels appends hostel rows in input order and returns the count written.
func (r *RecordRepo) AppendHostels(ctx context.Context, rows []model.Hostel) (int, error) {
	const q = `
INSERT INTO hostels (hostel_name, room_number, capacity, gender)
VALUES ($1, $2, $3, $4)`
	for i, h := range rows {
		if _, err := r.db.Pool.Exec(ctx, q, h.HostelName, h.RoomNumber, h.Capacity, h.Gender); err != nil {
			return i, fmt.Errorf("insert hostel row %d: %w", i, err)
		}
	}
	return len(rows), nil
}

// ListGroups returns all stored group rows in insertion order.
func (r *RecordRepo) ListGroups(ctx context.Context) ([]model.Group, error) {
	const q = `
SELECT group_id, members, gender
FROM groups ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.GroupID, &g.Members, &g.Gender); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListHostels returns all stored hostel rows in insertion order.
func (r *RecordRepo) ListHostels(ctx context.Context) ([]model.Hostel, error) {
	const q = `
SELECT hostel_name, room_number, capacity, gender
FROM hostels ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Hostel{}
	for rows.Next() {
		var h model.Hostel
		if err := rows.Scan(&h.HostelName, &h.RoomNumber, &h.Capacity, &h.Gender); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

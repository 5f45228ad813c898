// Package csvparse turns uploaded CSV files into structured record rows.
//
// Files carry a header row; columns may appear in any order. Only structural
// parsing happens here (right columns, numeric fields parse) — no semantic
// validation of the values.
package csvparse

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kstepanov/dormhub/internal/model"
)

// ParseGroups reads group rows from CSV with columns group_id, members, gender.
func ParseGroups(r io.Reader) ([]model.Group, error) {
	records, idx, err := read(r, "group_id", "members", "gender")
	if err != nil {
		return nil, err
	}
	out := make([]model.Group, 0, len(records))
	for i, rec := range records {
		groupID, err := parseInt(rec[idx["group_id"]], i, "group_id")
		if err != nil {
			return nil, err
		}
		members, err := parseInt(rec[idx["members"]], i, "members")
		if err != nil {
			return nil, err
		}
		out = append(out, model.Group{
			GroupID: groupID,
			Members: members,
			Gender:  strings.TrimSpace(rec[idx["gender"]]),
		})
	}
	return out, nil
}

// ParseHostels reads hostel rows from CSV with columns hostel_name,
// room_number, capacity, gender.
func ParseHostels(r io.Reader) ([]model.Hostel, error) {
	records, idx, err := read(r, "hostel_name", "room_number", "capacity", "gender")
	if err != nil {
		return nil, err
	}
	out := make([]model.Hostel, 0, len(records))
	for i, rec := range records {
		room, err := parseInt(rec[idx["room_number"]], i, "room_number")
		if err != nil {
			return nil, err
		}
		capacity, err := parseInt(rec[idx["capacity"]], i, "capacity")
		if err != nil {
			return nil, err
		}
		out = append(out, model.Hostel{
			HostelName: strings.TrimSpace(rec[idx["hostel_name"]]),
			RoomNumber: room,
			Capacity:   capacity,
			Gender:     strings.TrimSpace(rec[idx["gender"]]),
		})
	}
	return out, nil
}

// read consumes the whole file and maps the required header columns to indexes.
func read(r io.Reader, columns ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(columns))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range columns {
		if _, ok := idx[want]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", want)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return records, idx, nil
}

func parseInt(s string, row int, column string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("row %d: bad %s %q", row+1, column, s)
	}
	return v, nil
}

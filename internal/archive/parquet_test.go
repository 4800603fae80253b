package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/powers/internal/powers"
	"github.com/vovakirdan/powers/internal/storage"
)

func TestRowsFromRecords(t *testing.T) {
	with := 2
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	records := []storage.MoveRecord{
		{
			SessionID: "s", MoveNumber: 1, Direction: "left", Score: 4, CreatedAt: created,
			Shifts: []storage.ShiftRecord{
				{Seq: 0, Line: 1, From: 0, With: &with, To: 0, Value: 2, Merge: true},
				{Seq: 1, Line: 1, From: 3, To: 1, Value: 2},
			},
			NewTile: &powers.TilePosition{Row: 3, Col: 2, Value: 4},
		},
		{SessionID: "s", MoveNumber: 2, Direction: "up", Score: 4},
	}

	rows := RowsFromRecords(records)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if len(rows[0].Shifts) != 2 {
		t.Fatalf("got %d shifts, want 2", len(rows[0].Shifts))
	}
	if rows[0].Shifts[0].With == nil || *rows[0].Shifts[0].With != 2 || !rows[0].Shifts[0].Merge {
		t.Errorf("merge shift = %+v", rows[0].Shifts[0])
	}
	if rows[0].Shifts[1].With != nil {
		t.Errorf("move shift = %+v", rows[0].Shifts[1])
	}
	if rows[0].NewRow == nil || *rows[0].NewRow != 3 || *rows[0].NewCol != 2 || *rows[0].NewValue != 4 {
		t.Errorf("new tile = %v %v %v", rows[0].NewRow, rows[0].NewCol, rows[0].NewValue)
	}
	if rows[0].UnixMillis != created.UnixMilli() {
		t.Errorf("UnixMillis = %d, want %d", rows[0].UnixMillis, created.UnixMilli())
	}
	if rows[1].NewRow != nil || len(rows[1].Shifts) != 0 || rows[1].UnixMillis != 0 {
		t.Errorf("unchanged row = %+v", rows[1])
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	with := int32(1)
	newRow, newCol, newValue := int32(3), int32(2), int64(4)
	tileRow, tileCol, tileValue := int32(1), int32(1), int64(2)
	rows := []MoveRow{
		{
			SessionID: "abc", MoveNumber: 1, Direction: "up", Score: 8,
			Shifts: []ShiftRow{
				{Seq: 0, Line: 0, From: 0, With: &with, To: 0, Value: 4, Merge: true},
				{Seq: 1, Line: 2, From: 3, To: 0, Value: 2},
			},
			NewRow: &newRow, NewCol: &newCol, NewValue: &newValue,
		},
		{SessionID: "abc", MoveNumber: 2, Direction: "up", Score: 8, NewRow: &tileRow, NewCol: &tileCol, NewValue: &tileValue},
		{SessionID: "abc", MoveNumber: 3, Direction: "left", Score: 8},
	}

	path, err := WriteMovesParquet(dir, "abc", rows)
	if err != nil {
		t.Fatalf("WriteMovesParquet: %v", err)
	}
	if filepath.Base(path) != "abc.parquet" {
		t.Errorf("path = %s", path)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	got, err := ReadMovesParquet(path)
	if err != nil {
		t.Fatalf("ReadMovesParquet: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}

	first := got[0]
	if len(first.Shifts) != 2 {
		t.Fatalf("row 0 has %d shifts, want 2", len(first.Shifts))
	}
	if first.Shifts[0].With == nil || *first.Shifts[0].With != 1 || !first.Shifts[0].Merge || first.Shifts[0].Value != 4 {
		t.Errorf("row 0 shift 0 = %+v", first.Shifts[0])
	}
	if first.Shifts[1].With != nil {
		t.Errorf("row 0 shift 1 With = %v, want nil", *first.Shifts[1].With)
	}
	if first.NewRow == nil || *first.NewRow != 3 || first.NewCol == nil || *first.NewCol != 2 || first.NewValue == nil || *first.NewValue != 4 {
		t.Errorf("row 0 new tile = %v %v %v", first.NewRow, first.NewCol, first.NewValue)
	}

	spawnOnly := got[1]
	if len(spawnOnly.Shifts) != 0 {
		t.Errorf("row 1 shifts = %+v, want none", spawnOnly.Shifts)
	}
	if spawnOnly.NewRow == nil || *spawnOnly.NewRow != 1 || spawnOnly.NewValue == nil || *spawnOnly.NewValue != 2 {
		t.Errorf("row 1 new tile = %v %v %v", spawnOnly.NewRow, spawnOnly.NewCol, spawnOnly.NewValue)
	}

	if got[2].Direction != "left" || got[2].MoveNumber != 3 || got[2].NewRow != nil {
		t.Errorf("row 2 = %+v", got[2])
	}
}

func TestWriteMovesParquetEmptySession(t *testing.T) {
	if _, err := WriteMovesParquet(t.TempDir(), "", nil); err == nil {
		t.Error("expected error for empty session id")
	}
}

func TestReadMovesParquetMissing(t *testing.T) {
	if _, err := ReadMovesParquet(filepath.Join(t.TempDir(), "nope.parquet")); err == nil {
		t.Error("expected error for missing file")
	}
}

// Package archive exports move logs as Parquet files.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/vovakirdan/powers/internal/storage"
)

const schemaVersion = "powers_move_v2"

// MoveRow is one recorded move. The New* fields are nil when the move placed
// no tile.
type MoveRow struct {
	SessionID  string     `parquet:"session_id,dict"`
	MoveNumber int32      `parquet:"move_number"`
	Direction  string     `parquet:"direction,dict"`
	Score      int64      `parquet:"score"`
	Shifts     []ShiftRow `parquet:"shifts"`
	NewRow     *int32     `parquet:"new_row,optional"`
	NewCol     *int32     `parquet:"new_col,optional"`
	NewValue   *int64     `parquet:"new_value,optional"`
	UnixMillis int64      `parquet:"unix_ms"`
}

// ShiftRow is one descriptor of a move. With is nil for a plain move.
type ShiftRow struct {
	Seq   int32  `parquet:"seq"`
	Line  int32  `parquet:"line"`
	From  int32  `parquet:"from"`
	With  *int32 `parquet:"with,optional"`
	To    int32  `parquet:"to"`
	Value int64  `parquet:"value"`
	Merge bool   `parquet:"merge"`
}

// RowsFromRecords converts stored move records into archive rows.
func RowsFromRecords(records []storage.MoveRecord) []MoveRow {
	rows := make([]MoveRow, 0, len(records))
	for _, r := range records {
		row := MoveRow{
			SessionID:  r.SessionID,
			MoveNumber: int32(r.MoveNumber),
			Direction:  r.Direction,
			Score:      int64(r.Score),
		}
		for _, sh := range r.Shifts {
			shift := ShiftRow{
				Seq:   int32(sh.Seq),
				Line:  int32(sh.Line),
				From:  int32(sh.From),
				To:    int32(sh.To),
				Value: int64(sh.Value),
				Merge: sh.Merge,
			}
			if sh.With != nil {
				w := int32(*sh.With)
				shift.With = &w
			}
			row.Shifts = append(row.Shifts, shift)
		}
		if t := r.NewTile; t != nil {
			newRow, newCol, newValue := int32(t.Row), int32(t.Col), int64(t.Value)
			row.NewRow, row.NewCol, row.NewValue = &newRow, &newCol, &newValue
		}
		if !r.CreatedAt.IsZero() {
			row.UnixMillis = r.CreatedAt.UnixMilli()
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteMovesParquet writes rows to <outDir>/<sessionID>.parquet and returns
// the file path. The file appears atomically.
func WriteMovesParquet(outDir, sessionID string, rows []MoveRow) (string, error) {
	if sessionID == "" {
		return "", errors.New("archive: empty session id")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create output dir: %w", err)
	}

	outPath := filepath.Join(outDir, sessionID+".parquet")
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("archive: write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return "", fmt.Errorf("archive: rename parquet: %w", err)
	}
	return outPath, nil
}

// ReadMovesParquet reads every row of a file written by WriteMovesParquet.
func ReadMovesParquet(path string) ([]MoveRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("archive: stat: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("archive: open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[MoveRow](pf)
	defer reader.Close()

	rows := make([]MoveRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("archive: read rows: %w", err)
	}
	return rows[:n], nil
}

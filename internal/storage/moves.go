package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vovakirdan/powers/internal/powers"
)

// MoveRecord is one stored move with its shifts and spawned tile.
type MoveRecord struct {
	SessionID  string
	MoveNumber int
	Direction  string
	Score      int
	Shifts     []ShiftRecord
	NewTile    *powers.TilePosition
	CreatedAt  time.Time
}

// ShiftRecord is one stored descriptor of a move.
type ShiftRecord struct {
	Seq   int
	Line  int
	From  int
	With  *int
	To    int
	Value int
	Merge bool
}

// SessionSummary aggregates the move log of one session.
type SessionSummary struct {
	SessionID string
	Moves     int
	Score     int
	LastMove  time.Time
}

// RecordMove stores one move of a session in a single transaction: a
// move_log row carrying the spawned tile, if any, and a move_shifts row per
// descriptor. Moves that changed nothing are stored too, so move numbers stay
// contiguous. score is the game score after the move.
func (s *Store) RecordMove(ctx context.Context, sessionID string, moveNumber int, dir powers.Direction, res powers.MoveResult, score int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	var newRow, newCol, newValue sql.NullInt64
	if t := res.NewTile; t != nil {
		newRow = sql.NullInt64{Int64: int64(t.Row), Valid: true}
		newCol = sql.NullInt64{Int64: int64(t.Col), Valid: true}
		newValue = sql.NullInt64{Int64: int64(t.Value), Valid: true}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO move_log (session_id, move_number, direction, score, new_row, new_col, new_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, moveNumber, dir.String(), score, newRow, newCol, newValue,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record move: %w", err)
	}

	if len(res.Moves) > 0 {
		moveID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("storage: cannot get move id: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO move_shifts (move_id, seq, line, from_index, with_index, to_index, value, merge)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("storage: cannot prepare shift insert: %w", err)
		}
		defer stmt.Close()

		for seq, d := range res.Moves {
			var with sql.NullInt64
			if w, ok := d.Shift.With(); ok {
				with = sql.NullInt64{Int64: int64(w), Valid: true}
			}
			_, err := stmt.ExecContext(ctx,
				moveID, seq, d.Line, d.Shift.From(), with, d.Shift.To(), d.Value(), d.IsMerge(),
			)
			if err != nil {
				return fmt.Errorf("storage: cannot record shift: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit move: %w", err)
	}
	return nil
}

// MovesForSession returns the move log of a session in play order.
func (s *Store) MovesForSession(ctx context.Context, sessionID string) ([]MoveRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.session_id, m.move_number, m.direction, m.score,
			m.new_row, m.new_col, m.new_value, m.created_at,
			sh.seq, sh.line, sh.from_index, sh.with_index, sh.to_index, sh.value, sh.merge
		 FROM move_log m
		 LEFT JOIN move_shifts sh ON sh.move_id = m.id
		 WHERE m.session_id = ?
		 ORDER BY m.move_number, m.id, sh.seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query moves: %w", err)
	}
	defer rows.Close()

	var (
		records []MoveRecord
		lastID  int64 = -1
	)
	for rows.Next() {
		var (
			id                     int64
			r                      MoveRecord
			newRow, newCol, newVal sql.NullInt64
			createdAt              any
			seq, line, from, to    sql.NullInt64
			with, value            sql.NullInt64
			merge                  sql.NullBool
		)
		err := rows.Scan(&id, &r.SessionID, &r.MoveNumber, &r.Direction, &r.Score,
			&newRow, &newCol, &newVal, &createdAt,
			&seq, &line, &from, &with, &to, &value, &merge)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan move: %w", err)
		}

		if id != lastID {
			if newRow.Valid && newCol.Valid && newVal.Valid {
				r.NewTile = &powers.TilePosition{
					Row:   int(newRow.Int64),
					Col:   int(newCol.Int64),
					Value: int(newVal.Int64),
				}
			}
			r.CreatedAt = parseTime(createdAt)
			records = append(records, r)
			lastID = id
		}

		if !seq.Valid {
			continue
		}
		shift := ShiftRecord{
			Seq:   int(seq.Int64),
			Line:  int(line.Int64),
			From:  int(from.Int64),
			To:    int(to.Int64),
			Value: int(value.Int64),
			Merge: merge.Bool,
		}
		if with.Valid {
			w := int(with.Int64)
			shift.With = &w
		}
		last := &records[len(records)-1]
		last.Shifts = append(last.Shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

// Sessions summarizes every session with a recorded move, most recent first.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, COUNT(*), MAX(score), MAX(created_at), MAX(id) AS last_id
		 FROM move_log
		 GROUP BY session_id
		 ORDER BY last_id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var (
			sum      SessionSummary
			lastMove any
			lastID   int64
		)
		if err := rows.Scan(&sum.SessionID, &sum.Moves, &sum.Score, &lastMove, &lastID); err != nil {
			return nil, fmt.Errorf("storage: cannot scan session: %w", err)
		}
		sum.LastMove = parseTime(lastMove)
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return summaries, nil
}

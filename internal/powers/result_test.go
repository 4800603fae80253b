package powers

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vovakirdan/powers/internal/collapse"
)

func TestDescriptorPoints(t *testing.T) {
	move := Descriptor{Shift: collapse.Move(3, 0, 8), Line: 1, Direction: Left}
	if move.IsMerge() || move.Points() != 0 {
		t.Errorf("move descriptor: IsMerge=%v Points=%d", move.IsMerge(), move.Points())
	}

	merge := Descriptor{Shift: collapse.Merge(0, 2, 0, 8), Line: 1, Direction: Left}
	if !merge.IsMerge() || merge.Points() != 16 {
		t.Errorf("merge descriptor: IsMerge=%v Points=%d", merge.IsMerge(), merge.Points())
	}
}

func TestDescriptorCells(t *testing.T) {
	tests := []struct {
		name     string
		d        Descriptor
		wantFrom Position
		wantTo   Position
	}{
		{"left", Descriptor{collapse.Move(3, 0, 2), 1, Left}, Position{1, 3}, Position{1, 0}},
		{"right", Descriptor{collapse.Move(3, 0, 2), 1, Right}, Position{1, 0}, Position{1, 3}},
		{"up", Descriptor{collapse.Move(3, 0, 2), 2, Up}, Position{3, 2}, Position{0, 2}},
		{"down", Descriptor{collapse.Move(3, 0, 2), 2, Down}, Position{0, 2}, Position{3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := tt.d.Origin(4)
			if (Position{r, c}) != tt.wantFrom {
				t.Errorf("Origin = (%d,%d), want %+v", r, c, tt.wantFrom)
			}
			r, c = tt.d.Destination(4)
			if (Position{r, c}) != tt.wantTo {
				t.Errorf("Destination = (%d,%d), want %+v", r, c, tt.wantTo)
			}
			if _, _, ok := tt.d.Partner(4); ok {
				t.Error("Partner should be absent for a move")
			}
		})
	}

	merge := Descriptor{Shift: collapse.Merge(1, 2, 0, 4), Line: 0, Direction: Down}
	r, c, ok := merge.Partner(4)
	if !ok || r != 1 || c != 0 {
		t.Errorf("Partner = (%d,%d,%v), want (1,0,true)", r, c, ok)
	}
}

func TestMoveResultJSON(t *testing.T) {
	res := MoveResult{
		Moves: []Descriptor{
			{Shift: collapse.Merge(0, 1, 0, 2), Line: 0, Direction: Up},
		},
		NewTile: &TilePosition{Row: 3, Col: 1, Value: 2},
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"moves":[{"line":0,"direction":"up","from":0,"with":1,"to":0,"value":2,"merge":true}],"new_tile":{"row":3,"col":1,"value":2}}`
	if string(data) != want {
		t.Errorf("JSON = %s\nwant   %s", data, want)
	}

	empty, err := json.Marshal(MoveResult{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(empty) != `{"moves":null,"new_tile":null}` {
		t.Errorf("empty JSON = %s", empty)
	}
}

func TestParseDirection(t *testing.T) {
	for _, dir := range Directions() {
		got, err := ParseDirection(dir.String())
		if err != nil || got != dir {
			t.Errorf("ParseDirection(%q) = %v, %v", dir.String(), got, err)
		}
	}
	if got, err := ParseDirection(" U "); err != nil || got != Up {
		t.Errorf("ParseDirection(\" U \") = %v, %v", got, err)
	}
	if _, err := ParseDirection("sideways"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("ParseDirection(sideways) error = %v", err)
	}
}

func TestParseSpawnPolicy(t *testing.T) {
	for _, p := range []SpawnPolicy{SpawnAlways, SpawnOnChange} {
		got, err := ParseSpawnPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseSpawnPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseSpawnPolicy("sometimes"); err == nil {
		t.Error("ParseSpawnPolicy(sometimes) should fail")
	}
}

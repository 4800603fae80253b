package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/powers/internal/games/t2048"
)

func pressMenu(m ModeModel, keys ...tea.KeyMsg) ModeModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(ModeModel)
	}
	return m
}

var (
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestModeMenuSelection(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want Selection
	}{
		{"campaign", []tea.KeyMsg{keyEnter}, Selection{GameID: t2048.IDCampaign}},
		{"endless", []tea.KeyMsg{keyDown, keyEnter}, Selection{GameID: t2048.IDEndless}},
		{"cursor stops at top", []tea.KeyMsg{keyUp, keyUp, keyDown, keyEnter}, Selection{GameID: t2048.IDEndless}},
		{"level three", []tea.KeyMsg{keyDown, keyDown, keyEnter, keyDown, keyDown, keyEnter}, Selection{GameID: t2048.IDCampaign, Level: 3}},
		{"scores item", []tea.KeyMsg{keyDown, keyDown, keyDown, keyEnter}, Selection{Scoreboard: true}},
		{"scores shortcut", []tea.KeyMsg{keyTab}, Selection{Scoreboard: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pressMenu(NewModeModel(80, 24), tt.keys...)
			got := m.Selected()
			if got == nil {
				t.Fatal("Selected() = nil")
			}
			if *got != tt.want {
				t.Errorf("Selected() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestModeMenuLevelSelectBack(t *testing.T) {
	m := pressMenu(NewModeModel(80, 24), keyDown, keyDown, keyEnter, keyEsc)
	if m.Selected() != nil {
		t.Fatal("esc in level select should not choose anything")
	}
	if m.IsQuitting() {
		t.Fatal("esc in level select should return to modes")
	}

	m = pressMenu(m, keyEsc)
	if !m.IsQuitting() {
		t.Error("esc on the mode list should quit")
	}
}

func TestModeMenuLevelCursorBounds(t *testing.T) {
	keys := []tea.KeyMsg{keyDown, keyDown, keyEnter}
	for range t2048.LevelCount() + 3 {
		keys = append(keys, keyDown)
	}
	keys = append(keys, keyEnter)

	m := pressMenu(NewModeModel(80, 24), keys...)
	if got := m.Selected(); got == nil || got.Level != t2048.LevelCount() {
		t.Errorf("Selected() = %+v, want last level", got)
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText() = %q", got)
	}
	if got := centerText("abcdef", 4); got != "abcdef" {
		t.Errorf("centerText() = %q", got)
	}
}

package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

func pickerModules() []floorplan.Module {
	return []floorplan.Module{
		{ID: "1", Rect: geometry.R(0, 0, 2, 2)},
		{ID: "2", Rect: geometry.R(2, 0, 2, 2), Sign: floorplan.SignPos},
		{ID: "3", Rect: geometry.R(0, 2, 2, 2), Sign: floorplan.SignNeg},
		{ID: "4", Rect: geometry.R(2, 2, 2, 2)},
	}
}

func press(m PairPickerModel, keys ...string) PairPickerModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(PairPickerModel)
	}
	return m
}

func TestNewPairPickerModel(t *testing.T) {
	m := NewPairPickerModel(pickerModules())
	if len(m.Marked) != 2 || m.Marked[0] != 1 || m.Marked[1] != 2 {
		t.Errorf("Marked = %v, want the two net members [1 2]", m.Marked)
	}

	mods := pickerModules()
	mods[0].Sign = floorplan.SignPos
	if m := NewPairPickerModel(mods); len(m.Marked) != 0 {
		t.Errorf("Marked = %v, want none with three net members", m.Marked)
	}
}

func TestPairPickerConfirmMarked(t *testing.T) {
	m := press(NewPairPickerModel(pickerModules()), "enter")
	a, b, ok := m.Pair()
	if !ok || a != "2" || b != "3" {
		t.Errorf("Pair() = %q, %q, %v; want 2, 3, true", a, b, ok)
	}
}

func TestPairPickerSelect(t *testing.T) {
	m := NewPairPickerModel(pickerModules())
	m.Marked = nil

	m = press(m, "x", "down", "down", "down", "enter")
	a, b, ok := m.Pair()
	if !ok || a != "1" || b != "4" {
		t.Errorf("Pair() = %q, %q, %v; want 1, 4, true", a, b, ok)
	}
}

func TestPairPickerToggle(t *testing.T) {
	m := NewPairPickerModel(pickerModules())
	m.Marked = nil

	// Marking a third module drops the oldest mark.
	m = press(m, "x", "j", "x", "j", "x")
	if len(m.Marked) != 2 || m.Marked[0] != 1 || m.Marked[1] != 2 {
		t.Errorf("Marked = %v, want [1 2]", m.Marked)
	}

	m = press(m, "x")
	if len(m.Marked) != 1 || m.Marked[0] != 1 {
		t.Errorf("Marked after unmark = %v, want [1]", m.Marked)
	}
	if m.Done {
		t.Error("picker should not be done with one mark")
	}
}

func TestPairPickerCursorBounds(t *testing.T) {
	m := NewPairPickerModel(pickerModules())
	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}
	m = press(m, "down", "down", "down", "down", "down")
	if m.Cursor != 3 {
		t.Errorf("Cursor = %d, want 3", m.Cursor)
	}
}

func TestPairPickerQuit(t *testing.T) {
	m := press(NewPairPickerModel(pickerModules()), "q")
	if _, _, ok := m.Pair(); ok {
		t.Error("Pair() should report no selection after quitting")
	}
	if m.View() != "" {
		t.Error("View() should be empty after quitting")
	}
}

func TestPairPickerView(t *testing.T) {
	view := NewPairPickerModel(pickerModules()).View()
	if view == "" {
		t.Fatal("View() is empty")
	}
	for _, want := range []string{"Select Two Modules", "2 of 2 marked"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	h := NewHistory("")

	for _, in := range []struct {
		line string
		mode inputMode
	}{
		{"{player: 1}", modeEval},
		{"  ", modeEval},
		{"list", modeCtrl},
		{"list", modeCtrl},
		{"{player: 2}", modeEval},
		{"{player: 1}", modeEval},
	} {
		if err := h.Add(in.line, in.mode); err != nil {
			t.Fatalf("Add(%q): %v", in.line, err)
		}
	}

	want := []HistoryEntry{
		{Line: "list", Mode: modeCtrl},
		{Line: "{player: 2}", Mode: modeEval},
		{Line: "{player: 1}", Mode: modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestHistory_SameLineDifferentMode(t *testing.T) {
	h := NewHistory("")

	_ = h.Add("help", modeEval)
	_ = h.Add("help", modeCtrl)

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory("")
	_ = h.Add("reload", modeCtrl)

	e, err := h.Entry(0)
	if err != nil || e.Line != "reload" || e.Mode != modeCtrl {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}

	_ = h.Add("{status: {team: \"blue\"}}", modeEval)
	_ = h.Add("paths", modeCtrl)
	_ = h.Add("{t: 3}", modeEval)
	_ = h.Add("{status: {team: \"blue\"}}", modeEval)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	wantFile := "C:paths\nE:{t: 3}\nE:{status: {team: \"blue\"}}\n"
	if string(data) != wantFile {
		t.Errorf("file = %q, want %q", data, wantFile)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(loaded.Entries(), h.Entries()) {
		t.Errorf("loaded %v, want %v", loaded.Entries(), h.Entries())
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:{player: 1}", HistoryEntry{Line: "{player: 1}", Mode: modeEval}},
		{"C:quit", HistoryEntry{Line: "quit", Mode: modeCtrl}},
		{"{t: 1}", HistoryEntry{Line: "{t: 1}", Mode: modeEval}},
	}

	for _, tt := range tests {
		got := decodeEntry(tt.line)
		if got != tt.want {
			t.Errorf("decodeEntry(%q) = %v, want %v", tt.line, got, tt.want)
		}

		if tt.line[1] == ':' && got.encode() != tt.line {
			t.Errorf("encode() = %q, want %q", got.encode(), tt.line)
		}
	}
}

func TestHistory_LoadTrimsToMax(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	var data []byte
	for i := range maxHistory + 5 {
		data = append(data, []byte("E:{t: "+strconv.Itoa(i)+"}\n")...)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if h.Len() != maxHistory {
		t.Fatalf("Len() = %d, want %d", h.Len(), maxHistory)
	}

	if e, _ := h.Entry(0); e.Line != "{t: 5}" {
		t.Errorf("oldest = %q, want {t: 5}", e.Line)
	}
}

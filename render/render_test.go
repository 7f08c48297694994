package render

import (
	"bytes"
	"testing"

	"github.com/pthm-cable/hexflake/hex"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		grid hex.Grid
		want string
	}{
		{"empty", hex.Grid{}, ""},
		{"single cell", hex.Grid{hex.Origin: 1}, "  []\n"},
		{"same row", hex.Grid{hex.Origin: 1, {X: 1, Y: 0, Z: -1}: 2}, "  []()\n"},
		{"two rows", hex.Grid{hex.Origin: 1, {X: 1, Y: -1, Z: 0}: 3}, "  [] \n   {}\n"},
		{"high state clamps", hex.Grid{hex.Origin: 12}, "  ##\n"},
		{"state nine", hex.Grid{hex.Origin: 9}, "  ##\n"},
		{"state five", hex.Grid{hex.Origin: 5}, "  oo\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.grid); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteRing(t *testing.T) {
	g := hex.Grid{}
	for c := range hex.Neighbors(hex.Origin, false) {
		g[c] = 4
	}
	want := "" +
		"   <><> \n" +
		"  <>  <>\n" +
		"   <><> \n"
	if got := String(g); got != want {
		t.Errorf("ring rendered as\n%s\nwant\n%s", got, want)
	}
}

func TestWriteAll(t *testing.T) {
	var buf bytes.Buffer
	grids := []hex.Grid{{hex.Origin: 1}, {hex.Origin: 2}}
	if err := WriteAll(&buf, grids); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "  []\n\n  ()\n\n"; got != want {
		t.Errorf("WriteAll = %q, want %q", got, want)
	}
}

package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupInterpolates(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	if got := p.Lookup(-1); got != (RGB{0, 0, 0}) {
		t.Errorf("below range = %v", got)
	}
	if got := p.Lookup(0.5); got != (RGB{100, 50, 25}) {
		t.Errorf("midpoint = %v", got)
	}
	if got := p.Lookup(2); got != (RGB{200, 100, 50}) {
		t.Errorf("above range = %v", got)
	}
}

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.gpl")
	data := "GIMP Palette\nName: two\nColumns: 2\n# comment\n  0   0   0\tblack\n255 255 255\twhite\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadGPL(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "two" || len(p.Colors) != 2 || p.Colors[1] != (RGB{255, 255, 255}) {
		t.Errorf("palette = %+v", p)
	}

	empty := filepath.Join(t.TempDir(), "empty.gpl")
	os.WriteFile(empty, []byte("GIMP Palette\n"), 0644)
	if _, err := LoadGPL(empty); err == nil {
		t.Error("empty palette accepted")
	}
}

func TestNewFallsBackToPlasma(t *testing.T) {
	th := New(nil)
	if th.Palette.Name != "plasma" {
		t.Errorf("palette = %s", th.Palette.Name)
	}
	if th.Accent() == th.BG() {
		t.Error("roles share a color")
	}
}

package render

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot/vg"

	"github.com/blelem/acfscope/acf"
	"github.com/blelem/acfscope/session"
)

func testView(t *testing.T, n int) (session.View, *acf.Grid) {
	g, err := acf.MakeGrid(150, 1.5, n)
	if err != nil {
		t.Fatal(err)
	}
	s, err := session.New(g, session.DefaultParams, 20, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	return s.View(), g
}

func TestColormaps(t *testing.T) {
	for name, cm := range map[string]Colormap{"turbo": Turbo, "waterfall": Waterfall} {
		if len(cm) != 256 {
			t.Fatalf("%s has %d colors", name, len(cm))
		}
		if cm.At(-1) != cm[0] || cm.At(math.NaN()) != cm[0] {
			t.Errorf("%s: low values not clamped", name)
		}
		if cm.At(1) != cm[255] || cm.At(7) != cm[255] {
			t.Errorf("%s: high values not clamped", name)
		}
		if len(cm.Colors()) != 256 {
			t.Errorf("%s: palette size %d", name, len(cm.Colors()))
		}
	}
	if Waterfall[0] != (color.NRGBA{0, 0, 0, 255}) || Waterfall[255] != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("waterfall ends %v %v", Waterfall[0], Waterfall[255])
	}
	// Turbo runs from blue through green to dark red.
	if lo, hi := Turbo[25], Turbo[255]; lo.B <= lo.R || hi.R <= hi.B {
		t.Fatalf("turbo ends %v %v", lo, hi)
	}
	if _, err := ColormapByName("viridis"); err == nil {
		t.Fatal("expected unknown palette error")
	}
}

func TestImageOrientation(t *testing.T) {
	g, err := acf.MakeGrid(150, 1.5, 21)
	if err != nil {
		t.Fatal(err)
	}
	// Only the bottom-left corner lights up.
	s := g.Surface(0.01, acf.Multipath{})
	s.Zero()
	s.Set(0, 0, 1)
	img := Image(s, Waterfall, 2)
	if b := img.Bounds(); b.Dx() != 42 || b.Dy() != 42 {
		t.Fatalf("image bounds %v", b)
	}
	if img.NRGBAAt(0, 41) != Waterfall[255] || img.NRGBAAt(1, 40) != Waterfall[255] {
		t.Fatal("row 0 not drawn at the bottom")
	}
	if img.NRGBAAt(0, 0) != Waterfall[0] {
		t.Fatal("top-left should be the low color")
	}
}

func TestViewport(t *testing.T) {
	g, err := acf.MakeGrid(150, 1.5, 250)
	if err != nil {
		t.Fatal(err)
	}
	vp := Viewport{Grid: g, W: 500, H: 400}
	for _, xy := range [][2]int{{0, 0}, {499, 399}, {250, 200}, {17, 333}} {
		f, c := vp.ToDomain(xy[0], xy[1])
		if x, y := vp.ToPixel(f, c); x != xy[0] || y != xy[1] {
			t.Errorf("round trip %v -> (%v, %v) -> (%d, %d)", xy, f, c, x, y)
		}
	}
	if _, c := vp.ToDomain(0, 399); c >= -1.49 {
		t.Fatalf("bottom row maps to code %v", c)
	}
	if f, _ := vp.ToDomain(0, 0); f >= -149 {
		t.Fatalf("left column maps to freq %v", f)
	}
	if x, y := vp.ToPixel(1e6, -1e6); x != 499 || y != 399 {
		t.Fatalf("out of range clamp (%d, %d)", x, y)
	}
	if vp.Contains(500, 0) || !vp.Contains(0, 0) {
		t.Fatal("bad Contains")
	}
}

func TestEncodePNG(t *testing.T) {
	v, _ := testView(t, 40)
	var buf bytes.Buffer
	if err := EncodePNG(&buf, v.Surface, Turbo, 1); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Fatalf("decoded bounds %v", b)
	}
}

func TestWritePlots(t *testing.T) {
	v, g := testView(t, 30)
	dir := t.TempDir()
	paths, err := WritePlots(v, g, dir, Turbo)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"acf.png", "freq_slice.png", "code_slice.png"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if fi.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	if len(paths) != 3 {
		t.Fatalf("got %d paths", len(paths))
	}
}

func TestGaussian(t *testing.T) {
	ys, err := DefaultGaussian.Curve([]float64{5, 3, 7})
	if err != nil {
		t.Fatal(err)
	}
	if want := 1 / (2 * math.Sqrt(2*math.Pi)); math.Abs(ys[0]-want) > 1e-12 {
		t.Fatalf("peak density %v, want %v", ys[0], want)
	}
	if math.Abs(ys[1]-ys[2]) > 1e-15 {
		t.Fatal("density not symmetric about the mean")
	}
	if _, err := (Gaussian{Mean: 5}).Curve([]float64{1}); err == nil {
		t.Fatal("expected error for zero sigma")
	}
	var buf bytes.Buffer
	if err := WriteGaussianPNG(&buf, DefaultGaussian, 4*vg.Inch, 3*vg.Inch); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatal(err)
	}
}

package dirt

import (
	"errors"
	"testing"
)

// TestDefaultOptions 测试默认参数
func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.BlurStrength != 1 || o.BlurIterations != 1 || o.CleanAngle != 180 || o.DirtAngle != 0 {
		t.Errorf("unexpected defaults %+v", o)
	}
	if o.DirtOnly || o.UsePaintMask {
		t.Errorf("flags should default to false, got %+v", o)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		valid  bool
	}{
		{"MinStrength", func(o *Options) { o.BlurStrength = 0.01 }, true},
		{"StrengthTooLow", func(o *Options) { o.BlurStrength = 0.001 }, false},
		{"StrengthTooHigh", func(o *Options) { o.BlurStrength = 1.5 }, false},
		{"MaxIterations", func(o *Options) { o.BlurIterations = 40 }, true},
		{"TooManyIterations", func(o *Options) { o.BlurIterations = 41 }, false},
		{"NegativeIterations", func(o *Options) { o.BlurIterations = -1 }, false},
		{"CleanAngleTooHigh", func(o *Options) { o.CleanAngle = 181 }, false},
		{"NegativeDirtAngle", func(o *Options) { o.DirtAngle = -5 }, false},
		{"DirtAboveClean", func(o *Options) { o.DirtAngle, o.CleanAngle = 120, 30 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.modify(&o)
			err := o.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestApplyVertexDirt(t *testing.T) {
	m := bumpyGrid(5)
	layer := m.EnsureColorLayer(White)

	rep, err := ApplyVertexDirt(m, layer, DefaultOptions())
	if err != nil {
		t.Fatalf("ApplyVertexDirt: %v", err)
	}
	if !rep.Applied {
		t.Fatal("expected colours to be applied")
	}
	if rep.Vertices != 25 || rep.Faces != 16 {
		t.Errorf("report counts %d/%d, want 25/16", rep.Vertices, rep.Faces)
	}
	if rep.Min >= rep.Max {
		t.Errorf("report range [%v, %v] should be increasing", rep.Min, rep.Max)
	}

	tm, err := DefaultOptions().ToneMap(m)
	if err != nil {
		t.Fatalf("ToneMap: %v", err)
	}
	for i, f := range m.Faces {
		for j, v := range f {
			c := layer.CornerColor(i, j)
			tone := float32(tm.Tone[v])
			if c[0] != tone || c[1] != tone || c[2] != tone || c[3] != 1 {
				t.Errorf("face %d corner %d = %v, want tone %v", i, j, c, tone)
			}
		}
	}
}

func TestApplyVertexDirtDegenerate(t *testing.T) {
	m := tetrahedron()
	layer := m.EnsureColorLayer(Color{0.3, 0.6, 0.9, 1})

	rep, err := ApplyVertexDirt(m, layer, DefaultOptions())
	if err != nil {
		t.Fatalf("ApplyVertexDirt: %v", err)
	}
	if rep.Applied {
		t.Error("uniform tone should not be applied")
	}
	for i := range layer.Data {
		for j := 0; j < 3; j++ {
			if got := layer.CornerColor(i, j); got != (Color{0.3, 0.6, 0.9, 1}) {
				t.Errorf("face %d corner %d changed to %v", i, j, got)
			}
		}
	}
}

func TestApplyVertexDirtFlatQuad(t *testing.T) {
	m := flatQuad()
	layer := m.EnsureColorLayer(White)
	opts := DefaultOptions()
	opts.BlurIterations = 3

	rep, err := ApplyVertexDirt(m, layer, opts)
	if err != nil {
		t.Fatalf("ApplyVertexDirt: %v", err)
	}
	if rep.Applied {
		t.Error("flat quad should leave colours unchanged")
	}
	for j := 0; j < 4; j++ {
		if layer.CornerColor(0, j) != White {
			t.Errorf("corner %d changed", j)
		}
	}
}

func TestApplyVertexDirtPaintMask(t *testing.T) {
	m := bumpyGrid(4)
	m.Selected = make([]bool, len(m.Faces))
	m.Selected[0] = true
	layer := m.EnsureColorLayer(White)

	opts := DefaultOptions()
	opts.UsePaintMask = true
	if _, err := ApplyVertexDirt(m, layer, opts); err != nil {
		t.Fatalf("ApplyVertexDirt: %v", err)
	}
	for i := 1; i < len(m.Faces); i++ {
		for j := 0; j < 4; j++ {
			if layer.CornerColor(i, j) != White {
				t.Errorf("unselected face %d corner %d was painted", i, j)
			}
		}
	}

	changed := false
	for j := 0; j < 4; j++ {
		if layer.CornerColor(0, j) != White {
			changed = true
		}
	}
	if !changed {
		t.Error("selected face was not painted")
	}
}

func TestApplyVertexDirtErrors(t *testing.T) {
	m := triangle()
	bad := DefaultOptions()
	bad.BlurStrength = 0

	tests := []struct {
		name  string
		mesh  Mesh
		layer ColorLayer
		opts  Options
	}{
		{"BadOptions", m, NewCornerColorLayer("Col", 1, White), bad},
		{"NilMesh", nil, NewCornerColorLayer("Col", 1, White), DefaultOptions()},
		{"TypedNilMesh", (*PolyMesh)(nil), NewCornerColorLayer("Col", 1, White), DefaultOptions()},
		{"NaNPosition", nanPosition(), NewCornerColorLayer("Col", 9, White), DefaultOptions()},
		{"NilLayer", m, nil, DefaultOptions()},
		{"LayerMismatch", bumpyGrid(3), NewCornerColorLayer("Col", 1, White), DefaultOptions()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyVertexDirt(tt.mesh, tt.layer, tt.opts)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

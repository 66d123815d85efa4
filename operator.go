package dirt

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator"
)

// Options 脏污着色参数，角度单位为度
type Options struct {
	BlurStrength   float64 `yaml:"blur_strength" json:"blurStrength" validate:"gte=0.01,lte=1"`
	BlurIterations int     `yaml:"blur_iterations" json:"blurIterations" validate:"gte=0,lte=40"`
	CleanAngle     float64 `yaml:"clean_angle" json:"cleanAngle" validate:"gte=0,lte=180"`
	DirtAngle      float64 `yaml:"dirt_angle" json:"dirtAngle" validate:"gte=0,lte=180"`
	DirtOnly       bool    `yaml:"dirt_only" json:"dirtOnly"`
	UsePaintMask   bool    `yaml:"use_paint_mask" json:"usePaintMask"`
}

func DefaultOptions() Options {
	return Options{
		BlurStrength:   DEFAULT_BLUR_STRENGTH,
		BlurIterations: DEFAULT_BLUR_ITERATIONS,
		CleanAngle:     DEFAULT_CLEAN_ANGLE,
		DirtAngle:      DEFAULT_DIRT_ANGLE,
	}
}

var validate = validator.New()

func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s must satisfy %s=%s, got %v", ErrInvalidInput, fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// ToneMap 角度转为弧度后调用 ComputeDirtMap
func (o Options) ToneMap(m Mesh) (*ToneMap, error) {
	return ComputeDirtMap(m, o.BlurIterations, o.BlurStrength, radians(o.DirtAngle), radians(o.CleanAngle), o.DirtOnly)
}

// Report 一次着色的结果
type Report struct {
	Applied  bool
	Vertices int
	Faces    int
	Min      float64
	Max      float64
	Elapsed  time.Duration
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ApplyVertexDirt 计算脏污色调并乘入颜色层，色调范围退化时不修改并返回 Applied=false
func ApplyVertexDirt(m Mesh, layer ColorLayer, opts Options) (*Report, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: no mesh", ErrInvalidInput)
	}
	if layer == nil {
		return nil, fmt.Errorf("%w: no color layer", ErrInvalidInput)
	}

	tm, err := opts.ToneMap(m)
	if err != nil {
		return nil, err
	}

	rep := &Report{Vertices: m.VertexCount(), Faces: m.FaceCount(), Min: tm.Min, Max: tm.Max}
	if tm.Degenerate() {
		rep.Elapsed = time.Since(start)
		return rep, nil
	}

	var mask Selection
	if opts.UsePaintMask {
		if sel, ok := m.(Selection); ok {
			mask = sel
		}
	}
	if err := ApplyToneToColors(m, tm.Tone, layer, mask); err != nil {
		return nil, err
	}
	rep.Applied = true
	rep.Elapsed = time.Since(start)
	return rep, nil
}

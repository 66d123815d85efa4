package dirt

import (
	"fmt"
	"math"

	dvec3 "github.com/flywave/go3d/float64/vec3"
)

// ToneMap 脏污色调计算结果
type ToneMap struct {
	// 每个顶点截断并模糊后的角度（弧度）
	Raw []float64
	// 归一化到 [0,1]，范围退化时为 nil
	Tone []float64
	Min  float64
	Max  float64
}

func (t *ToneMap) Degenerate() bool {
	return t.Max == t.Min
}

// ComputeDirtMap 由网格拓扑估算每个顶点的脏污色调，凹处取低值，凸处取高值
func ComputeDirtMap(m Mesh, blurIterations int, blurStrength, dirtAngle, cleanAngle float64, dirtOnly bool) (*ToneMap, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}
	if blurIterations < 0 {
		return nil, fmt.Errorf("%w: blur iterations %d < 0", ErrInvalidInput, blurIterations)
	}
	if !(blurStrength > 0) || math.IsInf(blurStrength, 0) {
		return nil, fmt.Errorf("%w: blur strength %v must be positive", ErrInvalidInput, blurStrength)
	}
	if err := checkAngle("dirt", dirtAngle); err != nil {
		return nil, err
	}
	if err := checkAngle("clean", cleanAngle); err != nil {
		return nil, err
	}

	adj := BuildAdjacency(m)
	raw := VertexTones(m, adj, dirtAngle, cleanAngle, dirtOnly)
	BlurTones(adj, raw, blurIterations, blurStrength)

	tm := &ToneMap{Raw: raw}
	if len(raw) == 0 {
		return tm, nil
	}
	tm.Min, tm.Max = raw[0], raw[0]
	for _, t := range raw[1:] {
		tm.Min = math.Min(tm.Min, t)
		tm.Max = math.Max(tm.Max, t)
	}
	if tm.Degenerate() {
		return tm, nil
	}

	rng := tm.Max - tm.Min
	tm.Tone = make([]float64, len(raw))
	for i, t := range raw {
		t = (t - tm.Min) / rng
		if dirtOnly {
			t = math.Min(t, 0.5) * 2
		}
		tm.Tone[i] = t
	}
	return tm, nil
}

func checkAngle(name string, a float64) error {
	if math.IsNaN(a) || a < 0 || a > math.Pi {
		return fmt.Errorf("%w: %s angle %v outside [0, pi]", ErrInvalidInput, name, a)
	}
	return nil
}

// VertexTones 计算每个顶点截断后的原始角度，无邻接顶点保持 0
func VertexTones(m Mesh, adj Adjacency, dirtAngle, cleanAngle float64, dirtOnly bool) []float64 {
	tone := make([]float64, m.VertexCount())
	for i := range tone {
		con := adj.Neighbors(i)
		if len(con) == 0 {
			continue
		}

		p := m.Position(i)
		co := dvec3.T{float64(p[0]), float64(p[1]), float64(p[2])}
		n := m.Normal(i)
		no := dvec3.T{float64(n[0]), float64(n[1]), float64(n[2])}

		var vec dvec3.T
		for _, c := range con {
			q := m.Position(int(c))
			d := dvec3.T{float64(q[0]) - co[0], float64(q[1]) - co[1], float64(q[2]) - co[2]}
			if l := d.Length(); l > 0 {
				d.Scale(1 / l)
			}
			vec.Add(&d)
		}
		vec.Scale(1 / float64(len(con)))

		dot := math.Max(-1, math.Min(1, dvec3.Dot(&no, &vec)))
		ang := math.Max(dirtAngle, math.Acos(dot))
		if !dirtOnly {
			ang = math.Min(cleanAngle, ang)
		}
		tone[i] = ang
	}
	return tone
}

// BlurTones 原地模糊色调，无邻接顶点保持原值
func BlurTones(adj Adjacency, tone []float64, iterations int, strength float64) {
	orig := make([]float64, len(tone))
	for it := 0; it < iterations; it++ {
		copy(orig, tone)
		for j, con := range adj {
			if len(con) == 0 {
				continue
			}
			t := orig[j]
			for _, v := range con {
				t += strength * orig[v]
			}
			tone[j] = t / (float64(len(con))*strength + 1)
		}
	}
}

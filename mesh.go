package dirt

import (
	"fmt"
	"math"

	dvec3 "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go3d/vec3"
)

// PolyMesh 多边形网格，面为 3 或 4 个顶点的环
type PolyMesh struct {
	Name     string            `json:"name,omitempty"`
	Vertices []vec3.T          `json:"vertices"`
	Normals  []vec3.T          `json:"normals,omitempty"`
	Edges    [][2]uint32       `json:"edges,omitempty"`
	Faces    [][]uint32        `json:"faces"`
	Selected []bool            `json:"selected,omitempty"`
	Colors   *CornerColorLayer `json:"colors,omitempty"`
}

func (n *PolyMesh) VertexCount() int {
	return len(n.Vertices)
}

func (n *PolyMesh) Position(i int) vec3.T {
	return n.Vertices[i]
}

func (n *PolyMesh) Normal(i int) vec3.T {
	return n.Normals[i]
}

func (n *PolyMesh) EdgeCount() int {
	return len(n.Edges)
}

func (n *PolyMesh) Edge(i int) [2]uint32 {
	return n.Edges[i]
}

func (n *PolyMesh) FaceCount() int {
	return len(n.Faces)
}

func (n *PolyMesh) Face(i int) []uint32 {
	return n.Faces[i]
}

func (n *PolyMesh) FaceSelected(i int) bool {
	return i < len(n.Selected) && n.Selected[i]
}

func (n *PolyMesh) Validate() error {
	return Validate(n)
}

// Validate 检查索引范围、面的顶点数以及坐标和法线是否有限
func Validate(m Mesh) error {
	if m == nil {
		return fmt.Errorf("%w: nil mesh", ErrInvalidInput)
	}
	if pm, ok := m.(*PolyMesh); ok {
		if pm == nil {
			return fmt.Errorf("%w: nil mesh", ErrInvalidInput)
		}
		if len(pm.Normals) != len(pm.Vertices) {
			return fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidInput, len(pm.Normals), len(pm.Vertices))
		}
	}
	for i := 0; i < m.VertexCount(); i++ {
		if !finite(m.Position(i)) {
			return fmt.Errorf("%w: vertex %d position %v is not finite", ErrInvalidInput, i, m.Position(i))
		}
		if !finite(m.Normal(i)) {
			return fmt.Errorf("%w: vertex %d normal %v is not finite", ErrInvalidInput, i, m.Normal(i))
		}
	}
	vc := uint32(m.VertexCount())
	for i := 0; i < m.EdgeCount(); i++ {
		e := m.Edge(i)
		if e[0] >= vc || e[1] >= vc {
			return fmt.Errorf("%w: edge %d references vertex out of range (%d, %d)", ErrInvalidInput, i, e[0], e[1])
		}
	}
	for i := 0; i < m.FaceCount(); i++ {
		f := m.Face(i)
		if len(f) < MIN_FACE_CORNERS || len(f) > MAX_FACE_CORNERS {
			return fmt.Errorf("%w: face %d has %d corners", ErrInvalidInput, i, len(f))
		}
		for _, v := range f {
			if v >= vc {
				return fmt.Errorf("%w: face %d references vertex %d out of range", ErrInvalidInput, i, v)
			}
		}
	}
	return nil
}

func finite(v vec3.T) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// EnsureColorLayer 返回颜色层，不存在时用 base 填充新建
func (n *PolyMesh) EnsureColorLayer(base Color) *CornerColorLayer {
	if n.Colors == nil {
		n.Colors = NewCornerColorLayer(DEFAULT_COLOR_LAYER_NAME, len(n.Faces), base)
	}
	return n.Colors
}

func (n *PolyMesh) ReComputeNormal() {
	normals := make([]vec3.T, len(n.Vertices))
	for _, f := range n.Faces {
		for k := 1; k+1 < len(f); k++ {
			pt1 := n.Vertices[f[0]]
			pt2 := n.Vertices[f[k]]
			pt3 := n.Vertices[f[k+1]]

			sub1 := vec3.Sub(&pt3, &pt2)
			sub2 := vec3.Sub(&pt1, &pt2)

			cro := vec3.Cross(&sub1, &sub2)
			l := cro.Length()
			if l == 0 {
				continue
			}
			weightedNormal := cro.Scale(1 / l)

			normals[f[0]].Add(weightedNormal)
			normals[f[k]].Add(weightedNormal)
			normals[f[k+1]].Add(weightedNormal)
		}
	}

	for i := range normals {
		if normals[i].IsZero() {
			normals[i] = vec3.T{0, 0, 1}
			continue
		}
		normals[i].Normalize()
	}

	n.Normals = normals
}

// EdgesFromFaces 由面环重建边，每条无向边一条
func (n *PolyMesh) EdgesFromFaces() {
	seen := make(map[[2]uint32]bool)
	var edges [][2]uint32
	for _, f := range n.Faces {
		for k := range f {
			a, b := f[k], f[(k+1)%len(f)]
			if a == b {
				continue
			}
			key := [2]uint32{a, b}
			if b < a {
				key = [2]uint32{b, a}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, [2]uint32{a, b})
		}
	}
	n.Edges = edges
}

// Weld 合并按 precision 位小数取整后重合的顶点，返回移除的顶点数
func (n *PolyMesh) Weld(precision int) int {
	scale := math.Pow(10, float64(precision))
	key := func(v vec3.T) [3]int64 {
		return [3]int64{
			int64(math.Round(float64(v[0]) * scale)),
			int64(math.Round(float64(v[1]) * scale)),
			int64(math.Round(float64(v[2]) * scale)),
		}
	}

	index := make(map[[3]int64]uint32)
	remap := make([]uint32, len(n.Vertices))
	var vs, vns []vec3.T
	hasNormals := len(n.Normals) == len(n.Vertices)
	for i, v := range n.Vertices {
		k := key(v)
		if j, ok := index[k]; ok {
			remap[i] = j
			if hasNormals {
				vns[j].Add(&n.Normals[i])
			}
			continue
		}
		j := uint32(len(vs))
		index[k] = j
		remap[i] = j
		vs = append(vs, v)
		if hasNormals {
			vns = append(vns, n.Normals[i])
		}
	}
	removed := len(n.Vertices) - len(vs)
	if removed == 0 {
		return 0
	}

	for i := range vns {
		if vns[i].IsZero() {
			vns[i] = vec3.T{0, 0, 1}
			continue
		}
		vns[i].Normalize()
	}
	for _, f := range n.Faces {
		for k := range f {
			f[k] = remap[f[k]]
		}
	}
	for i := range n.Edges {
		n.Edges[i] = [2]uint32{remap[n.Edges[i][0]], remap[n.Edges[i][1]]}
	}

	n.Vertices = vs
	if hasNormals {
		n.Normals = vns
	}
	return removed
}

// Triangles 三角化，四边形沿 0-2 对角线拆分
func (n *PolyMesh) Triangles() [][3]uint32 {
	tris := make([][3]uint32, 0, len(n.Faces))
	for _, f := range n.Faces {
		switch len(f) {
		case 3:
			tris = append(tris, [3]uint32{f[0], f[1], f[2]})
		case 4:
			tris = append(tris, [3]uint32{f[0], f[1], f[2]})
			tris = append(tris, [3]uint32{f[2], f[3], f[0]})
		}
	}
	return tris
}

func (n *PolyMesh) GetBoundbox() *[6]float64 {
	minX := math.MaxFloat64
	minY := math.MaxFloat64
	minZ := math.MaxFloat64
	maxX := -math.MaxFloat64
	maxY := -math.MaxFloat64
	maxZ := -math.MaxFloat64
	for i := range n.Vertices {
		minX = math.Min(minX, float64(n.Vertices[i][0]))
		minY = math.Min(minY, float64(n.Vertices[i][1]))
		minZ = math.Min(minZ, float64(n.Vertices[i][2]))

		maxX = math.Max(maxX, float64(n.Vertices[i][0]))
		maxY = math.Max(maxY, float64(n.Vertices[i][1]))
		maxZ = math.Max(maxZ, float64(n.Vertices[i][2]))
	}
	return &[6]float64{minX, minY, minZ, maxX, maxY, maxZ}
}

func ComputeBBox(meshes []*PolyMesh) dvec3.Box {
	if len(meshes) == 0 {
		return dvec3.Box{}
	}

	bbox := dvec3.MinBox
	for _, m := range meshes {
		if len(m.Vertices) == 0 {
			continue
		}
		bx := m.GetBoundbox()
		min := dvec3.T{bx[0], bx[1], bx[2]}
		max := dvec3.T{bx[3], bx[4], bx[5]}
		bbx := dvec3.Box{Min: min, Max: max}
		bbox.Join(&bbx)
	}
	return bbox
}

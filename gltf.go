package dirt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/flywave/go3d/vec3"

	"github.com/qmuntal/gltf"
)

const GLTF_VERSION = "2.0"

const (
	ATTR_POSITION = "POSITION"
	ATTR_NORMAL   = "NORMAL"
	ATTR_COLOR    = "COLOR_0"
)

// CreateDoc 创建一个空的 GLTF 文档
func CreateDoc() *gltf.Document {
	doc := &gltf.Document{}
	doc.Asset.Version = GLTF_VERSION
	srcIndex := uint32(0)
	doc.Scene = &srcIndex
	doc.Scenes = append(doc.Scenes, &gltf.Scene{})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})
	return doc
}

type calcSizeWriter struct {
	writer io.Writer
	Size   int
}

func (w *calcSizeWriter) Write(p []byte) (n int, err error) {
	si := len(p)
	if _, err := w.writer.Write(p); err != nil {
		return 0, err
	}
	w.Size += si
	return si, nil
}

func (w *calcSizeWriter) Bytes() []byte {
	return w.writer.(*bytes.Buffer).Bytes()
}

func newSizeWriter() *calcSizeWriter {
	return &calcSizeWriter{writer: bytes.NewBuffer(nil)}
}

func calcPadding(offset, paddingUnit int) int {
	padding := offset % paddingUnit
	if padding != 0 {
		padding = paddingUnit - padding
	}
	return padding
}

// GetGltfBinary 编码为 GLB 并按 paddingUnit 对齐
func GetGltfBinary(doc *gltf.Document, paddingUnit int) ([]byte, error) {
	w := newSizeWriter()
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	padding := calcPadding(w.Size, paddingUnit)
	if padding == 0 {
		return w.Bytes(), nil
	}
	pad := bytes.Repeat([]byte{0x20}, padding)
	w.Write(pad)
	return w.Bytes(), nil
}

// BuildGltf 将网格及其角点颜色写入文档，每个网格一个节点
func BuildGltf(doc *gltf.Document, meshes []*PolyMesh) error {
	for _, m := range meshes {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		if len(m.Faces) == 0 {
			continue
		}
		buildGltfMesh(doc, m)
	}
	return nil
}

// 每个不同的 (顶点, 角点颜色) 拆成独立顶点
func splitCorners(m *PolyMesh) (vs, vns []vec3.T, cls []Color, faces [][]uint32) {
	vdict := make([]map[Color]uint32, len(m.Vertices))
	faces = make([][]uint32, len(m.Faces))
	for i, f := range m.Faces {
		pf := make([]uint32, len(f))
		for j, vidx := range f {
			cl := White
			if m.Colors != nil {
				cl = m.Colors.CornerColor(i, j)
			}
			if vdict[vidx] == nil {
				vdict[vidx] = make(map[Color]uint32)
			}
			idx, ok := vdict[vidx][cl]
			if !ok {
				idx = uint32(len(vs))
				vdict[vidx][cl] = idx
				vs = append(vs, m.Vertices[vidx])
				vns = append(vns, m.Normal(int(vidx)))
				cls = append(cls, cl)
			}
			pf[j] = idx
		}
		faces[i] = pf
	}
	return
}

func writeView(buffer *gltf.Buffer, doc *gltf.Document, buf *bytes.Buffer, data interface{}) uint32 {
	start := uint32(buf.Len())
	binary.Write(buf, binary.LittleEndian, data)
	view := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: buffer.ByteLength + start,
		ByteLength: uint32(buf.Len()) - start,
	}
	doc.BufferViews = append(doc.BufferViews, view)
	return uint32(len(doc.BufferViews) - 1)
}

func buildGltfMesh(doc *gltf.Document, m *PolyMesh) {
	buffer := doc.Buffers[0]
	vs, vns, cls, faces := splitCorners(m)
	split := &PolyMesh{Vertices: vs, Faces: faces}
	tris := split.Triangles()

	buf := bytes.NewBuffer(nil)
	bvIndex := writeView(buffer, doc, buf, tris)
	bvPos := writeView(buffer, doc, buf, vs)
	bvNl := writeView(buffer, doc, buf, vns)
	bvCl := writeView(buffer, doc, buf, cls)
	buffer.ByteLength += uint32(buf.Len())
	buffer.Data = append(buffer.Data, buf.Bytes()...)

	idx := uint32(len(doc.Accessors))
	box := split.GetBoundbox()
	doc.Accessors = append(doc.Accessors,
		&gltf.Accessor{
			BufferView:    &bvIndex,
			ComponentType: gltf.ComponentUint,
			Type:          gltf.AccessorScalar,
			Count:         uint32(len(tris)) * 3,
		},
		&gltf.Accessor{
			BufferView:    &bvPos,
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec3,
			Count:         uint32(len(vs)),
			Min:           []float32{float32(box[0]), float32(box[1]), float32(box[2])},
			Max:           []float32{float32(box[3]), float32(box[4]), float32(box[5])},
		},
		&gltf.Accessor{
			BufferView:    &bvNl,
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec3,
			Count:         uint32(len(vns)),
		},
		&gltf.Accessor{
			BufferView:    &bvCl,
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec4,
			Count:         uint32(len(cls)),
		},
	)

	indices := idx
	ps := &gltf.Primitive{
		Indices: &indices,
		Mode:    gltf.PrimitiveTriangles,
		Attributes: gltf.Attribute{
			ATTR_POSITION: idx + 1,
			ATTR_NORMAL:   idx + 2,
			ATTR_COLOR:    idx + 3,
		},
	}
	meshId := uint32(len(doc.Meshes))
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: m.Name, Primitives: []*gltf.Primitive{ps}})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: m.Name, Mesh: &meshId})
}

// MeshesFromGltf 读取文档中的每个网格，三角形图元合并为一个 PolyMesh
func MeshesFromGltf(doc *gltf.Document) ([]*PolyMesh, error) {
	var meshes []*PolyMesh
	for mi, mh := range doc.Meshes {
		m, err := meshFromGltf(doc, mh)
		if err != nil {
			return nil, fmt.Errorf("mesh %d (%s): %w", mi, mh.Name, err)
		}
		if m.Name == "" {
			m.Name = fmt.Sprintf("mesh_%d", mi)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func meshFromGltf(doc *gltf.Document, mh *gltf.Mesh) (*PolyMesh, error) {
	m := &PolyMesh{Name: mh.Name}
	var colors []FaceColors
	hasColor := false
	missingNormals := false

	for pi, ps := range mh.Primitives {
		if ps.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := ps.Attributes[ATTR_POSITION]
		if !ok {
			return nil, fmt.Errorf("primitive %d: no %s attribute", pi, ATTR_POSITION)
		}
		pos, _, err := readAccessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("primitive %d %s: %w", pi, ATTR_POSITION, err)
		}
		offset := uint32(len(m.Vertices))
		for _, p := range pos {
			m.Vertices = append(m.Vertices, vec3.T{p[0], p[1], p[2]})
		}

		if nlIdx, ok := ps.Attributes[ATTR_NORMAL]; ok {
			nls, _, err := readAccessor(doc, nlIdx)
			if err != nil {
				return nil, fmt.Errorf("primitive %d %s: %w", pi, ATTR_NORMAL, err)
			}
			if len(nls) != len(pos) {
				return nil, fmt.Errorf("primitive %d: %d normals for %d positions", pi, len(nls), len(pos))
			}
			for _, n := range nls {
				m.Normals = append(m.Normals, vec3.T{n[0], n[1], n[2]})
			}
		} else {
			missingNormals = true
		}

		vcols := make([]Color, len(pos))
		for i := range vcols {
			vcols[i] = White
		}
		if clIdx, ok := ps.Attributes[ATTR_COLOR]; ok {
			cls, comps, err := readAccessor(doc, clIdx)
			if err != nil {
				return nil, fmt.Errorf("primitive %d %s: %w", pi, ATTR_COLOR, err)
			}
			if len(cls) != len(pos) {
				return nil, fmt.Errorf("primitive %d: %d colors for %d positions", pi, len(cls), len(pos))
			}
			for i, c := range cls {
				vcols[i] = Color{c[0], c[1], c[2], 1}
				if comps == 4 {
					vcols[i][3] = c[3]
				}
			}
			hasColor = true
		}

		var indices []uint32
		if ps.Indices != nil {
			indices, err = readIndices(doc, *ps.Indices)
			if err != nil {
				return nil, fmt.Errorf("primitive %d indices: %w", pi, err)
			}
		} else {
			indices = make([]uint32, len(pos))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		if len(indices)%3 != 0 {
			return nil, fmt.Errorf("primitive %d: %d indices is not a triangle list", pi, len(indices))
		}
		for i := 0; i < len(indices); i += 3 {
			var fc FaceColors
			f := make([]uint32, 3)
			for j := 0; j < 3; j++ {
				v := indices[i+j]
				if int(v) >= len(pos) {
					return nil, fmt.Errorf("primitive %d: index %d out of range", pi, v)
				}
				f[j] = v + offset
				fc[j] = vcols[v]
			}
			fc[3] = fc[2]
			m.Faces = append(m.Faces, f)
			colors = append(colors, fc)
		}
	}

	if missingNormals || len(m.Normals) != len(m.Vertices) {
		m.ReComputeNormal()
	}
	if hasColor {
		m.Colors = &CornerColorLayer{Name: DEFAULT_COLOR_LAYER_NAME, Data: colors}
	}
	m.EdgesFromFaces()
	return m, nil
}

func componentSize(ct gltf.ComponentType) int {
	switch ct {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

func componentCount(at gltf.AccessorType) int {
	switch at {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	}
	return 0
}

// 按访问器偏移和视图步长取出每个元素的原始字节
func accessorElements(doc *gltf.Document, idx uint32) ([][]byte, *gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, nil, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.BufferView == nil {
		return nil, nil, fmt.Errorf("accessor %d has no buffer view", idx)
	}
	if int(*acc.BufferView) >= len(doc.BufferViews) {
		return nil, nil, fmt.Errorf("accessor %d: buffer view %d out of range", idx, *acc.BufferView)
	}
	view := doc.BufferViews[*acc.BufferView]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, nil, fmt.Errorf("buffer view %d: buffer %d out of range", *acc.BufferView, view.Buffer)
	}
	data := doc.Buffers[view.Buffer].Data

	cs, cc := componentSize(acc.ComponentType), componentCount(acc.Type)
	if cs == 0 || cc == 0 {
		return nil, nil, fmt.Errorf("accessor %d: unsupported layout", idx)
	}
	elem := cs * cc
	stride := int(view.ByteStride)
	if stride == 0 {
		stride = elem
	}
	start := int(view.ByteOffset) + int(acc.ByteOffset)
	end := int(view.ByteOffset) + int(view.ByteLength)
	if end > len(data) {
		return nil, nil, fmt.Errorf("buffer view %d exceeds buffer", *acc.BufferView)
	}
	if acc.Count > 0 && int64(start)+int64(acc.Count-1)*int64(stride)+int64(elem) > int64(end) {
		return nil, nil, fmt.Errorf("accessor %d: %d elements exceed buffer view", idx, acc.Count)
	}
	out := make([][]byte, acc.Count)
	for i := range out {
		p := start + i*stride
		out[i] = data[p : p+elem]
	}
	return out, acc, nil
}

// 读取浮点或归一化整数访问器，同时返回分量个数
func readAccessor(doc *gltf.Document, idx uint32) ([][4]float32, int, error) {
	elems, acc, err := accessorElements(doc, idx)
	if err != nil {
		return nil, 0, err
	}
	cc := componentCount(acc.Type)
	cs := componentSize(acc.ComponentType)
	out := make([][4]float32, len(elems))
	for i, e := range elems {
		for c := 0; c < cc; c++ {
			b := e[c*cs : (c+1)*cs]
			switch acc.ComponentType {
			case gltf.ComponentFloat:
				out[i][c] = math.Float32frombits(binary.LittleEndian.Uint32(b))
			case gltf.ComponentUbyte:
				out[i][c] = float32(b[0]) / math.MaxUint8
			case gltf.ComponentUshort:
				out[i][c] = float32(binary.LittleEndian.Uint16(b)) / math.MaxUint16
			default:
				return nil, 0, fmt.Errorf("accessor %d: unsupported component type %v", idx, acc.ComponentType)
			}
		}
	}
	return out, cc, nil
}

func readIndices(doc *gltf.Document, idx uint32) ([]uint32, error) {
	elems, acc, err := accessorElements(doc, idx)
	if err != nil {
		return nil, err
	}
	if componentCount(acc.Type) != 1 {
		return nil, fmt.Errorf("accessor %d: indices must be scalar", idx)
	}
	out := make([]uint32, len(elems))
	for i, e := range elems {
		switch acc.ComponentType {
		case gltf.ComponentUbyte:
			out[i] = uint32(e[0])
		case gltf.ComponentUshort:
			out[i] = uint32(binary.LittleEndian.Uint16(e))
		case gltf.ComponentUint:
			out[i] = binary.LittleEndian.Uint32(e)
		default:
			return nil, fmt.Errorf("accessor %d: unsupported index type %v", idx, acc.ComponentType)
		}
	}
	return out, nil
}

package dirt

import "fmt"

// FaceColors 一个面的四个角点颜色，三角形只用前三个
type FaceColors [MAX_FACE_CORNERS]Color

// CornerColorLayer 按面角点存储的颜色层
type CornerColorLayer struct {
	Name string       `json:"name"`
	Data []FaceColors `json:"data"`
}

func NewCornerColorLayer(name string, faceCount int, base Color) *CornerColorLayer {
	l := &CornerColorLayer{Name: name, Data: make([]FaceColors, faceCount)}
	for i := range l.Data {
		for j := range l.Data[i] {
			l.Data[i][j] = base
		}
	}
	return l
}

func (l *CornerColorLayer) FaceCount() int {
	return len(l.Data)
}

func (l *CornerColorLayer) CornerColor(face, corner int) Color {
	return l.Data[face][corner]
}

func (l *CornerColorLayer) SetCornerColor(face, corner int, c Color) {
	l.Data[face][corner] = c
}

// ApplyToneToColors 角点 RGB 乘以其顶点色调，alpha 不变；mask 为 nil 时处理所有面，校验失败时不写入
func ApplyToneToColors(m Mesh, tone []float64, layer ColorLayer, mask Selection) error {
	if err := Validate(m); err != nil {
		return err
	}
	if layer == nil {
		return fmt.Errorf("%w: nil color layer", ErrInvalidInput)
	}
	if len(tone) != m.VertexCount() {
		return fmt.Errorf("%w: %d tones for %d vertices", ErrInvalidInput, len(tone), m.VertexCount())
	}
	if layer.FaceCount() != m.FaceCount() {
		return fmt.Errorf("%w: color layer has %d faces, mesh has %d", ErrInvalidInput, layer.FaceCount(), m.FaceCount())
	}

	for i := 0; i < m.FaceCount(); i++ {
		if mask != nil && !mask.FaceSelected(i) {
			continue
		}
		for j, v := range m.Face(i) {
			t := float32(tone[v])
			col := layer.CornerColor(i, j)
			col[0] *= t
			col[1] *= t
			col[2] *= t
			layer.SetCornerColor(i, j, col)
		}
	}
	return nil
}

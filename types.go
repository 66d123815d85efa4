package dirt

import (
	"errors"

	"github.com/flywave/go3d/vec3"
)

const (
	DEFAULT_BLUR_STRENGTH   float64 = 1.0
	DEFAULT_BLUR_ITERATIONS int     = 1
	DEFAULT_CLEAN_ANGLE     float64 = 180.0
	DEFAULT_DIRT_ANGLE      float64 = 0.0

	MIN_BLUR_STRENGTH   float64 = 0.01
	MAX_BLUR_STRENGTH   float64 = 1.0
	MAX_BLUR_ITERATIONS int     = 40
	MAX_ANGLE_DEGREES   float64 = 180.0
)

const (
	MIN_FACE_CORNERS = 3
	MAX_FACE_CORNERS = 4
)

const DEFAULT_COLOR_LAYER_NAME = "Col"

// ErrInvalidInput 输入校验失败，任何修改之前返回
var ErrInvalidInput = errors.New("dirt: invalid input")

// Color 角点颜色 RGBA，取值 [0,1]
type Color [4]float32

var White = Color{1, 1, 1, 1}

// Mesh 只读网格接口
type Mesh interface {
	VertexCount() int
	Position(i int) vec3.T
	Normal(i int) vec3.T
	EdgeCount() int
	Edge(i int) [2]uint32
	FaceCount() int
	Face(i int) []uint32
}

// Selection 面选择掩码
type Selection interface {
	FaceSelected(i int) bool
}

// ColorLayer 可写的面角点颜色层
type ColorLayer interface {
	FaceCount() int
	CornerColor(face, corner int) Color
	SetCornerColor(face, corner int, c Color)
}

package polyline

import (
	_ "embed"

	"github.com/kanbang/cesium/render"
)

//go:embed shaders/polyline_vs.wgsl
var vertexShaderSource string

//go:embed shaders/polyline_fs.wgsl
var fragmentShaderSource string

// Vertex attribute indices in the store, matching the shader locations.
const (
	attrPosition = iota
	attrColor
	attrOutlineColor
)

// ProgramDescriptor returns the descriptor of the polyline program. Every
// collection acquires the same program, so a context compiles it once.
func ProgramDescriptor() render.ProgramDescriptor {
	return render.ProgramDescriptor{
		Label:          "polyline",
		VertexSource:   vertexShaderSource,
		FragmentSource: fragmentShaderSource,
		Attributes: []render.AttributeLocation{
			{Name: "position", Location: attrPosition},
			{Name: "color", Location: attrColor},
			{Name: "outline_color", Location: attrOutlineColor},
		},
		Uniforms: []render.Uniform{
			{Name: uniformViewProjection, Components: 16},
			{Name: uniformModel, Components: 16},
			{Name: uniformMorph, Components: 4},
		},
	}
}

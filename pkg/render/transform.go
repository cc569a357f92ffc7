package render

import "github.com/taigrr/meshsvg/pkg/math3d"

// ComposeMVP returns projection · (view · model). Zero matrices stand for
// the identity.
func ComposeMVP(model, view, projection math3d.Mat4) math3d.Mat4 {
	mv := view.OrIdentity().Mul(model.OrIdentity())
	return projection.OrIdentity().Mul(mv)
}

// TransformVertices maps object-space points into clip space as M·(x,y,z,1).
// The input is not modified.
func TransformVertices(vertices []math3d.Vec3, m math3d.Mat4) []math3d.Vec4 {
	return transformVertices(vertices, m, 1)
}

func transformVertices(vertices []math3d.Vec3, m math3d.Mat4, workers int) []math3d.Vec4 {
	out := make([]math3d.Vec4, len(vertices))
	parallelRange(len(vertices), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = m.MulVec4(math3d.Point(vertices[i]))
		}
	})
	return out
}

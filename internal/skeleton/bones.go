package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"

	"eq-wld-decoder/internal/mesh"
)

// WorldTransforms computes the rest-pose world matrix of each bone.
// Returns a slice of 4×4 matrices indexed by bone index.
func (s *Skeleton) WorldTransforms() []mgl32.Mat4 {
	worlds := make([]mgl32.Mat4, len(s.Bones))
	if len(s.Bones) == 0 {
		return worlds
	}

	// Parents are not guaranteed to precede children, so walk from the root.
	worlds[0] = s.Bones[0].Rest.Mat4()
	queue := []int{0}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, c := range s.Bones[p].Children {
			worlds[c] = worlds[p].Mul4(s.Bones[c].Rest.Mat4())
			queue = append(queue, c)
		}
	}
	return worlds
}

// Pose returns the vertex positions of m moved into the rest pose.
// Rigid skinning: 1 bone per vertex, weight = 1.0. Unskinned meshes and
// vertices with an unknown bone are returned unchanged.
func (s *Skeleton) Pose(m *mesh.Mesh) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(m.Positions))
	copy(out, m.Positions)
	if !m.Skinned() || len(s.Bones) == 0 {
		return out
	}

	worlds := s.WorldTransforms()
	for vi, bone := range m.Bones {
		if int(bone) >= len(worlds) {
			continue
		}
		out[vi] = mgl32.TransformCoordinate(out[vi], worlds[bone])
	}
	return out
}

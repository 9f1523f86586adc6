package ogre

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func vec3f(v mgl64.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

// writeMatrices stores mat4 accessor using vec4 writer
func writeMatrices(doc *gltf.Document, matrices []mgl64.Mat4) uint32 {
	a := make([][4]float32, len(matrices)*4)
	for i, m := range matrices {
		for col := 0; col < 4; col++ {
			c := m.Col(col)
			a[i*4+col] = [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
		}
	}
	acc := modeler.WriteTangent(doc, a)
	doc.Accessors[acc].Type = gltf.AccessorMat4
	doc.Accessors[acc].Count /= 4
	doc.BufferViews[*doc.Accessors[acc].BufferView].ByteStride *= 4
	return acc
}

func (s *Skeleton) exportGLTF(doc *gltf.Document) (roots []uint32, skin uint32) {
	first := uint32(len(doc.Nodes))
	world := make([]mgl64.Mat4, len(s.Bones))
	inverse := make([]mgl64.Mat4, len(s.Bones))
	joints := make([]uint32, len(s.Bones))

	for _, b := range s.Bones {
		rot := b.Rot.Normalize()
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        b.Name,
			Translation: vec3f(b.Loc),
			Rotation:    [4]float32{float32(rot.V[0]), float32(rot.V[1]), float32(rot.V[2]), float32(rot.W)},
			Scale:       [3]float32{1, 1, 1},
		})
		joints[b.ID] = first + uint32(b.ID)

		local := mgl64.Translate3D(b.Loc[0], b.Loc[1], b.Loc[2]).Mul4(rot.Mat4())
		if b.Parent != nil {
			world[b.ID] = world[b.Parent.ID].Mul4(local)
			parent := doc.Nodes[first+uint32(b.Parent.ID)]
			parent.Children = append(parent.Children, joints[b.ID])
		} else {
			world[b.ID] = local
			roots = append(roots, joints[b.ID])
		}
		inverse[b.ID] = world[b.ID].Inv()
	}

	doc.Skins = append(doc.Skins, &gltf.Skin{
		Name:                s.Name,
		Joints:              joints,
		InverseBindMatrices: gltf.Index(writeMatrices(doc, inverse)),
	})
	return roots, uint32(len(doc.Skins) - 1)
}

func (m *Mesh) exportGLTFPrimitive(doc *gltf.Document, s *SubMesh, material uint32) *gltf.Primitive {
	count := len(s.Vertices)
	positions := make([][3]float32, count)
	normals := make([][3]float32, count)
	for i, v := range s.Vertices {
		positions[i] = vec3f(v.Position)
		normals[i] = vec3f(v.Normal)
	}
	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(doc, positions),
		"NORMAL":   modeler.WriteNormal(doc, normals),
	}

	if m.HasUVCoordinates {
		uvs := make([][2]float32, count)
		for i, v := range s.Vertices {
			if len(v.TexCoords) != 0 {
				uvs[i] = [2]float32{float32(v.TexCoords[0][0]), float32(v.TexCoords[0][1])}
			}
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
	}
	if m.HasVertexColours {
		colours := make([][4]uint8, count)
		for i, v := range s.Vertices {
			c := mgl64.Vec4{1, 1, 1, 1}
			if v.Diffuse != nil {
				c = *v.Diffuse
			}
			for j := range c {
				colours[i][j] = uint8(mgl64.Clamp(c[j], 0, 1)*255 + 0.5)
			}
		}
		attributes["COLOR_0"] = modeler.WriteColor(doc, colours)
	}
	if m.Skeleton != nil {
		joints := make([][4]uint16, count)
		weights := make([][4]float32, count)
		for i, v := range s.Vertices {
			for j, inf := range v.Influences {
				if j >= 4 {
					break
				}
				joints[i][j] = uint16(inf.Bone.ID)
				weights[i][j] = float32(inf.Weight)
			}
		}
		attributes["JOINTS_0"] = modeler.WriteJoints(doc, joints)
		attributes["WEIGHTS_0"] = modeler.WriteWeights(doc, weights)
	}

	indices := make([]uint32, 0, len(s.Faces)*3)
	for _, f := range s.Faces {
		indices = append(indices, uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}

	return &gltf.Primitive{
		Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
		Attributes: attributes,
		Material:   gltf.Index(material),
	}
}

// ExportGLTF adds mesh node, its materials and skin to doc
func (m *Mesh) ExportGLTF(doc *gltf.Document) error {
	if len(m.SubMeshes) == 0 {
		return errors.Errorf("Mesh %q has no submeshes", m.Name)
	}
	materials := make(map[string]uint32)
	gm := &gltf.Mesh{Name: m.Name}
	for _, s := range m.SubMeshes {
		name := s.MaterialName()
		material, ok := materials[name]
		if !ok {
			material = uint32(len(doc.Materials))
			doc.Materials = append(doc.Materials, &gltf.Material{Name: name})
			materials[name] = material
		}
		gm.Primitives = append(gm.Primitives, m.exportGLTFPrimitive(doc, s, material))
	}
	doc.Meshes = append(doc.Meshes, gm)

	node := &gltf.Node{
		Name:     m.Name,
		Mesh:     gltf.Index(uint32(len(doc.Meshes) - 1)),
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, node)

	if m.Skeleton != nil && len(m.Skeleton.Bones) != 0 {
		roots, skin := m.Skeleton.exportGLTF(doc)
		node.Skin = gltf.Index(skin)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, roots...)
	}
	return nil
}

// ExportGLTFBinary writes mesh as single glb document
func ExportGLTFBinary(w io.Writer, m *Mesh) error {
	doc := gltf.NewDocument()
	if err := m.ExportGLTF(doc); err != nil {
		return err
	}
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return errors.Wrapf(encoder.Encode(doc), "Cannot encode gltf of %q", m.Name)
}

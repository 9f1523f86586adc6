package ogre

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Accuracy is tolerance of vertex attributes comparison
const Accuracy = 1e-6

// Attributes is value of vertex, two vertices with equal attributes
// are merged into one.
type Attributes struct {
	Position  mgl64.Vec3
	Normal    mgl64.Vec3
	Diffuse   *mgl64.Vec4
	Specular  *mgl64.Vec4
	TexCoords []mgl64.Vec2
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= Accuracy
}

func nearSlice(a, b []float64) bool {
	for i := range a {
		if !near(a[i], b[i]) {
			return false
		}
	}
	return true
}

func nearColour(a, b *mgl64.Vec4) bool {
	if a == nil || b == nil {
		return a == b
	}
	return nearSlice(a[:], b[:])
}

func (a *Attributes) Equal(b *Attributes) bool {
	if !nearSlice(a.Position[:], b.Position[:]) || !nearSlice(a.Normal[:], b.Normal[:]) {
		return false
	}
	if !nearColour(a.Diffuse, b.Diffuse) || !nearColour(a.Specular, b.Specular) {
		return false
	}
	if len(a.TexCoords) != len(b.TexCoords) {
		return false
	}
	for i := range a.TexCoords {
		if !nearSlice(a.TexCoords[i][:], b.TexCoords[i][:]) {
			return false
		}
	}
	return true
}

type Influence struct {
	Bone   *Bone
	Weight float64
}

type Vertex struct {
	// index in submesh vertex list
	ID int
	// index of source mesh vertex
	Source int
	// id of original vertex with same source, -1 for originals
	ClonedFrom int
	Attributes
	Influences []Influence
}

type Face struct {
	V [3]int
}

// Material is referenced by submesh, only its name is serialized
type Material interface {
	Name() string
}

type SubMesh struct {
	Material Material
	Vertices []*Vertex
	Faces    []Face

	// vertex ids per source index, original first then clones
	bySource map[int][]int
}

func NewSubMesh(material Material) *SubMesh {
	return &SubMesh{
		Material: material,
		Vertices: make([]*Vertex, 0),
		Faces:    make([]Face, 0),
		bySource: make(map[int][]int),
	}
}

func (s *SubMesh) MaterialName() string {
	if s.Material == nil {
		return ""
	}
	return s.Material.Name()
}

// Vertex returns id of vertex with source index and equal attributes.
// First visit of source index creates original vertex, later visits
// with different attributes create clones of it.
func (s *SubMesh) Vertex(source int, attrs Attributes) int {
	ids := s.bySource[source]
	for _, id := range ids {
		if s.Vertices[id].Attributes.Equal(&attrs) {
			return id
		}
	}
	v := &Vertex{
		ID:         len(s.Vertices),
		Source:     source,
		ClonedFrom: -1,
		Attributes: attrs,
	}
	if len(ids) != 0 {
		v.ClonedFrom = ids[0]
	}
	s.Vertices = append(s.Vertices, v)
	s.bySource[source] = append(ids, v.ID)
	return v.ID
}

// Clones returns ids of vertices cloned from original id
func (s *SubMesh) Clones(id int) []int {
	ids := s.bySource[s.Vertices[id].Source]
	if len(ids) == 0 || ids[0] != id {
		return nil
	}
	return ids[1:]
}

func (s *SubMesh) AddFace(v1, v2, v3 int) {
	s.Faces = append(s.Faces, Face{V: [3]int{v1, v2, v3}})
}

type Mesh struct {
	Name      string
	SubMeshes []*SubMesh
	Skeleton  *Skeleton

	HasVertexColours bool
	HasUVCoordinates bool
}

func (m *Mesh) VertexCount() int {
	n := 0
	for _, s := range m.SubMeshes {
		n += len(s.Vertices)
	}
	return n
}

func (m *Mesh) FaceCount() int {
	n := 0
	for _, s := range m.SubMeshes {
		n += len(s.Faces)
	}
	return n
}

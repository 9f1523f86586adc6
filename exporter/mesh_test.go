package exporter

import (
	"sort"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/ogre_xml_exporter/material"
	"github.com/mogaika/ogre_xml_exporter/ogre"
	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/status"
)

func testConverter(log *status.Logger) *MeshConverter {
	return &MeshConverter{Scene: &scene.Scene{}, Matrix: mgl64.Ident4(), Log: log}
}

func quadMesh(order []int) *scene.Mesh {
	return &scene.Mesh{
		Name: "Quad",
		Vertices: []scene.Vertex{
			{Co: mgl64.Vec3{0, 0, 0}},
			{Co: mgl64.Vec3{0.5, -1, 0}},
			{Co: mgl64.Vec3{1, 0, 0}},
			{Co: mgl64.Vec3{0.5, 1, 0}},
		},
		Faces:     []scene.Face{{V: order}},
		Materials: []string{""},
	}
}

func TestQuadSplitShorterDiagonal(t *testing.T) {
	log := status.NewLogger()
	m := testConverter(log).Convert(quadMesh([]int{0, 1, 2, 3}), nil)
	require.NotNil(t, m)
	require.Len(t, m.SubMeshes, 1)
	sub := m.SubMeshes[0]
	assert.Equal(t, []ogre.Face{{V: [3]int{0, 1, 2}}, {V: [3]int{2, 3, 0}}}, sub.Faces)
	assert.Equal(t, status.INFO, log.Status())
	assert.Equal(t, "default", sub.MaterialName())
}

// diagonal returns source indices of edge shared by both triangles
func diagonal(t *testing.T, sub *ogre.SubMesh) [2]int {
	require.Len(t, sub.Faces, 2)
	count := make(map[int]int)
	for _, f := range sub.Faces {
		for _, id := range f.V {
			count[sub.Vertices[id].Source]++
		}
	}
	res := make([]int, 0, 2)
	for source, n := range count {
		if n == 2 {
			res = append(res, source)
		}
	}
	require.Len(t, res, 2)
	sort.Ints(res)
	return [2]int{res[0], res[1]}
}

func TestQuadSplitCyclicInvariance(t *testing.T) {
	square := &scene.Mesh{
		Name: "Square",
		Vertices: []scene.Vertex{
			{Co: mgl64.Vec3{0, 0, 0}},
			{Co: mgl64.Vec3{1, 0, 0}},
			{Co: mgl64.Vec3{1, 1, 0}},
			{Co: mgl64.Vec3{0, 1, 0}},
		},
		Materials: []string{""},
	}
	// diagonal 0-2 is longer by less than accuracy, still 1-3 is used
	nearSquare := &scene.Mesh{
		Name: "NearSquare",
		Vertices: []scene.Vertex{
			{Co: mgl64.Vec3{0, 0, 0}},
			{Co: mgl64.Vec3{1, 0, 0}},
			{Co: mgl64.Vec3{1 + 2e-7, 1 + 2e-7, 0}},
			{Co: mgl64.Vec3{0, 1, 0}},
		},
		Materials: []string{""},
	}
	for _, test := range []struct {
		mesh     *scene.Mesh
		expected [2]int
	}{
		{quadMesh(nil), [2]int{0, 2}},
		{square, [2]int{0, 2}},
		{nearSquare, [2]int{1, 3}},
	} {
		for shift := 0; shift < 4; shift++ {
			order := make([]int, 4)
			for i := range order {
				order[i] = (i + shift) % 4
			}
			test.mesh.Faces = []scene.Face{{V: order}}
			m := testConverter(status.NewLogger()).Convert(test.mesh, nil)
			require.NotNil(t, m)
			assert.Equal(t, test.expected, diagonal(t, m.SubMeshes[0]), "mesh %s shift %d", test.mesh.Name, shift)
		}
	}
}

func TestMeshVertexSharing(t *testing.T) {
	mesh := &scene.Mesh{
		Name: "Roof",
		Vertices: []scene.Vertex{
			{Co: mgl64.Vec3{0, 0, 0}, No: mgl64.Vec3{0, 0, 1}},
			{Co: mgl64.Vec3{1, 0, 0}, No: mgl64.Vec3{0, 0, 1}},
			{Co: mgl64.Vec3{0, 1, 0}, No: mgl64.Vec3{0, 0, 1}},
			{Co: mgl64.Vec3{1, 1, 1}, No: mgl64.Vec3{0, 0, 1}},
		},
		Faces: []scene.Face{
			{V: []int{0, 1, 2}, Smooth: true},
			{V: []int{2, 1, 3}, Smooth: true},
			{V: []int{0, 1, 2}},
			{V: []int{2, 1, 3}},
		},
		Materials: []string{""},
	}
	m := testConverter(status.NewLogger()).Convert(mesh, nil)
	require.NotNil(t, m)
	sub := m.SubMeshes[0]

	// smooth faces share vertices, flat faces clone them per normal
	assert.Equal(t, []ogre.Face{{V: [3]int{0, 1, 2}}, {V: [3]int{2, 1, 3}}}, sub.Faces[:2])
	assert.Len(t, sub.Vertices, 7)
	assert.Equal(t, sub.Faces[2].V[0], sub.Faces[0].V[0], "flat normal of xy face equals vertex normal")

	for _, v := range sub.Vertices {
		assert.Equal(t, v.ID, sub.Vertices[v.ID].ID)
		if v.ClonedFrom >= 0 {
			orig := sub.Vertices[v.ClonedFrom]
			assert.Equal(t, orig.Source, v.Source)
			assert.Equal(t, -1, orig.ClonedFrom)
			assert.False(t, orig.Attributes.Equal(&v.Attributes))
		}
	}
	assert.NotEqual(t, sub.Faces[3].V[1], sub.Faces[2].V[1])
}

func TestMeshFaceAttributes(t *testing.T) {
	uv := mgl64.Vec2{0.25, 0.75}
	mesh := &scene.Mesh{
		Name: "Painted",
		Vertices: []scene.Vertex{
			{Co: mgl64.Vec3{0, 0, 0}, UVCo: &uv},
			{Co: mgl64.Vec3{1, 0, 0}},
			{Co: mgl64.Vec3{0, 1, 0}},
		},
		Faces: []scene.Face{{
			V:   []int{0, 1, 2},
			UV:  []mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}},
			Col: [][4]uint8{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 0}},
		}},
		Materials:    []string{""},
		FaceUV:       true,
		VertexColors: true,
	}
	conv := testConverter(status.NewLogger())
	conv.Matrix = mgl64.Translate3D(0, 0, 2)
	m := conv.Convert(mesh, nil)
	require.NotNil(t, m)
	assert.True(t, m.HasUVCoordinates)
	assert.True(t, m.HasVertexColours)

	vs := m.SubMeshes[0].Vertices
	require.Len(t, vs, 3)
	assertVec3(t, mgl64.Vec3{1, 0, 2}, vs[1].Position)
	assertVec3(t, mgl64.Vec3{0, 0, 1}, vs[1].Normal)
	assert.Equal(t, []mgl64.Vec2{{1, 1}}, vs[1].TexCoords)
	assert.Equal(t, []mgl64.Vec2{{0, 0}}, vs[2].TexCoords)
	require.NotNil(t, vs[2].Diffuse)
	assert.Equal(t, mgl64.Vec4{0, 0, 1, 0}, *vs[2].Diffuse)

	// sticky coordinates take precedence
	mesh.VertexUV = true
	m = testConverter(status.NewLogger()).Convert(mesh, nil)
	require.NotNil(t, m)
	assert.Equal(t, []mgl64.Vec2{{0.25, 0.25}}, m.SubMeshes[0].Vertices[0].TexCoords)
	assert.Equal(t, []mgl64.Vec2{{0, 1}}, m.SubMeshes[0].Vertices[1].TexCoords)
}

func TestMeshSkippedFaces(t *testing.T) {
	mesh := &scene.Mesh{
		Name: "Bad",
		Vertices: []scene.Vertex{
			{Co: mgl64.Vec3{0, 0, 0}},
			{Co: mgl64.Vec3{1, 0, 0}},
			{Co: mgl64.Vec3{2, 0, 0}},
			{Co: mgl64.Vec3{0, 1, 0}},
			{Co: mgl64.Vec3{1, 1, 0}},
		},
		Faces: []scene.Face{
			{V: []int{0, 1, 2, 3, 4}},
			{V: []int{0, 1, 2}},
			{V: []int{0, 1}},
		},
		Materials: []string{""},
	}
	log := status.NewLogger()
	assert.Nil(t, testConverter(log).Convert(mesh, nil))
	assert.True(t, hasMessage(log, status.WARNING, "Ignored face with 5 edges."))
	assert.True(t, hasMessage(log, status.WARNING, "Ignored face with 2 edges."))
	assert.True(t, hasMessage(log, status.ERROR, `Degenerate face normal in mesh "Bad"`))
	assert.True(t, hasMessage(log, status.WARNING, "Mesh Bad has no visible faces!"))
}

func TestStrongestInfluences(t *testing.T) {
	sk := ogre.NewSkeleton("Rig")
	bones := make([]*ogre.Bone, 5)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		b, err := sk.AddBone(nil, name, mgl64.Vec3{}, mgl64.QuatIdent(), mgl64.Ident4())
		require.NoError(t, err)
		bones[i] = b
	}
	weights := []boneWeight{
		{bones[3], 0.05}, {bones[1], 0.3}, {bones[4], 0.05}, {bones[0], 0.4}, {bones[2], 0.2},
	}
	inf := strongestInfluences(weights)
	require.Len(t, inf, MaxInfluences)
	expected := []float64{0.4 / 0.95, 0.3 / 0.95, 0.2 / 0.95, 0.05 / 0.95}
	sum := 0.0
	for i, in := range inf {
		assert.InDelta(t, expected[i], in.Weight, 1e-9)
		sum += in.Weight
	}
	assert.InDelta(t, 1, sum, 1e-6)
	assert.Equal(t, []*ogre.Bone{bones[0], bones[1], bones[2], bones[3]},
		[]*ogre.Bone{inf[0].Bone, inf[1].Bone, inf[2].Bone, inf[3].Bone})
}

func TestMeshInfluences(t *testing.T) {
	sk := testAnimSkeleton(t)
	mesh := &scene.Mesh{
		Name: "Skin",
		Vertices: []scene.Vertex{
			{Co: mgl64.Vec3{0, 0, 0}},
			{Co: mgl64.Vec3{1, 0, 0}},
			{Co: mgl64.Vec3{0, 1, 0}},
			{Co: mgl64.Vec3{0, 0, 1}},
		},
		Faces: []scene.Face{
			{V: []int{0, 1, 2}},
			{V: []int{0, 1, 3}},
		},
		Materials: []string{""},
		Groups: map[string][]scene.GroupWeight{
			"root":   {{Index: 0, Weight: 1}, {Index: 1, Weight: 0.5}, {Index: 2, Weight: 0}},
			"arm":    {{Index: 1, Weight: 1.5}},
			"unused": {{Index: 2, Weight: 1}},
		},
	}
	log := status.NewLogger()
	conv := testConverter(log)
	conv.Skeleton = sk
	m := conv.Convert(mesh, nil)
	require.NotNil(t, m)
	assert.Same(t, sk, m.Skeleton)

	sub := m.SubMeshes[0]
	for _, v := range sub.Vertices {
		switch v.Source {
		case 0:
			require.Len(t, v.Influences, 1)
			assert.Equal(t, "root", v.Influences[0].Bone.Name)
			assert.InDelta(t, 1, v.Influences[0].Weight, 1e-9)
		case 1:
			require.Len(t, v.Influences, 2)
			assert.Equal(t, "arm", v.Influences[0].Bone.Name)
			assert.InDelta(t, 0.75, v.Influences[0].Weight, 1e-9)
			assert.InDelta(t, 0.25, v.Influences[1].Weight, 1e-9)
		default:
			assert.Empty(t, v.Influences)
		}
	}
	// clones of flat shaded faces share influences of originals
	assert.Greater(t, len(sub.Vertices), 4)
	errs := messages(log, status.ERROR)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs[0], "Vertex in skinned mesh without influence, check your mesh!")
}

func TestMeshSubmeshesPerMaterial(t *testing.T) {
	sc, err := scene.Decode(strings.NewReader(testSceneYAML))
	require.NoError(t, err)
	obj := sc.Object("Body")
	require.NotNil(t, obj)

	registry := material.NewRegistry()
	log := status.NewLogger()
	conv := &MeshConverter{Scene: sc, Matrix: mgl64.Ident4(), Log: log}
	m := conv.Convert(obj.Mesh, registry)
	require.NotNil(t, m)
	require.Len(t, m.SubMeshes, 2)
	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, registry.Materials()[0].Name(), m.SubMeshes[0].MaterialName())
	assert.Equal(t, "default", m.SubMeshes[1].MaterialName())
	assert.Len(t, m.SubMeshes[0].Faces, 2)
	assert.Len(t, m.SubMeshes[1].Faces, 1)
}

package exporter

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/ogre_xml_exporter/material"
	"github.com/mogaika/ogre_xml_exporter/ogre"
	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/utils"
)

const MaxInfluences = 4

type MeshConverter struct {
	Scene    *scene.Scene
	Options  material.Options
	Skeleton *ogre.Skeleton
	// Name of converted mesh, mesh data name when empty
	Name string
	// Matrix transforms mesh vertices into export space
	Matrix mgl64.Mat4
	Log    Logger
}

type faceGroup struct {
	material material.Material
	faces    []*scene.Face
}

// groupFaces buckets faces by material name in order of first appearance
func (c *MeshConverter) groupFaces(mesh *scene.Mesh) []*faceGroup {
	groups := make([]*faceGroup, 0)
	byName := make(map[string]*faceGroup)
	for i := range mesh.Faces {
		f := &mesh.Faces[i]
		mat := material.ForFace(c.Scene, mesh, f, c.Options, c.Log)
		if mat == nil {
			continue
		}
		g, ok := byName[mat.Name()]
		if !ok {
			g = &faceGroup{material: mat}
			byName[mat.Name()] = g
			groups = append(groups, g)
		}
		g.faces = append(g.faces, f)
	}
	return groups
}

// Convert builds ogre mesh. Registered materials of kept submeshes are
// added to registry. Nil is returned when mesh has no visible faces.
func (c *MeshConverter) Convert(mesh *scene.Mesh, registry *material.Registry) *ogre.Mesh {
	name := c.Name
	if name == "" {
		name = mesh.Name
	}
	m := &ogre.Mesh{
		Name:             name,
		Skeleton:         c.Skeleton,
		HasVertexColours: mesh.VertexColors,
		HasUVCoordinates: mesh.VertexUV || mesh.FaceUV,
	}
	for _, g := range c.groupFaces(mesh) {
		sub := ogre.NewSubMesh(g.material)
		for _, f := range g.faces {
			c.addFace(sub, mesh, f)
		}
		if len(sub.Faces) == 0 {
			continue
		}
		if c.Skeleton != nil {
			c.assignInfluences(sub, mesh)
		}
		if registry != nil {
			sub.Material = registry.Add(g.material)
		}
		m.SubMeshes = append(m.SubMeshes, sub)
	}
	if len(m.SubMeshes) == 0 {
		c.Log.Warning("Mesh %s has no visible faces!", name)
		return nil
	}
	return m
}

func (c *MeshConverter) cornerAttributes(mesh *scene.Mesh, f *scene.Face, corner int, faceNormal mgl64.Vec3) (ogre.Attributes, error) {
	v := &mesh.Vertices[f.V[corner]]
	attrs := ogre.Attributes{
		Position: utils.PointByMatrix(v.Co, c.Matrix),
		Normal:   faceNormal,
	}
	if f.Smooth {
		no, err := utils.NormalByMatrix(v.No, c.Matrix)
		if err != nil {
			return attrs, err
		}
		attrs.Normal = no
	}
	if mesh.VertexUV || mesh.FaceUV {
		var uv mgl64.Vec2
		if mesh.VertexUV {
			if v.UVCo != nil {
				uv = *v.UVCo
			}
		} else if corner < len(f.UV) {
			uv = f.UV[corner]
		}
		attrs.TexCoords = []mgl64.Vec2{{uv[0], 1 - uv[1]}}
	}
	if mesh.VertexColors {
		col := [4]uint8{255, 255, 255, 255}
		if corner < len(f.Col) {
			col = f.Col[corner]
		}
		diffuse := mgl64.Vec4{float64(col[0]) / 255, float64(col[1]) / 255, float64(col[2]) / 255, float64(col[3]) / 255}
		attrs.Diffuse = &diffuse
	}
	return attrs, nil
}

func (c *MeshConverter) addFace(sub *ogre.SubMesh, mesh *scene.Mesh, f *scene.Face) {
	n := len(f.V)
	if n != 3 && n != 4 {
		c.Log.Warning("Ignored face with %d edges.", n)
		return
	}

	var faceNormal mgl64.Vec3
	if !f.Smooth {
		p1, p2, p3 := mesh.Vertices[f.V[0]].Co, mesh.Vertices[f.V[1]].Co, mesh.Vertices[f.V[2]].Co
		var err error
		faceNormal, err = utils.NormalByMatrix(p3.Sub(p2).Cross(p1.Sub(p2)), c.Matrix)
		if err != nil {
			c.Log.Error("Degenerate face normal in mesh \"%s\", face skipped: %v", mesh.Name, err)
			return
		}
	}

	var corners [4]ogre.Attributes
	for i := 0; i < n; i++ {
		attrs, err := c.cornerAttributes(mesh, f, i, faceNormal)
		if err != nil {
			c.Log.Error("Degenerate vertex normal in mesh \"%s\", face skipped: %v", mesh.Name, err)
			return
		}
		corners[i] = attrs
	}

	var vid [4]int
	for i := 0; i < n; i++ {
		vid[i] = sub.Vertex(f.V[i], corners[i])
	}
	if n == 3 {
		sub.AddFace(vid[0], vid[1], vid[2])
		return
	}
	var positions [4]mgl64.Vec3
	var sources [4]int
	for i := range positions {
		positions[i] = corners[i].Position
		sources[i] = f.V[i]
	}
	if splitAlong02(positions, sources) {
		sub.AddFace(vid[0], vid[1], vid[2])
		sub.AddFace(vid[2], vid[3], vid[0])
	} else {
		sub.AddFace(vid[0], vid[1], vid[3])
		sub.AddFace(vid[3], vid[1], vid[2])
	}
}

// splitAlong02 reports whether quad is split along diagonal 0-2, the shorter one.
// Only exactly equal diagonals are decided by smallest source index, so that
// the choice does not depend on the first corner.
func splitAlong02(p [4]mgl64.Vec3, sources [4]int) bool {
	d02 := p[0].Sub(p[2]).Len()
	d13 := p[1].Sub(p[3]).Len()
	if d02 != d13 {
		return d02 < d13
	}
	return minInt(sources[0], sources[2]) < minInt(sources[1], sources[3])
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

type boneWeight struct {
	bone   *ogre.Bone
	weight float64
}

// influences collects weights of source vertices from vertex groups named after bones
func influences(mesh *scene.Mesh, sk *ogre.Skeleton) map[int][]boneWeight {
	res := make(map[int][]boneWeight)
	for _, bone := range sk.Bones {
		for _, gw := range mesh.Groups[bone.Name] {
			if gw.Weight > 0 {
				res[gw.Index] = append(res[gw.Index], boneWeight{bone: bone, weight: gw.Weight})
			}
		}
	}
	return res
}

// strongestInfluences keeps MaxInfluences highest weights normalized to sum 1
func strongestInfluences(weights []boneWeight) []ogre.Influence {
	sorted := append([]boneWeight(nil), weights...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].weight > sorted[j].weight })
	if len(sorted) > MaxInfluences {
		sorted = sorted[:MaxInfluences]
	}
	sum := 0.0
	for _, w := range sorted {
		sum += w.weight
	}
	res := make([]ogre.Influence, len(sorted))
	for i, w := range sorted {
		res[i] = ogre.Influence{Bone: w.bone, Weight: w.weight / sum}
	}
	return res
}

// assignInfluences sets influences of original vertices, clones share them
func (c *MeshConverter) assignInfluences(sub *ogre.SubMesh, mesh *scene.Mesh) {
	weights := influences(mesh, c.Skeleton)
	for _, v := range sub.Vertices {
		if v.ClonedFrom >= 0 {
			continue
		}
		w := weights[v.Source]
		if len(w) == 0 {
			c.Log.Error("Vertex in skinned mesh without influence, check your mesh!")
			continue
		}
		v.Influences = strongestInfluences(w)
		for _, id := range sub.Clones(v.ID) {
			sub.Vertices[id].Influences = v.Influences
		}
	}
}

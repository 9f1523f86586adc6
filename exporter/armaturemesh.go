package exporter

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/ogre_xml_exporter/material"
	"github.com/mogaika/ogre_xml_exporter/ogre"
	"github.com/mogaika/ogre_xml_exporter/utils"
)

const SkeletonMaterialName = "SkeletonMaterial"

// boneMesh appends pyramid shaped bone to submesh. Base is at the head,
// apex at the tail. Vertices are never shared between faces.
func boneMesh(sub *ogre.SubMesh, seg BoneSegment, source *int, log Logger) {
	axis, err := utils.BoneToMatrix(seg.Head, seg.Tail, 0)
	if err != nil {
		log.Error("Bone \"%s\" has zero length, not visible in armature mesh.", seg.Bone.Name)
		return
	}
	axis = utils.MatrixMultiply(utils.MatrixTranslate(seg.Head), axis)
	d := 0.1 + 0.2*(seg.Tail.Sub(seg.Head).Len()/10)
	c1 := utils.PointByMatrix(mgl64.Vec3{-d, 0, -d}, axis)
	c2 := utils.PointByMatrix(mgl64.Vec3{-d, 0, d}, axis)
	c3 := utils.PointByMatrix(mgl64.Vec3{d, 0, d}, axis)
	c4 := utils.PointByMatrix(mgl64.Vec3{d, 0, -d}, axis)
	p := seg.Tail

	for _, tri := range [][3]mgl64.Vec3{
		{p, c1, c2},
		{p, c2, c3},
		{p, c3, c4},
		{p, c4, c1},
		{c3, c2, c1},
		{c1, c4, c3},
	} {
		normal, err := utils.VectorNormalize(tri[2].Sub(tri[1]).Cross(tri[0].Sub(tri[1])))
		if err != nil {
			log.Error("Degenerate face of bone \"%s\" in armature mesh.", seg.Bone.Name)
		}
		var ids [3]int
		for i, pos := range tri {
			ids[i] = sub.Vertex(*source, ogre.Attributes{Position: pos, Normal: normal})
			*source++
			sub.Vertices[ids[i]].Influences = []ogre.Influence{{Bone: seg.Bone, Weight: 1}}
		}
		sub.AddFace(ids[0], ids[1], ids[2])
	}
}

// ArmatureMesh builds mesh visualizing skeleton bones, skinned to sk
func ArmatureMesh(name string, sk *ogre.Skeleton, segments []BoneSegment, registry *material.Registry, log Logger) *ogre.Mesh {
	var mat material.Material = material.NewDefaultMaterial(SkeletonMaterialName)
	if registry != nil {
		mat = registry.Add(mat)
	}
	sub := ogre.NewSubMesh(mat)
	source := 0
	for _, seg := range segments {
		boneMesh(sub, seg, &source, log)
	}
	return &ogre.Mesh{
		Name:      name,
		SubMeshes: []*ogre.SubMesh{sub},
		Skeleton:  sk,
	}
}

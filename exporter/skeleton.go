package exporter

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/ogre_xml_exporter/ogre"
	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/utils"
)

// restBone is bone rest state relative to its parent
type restBone struct {
	src *scene.Bone
	// rotation relative to parent bone
	rot mgl64.Mat4
	// head relative to parent tail, in parent bone space
	head     mgl64.Vec3
	length   float64
	children []*restBone
}

// BoneSegment is bone head and tail in export space
type BoneSegment struct {
	Bone       *ogre.Bone
	Head, Tail mgl64.Vec3
}

// restBones converts armature space bones into parent relative ones.
// Returned roots keep armature order.
func restBones(arm *scene.Armature, log Logger) []*restBone {
	byName := make(map[string]*restBone, len(arm.Bones))
	armRot := make(map[string]mgl64.Mat4, len(arm.Bones))
	bones := make([]*restBone, 0, len(arm.Bones))

	for _, b := range arm.Bones {
		if _, ok := byName[b.Name]; ok {
			log.Error("Ambiguous bone name \"%s\"", b.Name)
			continue
		}
		m, err := utils.BoneToMatrix(b.Head, b.Tail, b.Roll)
		if err != nil {
			log.Error("Bone \"%s\" of armature \"%s\": %v", b.Name, arm.Name, err)
			// children of this bone are reported as not connected
			byName[b.Name] = nil
			continue
		}
		rb := &restBone{src: b, rot: m, head: b.Head, length: b.Tail.Sub(b.Head).Len()}
		byName[b.Name] = rb
		armRot[b.Name] = m
		bones = append(bones, rb)
	}

	roots := make([]*restBone, 0)
	for _, rb := range bones {
		if rb.src.Parent == "" {
			roots = append(roots, rb)
			continue
		}
		parent, ok := byName[rb.src.Parent]
		if !ok {
			log.Error("Bone \"%s\" has unknown parent \"%s\"", rb.src.Name, rb.src.Parent)
			continue
		}
		if parent == nil {
			continue
		}
		parentRot := utils.MatrixTranspose(armRot[parent.src.Name])
		rb.rot = utils.MatrixMultiply(parentRot, armRot[rb.src.Name])
		rb.head = utils.VectorByMatrix(rb.src.Head.Sub(parent.src.Tail), parentRot)
		parent.children = append(parent.children, rb)
	}

	// bones of parent cycles are never reached from roots
	reached := make(map[*restBone]bool, len(bones))
	walk := append([]*restBone(nil), roots...)
	for len(walk) > 0 {
		rb := walk[len(walk)-1]
		walk = walk[:len(walk)-1]
		reached[rb] = true
		walk = append(walk, rb.children...)
	}
	for _, rb := range bones {
		if reached[rb] || rb.src.Parent == "" {
			continue
		}
		if parent, ok := byName[rb.src.Parent]; ok && parent != nil && !reached[parent] {
			log.Error("Bone \"%s\" is not connected to a root bone, skipped", rb.src.Name)
		}
	}
	return roots
}

// skeletonRoot returns matrix that places root bones of armature object arm.
// In local mode bones are relative to object obj, for armature exports obj is arm itself.
func skeletonRoot(arm, obj *scene.Object, export mgl64.Mat4, world bool) (mgl64.Mat4, error) {
	m := arm.Matrix.Mat4()
	if !world {
		inv, err := utils.MatrixInvert(obj.Matrix.Mat4())
		if err != nil {
			return m, errors.Wrapf(err, "Cannot invert matrix of object \"%s\"", obj.Name)
		}
		m = utils.MatrixMultiply(inv, m)
	}
	return utils.MatrixMultiply(export, m), nil
}

type boneFrame struct {
	bone   *restBone
	parent *ogre.Bone
	// transformation to parent tail in export space
	accu mgl64.Mat4
	// inverse of ogre transformation of parent chain
	inverted mgl64.Mat4
}

// BuildSkeleton converts rest pose of armature into ogre skeleton. Bones are
// visited depth first in armature order, bone ids follow this order.
// Returned segments describe each created bone in export space.
func BuildSkeleton(name string, arm *scene.Armature, root mgl64.Mat4, log Logger) (*ogre.Skeleton, []BoneSegment) {
	sk := ogre.NewSkeleton(name)
	segments := make([]BoneSegment, 0, len(arm.Bones))

	roots := restBones(arm, log)
	stack := make([]boneFrame, 0, len(arm.Bones))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, boneFrame{bone: roots[i], accu: root, inverted: mgl64.Ident4()})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b := f.bone

		accu := utils.MatrixMultiply(f.accu, utils.MatrixTranslate(b.head))
		head := utils.PointByMatrix(mgl64.Vec3{}, accu)
		accu = utils.MatrixMultiply(accu, b.rot)
		restMat := accu
		accu = utils.MatrixMultiply(accu, utils.MatrixTranslate(mgl64.Vec3{0, b.length, 0}))
		tail := utils.PointByMatrix(mgl64.Vec3{}, accu)

		rotMat := b.rot
		if f.parent == nil {
			// root bones carry object and export transformation
			rotMat = utils.MatrixMultiply(root, b.rot)
		}
		rot, err := utils.RotationQuat(rotMat)
		if err != nil {
			log.Error("Bone \"%s\" has degenerate rotation, bone and its children skipped: %v", b.src.Name, err)
			continue
		}

		loc := utils.PointByMatrix(head, f.inverted)
		inverted := utils.MatrixMultiply(utils.MatrixTranslate(loc.Mul(-1)), f.inverted)
		conversion := utils.MatrixMultiply(inverted, restMat)
		rotInv, err := utils.MatrixInvert(rot.Mat4())
		if err != nil {
			log.Error("Bone \"%s\": %v, bone and its children skipped", b.src.Name, err)
			continue
		}
		inverted = utils.MatrixMultiply(rotInv, inverted)

		bone, err := sk.AddBone(f.parent, b.src.Name, loc, rot, conversion)
		if err != nil {
			log.Error("%v", err)
			continue
		}
		segments = append(segments, BoneSegment{Bone: bone, Head: head, Tail: tail})

		for i := len(b.children) - 1; i >= 0; i-- {
			stack = append(stack, boneFrame{bone: b.children[i], parent: bone, accu: accu, inverted: inverted})
		}
	}
	return sk, segments
}

// skeletonName follows object names in local mode, so every mesh gets own skeleton
func skeletonName(meshObj *scene.Object, armatureName string, world bool) string {
	if world {
		return armatureName
	}
	return meshObj.Name + "-" + armatureName
}

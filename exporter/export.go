package exporter

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/ogre_xml_exporter/config"
	"github.com/mogaika/ogre_xml_exporter/material"
	"github.com/mogaika/ogre_xml_exporter/ogre"
	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/status"
	"github.com/mogaika/ogre_xml_exporter/utils"
)

// objectMatrix places mesh vertices of obj into export space
func (s *Session) objectMatrix(obj *scene.Object) mgl64.Mat4 {
	if s.Options.UseWorldCoordinates {
		return utils.MatrixMultiply(s.exportMat, obj.Matrix.Mat4())
	}
	return s.exportMat
}

// skeleton builds skeleton with animations of armature object armObj for object obj.
// Skeleton already written under same name is reused.
func (s *Session) skeleton(name string, armObj, obj *scene.Object) (*ogre.Skeleton, []BoneSegment) {
	if b, ok := s.skeletons[name]; ok {
		return b.skeleton, b.segments
	}
	root, err := skeletonRoot(armObj, obj, s.exportMat, s.Options.UseWorldCoordinates)
	if err != nil {
		s.Log.Error("%v, skeleton \"%s\" skipped.", err, name)
		return nil, nil
	}
	sk, segments := BuildSkeleton(name, armObj.Armature, root, s.Log)
	ConvertAnimations(sk, animationRanges(s.Scene, armObj, sk, s.Log), s.FPS(), s.Log)

	file := name + ".skeleton.xml"
	s.Log.Info("Skeleton \"%s\"", file)
	if err := s.writeFile(file, true, func(w io.Writer) error {
		return ogre.WriteSkeleton(w, sk)
	}); err != nil {
		s.Log.Error("%v", err)
	}
	s.dump(sk)
	s.skeletons[name] = &builtSkeleton{skeleton: sk, segments: segments}
	return sk, segments
}

func (s *Session) writeMesh(m *ogre.Mesh) {
	file := m.Name + ".mesh.xml"
	s.Log.Info("Mesh \"%s\"", file)
	if err := s.writeFile(file, true, func(w io.Writer) error {
		return ogre.WriteMesh(w, m, s.Options.VertexColourBGRA)
	}); err != nil {
		s.Log.Error("%v", err)
	}
	if s.Options.ExportGLTF {
		if err := s.writeFile(m.Name+".glb", false, func(w io.Writer) error {
			return ogre.ExportGLTFBinary(w, m)
		}); err != nil {
			s.Log.Error("%v", err)
		}
	}
	s.dump(m)
}

// ExportMesh converts mesh object, with skeleton of parent armature when enabled
func (s *Session) ExportMesh(obj *scene.Object) *ogre.Mesh {
	var sk *ogre.Skeleton
	if parent := s.Scene.ParentObject(obj); s.Options.ExportArmatures && parent != nil && parent.Type == scene.TypeArmature {
		name := skeletonName(obj, s.armatureName(parent.Armature), s.Options.UseWorldCoordinates)
		sk, _ = s.skeleton(name, parent, obj)
	}
	conv := &MeshConverter{
		Scene:    s.Scene,
		Options:  s.materialOptions(),
		Skeleton: sk,
		Name:     s.meshName(obj.Mesh),
		Matrix:   s.objectMatrix(obj),
		Log:      s.Log,
	}
	m := conv.Convert(obj.Mesh, s.Materials)
	if m != nil {
		s.writeMesh(m)
	}
	return m
}

// ExportArmature writes skeleton of armature object and mesh showing its bones
func (s *Session) ExportArmature(obj *scene.Object) *ogre.Mesh {
	armName := s.armatureName(obj.Armature)
	sk, segments := s.skeleton(skeletonName(obj, armName, s.Options.UseWorldCoordinates), obj, obj)
	if sk == nil {
		return nil
	}
	m := ArmatureMesh(armName, sk, segments, s.Materials, s.Log)
	s.writeMesh(m)
	return m
}

func (s *Session) writeMaterials() {
	file := s.Options.MaterialFileFor(s.Scene.Name)
	s.Log.Info("Materials \"%s\"", file)
	cm, err := config.FindEncoding(s.Options.Encoding)
	if err != nil {
		s.Log.Error("%v", err)
		return
	}
	if err := s.writeFile(file, false, func(w io.Writer) error {
		ew := config.EncodingWriter(w, cm)
		if err := material.WriteScript(ew, s.Materials.Materials()); err != nil {
			ew.Close()
			return err
		}
		return ew.Close()
	}); err != nil {
		s.Log.Error("%v", err)
	}
}

// Run exports selected objects of scene into session sink
func (s *Session) Run() int {
	s.Log.Info("Exporting selected objects into \"%s\":", s.Options.ExportPath)
	meshes := 0
	for _, obj := range s.Scene.SelectedObjects() {
		switch obj.Type {
		case scene.TypeMesh:
			s.Log.Info("Exporting object \"%s\":", obj.Name)
			s.ExportMesh(obj)
			meshes++
		case scene.TypeArmature:
			s.Log.Info("Exporting object \"%s\":", obj.Name)
			s.ExportArmature(obj)
		}
	}
	if meshes == 0 {
		s.Log.Warning("No mesh objects selected!")
	}
	if s.Materials.Len() == 0 {
		s.Log.Warning("No materials or textures defined!")
	} else {
		s.writeMaterials()
	}
	s.Log.Info("Finished.")
	return s.Log.Status()
}

// Export writes scene into export path directory of options.
// Converted data is dumped to dump when it is not nil.
func Export(sc *scene.Scene, opts config.ExportOptions, log *status.Logger, dump io.Writer) int {
	if log == nil {
		log = status.NewLogger()
	}
	sink, err := NewDirSink(opts.ExportPath)
	if opts.ExportPath == "" || err != nil {
		log.Error("Invalid path: %s", opts.ExportPath)
		return log.Status()
	}
	defer sink.Close()
	s := NewSession(sc, opts, sink, log)
	s.Dump = dump
	return s.Run()
}

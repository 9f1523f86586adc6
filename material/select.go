package material

import (
	"github.com/mogaika/ogre_xml_exporter/scene"
)

type Options struct {
	GameEngine      bool
	ColouredAmbient bool
}

// slot returns material of face slot, ok is false when slot index is out of range
func slot(sc *scene.Scene, mesh *scene.Mesh, face *scene.Face) (m *scene.Material, empty bool, ok bool) {
	if face.Mat < 0 || face.Mat >= len(mesh.Materials) {
		return nil, true, false
	}
	name := mesh.Materials[face.Mat]
	if name == "" {
		return nil, true, true
	}
	return sc.Material(name), false, true
}

// ForFace selects material of face. Nil result means face is not exported.
func ForFace(sc *scene.Scene, mesh *scene.Mesh, face *scene.Face, opts Options, log Logger) Material {
	mat, empty, ok := slot(sc, mesh, face)

	if !opts.GameEngine {
		if !ok {
			log.Error("Material assignment missing for object \"%s\"!", mesh.Name)
			return NewDefaultMaterial("default")
		}
		if empty {
			return NewDefaultMaterial("default")
		}
		// unknown material name behaves as unset material of filled slot
		return NewRenderingMaterial(mesh, face, mat, opts.ColouredAmbient, log)
	}

	if face.Image != "" {
		if face.Mode.Has(scene.FaceInvisible) || face.Flag.Has(scene.FaceHide) {
			return nil
		}
		return NewGameEngineMaterial(mesh, face, mat, log)
	}
	if mat != nil {
		return NewGameEngineMaterial(mesh, face, mat, log)
	}
	log.Warning("Face of object \"%s\" without material assignment! Using default material.", mesh.Name)
	return NewDefaultMaterial("default")
}

// Registry keeps distinct materials by name in registration order
type Registry struct {
	list  []Material
	names map[string]Material
}

func NewRegistry() *Registry {
	return &Registry{
		list:  make([]Material, 0),
		names: make(map[string]Material),
	}
}

// Add registers material unless material with same name exists, returns registered one
func (r *Registry) Add(m Material) Material {
	if existing, ok := r.names[m.Name()]; ok {
		return existing
	}
	r.list = append(r.list, m)
	r.names[m.Name()] = m
	return m
}

func (r *Registry) Get(name string) Material {
	return r.names[name]
}

func (r *Registry) Len() int {
	return len(r.list)
}

func (r *Registry) Materials() []Material {
	return r.list
}

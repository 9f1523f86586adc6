package material

import (
	"io"

	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/utils"
)

// GameEngineMaterial follows game engine face settings: blend mode,
// face texture and vertex colours.
type GameEngineMaterial struct {
	name     string
	mesh     *scene.Mesh
	face     *scene.Face
	material *scene.Material
	log      utils.Warner
}

func NewGameEngineMaterial(mesh *scene.Mesh, face *scene.Face, material *scene.Material, log utils.Warner) *GameEngineMaterial {
	m := &GameEngineMaterial{
		mesh:     mesh,
		face:     face,
		material: material,
		log:      log,
	}
	m.name = m.createName()
	return m
}

func (m *GameEngineMaterial) Name() string { return m.name }

// createName: [material/]ALPHA|ADD|SOLID[/TEX[/image]][/VertCol][/TWOSIDE]
func (m *GameEngineMaterial) createName() string {
	name := ""
	if m.material != nil {
		name += m.material.Name + "/"
	}
	switch m.face.Transp {
	case scene.TranspAlpha:
		name += "ALPHA"
	case scene.TranspAdd:
		name += "ADD"
	default:
		name += "SOLID"
	}
	if m.face.Mode.Has(scene.FaceTex) {
		name += "/TEX"
		if m.face.Image != "" {
			name += "/" + basename(m.face.Image, m.log)
		}
	}
	if m.mesh.VertexColors {
		name += "/VertCol"
	}
	if m.face.Mode.Has(scene.FaceTwoSide) {
		name += "/TWOSIDE"
	}
	return name
}

func (m *GameEngineMaterial) Write(w io.Writer) error {
	return writeBlock(w, m.name, m.writeTechniques)
}

func (m *GameEngineMaterial) writeTechniques(s *script) {
	mat := m.material
	if mat == nil && !m.mesh.VertexColors && !(m.mesh.VertexUV || m.mesh.FaceUV) {
		writeEmptyTechnique(s)
		return
	}

	s.line(1, "technique")
	s.line(1, "{")
	s.line(2, "pass")
	s.line(2, "{")
	// game engine ignores ambient and emissive, vertex colours replace diffuse
	if m.mesh.VertexColors {
		s.line(3, "diffuse vertexcolour")
	} else if mat != nil {
		if !mat.Mode.Has(scene.MaterialTexFace) && !mat.Mode.Has(scene.MaterialVColPaint) {
			s.line(3, "diffuse %f %f %f", utils.Clamp01(mat.RGB[0]), utils.Clamp01(mat.RGB[1]), utils.Clamp01(mat.RGB[2]))
		} else if mat.Mode.Has(scene.MaterialVColPaint) {
			s.line(3, "diffuse vertexcolour")
		}
	}
	if mat != nil {
		s.line(3, "specular %f %f %f %f",
			utils.Clamp01(mat.Spec*mat.SpecRGB[0]), utils.Clamp01(mat.Spec*mat.SpecRGB[1]), utils.Clamp01(mat.Spec*mat.SpecRGB[2]),
			float64(mat.Hard)/4.0)
	}
	// ADD blending is not supported by the game engine
	if m.face.Transp == scene.TranspAlpha {
		s.line(3, "scene_blend alpha_blend")
	}
	if m.face.Mode.Has(scene.FaceTwoSide) {
		s.line(3, "cull_hardware none")
		s.line(3, "cull_software none")
	}
	if m.face.Mode.Has(scene.FaceTex) && m.face.Image != "" {
		s.line(3, "texture_unit")
		s.line(3, "{")
		s.line(4, "texture %s", basename(m.face.Image, m.log))
		s.line(3, "}")
	}
	s.line(2, "}")
	s.line(1, "}")
}

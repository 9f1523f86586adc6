package material

import (
	"io"

	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/utils"
)

// RenderingMaterial follows render settings of material assigned to face
type RenderingMaterial struct {
	name            string
	mesh            *scene.Mesh
	face            *scene.Face
	material        *scene.Material
	key             FeatureKey
	tex             textureFeatures
	colouredAmbient bool
	log             utils.Warner
}

// NewRenderingMaterial creates material of face, nil material is named "None"
func NewRenderingMaterial(mesh *scene.Mesh, face *scene.Face, material *scene.Material, colouredAmbient bool, log utils.Warner) *RenderingMaterial {
	m := &RenderingMaterial{
		mesh:            mesh,
		face:            face,
		material:        material,
		colouredAmbient: colouredAmbient,
		log:             log,
	}
	if material == nil {
		m.name = "None"
		return m
	}
	m.key, m.tex = GenerateKey(material)
	m.name = m.createName()
	return m
}

func (m *RenderingMaterial) Name() string    { return m.name }
func (m *RenderingMaterial) Key() FeatureKey { return m.key }

func (m *RenderingMaterial) createName() string {
	name := m.material.Name
	if m.face.Mode.Has(scene.FaceTwoSide) {
		name += "/TWOSIDE"
	}
	// uv/image editor texture
	if m.key&TexFace != 0 && m.key&ImageUVCol == 0 {
		name += "/TEXFACE"
		if m.face.Image != "" {
			name += "/" + basename(m.face.Image, m.log)
		}
	}
	return name
}

func (m *RenderingMaterial) Write(w io.Writer) error {
	return writeBlock(w, m.name, m.writeTechniques)
}

func (m *RenderingMaterial) writeTechniques(s *script) {
	if m.key == 0 {
		// halo or empty material
		writeEmptyTechnique(s)
		return
	}
	switch TechniqueFor(m.key) {
	case TechniqueTexFace:
		m.writeTexFace(s)
	case TechniqueVertexColours:
		m.writeVertexColours(s)
	case TechniqueNormalMap:
		m.writeNormalMap(s)
	default:
		m.writeColours(s)
	}
}

var white = []float64{1, 1, 1}

func (m *RenderingMaterial) ambientColour() []float64 {
	if m.colouredAmbient {
		return m.material.RGB[:]
	}
	return white
}

func (m *RenderingMaterial) writeColours(s *script) {
	m.writeReceiveShadows(s, 1)
	s.line(1, "technique")
	s.line(1, "{")
	s.line(2, "pass")
	s.line(2, "{")
	m.writeAmbient(s, m.ambientColour(), 3)
	m.writeDiffuse(s, m.material.RGB[:], 3)
	m.writeSpecular(s, 3)
	m.writeEmissive(s, m.material.RGB[:], 3)
	m.writeSceneBlend(s, 3)
	m.writeCommonOptions(s, 3)
	m.writeDiffuseTexture(s, 3)
	s.line(2, "}")
	s.line(1, "}")
}

// writeTexFace: COL texture replaces uv/image editor texture instead of
// blending over it.
func (m *RenderingMaterial) writeTexFace(s *script) {
	image := ""
	if m.tex.uvCol != nil {
		image = basename(m.tex.uvCol.Image, m.log)
	} else if m.face.Image != "" {
		image = basename(m.face.Image, m.log)
	}

	m.writeReceiveShadows(s, 1)
	s.line(1, "technique")
	s.line(1, "{")
	s.line(2, "pass")
	s.line(2, "{")
	m.writeAmbient(s, white, 3)
	m.writeDiffuse(s, white, 3)
	if image == "" {
		m.writeSpecular(s, 3)
	}
	m.writeEmissive(s, white, 3)
	m.writeSceneBlend(s, 3)
	m.writeCommonOptions(s, 3)
	if image != "" {
		s.line(3, "texture_unit")
		s.line(3, "{")
		s.line(4, "texture %s", image)
		if m.tex.uvCol != nil {
			writeTextureAddressMode(s, m.tex.uvCol, 4)
			writeTextureFiltering(s, m.tex.uvCol, 4)
		}
		s.line(4, "colour_op modulate")
		s.line(3, "}")
		s.line(2, "}")

		// specular pass
		s.line(2, "pass")
		s.line(2, "{")
		s.line(3, "ambient 0.0 0.0 0.0")
		s.line(3, "diffuse 0.0 0.0 0.0")
		m.writeSpecular(s, 3)
		s.line(3, "scene_blend add")
		if m.hasAlpha() {
			s.line(3, "depth_write off")
		}
		m.writeCommonOptions(s, 3)
	}
	s.line(2, "}")
	s.line(1, "}")
}

// writeVertexColours approximates ambient=amb*white, diffuse=ref*vcol,
// specular=spec*specrgb and black emissive without vertex shader.
func (m *RenderingMaterial) writeVertexColours(s *script) {
	m.writeReceiveShadows(s, 1)
	s.line(1, "technique")
	s.line(1, "{")
	if m.material.Mode.Has(scene.MaterialShadeless) {
		s.line(2, "pass")
		s.line(2, "{")
		m.writeCommonOptions(s, 3)
		s.line(2, "}")
	} else {
		s.line(2, "pass")
		s.line(2, "{")
		s.line(3, "ambient 0.0 0.0 0.0")
		s.line(3, "diffuse vertexcolour")
		m.writeCommonOptions(s, 3)
		s.line(2, "}")

		// factor
		ref := m.material.Ref
		s.line(2, "pass")
		s.line(2, "{")
		s.line(3, "ambient 0.0 0.0 0.0")
		s.line(3, "diffuse %f %f %f", ref, ref, ref)
		s.line(3, "scene_blend modulate")
		m.writeCommonOptions(s, 3)
		s.line(2, "}")

		// ambient and specular
		s.line(2, "pass")
		s.line(2, "{")
		m.writeAmbient(s, white, 3)
		s.line(3, "diffuse 0.0 0.0 0.0")
		m.writeSpecular(s, 3)
		s.line(3, "scene_blend add")
		m.writeCommonOptions(s, 3)
		s.line(2, "}")
	}
	s.line(1, "}")
}

func (m *RenderingMaterial) writeNormalMap(s *script) {
	col := basename(m.tex.uvCol.Image, m.log)
	nor := basename(m.tex.uvNor.Image, m.log)
	s.raw(normalMapTechniques(nor, col))
}

func (m *RenderingMaterial) writeReceiveShadows(s *script, indent int) {
	if m.material.Mode.Has(scene.MaterialShadow) {
		s.line(indent, "receive_shadows on")
	} else {
		s.line(indent, "receive_shadows off")
	}
}

// alphaOf returns fourth component of colour or material alpha
func (m *RenderingMaterial) alphaOf(col []float64) float64 {
	if len(col) < 4 {
		return m.material.Alpha
	}
	return col[3]
}

func (m *RenderingMaterial) writeAmbient(s *script, col []float64, indent int) {
	amb := m.material.Amb
	s.line(indent, "ambient %f %f %f %f",
		utils.Clamp01(amb*col[0]), utils.Clamp01(amb*col[1]), utils.Clamp01(amb*col[2]), m.alphaOf(col))
}

func (m *RenderingMaterial) writeDiffuse(s *script, col []float64, indent int) {
	ref := m.material.Ref
	s.line(indent, "diffuse %f %f %f %f",
		utils.Clamp01(col[0]*ref), utils.Clamp01(col[1]*ref), utils.Clamp01(col[2]*ref), m.alphaOf(col))
}

func (m *RenderingMaterial) writeSpecular(s *script, indent int) {
	mat := m.material
	s.line(indent, "specular %f %f %f %f %f",
		utils.Clamp01(mat.Spec*mat.SpecRGB[0]), utils.Clamp01(mat.Spec*mat.SpecRGB[1]), utils.Clamp01(mat.Spec*mat.SpecRGB[2]),
		mat.Alpha, float64(mat.Hard)/4.0)
}

func (m *RenderingMaterial) writeEmissive(s *script, col []float64, indent int) {
	emit := m.material.Emit
	s.line(indent, "emissive %f %f %f %f",
		utils.Clamp01(emit*col[0]), utils.Clamp01(emit*col[1]), utils.Clamp01(emit*col[2]), m.alphaOf(col))
}

func (m *RenderingMaterial) hasAlpha() bool {
	if m.material.Alpha < 1.0 {
		return true
	}
	for _, t := range m.material.Textures {
		if t != nil && t.Type == scene.TextureImage && t.MapTo.Has(scene.MapToAlpha) {
			return true
		}
	}
	return false
}

func (m *RenderingMaterial) writeSceneBlend(s *script, indent int) {
	if m.hasAlpha() {
		s.line(indent, "scene_blend alpha_blend")
		s.line(indent, "depth_write off")
	}
}

func (m *RenderingMaterial) writeCommonOptions(s *script, indent int) {
	mode := m.material.Mode
	if mode.Has(scene.MaterialEnv) {
		s.line(indent, "depth_func always_fail")
	} else if mode.Has(scene.MaterialZInvert) {
		s.line(indent, "depth_func greater_equal")
	}
	// culling lines always sit on pass level
	if m.face.Mode.Has(scene.FaceTwoSide) {
		s.line(3, "cull_hardware none")
		s.line(3, "cull_software none")
	}
	if mode.Has(scene.MaterialShadeless) {
		s.line(indent, "lighting off")
	}
	if mode.Has(scene.MaterialNoMist) {
		s.line(indent, "fog_override true")
	}
}

func (m *RenderingMaterial) writeDiffuseTexture(s *script, indent int) {
	t := m.tex.uvCol
	if t == nil {
		return
	}
	s.line(indent, "texture_unit")
	s.line(indent, "{")
	s.line(indent+1, "texture %s", basename(t.Image, m.log))
	writeTextureAddressMode(s, t, indent+1)
	writeTextureFiltering(s, t, indent+1)
	writeTextureColourOp(s, t, indent+1)
	s.line(indent, "}")
}

// writeTextureAddressMode: REPEAT is wrap, EXTEND is clamp, clip modes write nothing
func writeTextureAddressMode(s *script, t *scene.TextureSlot, indent int) {
	if t.Extend.Has(scene.ExtendRepeat) {
		s.line(indent, "tex_address_mode wrap")
	} else if t.Extend.Has(scene.ExtendExtend) {
		s.line(indent, "tex_address_mode clamp")
	}
}

func writeTextureFiltering(s *script, t *scene.TextureSlot, indent int) {
	interpol := t.ImageFlags.Has(scene.ImageInterpol)
	mipmap := t.ImageFlags.Has(scene.ImageMipMap)
	switch {
	case interpol && mipmap:
		s.line(indent, "filtering trilinear")
	case interpol:
		s.line(indent, "filtering linear linear none")
	case mipmap:
		s.line(indent, "filtering bilinear")
	default:
		s.line(indent, "filtering none")
	}
}

func writeTextureColourOp(s *script, t *scene.TextureSlot, indent int) {
	if t.ImageFlags.Has(scene.ImageUseAlpha) && !t.MapTo.Has(scene.MapToAlpha) {
		s.line(indent, "colour_op alpha_blend")
	}
}

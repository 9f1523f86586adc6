package material

import (
	"strings"

	"github.com/mogaika/ogre_xml_exporter/scene"
)

// FeatureKey describes structurally relevant shading configuration of material
type FeatureKey uint32

const (
	NonHalo FeatureKey = 1 << iota
	VColLight
	VColPaint
	TexFace
	ImageUVCol
	ImageUVNor
	ImageUVCsp
)

var featureNames = []struct {
	key  FeatureKey
	name string
}{
	{NonHalo, "NONHALO"},
	{VColLight, "VCOLLIGHT"},
	{VColPaint, "VCOLPAINT"},
	{TexFace, "TEXFACE"},
	{ImageUVCol, "IMAGEUVCOL"},
	{ImageUVNor, "IMAGEUVNOR"},
	{ImageUVCsp, "IMAGEUVCSP"},
}

func (k FeatureKey) Has(f FeatureKey) bool { return k&f == f }

func (k FeatureKey) String() string {
	if k == 0 {
		return "0"
	}
	parts := make([]string, 0)
	for _, f := range featureNames {
		if k&f.key != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

type Technique int

const (
	TechniqueColours Technique = iota
	TechniqueTexFace
	TechniqueVertexColours
	TechniqueNormalMap
)

func (t Technique) String() string {
	switch t {
	case TechniqueColours:
		return "colours"
	case TechniqueTexFace:
		return "texface"
	case TechniqueVertexColours:
		return "vertexcolours"
	case TechniqueNormalMap:
		return "normalmap"
	}
	return "unknown"
}

var techniques = map[FeatureKey]Technique{
	NonHalo | ImageUVCol:              TechniqueColours,
	NonHalo | ImageUVCol | ImageUVCsp: TechniqueColours,

	NonHalo | TexFace:                                       TechniqueTexFace,
	NonHalo | TexFace | VColLight:                           TechniqueTexFace,
	NonHalo | TexFace | ImageUVCol:                          TechniqueTexFace,
	NonHalo | TexFace | ImageUVNor:                          TechniqueTexFace,
	NonHalo | TexFace | ImageUVCsp:                          TechniqueTexFace,
	NonHalo | TexFace | VColLight | ImageUVCol:              TechniqueTexFace,
	NonHalo | TexFace | VColLight | ImageUVNor:              TechniqueTexFace,
	NonHalo | TexFace | VColLight | ImageUVCsp:              TechniqueTexFace,
	NonHalo | TexFace | ImageUVCol | ImageUVCsp:             TechniqueTexFace,
	NonHalo | TexFace | ImageUVNor | ImageUVCsp:             TechniqueTexFace,
	NonHalo | TexFace | VColLight | ImageUVCol | ImageUVCsp: TechniqueTexFace,
	NonHalo | TexFace | VColLight | ImageUVNor | ImageUVCsp: TechniqueTexFace,

	NonHalo | VColPaint:             TechniqueVertexColours,
	NonHalo | VColPaint | VColLight: TechniqueVertexColours,
}

func init() {
	// normal map wins over every combination of remaining flags
	optional := []FeatureKey{VColLight, VColPaint, TexFace, ImageUVCsp}
	for mask := 0; mask < 1<<len(optional); mask++ {
		key := NonHalo | ImageUVCol | ImageUVNor
		for i, f := range optional {
			if mask&(1<<i) != 0 {
				key |= f
			}
		}
		techniques[key] = TechniqueNormalMap
	}
}

// TechniqueFor falls back to colours for keys without table entry
func TechniqueFor(key FeatureKey) Technique {
	if t, ok := techniques[key]; ok {
		return t
	}
	return TechniqueColours
}

// textureFeatures holds image textures that contributed to key
type textureFeatures struct {
	uvCol *scene.TextureSlot
	uvNor *scene.TextureSlot
	uvCsp *scene.TextureSlot
}

// GenerateKey derives feature key of material, halo materials get key 0
func GenerateKey(m *scene.Material) (FeatureKey, textureFeatures) {
	var key FeatureKey
	var tex textureFeatures
	if m == nil || m.Mode.Has(scene.MaterialHalo) {
		return 0, tex
	}
	key |= NonHalo
	if m.Mode.Has(scene.MaterialVColLight) {
		key |= VColLight
	}
	if m.Mode.Has(scene.MaterialVColPaint) {
		key |= VColPaint
	}
	if m.Mode.Has(scene.MaterialTexFace) {
		key |= TexFace
	}
	for _, t := range m.Textures {
		if !t.IsImage() || !t.TexCo.Has(scene.TexCoUV) {
			continue
		}
		if t.MapTo.Has(scene.MapToCol) {
			key |= ImageUVCol
			tex.uvCol = t
		}
		// without normal map image option texture is a bump map
		if t.MapTo.Has(scene.MapToNor) && t.ImageFlags.Has(scene.ImageNormalMap) {
			key |= ImageUVNor
			tex.uvNor = t
		}
		if t.MapTo.Has(scene.MapToCsp) {
			key |= ImageUVCsp
			tex.uvCsp = t
		}
	}
	return key, tex
}

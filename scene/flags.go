package scene

import (
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type flagTable map[string]uint32

func (t flagTable) decode(node *yaml.Node, kind string) (uint32, error) {
	var names []string
	if node.Kind == yaml.ScalarNode {
		if node.Value == "" {
			return 0, nil
		}
		names = []string{node.Value}
	} else if err := node.Decode(&names); err != nil {
		return 0, errors.Wrapf(err, "%s flags at line %d", kind, node.Line)
	}
	var result uint32
	for _, name := range names {
		bit, ok := t[name]
		if !ok {
			return 0, errors.Errorf("Unknown %s flag %q at line %d", kind, name, node.Line)
		}
		result |= bit
	}
	return result, nil
}

func (t flagTable) names(value uint32) []string {
	result := make([]string, 0)
	for name, bit := range t {
		if value&bit != 0 {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

type MaterialMode uint32

const (
	MaterialHalo MaterialMode = 1 << iota
	MaterialVColLight
	MaterialVColPaint
	MaterialTexFace
	MaterialShadow
	MaterialShadeless
	MaterialEnv
	MaterialZInvert
	MaterialNoMist
)

var materialModeNames = flagTable{
	"HALO":       uint32(MaterialHalo),
	"VCOL_LIGHT": uint32(MaterialVColLight),
	"VCOL_PAINT": uint32(MaterialVColPaint),
	"TEXFACE":    uint32(MaterialTexFace),
	"SHADOW":     uint32(MaterialShadow),
	"SHADELESS":  uint32(MaterialShadeless),
	"ENV":        uint32(MaterialEnv),
	"ZINVERT":    uint32(MaterialZInvert),
	"NOMIST":     uint32(MaterialNoMist),
}

func (m MaterialMode) Has(f MaterialMode) bool { return m&f != 0 }

func (m *MaterialMode) UnmarshalYAML(node *yaml.Node) error {
	v, err := materialModeNames.decode(node, "material mode")
	*m = MaterialMode(v)
	return err
}

func (m MaterialMode) MarshalYAML() (interface{}, error) {
	return materialModeNames.names(uint32(m)), nil
}

type FaceMode uint32

const (
	FaceTex FaceMode = 1 << iota
	FaceTwoSide
	FaceInvisible
)

var faceModeNames = flagTable{
	"TEX":       uint32(FaceTex),
	"TWOSIDE":   uint32(FaceTwoSide),
	"INVISIBLE": uint32(FaceInvisible),
}

func (m FaceMode) Has(f FaceMode) bool { return m&f != 0 }

func (m *FaceMode) UnmarshalYAML(node *yaml.Node) error {
	v, err := faceModeNames.decode(node, "face mode")
	*m = FaceMode(v)
	return err
}

func (m FaceMode) MarshalYAML() (interface{}, error) {
	return faceModeNames.names(uint32(m)), nil
}

type FaceFlag uint32

const (
	FaceHide FaceFlag = 1 << iota
	FaceSelect
)

var faceFlagNames = flagTable{
	"HIDE":   uint32(FaceHide),
	"SELECT": uint32(FaceSelect),
}

func (m FaceFlag) Has(f FaceFlag) bool { return m&f != 0 }

func (m *FaceFlag) UnmarshalYAML(node *yaml.Node) error {
	v, err := faceFlagNames.decode(node, "face")
	*m = FaceFlag(v)
	return err
}

func (m FaceFlag) MarshalYAML() (interface{}, error) {
	return faceFlagNames.names(uint32(m)), nil
}

type TexCo uint32

const (
	TexCoUV TexCo = 1 << iota
	TexCoOrco
	TexCoGlob
	TexCoNor
	TexCoRefl
	TexCoObject
	TexCoWin
	TexCoSticky
)

var texCoNames = flagTable{
	"UV":     uint32(TexCoUV),
	"ORCO":   uint32(TexCoOrco),
	"GLOB":   uint32(TexCoGlob),
	"NOR":    uint32(TexCoNor),
	"REFL":   uint32(TexCoRefl),
	"OBJECT": uint32(TexCoObject),
	"WIN":    uint32(TexCoWin),
	"STICK":  uint32(TexCoSticky),
}

func (m TexCo) Has(f TexCo) bool { return m&f != 0 }

func (m *TexCo) UnmarshalYAML(node *yaml.Node) error {
	v, err := texCoNames.decode(node, "texture coordinates")
	*m = TexCo(v)
	return err
}

func (m TexCo) MarshalYAML() (interface{}, error) {
	return texCoNames.names(uint32(m)), nil
}

type MapTo uint32

const (
	MapToCol MapTo = 1 << iota
	MapToNor
	MapToCsp
	MapToAlpha
	MapToEmit
	MapToRef
	MapToSpec
	MapToHard
)

var mapToNames = flagTable{
	"COL":   uint32(MapToCol),
	"NOR":   uint32(MapToNor),
	"CSP":   uint32(MapToCsp),
	"ALPHA": uint32(MapToAlpha),
	"EMIT":  uint32(MapToEmit),
	"REF":   uint32(MapToRef),
	"SPEC":  uint32(MapToSpec),
	"HARD":  uint32(MapToHard),
}

func (m MapTo) Has(f MapTo) bool { return m&f != 0 }

func (m *MapTo) UnmarshalYAML(node *yaml.Node) error {
	v, err := mapToNames.decode(node, "mapto")
	*m = MapTo(v)
	return err
}

func (m MapTo) MarshalYAML() (interface{}, error) {
	return mapToNames.names(uint32(m)), nil
}

type ExtendMode uint32

const (
	ExtendRepeat ExtendMode = 1 << iota
	ExtendExtend
	ExtendClip
	ExtendClipCube
)

var extendNames = flagTable{
	"REPEAT":   uint32(ExtendRepeat),
	"EXTEND":   uint32(ExtendExtend),
	"CLIP":     uint32(ExtendClip),
	"CLIPCUBE": uint32(ExtendClipCube),
}

func (m ExtendMode) Has(f ExtendMode) bool { return m&f != 0 }

func (m *ExtendMode) UnmarshalYAML(node *yaml.Node) error {
	v, err := extendNames.decode(node, "extend")
	*m = ExtendMode(v)
	return err
}

func (m ExtendMode) MarshalYAML() (interface{}, error) {
	return extendNames.names(uint32(m)), nil
}

type ImageFlags uint32

// values follow blender texture image flags, NORMALMAP is checked by value
const (
	ImageInterpol  ImageFlags = 1
	ImageUseAlpha  ImageFlags = 2
	ImageMipMap    ImageFlags = 4
	ImageNormalMap ImageFlags = 2048
)

var imageFlagNames = flagTable{
	"INTERPOL":  uint32(ImageInterpol),
	"USEALPHA":  uint32(ImageUseAlpha),
	"MIPMAP":    uint32(ImageMipMap),
	"NORMALMAP": uint32(ImageNormalMap),
}

func (m ImageFlags) Has(f ImageFlags) bool { return m&f != 0 }

func (m *ImageFlags) UnmarshalYAML(node *yaml.Node) error {
	v, err := imageFlagNames.decode(node, "image")
	*m = ImageFlags(v)
	return err
}

func (m ImageFlags) MarshalYAML() (interface{}, error) {
	return imageFlagNames.names(uint32(m)), nil
}

package material

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/ogre_xml_exporter/scene"
)

type testLog struct {
	warnings []string
	errors   []string
}

func (l *testLog) Warning(format string, a ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, a...))
}

func (l *testLog) Error(format string, a ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, a...))
}

func testMaterial() *scene.Material {
	return &scene.Material{
		Name:    "Skin",
		RGB:     mgl64.Vec3{1, 0.5, 0.25},
		Amb:     0.5,
		Ref:     0.8,
		Spec:    0.5,
		SpecRGB: mgl64.Vec3{1, 1, 1},
		Hard:    50,
		Alpha:   1,
	}
}

func colTexture() *scene.TextureSlot {
	return &scene.TextureSlot{
		Type:       scene.TextureImage,
		Image:      "//textures/skin.png",
		TexCo:      scene.TexCoUV,
		MapTo:      scene.MapToCol,
		Extend:     scene.ExtendRepeat,
		ImageFlags: scene.ImageInterpol | scene.ImageMipMap,
	}
}

func TestFeatureKeyNames(t *testing.T) {
	for _, test := range []struct {
		key  FeatureKey
		name string
	}{
		{0, "0"},
		{NonHalo, "NONHALO"},
		{NonHalo | ImageUVCol, "NONHALO|IMAGEUVCOL"},
		{NonHalo | TexFace | VColLight, "NONHALO|VCOLLIGHT|TEXFACE"},
	} {
		if got := test.key.String(); got != test.name {
			t.Errorf("%d: got %q, want %q", test.key, got, test.name)
		}
	}
}

func TestTechniqueTable(t *testing.T) {
	counts := make(map[Technique]int)
	for _, tech := range techniques {
		counts[tech]++
	}
	assert.Equal(t, 2, counts[TechniqueColours])
	assert.Equal(t, 12, counts[TechniqueTexFace])
	assert.Equal(t, 2, counts[TechniqueVertexColours])
	assert.Equal(t, 16, counts[TechniqueNormalMap])

	assert.Equal(t, TechniqueNormalMap, TechniqueFor(NonHalo|ImageUVCol|ImageUVNor|VColLight|VColPaint|TexFace|ImageUVCsp))
	assert.Equal(t, TechniqueVertexColours, TechniqueFor(NonHalo|VColPaint))
	// missing key falls back to colours
	assert.Equal(t, TechniqueColours, TechniqueFor(NonHalo))
	assert.Equal(t, TechniqueColours, TechniqueFor(NonHalo|VColPaint|TexFace))
}

func TestGenerateKey(t *testing.T) {
	m := testMaterial()
	key, _ := GenerateKey(m)
	assert.Equal(t, NonHalo, key)

	nor := colTexture()
	nor.MapTo = scene.MapToNor
	m.Textures = []*scene.TextureSlot{colTexture(), nor}
	key, tex := GenerateKey(m)
	assert.Equal(t, NonHalo|ImageUVCol, key, "bump map does not count")
	assert.NotNil(t, tex.uvCol)

	nor.ImageFlags |= scene.ImageNormalMap
	key, tex = GenerateKey(m)
	assert.Equal(t, NonHalo|ImageUVCol|ImageUVNor, key)
	assert.Equal(t, nor, tex.uvNor)

	orco := colTexture()
	orco.TexCo = scene.TexCoOrco
	m.Textures = []*scene.TextureSlot{orco}
	key, _ = GenerateKey(m)
	assert.Equal(t, NonHalo, key)

	m.Mode = scene.MaterialHalo | scene.MaterialVColPaint
	key, _ = GenerateKey(m)
	assert.Equal(t, FeatureKey(0), key)
}

func writeString(t *testing.T, m Material) string {
	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))
	return buf.String()
}

func TestColoursWithDiffuseTexture(t *testing.T) {
	mat := testMaterial()
	mat.Textures = []*scene.TextureSlot{colTexture()}
	face := &scene.Face{}
	m := NewRenderingMaterial(&scene.Mesh{}, face, mat, false, nil)

	assert.Equal(t, NonHalo|ImageUVCol, m.Key())
	assert.Equal(t, "Skin", m.Name())
	assert.Equal(t, "material Skin\n"+
		"{\n"+
		"\treceive_shadows off\n"+
		"\ttechnique\n"+
		"\t{\n"+
		"\t\tpass\n"+
		"\t\t{\n"+
		"\t\t\tambient 0.500000 0.500000 0.500000 1.000000\n"+
		"\t\t\tdiffuse 0.800000 0.400000 0.200000 1.000000\n"+
		"\t\t\tspecular 0.500000 0.500000 0.500000 1.000000 12.500000\n"+
		"\t\t\temissive 0.000000 0.000000 0.000000 1.000000\n"+
		"\t\t\ttexture_unit\n"+
		"\t\t\t{\n"+
		"\t\t\t\ttexture skin.png\n"+
		"\t\t\t\ttex_address_mode wrap\n"+
		"\t\t\t\tfiltering trilinear\n"+
		"\t\t\t}\n"+
		"\t\t}\n"+
		"\t}\n"+
		"}\n", writeString(t, m))
}

func TestColoursOptions(t *testing.T) {
	mat := testMaterial()
	mat.Mode = scene.MaterialShadow | scene.MaterialZInvert | scene.MaterialShadeless | scene.MaterialNoMist
	mat.Alpha = 0.5
	mat.Emit = 2
	face := &scene.Face{Mode: scene.FaceTwoSide}
	m := NewRenderingMaterial(&scene.Mesh{}, face, mat, true, nil)
	out := writeString(t, m)

	assert.Equal(t, "Skin/TWOSIDE", m.Name())
	assert.Contains(t, out, "\treceive_shadows on\n")
	// coloured ambient uses material colour
	assert.Contains(t, out, "ambient 0.500000 0.250000 0.125000 0.500000\n")
	// emissive is clamped
	assert.Contains(t, out, "emissive 1.000000 1.000000 0.500000 0.500000\n")
	assert.Contains(t, out, "\t\t\tscene_blend alpha_blend\n\t\t\tdepth_write off\n")
	assert.Contains(t, out, "depth_func greater_equal\n\t\t\tcull_hardware none\n\t\t\tcull_software none\n\t\t\tlighting off\n\t\t\tfog_override true\n")
	assert.NotContains(t, out, "texture_unit")
}

func TestTexFace(t *testing.T) {
	mat := testMaterial()
	mat.Mode = scene.MaterialTexFace
	face := &scene.Face{Image: `C:\textures\my wall.png`}
	log := &testLog{}
	m := NewRenderingMaterial(&scene.Mesh{}, face, mat, false, log)
	assert.Equal(t, NonHalo|TexFace, m.Key())
	assert.Equal(t, "Skin/TEXFACE/my_wall.png", m.Name())
	assert.NotEmpty(t, log.warnings)

	out := writeString(t, m)
	assert.Equal(t, 2, strings.Count(out, "\t\tpass\n"))
	assert.Contains(t, out, "\t\t\t\ttexture my_wall.png\n\t\t\t\tcolour_op modulate\n")
	assert.Contains(t, out, "\t\t\tambient 0.0 0.0 0.0\n\t\t\tdiffuse 0.0 0.0 0.0\n\t\t\tspecular")
	assert.Contains(t, out, "scene_blend add\n")
	assert.NotContains(t, out, "depth_write off")

	// no image: single pass with specular
	m = NewRenderingMaterial(&scene.Mesh{}, &scene.Face{}, mat, false, nil)
	out = writeString(t, m)
	assert.Equal(t, "Skin/TEXFACE", m.Name())
	assert.Equal(t, 1, strings.Count(out, "\t\tpass\n"))
	assert.Contains(t, out, "specular")
	assert.NotContains(t, out, "texture_unit")
}

func TestVertexColours(t *testing.T) {
	mat := testMaterial()
	mat.Mode = scene.MaterialVColPaint
	out := writeString(t, NewRenderingMaterial(&scene.Mesh{}, &scene.Face{}, mat, false, nil))
	assert.Equal(t, 3, strings.Count(out, "\t\tpass\n"))
	assert.Contains(t, out, "diffuse vertexcolour\n")
	assert.Contains(t, out, "diffuse 0.800000 0.800000 0.800000\n\t\t\tscene_blend modulate\n")

	mat.Mode |= scene.MaterialShadeless
	out = writeString(t, NewRenderingMaterial(&scene.Mesh{}, &scene.Face{}, mat, false, nil))
	assert.Equal(t, 1, strings.Count(out, "\t\tpass\n"))
	assert.Contains(t, out, "lighting off")
}

func TestNormalMap(t *testing.T) {
	mat := testMaterial()
	nor := colTexture()
	nor.Image = "bump.png"
	nor.MapTo = scene.MapToNor
	nor.ImageFlags = scene.ImageNormalMap
	mat.Textures = []*scene.TextureSlot{colTexture(), nor}
	out := writeString(t, NewRenderingMaterial(&scene.Mesh{}, &scene.Face{}, mat, false, nil))

	assert.True(t, strings.HasPrefix(out, "material Skin\n{\n    technique\n"))
	assert.Equal(t, 2, strings.Count(out, "    technique\n"))
	assert.Equal(t, 2, strings.Count(out, "texture bump.png\n"))
	assert.Equal(t, 2, strings.Count(out, "texture skin.png\n"))
	assert.Less(t, strings.Index(out, "texture bump.png"), strings.Index(out, "texture skin.png"))
	assert.Contains(t, out, "fragment_program_ref Examples/BumpMapFPSpecular")
}

func TestEmptyAndHaloMaterials(t *testing.T) {
	empty := "material %s\n{\n\ttechnique\n\t{\n\t\tpass\n\t\t{\n\t\t}\n\t}\n}\n"
	assert.Equal(t, fmt.Sprintf(empty, "default"), writeString(t, NewDefaultMaterial("default")))

	none := NewRenderingMaterial(&scene.Mesh{}, &scene.Face{}, nil, false, nil)
	assert.Equal(t, "None", none.Name())
	assert.Equal(t, fmt.Sprintf(empty, "None"), writeString(t, none))

	halo := testMaterial()
	halo.Mode = scene.MaterialHalo
	assert.Equal(t, fmt.Sprintf(empty, "Skin"), writeString(t, NewRenderingMaterial(&scene.Mesh{}, &scene.Face{}, halo, false, nil)))
}

func TestGameEngineMaterial(t *testing.T) {
	mat := testMaterial()
	mesh := &scene.Mesh{VertexColors: true, FaceUV: true}
	face := &scene.Face{Mode: scene.FaceTex | scene.FaceTwoSide, Transp: scene.TranspAlpha, Image: "/tmp/wood.png"}
	m := NewGameEngineMaterial(mesh, face, mat, nil)
	assert.Equal(t, "Skin/ALPHA/TEX/wood.png/VertCol/TWOSIDE", m.Name())

	out := writeString(t, m)
	assert.Contains(t, out, "diffuse vertexcolour\n")
	assert.Contains(t, out, "specular 0.500000 0.500000 0.500000 12.500000\n")
	assert.Contains(t, out, "scene_blend alpha_blend\n")
	assert.Contains(t, out, "cull_software none\n")
	assert.Contains(t, out, "\t\t\t\ttexture wood.png\n")

	plain := NewGameEngineMaterial(&scene.Mesh{}, &scene.Face{Transp: scene.TranspAdd}, nil, nil)
	assert.Equal(t, "ADD", plain.Name())
	assert.NotContains(t, writeString(t, plain), "diffuse")

	solid := NewGameEngineMaterial(&scene.Mesh{FaceUV: true}, &scene.Face{}, mat, nil)
	assert.Equal(t, "Skin/SOLID", solid.Name())
	assert.Contains(t, writeString(t, solid), "diffuse 1.000000 0.500000 0.250000\n")
}

func TestForFace(t *testing.T) {
	sc, err := scene.Decode(strings.NewReader("materials: [{name: Skin}]"))
	require.NoError(t, err)
	mesh := &scene.Mesh{Name: "Body", Materials: []string{"Skin", ""}}

	log := &testLog{}
	m := ForFace(sc, mesh, &scene.Face{Mat: 0}, Options{}, log)
	assert.IsType(t, &RenderingMaterial{}, m)
	assert.Equal(t, "Skin", m.Name())

	assert.Equal(t, "default", ForFace(sc, mesh, &scene.Face{Mat: 1}, Options{}, log).Name())
	assert.Empty(t, log.errors)
	assert.Equal(t, "default", ForFace(sc, mesh, &scene.Face{Mat: 5}, Options{}, log).Name())
	assert.Equal(t, []string{`Material assignment missing for object "Body"!`}, log.errors)

	ge := Options{GameEngine: true}
	assert.Nil(t, ForFace(sc, mesh, &scene.Face{Image: "a.png", Mode: scene.FaceInvisible}, ge, log))
	assert.Nil(t, ForFace(sc, mesh, &scene.Face{Image: "a.png", Flag: scene.FaceHide}, ge, log))
	assert.Equal(t, "Skin/SOLID", ForFace(sc, mesh, &scene.Face{Image: "a.png"}, ge, log).Name())
	assert.Equal(t, "SOLID", ForFace(sc, mesh, &scene.Face{Mat: 1, Image: "a.png"}, ge, log).Name())
	assert.Equal(t, "Skin/SOLID", ForFace(sc, mesh, &scene.Face{Mat: 0}, ge, log).Name())
	assert.Empty(t, log.warnings)
	assert.Equal(t, "default", ForFace(sc, mesh, &scene.Face{Mat: 1}, ge, log).Name())
	assert.Len(t, log.warnings, 1)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := NewDefaultMaterial("a")
	assert.Equal(t, a, r.Add(a))
	assert.Equal(t, a, r.Add(NewDefaultMaterial("a")))
	r.Add(NewDefaultMaterial("b"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "b", r.Materials()[1].Name())
	assert.Nil(t, r.Get("c"))

	var buf bytes.Buffer
	require.NoError(t, WriteScript(&buf, r.Materials()))
	assert.Equal(t, 2, strings.Count(buf.String(), "material "))
}

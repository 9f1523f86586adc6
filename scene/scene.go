package scene

import (
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/ogre_xml_exporter/utils"
)

const DefaultFPS = 25

const (
	TypeMesh     = "Mesh"
	TypeArmature = "Armature"
)

const (
	TranspSolid = "SOLID"
	TranspAdd   = "ADD"
	TranspAlpha = "ALPHA"
)

const (
	TextureImage = "IMAGE"
	TextureNone  = "NONE"
)

// Matrix is written as four rows, translation in the last row
type Matrix [4][4]float64

func (m Matrix) Mat4() mgl64.Mat4 {
	return utils.MatrixFromRows(m)
}

func (m Matrix) IsZero() bool {
	return m == Matrix{}
}

var IdentityMatrix = Matrix{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}

type Scene struct {
	Name      string      `yaml:"name"`
	FPS       float64     `yaml:"fps"`
	Objects   []*Object   `yaml:"objects"`
	Materials []*Material `yaml:"materials"`
	Actions   []*Action   `yaml:"actions"`

	materials map[string]*Material
	actions   map[string]*Action
	objects   map[string]*Object
}

type Object struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Parent     string         `yaml:"parent,omitempty"`
	Matrix     Matrix         `yaml:"matrix"`
	Mesh       *Mesh          `yaml:"mesh,omitempty"`
	Armature   *Armature      `yaml:"armature,omitempty"`
	Action     string         `yaml:"action,omitempty"`
	Animations []*ExportRange `yaml:"animations,omitempty"`
}

// ExportRange is a named frame window of an action
type ExportRange struct {
	Name   string `yaml:"name"`
	Action string `yaml:"action"`
	Start  int    `yaml:"start"`
	End    int    `yaml:"end"`
}

type Vertex struct {
	Co   mgl64.Vec3  `yaml:"co,flow"`
	No   mgl64.Vec3  `yaml:"no,flow"`
	UVCo *mgl64.Vec2 `yaml:"uvco,flow,omitempty"`
}

type Face struct {
	V      []int        `yaml:"v,flow"`
	Smooth bool         `yaml:"smooth,omitempty"`
	Mat    int          `yaml:"mat,omitempty"`
	UV     []mgl64.Vec2 `yaml:"uv,flow,omitempty"`
	Col    [][4]uint8   `yaml:"col,flow,omitempty"`
	Image  string       `yaml:"image,omitempty"`
	Mode   FaceMode     `yaml:"mode,flow,omitempty"`
	Flag   FaceFlag     `yaml:"flag,flow,omitempty"`
	Transp string       `yaml:"transp,omitempty"`
}

type GroupWeight struct {
	Index  int     `yaml:"index"`
	Weight float64 `yaml:"weight"`
}

type Mesh struct {
	Name         string                   `yaml:"name"`
	Vertices     []Vertex                 `yaml:"vertices"`
	Faces        []Face                   `yaml:"faces"`
	Materials    []string                 `yaml:"materials,omitempty"`
	VertexUV     bool                     `yaml:"vertex_uv,omitempty"`
	FaceUV       bool                     `yaml:"face_uv,omitempty"`
	VertexColors bool                     `yaml:"vertex_colors,omitempty"`
	Groups       map[string][]GroupWeight `yaml:"groups,omitempty"`
}

type Bone struct {
	Name   string     `yaml:"name"`
	Parent string     `yaml:"parent,omitempty"`
	Head   mgl64.Vec3 `yaml:"head,flow"`
	Tail   mgl64.Vec3 `yaml:"tail,flow"`
	Roll   float64    `yaml:"roll,omitempty"`
}

type Armature struct {
	Name  string  `yaml:"name"`
	Bones []*Bone `yaml:"bones"`
}

func (a *Armature) Bone(name string) *Bone {
	for _, b := range a.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

type TextureSlot struct {
	Type       string     `yaml:"type"`
	Image      string     `yaml:"image,omitempty"`
	TexCo      TexCo      `yaml:"texco,flow,omitempty"`
	MapTo      MapTo      `yaml:"mapto,flow,omitempty"`
	Extend     ExtendMode `yaml:"extend,omitempty"`
	ImageFlags ImageFlags `yaml:"image_flags,flow,omitempty"`
}

func (t *TextureSlot) IsImage() bool {
	return t != nil && t.Type == TextureImage && t.Image != ""
}

type Material struct {
	Name     string         `yaml:"name"`
	Mode     MaterialMode   `yaml:"mode,flow,omitempty"`
	RGB      mgl64.Vec3     `yaml:"rgb,flow"`
	Amb      float64        `yaml:"amb"`
	Ref      float64        `yaml:"ref"`
	Spec     float64        `yaml:"spec"`
	SpecRGB  mgl64.Vec3     `yaml:"spec_rgb,flow"`
	Hard     int            `yaml:"hard"`
	Emit     float64        `yaml:"emit"`
	Alpha    float64        `yaml:"alpha"`
	Textures []*TextureSlot `yaml:"textures,omitempty"`
}

func (s *Scene) Material(name string) *Material { return s.materials[name] }
func (s *Scene) Action(name string) *Action     { return s.actions[name] }
func (s *Scene) Object(name string) *Object     { return s.objects[name] }

// ParentObject returns parent object or nil
func (s *Scene) ParentObject(o *Object) *Object {
	if o.Parent == "" {
		return nil
	}
	return s.objects[o.Parent]
}

func defaultMaterial() Material {
	return Material{
		RGB:     mgl64.Vec3{0.8, 0.8, 0.8},
		Amb:     0.5,
		Ref:     0.8,
		Spec:    0.5,
		SpecRGB: mgl64.Vec3{1, 1, 1},
		Hard:    50,
		Alpha:   1,
	}
}

func (m *Material) UnmarshalYAML(node *yaml.Node) error {
	type plain Material
	p := plain(defaultMaterial())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*m = Material(p)
	return nil
}

func Load(path string) (*Scene, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot expand %q", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open scene %q", path)
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot load scene %q", path)
	}
	return s, nil
}

func Decode(r io.Reader) (*Scene, error) {
	s := &Scene{FPS: DefaultFPS}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "yaml")
	}
	if err := s.index(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scene) index() error {
	s.materials = make(map[string]*Material)
	s.actions = make(map[string]*Action)
	s.objects = make(map[string]*Object)

	for _, m := range s.Materials {
		if _, ok := s.materials[m.Name]; ok {
			return errors.Errorf("Duplicate material %q", m.Name)
		}
		s.materials[m.Name] = m
	}
	for _, a := range s.Actions {
		if _, ok := s.actions[a.Name]; ok {
			return errors.Errorf("Duplicate action %q", a.Name)
		}
		if err := a.validate(); err != nil {
			return err
		}
		s.actions[a.Name] = a
	}
	for _, o := range s.Objects {
		if _, ok := s.objects[o.Name]; ok {
			return errors.Errorf("Duplicate object %q", o.Name)
		}
		s.objects[o.Name] = o
		if o.Matrix.IsZero() {
			o.Matrix = IdentityMatrix
		}
		switch o.Type {
		case TypeMesh:
			if o.Mesh == nil {
				return errors.Errorf("Object %q of type Mesh has no mesh data", o.Name)
			}
			if err := o.Mesh.validate(); err != nil {
				return errors.Wrapf(err, "Object %q", o.Name)
			}
		case TypeArmature:
			if o.Armature == nil {
				return errors.Errorf("Object %q of type Armature has no armature data", o.Name)
			}
		case "":
			return errors.Errorf("Object %q has no type", o.Name)
		}
	}
	for _, o := range s.Objects {
		if o.Parent != "" {
			if _, ok := s.objects[o.Parent]; !ok {
				return errors.Errorf("Object %q has unknown parent %q", o.Name, o.Parent)
			}
		}
	}
	return nil
}

// validate checks vertex references only. Face sizes, slots and
// colours are checked by the mesh converter which logs and skips them.
func (m *Mesh) validate() error {
	for iFace, f := range m.Faces {
		for _, v := range f.V {
			if v < 0 || v >= len(m.Vertices) {
				return errors.Errorf("Mesh %q face %d references vertex %d of %d", m.Name, iFace, v, len(m.Vertices))
			}
		}
	}
	for group, weights := range m.Groups {
		for _, w := range weights {
			if w.Index < 0 || w.Index >= len(m.Vertices) {
				return errors.Errorf("Mesh %q group %q references vertex %d of %d", m.Name, group, w.Index, len(m.Vertices))
			}
		}
	}
	return nil
}

// SelectedObjects returns objects in scene order
func (s *Scene) SelectedObjects() []*Object {
	return s.Objects
}

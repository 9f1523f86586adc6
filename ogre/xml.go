package ogre

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/ogre_xml_exporter/utils"
)

// Float is written with six decimals
type Float float64

func (f Float) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return xml.Attr{Name: name, Value: strconv.FormatFloat(float64(f), 'f', 6, 64)}, nil
}

func (f *Float) UnmarshalXMLAttr(attr xml.Attr) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(attr.Value), 64)
	if err != nil {
		return errors.Wrapf(err, "attribute %s", attr.Name.Local)
	}
	*f = Float(v)
	return nil
}

type Vec3XML struct {
	X Float `xml:"x,attr"`
	Y Float `xml:"y,attr"`
	Z Float `xml:"z,attr"`
}

func newVec3XML(v mgl64.Vec3) *Vec3XML {
	return &Vec3XML{X: Float(v[0]), Y: Float(v[1]), Z: Float(v[2])}
}

func (v *Vec3XML) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

type ColourXML struct {
	Value string `xml:"value,attr"`
}

func newColourXML(c mgl64.Vec4, bgra bool) *ColourXML {
	if bgra {
		c[0], c[2] = c[2], c[0]
	}
	return &ColourXML{Value: fmt.Sprintf("%.6f %.6f %.6f %.6f", c[0], c[1], c[2], c[3])}
}

type TexCoordXML struct {
	U Float `xml:"u,attr"`
	V Float `xml:"v,attr"`
}

type VertexXML struct {
	Position       *Vec3XML      `xml:"position"`
	Normal         *Vec3XML      `xml:"normal"`
	ColourDiffuse  *ColourXML    `xml:"colour_diffuse"`
	ColourSpecular *ColourXML    `xml:"colour_specular"`
	TexCoords      []TexCoordXML `xml:"texcoord"`
}

type VertexBufferXML struct {
	Positions               bool        `xml:"positions,attr,omitempty"`
	Normals                 bool        `xml:"normals,attr,omitempty"`
	TextureCoordDimensions0 int         `xml:"texture_coord_dimensions_0,attr,omitempty"`
	TextureCoords           int         `xml:"texture_coords,attr,omitempty"`
	ColoursDiffuse          bool        `xml:"colours_diffuse,attr,omitempty"`
	ColoursSpecular         bool        `xml:"colours_specular,attr,omitempty"`
	Vertices                []VertexXML `xml:"vertex"`
}

type GeometryXML struct {
	VertexCount   int               `xml:"vertexcount,attr"`
	VertexBuffers []VertexBufferXML `xml:"vertexbuffer"`
}

type FaceXML struct {
	V1 int `xml:"v1,attr"`
	V2 int `xml:"v2,attr"`
	V3 int `xml:"v3,attr"`
}

type FacesXML struct {
	Count int       `xml:"count,attr"`
	Faces []FaceXML `xml:"face"`
}

type VertexBoneAssignmentXML struct {
	VertexIndex int   `xml:"vertexindex,attr"`
	BoneIndex   int   `xml:"boneindex,attr"`
	Weight      Float `xml:"weight,attr"`
}

type BoneAssignmentsXML struct {
	Assignments []VertexBoneAssignmentXML `xml:"vertexboneassignment"`
}

type SubMeshXML struct {
	Material          string              `xml:"material,attr"`
	UseSharedVertices bool                `xml:"usesharedvertices,attr"`
	Use32BitIndexes   bool                `xml:"use32bitindexes,attr"`
	OperationType     string              `xml:"operationtype,attr"`
	Faces             FacesXML            `xml:"faces"`
	Geometry          GeometryXML         `xml:"geometry"`
	BoneAssignments   *BoneAssignmentsXML `xml:"boneassignments"`
}

type SubMeshesXML struct {
	SubMeshes []SubMeshXML `xml:"submesh"`
}

type SkeletonLinkXML struct {
	Name string `xml:"name,attr"`
}

type MeshXML struct {
	XMLName      xml.Name         `xml:"mesh"`
	SubMeshes    SubMeshesXML     `xml:"submeshes"`
	SkeletonLink *SkeletonLinkXML `xml:"skeletonlink"`
}

func (m *MeshXML) VertexCount() int {
	n := 0
	for _, s := range m.SubMeshes.SubMeshes {
		n += s.Geometry.VertexCount
	}
	return n
}

func (m *MeshXML) FaceCount() int {
	n := 0
	for _, s := range m.SubMeshes.SubMeshes {
		n += len(s.Faces.Faces)
	}
	return n
}

func (m *MeshXML) BoneAssignmentCount() int {
	n := 0
	for _, s := range m.SubMeshes.SubMeshes {
		if s.BoneAssignments != nil {
			n += len(s.BoneAssignments.Assignments)
		}
	}
	return n
}

type RotationXML struct {
	Angle Float   `xml:"angle,attr"`
	Axis  Vec3XML `xml:"axis"`
}

func newRotationXML(q mgl64.Quat) RotationXML {
	angle, axis := utils.QuatAngleAxis(q)
	return RotationXML{Angle: Float(angle), Axis: *newVec3XML(axis)}
}

func (r *RotationXML) Quat() mgl64.Quat {
	if r.Angle == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(float64(r.Angle), r.Axis.Vec3().Normalize())
}

type BoneXML struct {
	ID       int         `xml:"id,attr"`
	Name     string      `xml:"name,attr"`
	Position Vec3XML     `xml:"position"`
	Rotation RotationXML `xml:"rotation"`
}

type BoneParentXML struct {
	Bone   string `xml:"bone,attr"`
	Parent string `xml:"parent,attr"`
}

type KeyFrameXML struct {
	Time      Float       `xml:"time,attr"`
	Translate Vec3XML     `xml:"translate"`
	Rotate    RotationXML `xml:"rotate"`
	Scale     Vec3XML     `xml:"scale"`
}

type TrackXML struct {
	Bone      string        `xml:"bone,attr"`
	KeyFrames []KeyFrameXML `xml:"keyframes>keyframe"`
}

type AnimationXML struct {
	Name   string     `xml:"name,attr"`
	Length Float      `xml:"length,attr"`
	Tracks []TrackXML `xml:"tracks>track"`
}

type BonesXML struct {
	Bones []BoneXML `xml:"bone"`
}

type BoneHierarchyXML struct {
	Parents []BoneParentXML `xml:"boneparent"`
}

type AnimationsXML struct {
	Animations []AnimationXML `xml:"animation"`
}

type SkeletonXML struct {
	XMLName    xml.Name         `xml:"skeleton"`
	Bones      BonesXML         `xml:"bones"`
	Hierarchy  BoneHierarchyXML `xml:"bonehierarchy"`
	Animations AnimationsXML    `xml:"animations"`
}

func (s *SkeletonXML) KeyFrameCount() int {
	n := 0
	for _, a := range s.Animations.Animations {
		for _, t := range a.Tracks {
			n += len(t.KeyFrames)
		}
	}
	return n
}

func vertexXML(v *Vertex, position, normal, colour, texcoords, bgra bool) VertexXML {
	var x VertexXML
	if position {
		x.Position = newVec3XML(v.Position)
	}
	if normal {
		x.Normal = newVec3XML(v.Normal)
	}
	if colour {
		if v.Diffuse != nil {
			x.ColourDiffuse = newColourXML(*v.Diffuse, bgra)
		}
		if v.Specular != nil {
			x.ColourSpecular = newColourXML(*v.Specular, bgra)
		}
	}
	if texcoords {
		for _, uv := range v.TexCoords {
			x.TexCoords = append(x.TexCoords, TexCoordXML{U: Float(uv[0]), V: Float(uv[1])})
		}
	}
	return x
}

func vertexBuffer(vertices []*Vertex, position, normal, colour, texcoords, bgra bool) VertexBufferXML {
	vb := VertexBufferXML{
		Positions: position,
		Normals:   normal,
		Vertices:  make([]VertexXML, len(vertices)),
	}
	if texcoords {
		vb.TextureCoordDimensions0 = 2
		vb.TextureCoords = 1
	}
	if colour {
		vb.ColoursDiffuse = true
	}
	for i, v := range vertices {
		vb.Vertices[i] = vertexXML(v, position, normal, colour, texcoords, bgra)
	}
	return vb
}

// XML converts mesh into serializable form. Skinned meshes keep
// positions and normals in separate vertex buffer.
func (m *Mesh) XML(bgra bool) *MeshXML {
	x := &MeshXML{}
	for _, s := range m.SubMeshes {
		sx := SubMeshXML{
			Material:      s.MaterialName(),
			OperationType: "triangle_list",
			Faces:         FacesXML{Count: len(s.Faces), Faces: make([]FaceXML, len(s.Faces))},
			Geometry:      GeometryXML{VertexCount: len(s.Vertices)},
		}
		for i, f := range s.Faces {
			sx.Faces.Faces[i] = FaceXML{V1: f.V[0], V2: f.V[1], V3: f.V[2]}
		}

		if m.Skeleton != nil {
			sx.Geometry.VertexBuffers = append(sx.Geometry.VertexBuffers,
				vertexBuffer(s.Vertices, true, true, false, false, bgra))
			if m.HasUVCoordinates || m.HasVertexColours {
				sx.Geometry.VertexBuffers = append(sx.Geometry.VertexBuffers,
					vertexBuffer(s.Vertices, false, false, m.HasVertexColours, m.HasUVCoordinates, bgra))
			}

			sx.BoneAssignments = &BoneAssignmentsXML{Assignments: make([]VertexBoneAssignmentXML, 0)}
			for _, v := range s.Vertices {
				for _, inf := range v.Influences {
					sx.BoneAssignments.Assignments = append(sx.BoneAssignments.Assignments, VertexBoneAssignmentXML{
						VertexIndex: v.ID,
						BoneIndex:   inf.Bone.ID,
						Weight:      Float(inf.Weight),
					})
				}
			}
		} else {
			sx.Geometry.VertexBuffers = append(sx.Geometry.VertexBuffers,
				vertexBuffer(s.Vertices, true, true, m.HasVertexColours, m.HasUVCoordinates, bgra))
		}
		x.SubMeshes.SubMeshes = append(x.SubMeshes.SubMeshes, sx)
	}
	if m.Skeleton != nil {
		x.SkeletonLink = &SkeletonLinkXML{Name: m.Skeleton.Name + ".skeleton"}
	}
	return x
}

func (s *Skeleton) XML() *SkeletonXML {
	x := &SkeletonXML{}
	for _, b := range s.Bones {
		x.Bones.Bones = append(x.Bones.Bones, BoneXML{
			ID:       b.ID,
			Name:     b.Name,
			Position: *newVec3XML(b.Loc),
			Rotation: newRotationXML(b.Rot),
		})
	}
	for _, b := range s.Bones {
		if b.Parent != nil {
			x.Hierarchy.Parents = append(x.Hierarchy.Parents, BoneParentXML{Bone: b.Name, Parent: b.Parent.Name})
		}
	}
	for _, a := range s.Animations {
		ax := AnimationXML{Name: a.Name, Length: Float(a.Duration)}
		for _, t := range a.Tracks {
			tx := TrackXML{Bone: t.Bone.Name, KeyFrames: make([]KeyFrameXML, len(t.KeyFrames))}
			for i, k := range t.KeyFrames {
				tx.KeyFrames[i] = KeyFrameXML{
					Time:      Float(k.Time),
					Translate: *newVec3XML(k.Loc),
					Rotate:    newRotationXML(k.Rot),
					Scale:     *newVec3XML(k.Scale),
				}
			}
			ax.Tracks = append(ax.Tracks, tx)
		}
		x.Animations.Animations = append(x.Animations.Animations, ax)
	}
	return x
}

func encode(w io.Writer, v interface{}) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func WriteMesh(w io.Writer, m *Mesh, bgra bool) error {
	return errors.Wrapf(encode(w, m.XML(bgra)), "Cannot write mesh %q", m.Name)
}

func WriteSkeleton(w io.Writer, s *Skeleton) error {
	return errors.Wrapf(encode(w, s.XML()), "Cannot write skeleton %q", s.Name)
}

func ParseMesh(r io.Reader) (*MeshXML, error) {
	m := &MeshXML{}
	if err := xml.NewDecoder(r).Decode(m); err != nil {
		return nil, errors.Wrap(err, "Cannot parse mesh xml")
	}
	return m, nil
}

func ParseSkeleton(r io.Reader) (*SkeletonXML, error) {
	s := &SkeletonXML{}
	if err := xml.NewDecoder(r).Decode(s); err != nil {
		return nil, errors.Wrap(err, "Cannot parse skeleton xml")
	}
	return s, nil
}

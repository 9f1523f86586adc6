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

type Logger interface {
	Info(format string, a ...interface{})
	Warning(format string, a ...interface{})
	Error(format string, a ...interface{})
}

type builtSkeleton struct {
	skeleton *ogre.Skeleton
	segments []BoneSegment
}

// Session is state of one export run. It is not safe for concurrent use,
// separate exports use separate sessions.
type Session struct {
	Options   config.ExportOptions
	Scene     *scene.Scene
	Log       *status.Logger
	Sink      Sink
	Materials *material.Registry
	// Dump receives spew dumps of converted meshes and skeletons when not nil
	Dump io.Writer

	skeletons map[string]*builtSkeleton
	written   map[string]bool
	names     utils.RandomNameGenerator
	// generated names of unnamed data blocks, the scene itself is not modified
	meshNames     map[*scene.Mesh]string
	armatureNames map[*scene.Armature]string
	converter     *Converter
	exportMat     mgl64.Mat4
}

func NewSession(sc *scene.Scene, opts config.ExportOptions, sink Sink, log *status.Logger) *Session {
	if log == nil {
		log = status.NewLogger()
	}
	s := &Session{
		Options:   opts,
		Scene:     sc,
		Log:       log,
		Sink:      sink,
		Materials: material.NewRegistry(),
		skeletons: make(map[string]*builtSkeleton),
		written:   make(map[string]bool),
		exportMat: opts.TransformationMatrix(),

		meshNames:     make(map[*scene.Mesh]string),
		armatureNames: make(map[*scene.Armature]string),
	}
	s.nameUnnamed()

	if opts.ConverterCommand != "" && sink != nil && sink.Path("") != "" {
		if c, err := NewConverter(opts.ConverterCommand); err != nil {
			log.Error("%v", err)
		} else {
			s.converter = c
		}
	}
	return s
}

// nameUnnamed gives random stable names to data blocks without name,
// their names become output file names
func (s *Session) nameUnnamed() {
	for _, o := range s.Scene.Objects {
		if o.Mesh != nil && o.Mesh.Name != "" {
			s.names.Reserve(o.Mesh.Name)
		}
		if o.Armature != nil && o.Armature.Name != "" {
			s.names.Reserve(o.Armature.Name)
		}
	}
	for _, o := range s.Scene.Objects {
		if o.Mesh != nil && o.Mesh.Name == "" {
			if _, ok := s.meshNames[o.Mesh]; !ok {
				s.meshNames[o.Mesh] = s.names.RandomName("mesh")
			}
		}
		if o.Armature != nil && o.Armature.Name == "" {
			if _, ok := s.armatureNames[o.Armature]; !ok {
				s.armatureNames[o.Armature] = s.names.RandomName("armature")
			}
		}
	}
}

func (s *Session) meshName(m *scene.Mesh) string {
	if m.Name != "" {
		return m.Name
	}
	return s.meshNames[m]
}

func (s *Session) armatureName(a *scene.Armature) string {
	if a.Name != "" {
		return a.Name
	}
	return s.armatureNames[a]
}

func (s *Session) FPS() float64 {
	if s.Options.FPS > 0 {
		return s.Options.FPS
	}
	return s.Scene.FPS
}

func (s *Session) materialOptions() material.Options {
	return material.Options{
		GameEngine:      s.Options.GameEngineMaterials,
		ColouredAmbient: s.Options.ColouredAmbient,
	}
}

// writeFile creates file in sink. Converter runs only on xml files.
// File name written before in this session is kept and warned about,
// e.g. when objects share mesh data.
func (s *Session) writeFile(name string, xml bool, write func(w io.Writer) error) error {
	if s.written[name] {
		s.Log.Warning("File \"%s\" already exported, skipped.", name)
		return nil
	}
	s.written[name] = true
	f, err := s.Sink.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if xml && s.converter != nil {
		s.converter.Run(s.Sink.Path(name), s.Log)
	}
	return nil
}

func (s *Session) dump(a ...interface{}) {
	if s.Dump != nil {
		utils.DumpTo(s.Dump, a...)
	}
}

package material

import (
	"fmt"
	"io"
	"strings"

	"github.com/mogaika/ogre_xml_exporter/utils"
)

// Material is one block of material script. Name identifies shading
// configuration, materials with equal names are written once.
type Material interface {
	Name() string
	Write(w io.Writer) error
}

type Logger interface {
	utils.Warner
	Error(format string, a ...interface{})
}

// script writes tab indented lines and keeps first write error
type script struct {
	w   io.Writer
	err error
}

func (s *script) line(indent int, format string, a ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, strings.Repeat("\t", indent)+format+"\n", a...)
}

func (s *script) raw(text string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, text)
}

func writeBlock(w io.Writer, name string, techniques func(s *script)) error {
	s := &script{w: w}
	s.line(0, "material %s", name)
	s.line(0, "{")
	techniques(s)
	s.line(0, "}")
	return s.err
}

func writeEmptyTechnique(s *script) {
	s.line(1, "technique")
	s.line(1, "{")
	s.line(2, "pass")
	s.line(2, "{")
	s.line(2, "}")
	s.line(1, "}")
}

type DefaultMaterial struct {
	name string
}

func NewDefaultMaterial(name string) *DefaultMaterial {
	return &DefaultMaterial{name: name}
}

func (m *DefaultMaterial) Name() string { return m.name }

func (m *DefaultMaterial) Write(w io.Writer) error {
	return writeBlock(w, m.name, writeEmptyTechnique)
}

// WriteScript writes materials in given order
func WriteScript(w io.Writer, materials []Material) error {
	for _, m := range materials {
		if err := m.Write(w); err != nil {
			return err
		}
	}
	return nil
}

func basename(filename string, log utils.Warner) string {
	return utils.PathName(filename).Basename(log)
}

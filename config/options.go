package config

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/ogre_xml_exporter/utils"
)

type ExportOptions struct {
	ExportPath          string  `yaml:"export_path" toml:"export_path" json:"export_path"`
	MaterialFile        string  `yaml:"material_file" toml:"material_file" json:"material_file"`
	Scale               float64 `yaml:"scale" toml:"scale" json:"scale"`
	RotX                float64 `yaml:"rot_x" toml:"rot_x" json:"rot_x"`
	RotY                float64 `yaml:"rot_y" toml:"rot_y" json:"rot_y"`
	RotZ                float64 `yaml:"rot_z" toml:"rot_z" json:"rot_z"`
	UseWorldCoordinates bool    `yaml:"world_coordinates" toml:"world_coordinates" json:"world_coordinates"`
	ColouredAmbient     bool    `yaml:"coloured_ambient" toml:"coloured_ambient" json:"coloured_ambient"`
	GameEngineMaterials bool    `yaml:"game_engine_materials" toml:"game_engine_materials" json:"game_engine_materials"`
	ExportArmatures     bool    `yaml:"export_armatures" toml:"export_armatures" json:"export_armatures"`
	VertexColourBGRA    bool    `yaml:"vertex_colour_bgra" toml:"vertex_colour_bgra" json:"vertex_colour_bgra"`
	ConverterCommand    string  `yaml:"converter_command,omitempty" toml:"converter_command,omitempty" json:"converter_command,omitempty"`
	FPS                 float64 `yaml:"fps,omitempty" toml:"fps,omitempty" json:"fps,omitempty"`
	Encoding            string  `yaml:"encoding,omitempty" toml:"encoding,omitempty" json:"encoding,omitempty"`
	ExportGLTF          bool    `yaml:"export_gltf" toml:"export_gltf" json:"export_gltf"`
}

func DefaultOptions() ExportOptions {
	return ExportOptions{
		Scale:           1.0,
		ExportArmatures: true,
	}
}

// MaterialFileFor returns configured material file name or <scene>.material
func (o *ExportOptions) MaterialFileFor(sceneName string) string {
	if o.MaterialFile != "" {
		return o.MaterialFile
	}
	if sceneName == "" {
		sceneName = "Scene"
	}
	return sceneName + ".material"
}

func (o *ExportOptions) TransformationMatrix() mgl64.Mat4 {
	return utils.TransformationMatrix(o.Scale, o.RotX, o.RotY, o.RotZ)
}

// Normalize expands home directory in export path and validates values
func (o *ExportOptions) Normalize() error {
	if o.ExportPath != "" {
		p, err := homedir.Expand(o.ExportPath)
		if err != nil {
			return errors.Wrapf(err, "Cannot expand export path %q", o.ExportPath)
		}
		o.ExportPath = p
	}
	if o.Scale == 0 {
		return errors.Errorf("Scale must not be zero")
	}
	if _, err := FindEncoding(o.Encoding); err != nil {
		return err
	}
	return nil
}

func optionsFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	}
	return "", errors.Errorf("Unknown options file format %q", path)
}

func DecodeOptions(data []byte, format string) (ExportOptions, error) {
	o := DefaultOptions()
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &o)
	case "toml":
		err = toml.Unmarshal(data, &o)
	default:
		err = errors.Errorf("Unknown options format %q", format)
	}
	if err != nil {
		return o, errors.Wrapf(err, "Cannot decode %s options", format)
	}
	if err := o.Normalize(); err != nil {
		return o, err
	}
	return o, nil
}

func LoadOptions(path string) (ExportOptions, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return DefaultOptions(), errors.Wrapf(err, "Cannot expand %q", path)
	}
	format, err := optionsFormat(path)
	if err != nil {
		return DefaultOptions(), err
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return DefaultOptions(), errors.Wrapf(err, "Cannot read options %q", path)
	}
	return DecodeOptions(data, format)
}

func EncodeOptions(o ExportOptions, format string) ([]byte, error) {
	switch format {
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&o); err != nil {
			return nil, errors.Wrap(err, "Cannot encode yaml options")
		}
		enc.Close()
		return buf.Bytes(), nil
	case "toml":
		data, err := toml.Marshal(&o)
		return data, errors.Wrap(err, "Cannot encode toml options")
	}
	return nil, errors.Errorf("Unknown options format %q", format)
}

func SaveOptions(path string, o ExportOptions) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return errors.Wrapf(err, "Cannot expand %q", path)
	}
	format, err := optionsFormat(path)
	if err != nil {
		return err
	}
	data, err := EncodeOptions(o, format)
	if err != nil {
		return err
	}
	return errors.Wrapf(ioutil.WriteFile(path, data, 0644), "Cannot write options %q", path)
}

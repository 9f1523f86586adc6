package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/mogaika/ogre_xml_exporter/config"
	"github.com/mogaika/ogre_xml_exporter/exporter"
	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/status"
	"github.com/mogaika/ogre_xml_exporter/web"
)

func export(scenePath string, opts config.ExportOptions, dump bool) int {
	exportLog := status.NewLogger(status.NewConsoleListener(os.Stdout))
	sc, err := scene.Load(scenePath)
	if err != nil {
		exportLog.Error("%v", err)
		return exportLog.Status()
	}
	var dumpTo io.Writer
	if dump {
		dumpTo = os.Stderr
	}
	return exporter.Export(sc, opts, exportLog, dumpTo)
}

func main() {
	var addr, scenePath, optionsPath, out, materialFile, encoding, converter string
	var scale, rotX, rotY, rotZ, fps float64
	var world, gameMaterials, gltf, dump, watch, bgra, noArmatures bool
	flag.StringVar(&addr, "i", "", "Address of export web service, e.g. :8000")
	flag.StringVar(&scenePath, "scene", "", "Path to scene yaml")
	flag.StringVar(&optionsPath, "options", "", "Path to options file (.yaml, .yml or .toml)")
	flag.StringVar(&out, "out", "", "Export directory, overrides options")
	flag.StringVar(&materialFile, "material", "", "Material file name, default <scene name>.material")
	flag.StringVar(&encoding, "encoding", "", "Material file encoding, default utf-8")
	flag.StringVar(&converter, "converter", "", "OgreXMLConverter command, %s is replaced by file path")
	flag.Float64Var(&scale, "scale", 0, "Uniform scale, overrides options")
	flag.Float64Var(&rotX, "rotx", 0, "Rotation around X axis in degrees")
	flag.Float64Var(&rotY, "roty", 0, "Rotation around Y axis in degrees")
	flag.Float64Var(&rotZ, "rotz", 0, "Rotation around Z axis in degrees")
	flag.Float64Var(&fps, "fps", 0, "Frame rate, overrides scene frame rate")
	flag.BoolVar(&world, "world", false, "Export in world coordinates")
	flag.BoolVar(&gameMaterials, "gamemat", false, "Export game engine materials")
	flag.BoolVar(&noArmatures, "noarmatures", false, "Do not export skeletons of meshes")
	flag.BoolVar(&bgra, "bgra", false, "Write vertex colours in BGRA order")
	flag.BoolVar(&gltf, "gltf", false, "Also write .glb preview of every mesh")
	flag.BoolVar(&dump, "dump", false, "Dump converted meshes and skeletons to stderr")
	flag.BoolVar(&watch, "watch", false, "Export again every time scene file changes")
	flag.Parse()

	if addr != "" {
		if err := web.StartServer(addr); err != nil {
			log.Fatal(err)
		}
		return
	}
	if scenePath == "" {
		flag.PrintDefaults()
		return
	}

	opts := config.DefaultOptions()
	if optionsPath != "" {
		var err error
		if opts, err = config.LoadOptions(optionsPath); err != nil {
			log.Fatal(err)
		}
	}
	// explicitly set flags override options file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			opts.ExportPath = out
		case "material":
			opts.MaterialFile = materialFile
		case "encoding":
			opts.Encoding = encoding
		case "converter":
			opts.ConverterCommand = converter
		case "scale":
			opts.Scale = scale
		case "rotx":
			opts.RotX = rotX
		case "roty":
			opts.RotY = rotY
		case "rotz":
			opts.RotZ = rotZ
		case "fps":
			opts.FPS = fps
		case "world":
			opts.UseWorldCoordinates = world
		case "gamemat":
			opts.GameEngineMaterials = gameMaterials
		case "noarmatures":
			opts.ExportArmatures = !noArmatures
		case "bgra":
			opts.VertexColourBGRA = bgra
		case "gltf":
			opts.ExportGLTF = gltf
		}
	})
	if opts.ExportPath == "" {
		opts.ExportPath = "."
	}
	if err := opts.Normalize(); err != nil {
		log.Fatal(err)
	}

	if !watch {
		if export(scenePath, opts, dump) == status.ERROR {
			os.Exit(1)
		}
		return
	}

	export(scenePath, opts, dump)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := exporter.Watch(ctx, scenePath, func() { export(scenePath, opts, dump) }); err != nil {
		log.Fatal(err)
	}
}

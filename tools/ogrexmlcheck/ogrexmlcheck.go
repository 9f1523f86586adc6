package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/ogre_xml_exporter/ogre"
)

func checkMesh(r io.Reader, w io.Writer) error {
	m, err := ogre.ParseMesh(r)
	if err != nil {
		return err
	}
	for i, s := range m.SubMeshes.SubMeshes {
		assignments := 0
		if s.BoneAssignments != nil {
			assignments = len(s.BoneAssignments.Assignments)
		}
		fmt.Fprintf(w, "  submesh %d %q: vertices %d faces %d bone assignments %d\n",
			i, s.Material, s.Geometry.VertexCount, len(s.Faces.Faces), assignments)
		if s.Faces.Count != len(s.Faces.Faces) {
			return errors.Errorf("submesh %d: faces count %d, got %d faces", i, s.Faces.Count, len(s.Faces.Faces))
		}
		for _, f := range s.Faces.Faces {
			for _, v := range []int{f.V1, f.V2, f.V3} {
				if v < 0 || v >= s.Geometry.VertexCount {
					return errors.Errorf("submesh %d: face references vertex %d of %d", i, v, s.Geometry.VertexCount)
				}
			}
		}
	}
	if m.SkeletonLink != nil {
		fmt.Fprintf(w, "  skeleton %s\n", m.SkeletonLink.Name)
	}
	fmt.Fprintf(w, "  total: vertices %d faces %d bone assignments %d\n", m.VertexCount(), m.FaceCount(), m.BoneAssignmentCount())
	return nil
}

func checkSkeleton(r io.Reader, w io.Writer) error {
	s, err := ogre.ParseSkeleton(r)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  bones %d\n", len(s.Bones.Bones))
	for i, b := range s.Bones.Bones {
		if b.ID != i {
			return errors.Errorf("bone %q has id %d at position %d", b.Name, b.ID, i)
		}
	}
	for _, a := range s.Animations.Animations {
		keyframes := 0
		for _, t := range a.Tracks {
			keyframes += len(t.KeyFrames)
		}
		fmt.Fprintf(w, "  animation %q: length %v tracks %d keyframes %d\n", a.Name, float64(a.Length), len(a.Tracks), keyframes)
	}
	fmt.Fprintf(w, "  total keyframes %d\n", s.KeyFrameCount())
	return nil
}

func check(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(w, "%s\n", filepath.Base(path))
	switch {
	case strings.HasSuffix(path, ".mesh.xml"):
		return checkMesh(f, w)
	case strings.HasSuffix(path, ".skeleton.xml"):
		return checkSkeleton(f, w)
	}
	return errors.Errorf("Unknown file type %q", path)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s <file.mesh.xml|file.skeleton.xml>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := check(path, os.Stdout); err != nil {
			log.Printf("%s: %v", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

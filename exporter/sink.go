package exporter

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Sink receives output files of one export
type Sink interface {
	Create(name string) (io.WriteCloser, error)
	// Path returns location of file on disk, empty if sink is not a directory
	Path(name string) string
	Close() error
}

type DirSink struct {
	Dir string
}

// NewDirSink fails when dir does not exist
func NewDirSink(dir string) (*DirSink, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, errors.Errorf("%q is not a directory", dir)
	}
	return &DirSink{Dir: dir}, nil
}

func (d *DirSink) Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(d.Path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot create %q", name)
	}
	return f, nil
}

func (d *DirSink) Path(name string) string {
	return filepath.Join(d.Dir, name)
}

func (d *DirSink) Close() error { return nil }

// ZipSink packs files into zip archive. Files must be written one at a time.
type ZipSink struct {
	z     *zip.Writer
	names map[string]struct{}
}

func NewZipSink(w io.Writer) *ZipSink {
	return &ZipSink{z: zip.NewWriter(w), names: make(map[string]struct{})}
}

type zipEntry struct{ io.Writer }

func (zipEntry) Close() error { return nil }

func (s *ZipSink) Create(name string) (io.WriteCloser, error) {
	if _, ok := s.names[name]; ok {
		return nil, errors.Errorf("File %q already written to archive", name)
	}
	w, err := s.z.Create(name)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot create %q in archive", name)
	}
	s.names[name] = struct{}{}
	return zipEntry{w}, nil
}

func (s *ZipSink) Path(name string) string { return "" }

func (s *ZipSink) Close() error {
	return s.z.Close()
}

package config

import (
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func FindEncoding(name string) (*charmap.Charmap, error) {
	if name == "" || name == "utf-8" {
		return nil, nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				return cm, nil
			}
		}
	}
	return nil, errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := []string{"utf-8"}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

// EncodingWriter wraps w so text is converted to charmap cm. Unencodable
// runes are replaced. The result must be closed to flush pending bytes.
func EncodingWriter(w io.Writer, cm *charmap.Charmap) io.WriteCloser {
	if cm == nil {
		return nopCloser{w}
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(cm.NewEncoder()))
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

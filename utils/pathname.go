package utils

import (
	"strings"
)

type Warner interface {
	Warning(format string, a ...interface{})
}

// PathName splits path names stored by the modeling tool. They keep the
// separator of the os they were created on, so both '/' and '\' are handled.
type PathName string

func (p PathName) split() (string, string) {
	s := string(p)
	i := strings.LastIndexAny(s, `/\`)
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}

func (p PathName) Dirname() string {
	dir, _ := p.split()
	return dir
}

// Basename returns file name with whitespaces replaced by underscores.
// Replacement is reported to log if it is not nil.
func (p PathName) Basename(log Warner) string {
	_, base := p.split()
	if strings.Contains(base, " ") {
		if log != nil {
			log.Warning("Whitespaces in filename %q replaced with underscores.", base)
		}
		base = strings.ReplaceAll(base, " ", "_")
	}
	return base
}

func (p PathName) String() string {
	return string(p)
}

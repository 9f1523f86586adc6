package exporter

import (
	"bufio"
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// Converter runs external tool (usually OgreXMLConverter) on written xml files
type Converter struct {
	args []string
}

// NewConverter parses command template. Arguments containing %s get the
// file path substituted, otherwise the path is appended as last argument.
func NewConverter(template string) (*Converter, error) {
	args, err := shellwords.Parse(template)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot parse converter command %q", template)
	}
	if len(args) == 0 {
		return nil, errors.Errorf("Empty converter command")
	}
	return &Converter{args: args}, nil
}

func (c *Converter) commandLine(path string) []string {
	args := make([]string, 0, len(c.args)+1)
	substituted := false
	for _, a := range c.args {
		if strings.Contains(a, "%s") {
			a = strings.ReplaceAll(a, "%s", path)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, path)
	}
	return args
}

func quoteArgs(args []string) string {
	q := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		q[i] = a
	}
	return strings.Join(q, " ")
}

// Run converts file and copies converter output into log
func (c *Converter) Run(path string, log Logger) {
	args := c.commandLine(path)
	log.Info("Running OgreXMLConverter: %s", quoteArgs(args))

	out, err := exec.Command(args[0], args[1:]...).CombinedOutput()
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		log.Info("OgreXMLConverter: %s", scanner.Text())
	}
	if err != nil {
		log.Error("Could not run OgreXMLConverter! (%v)", err)
	}
}

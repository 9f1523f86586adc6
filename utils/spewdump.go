package utils

import (
	"io"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.SortKeys = true
	// bones reference parents and children, keep output finite
	spewConfig.MaxDepth = 6
}

func DumpTo(w io.Writer, a ...interface{}) {
	spewConfig.Fdump(w, a...)
}

package utils

import (
	"math/rand"

	"github.com/Pallinder/go-randomdata"
)

// RandomNameGenerator names unnamed scene entities. Names registered with
// Reserve and names already handed out are never returned again.
type RandomNameGenerator map[string]struct{}

func (rng *RandomNameGenerator) init() {
	if *rng == nil {
		*rng = make(map[string]struct{})
		// same scene must produce same file names on every export
		randomdata.CustomRand(rand.New(rand.NewSource(0)))
	}
}

func (rng *RandomNameGenerator) Reserve(name string) {
	rng.init()
	(*rng)[name] = struct{}{}
}

func (rng *RandomNameGenerator) RandomName(prefix string) string {
	rng.init()
	for {
		name := randomdata.SillyName()
		if prefix != "" {
			name = prefix + "_" + name
		}
		// avoid duplicate names
		if _, exists := (*rng)[name]; !exists {
			(*rng)[name] = struct{}{}
			return name
		}
	}
}

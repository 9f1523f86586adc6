package scene

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const (
	InterpolationConstant = "CONSTANT"
	InterpolationLinear   = "LINEAR"
	InterpolationBezier   = "BEZIER"
)

// Action holds per bone channels of curves
type Action struct {
	Name     string     `yaml:"name"`
	Channels []*Channel `yaml:"channels"`
}

type Channel struct {
	Bone   string   `yaml:"bone"`
	Curves []*Curve `yaml:"curves"`
}

// Curve name is one of LocX, LocY, LocZ, QuatX..QuatW, SizeX..SizeZ.
// Name may be empty, then the channel mapping is guessed from curve count.
type Curve struct {
	Name          string      `yaml:"name,omitempty"`
	Interpolation string      `yaml:"interpolation,omitempty"`
	Points        []*BezPoint `yaml:"points"`
}

type BezPoint struct {
	Frame float64     `yaml:"frame"`
	Value float64     `yaml:"value"`
	Left  *mgl64.Vec2 `yaml:"left,flow,omitempty"`
	Right *mgl64.Vec2 `yaml:"right,flow,omitempty"`
}

func (a *Action) Channel(bone string) *Channel {
	for _, c := range a.Channels {
		if c.Bone == bone {
			return c
		}
	}
	return nil
}

// KeyFrameRange returns first and last authored frame, 1..1 when there are no points
func (a *Action) KeyFrameRange() (first, last int) {
	found := false
	for _, ch := range a.Channels {
		for _, c := range ch.Curves {
			for _, p := range c.Points {
				f := int(p.Frame)
				if !found || f < first {
					first = f
				}
				if !found || f > last {
					last = f
				}
				found = true
			}
		}
	}
	if !found {
		return 1, 1
	}
	return first, last
}

// HasValidChannel reports whether any of bones has a channel with curves
func (a *Action) HasValidChannel(bones []string) bool {
	for _, b := range bones {
		if ch := a.Channel(b); ch != nil && len(ch.Curves) > 0 {
			return true
		}
	}
	return false
}

func (a *Action) validate() error {
	for _, ch := range a.Channels {
		for _, c := range ch.Curves {
			switch c.Interpolation {
			case "":
				c.Interpolation = InterpolationBezier
			case InterpolationConstant, InterpolationLinear, InterpolationBezier:
			default:
				return errors.Errorf("Action %q bone %q: unknown interpolation %q", a.Name, ch.Bone, c.Interpolation)
			}
			sort.SliceStable(c.Points, func(i, j int) bool { return c.Points[i].Frame < c.Points[j].Frame })
		}
	}
	return nil
}

func (c *Curve) handles(i int) (left, right mgl64.Vec2) {
	p := c.Points[i]
	at := mgl64.Vec2{p.Frame, p.Value}

	// auto handles: tangent through the neighbours, flat at the ends
	slope := 0.0
	if i > 0 && i < len(c.Points)-1 {
		prev, next := c.Points[i-1], c.Points[i+1]
		if dx := next.Frame - prev.Frame; dx != 0 {
			slope = (next.Value - prev.Value) / dx
		}
	}
	if p.Left != nil {
		left = *p.Left
	} else if i > 0 {
		dx := (p.Frame - c.Points[i-1].Frame) / 3
		left = at.Sub(mgl64.Vec2{dx, slope * dx})
	} else {
		left = at
	}
	if p.Right != nil {
		right = *p.Right
	} else if i < len(c.Points)-1 {
		dx := (c.Points[i+1].Frame - p.Frame) / 3
		right = at.Add(mgl64.Vec2{dx, slope * dx})
	} else {
		right = at
	}
	return left, right
}

func bezier(p0, p1, p2, p3, t float64) float64 {
	it := 1 - t
	return it*it*it*p0 + 3*it*it*t*p1 + 3*it*t*t*p2 + t*t*t*p3
}

// Evaluate returns curve value at frame
func (c *Curve) Evaluate(frame float64) float64 {
	n := len(c.Points)
	if n == 0 {
		return 0
	}
	if frame <= c.Points[0].Frame {
		return c.Points[0].Value
	}
	if frame >= c.Points[n-1].Frame {
		return c.Points[n-1].Value
	}
	i := sort.Search(n, func(i int) bool { return c.Points[i].Frame > frame }) - 1
	a, b := c.Points[i], c.Points[i+1]
	dx := b.Frame - a.Frame
	if dx <= 0 {
		return b.Value
	}

	switch c.Interpolation {
	case InterpolationConstant:
		return a.Value
	case InterpolationLinear:
		return a.Value + (b.Value-a.Value)*(frame-a.Frame)/dx
	}

	_, h1 := c.handles(i)
	h2, _ := c.handles(i + 1)
	// keep x monotonic inside the segment
	h1[0] = math.Min(math.Max(h1[0], a.Frame), b.Frame)
	h2[0] = math.Min(math.Max(h2[0], a.Frame), b.Frame)

	lo, hi := 0.0, 1.0
	t := (frame - a.Frame) / dx
	for iter := 0; iter < 64; iter++ {
		x := bezier(a.Frame, h1[0], h2[0], b.Frame, t)
		if math.Abs(x-frame) < 1e-9 {
			break
		}
		if x < frame {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return bezier(a.Value, h1[1], h2[1], b.Value, t)
}

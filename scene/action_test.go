package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func curve(interpolation string, points ...*BezPoint) *Curve {
	c := &Curve{Interpolation: interpolation, Points: points}
	return c
}

func TestCurveEvaluateExtrapolatesConstant(t *testing.T) {
	c := curve(InterpolationLinear, &BezPoint{Frame: 1, Value: 2}, &BezPoint{Frame: 5, Value: 6})
	assert.Equal(t, 2.0, c.Evaluate(-10))
	assert.Equal(t, 6.0, c.Evaluate(100))
	assert.Equal(t, 0.0, curve(InterpolationLinear).Evaluate(3))
}

func TestCurveEvaluateModes(t *testing.T) {
	points := []*BezPoint{{Frame: 0, Value: 0}, {Frame: 10, Value: 10}}

	assert.Equal(t, 0.0, curve(InterpolationConstant, points...).Evaluate(9))
	assert.InDelta(t, 2.5, curve(InterpolationLinear, points...).Evaluate(2.5), 1e-12)

	// handles on the straight line make bezier linear
	lin := curve(InterpolationBezier,
		&BezPoint{Frame: 0, Value: 0, Right: &mgl64.Vec2{10.0 / 3, 10.0 / 3}},
		&BezPoint{Frame: 10, Value: 10, Left: &mgl64.Vec2{20.0 / 3, 20.0 / 3}})
	for _, f := range []float64{1, 2.5, 5, 7.75} {
		assert.InDelta(t, f, lin.Evaluate(f), 1e-6)
	}

	// flat auto handles at the ends give an ease in/out
	ease := curve(InterpolationBezier, points...)
	assert.InDelta(t, 5, ease.Evaluate(5), 1e-6)
	assert.Less(t, ease.Evaluate(1), 1.0)
	assert.Greater(t, ease.Evaluate(9), 9.0)
}

func TestCurveEvaluateClampsHandles(t *testing.T) {
	// handles far outside the segment must not break monotonic x
	c := curve(InterpolationBezier,
		&BezPoint{Frame: 0, Value: 0, Right: &mgl64.Vec2{50, 0}},
		&BezPoint{Frame: 10, Value: 1, Left: &mgl64.Vec2{-50, 1}})
	prev := c.Evaluate(0)
	for f := 0.5; f <= 10; f += 0.5 {
		v := c.Evaluate(f)
		assert.GreaterOrEqual(t, v, prev-1e-9)
		prev = v
	}
}

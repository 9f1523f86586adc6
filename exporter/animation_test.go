package exporter

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/ogre_xml_exporter/ogre"
	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/status"
)

func linearCurve(name string, points ...float64) *scene.Curve {
	c := &scene.Curve{Name: name, Interpolation: scene.InterpolationLinear}
	for i := 0; i+1 < len(points); i += 2 {
		c.Points = append(c.Points, &scene.BezPoint{Frame: points[i], Value: points[i+1]})
	}
	return c
}

func testAnimSkeleton(t *testing.T) *ogre.Skeleton {
	sk := ogre.NewSkeleton("Rig")
	root, err := sk.AddBone(nil, "root", mgl64.Vec3{}, mgl64.QuatIdent(), mgl64.Ident4())
	require.NoError(t, err)
	_, err = sk.AddBone(root, "arm", mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent(), mgl64.Translate3D(0, 0, 5))
	require.NoError(t, err)
	return sk
}

func TestConvertAnimationTwoKeyFrames(t *testing.T) {
	sk := testAnimSkeleton(t)
	action := &scene.Action{Name: "Walk", Channels: []*scene.Channel{
		{Bone: "root", Curves: []*scene.Curve{linearCurve("LocX", 1, 0, 10, 1)}},
	}}
	log := status.NewLogger()
	anim := ConvertAnimation(sk, AnimationRange{Name: "Walk", Action: action, Start: 1, End: 10}, 25, log)
	require.NotNil(t, anim)
	assert.Equal(t, status.INFO, log.Status())

	require.Len(t, anim.Tracks, 1)
	kf := anim.Tracks[0].KeyFrames
	require.Len(t, kf, 2)
	assert.InDelta(t, 0, kf[0].Time, 1e-9)
	assert.InDelta(t, 0.36, kf[1].Time, 1e-9)
	assert.InDelta(t, 0.36, anim.Duration, 1e-9)

	assertVec3(t, mgl64.Vec3{0, 0, 0}, kf[0].Loc)
	assertVec3(t, mgl64.Vec3{1, 0, 0}, kf[1].Loc)
	assertIdentityQuat(t, kf[1].Rot)
	assertVec3(t, mgl64.Vec3{1, 1, 1}, kf[1].Scale)
}

func TestConvertAnimationWindowAndDirection(t *testing.T) {
	sk := testAnimSkeleton(t)
	action := &scene.Action{Name: "Wave", Channels: []*scene.Channel{
		{Bone: "arm", Curves: []*scene.Curve{
			linearCurve("LocY", 0, 0, 5, 5, 20, 20),
			linearCurve("SizeZ", 3, 2),
		}},
	}}
	log := status.NewLogger()
	anim := ConvertAnimation(sk, AnimationRange{Name: "Back", Action: action, Start: 10, End: 1}, 10, log)
	require.NotNil(t, anim)

	kf := anim.Tracks[0].KeyFrames
	times := make([]float64, len(kf))
	for i, k := range kf {
		times[i] = k.Time
	}
	// frames 10, 5, 3, 1 played backwards
	assert.InDeltaSlice(t, []float64{0, 0.5, 0.7, 0.9}, times, 1e-9)
	assert.InDelta(t, 0.9, anim.Duration, 1e-9)

	// location goes through bone conversion
	assertVec3(t, mgl64.Vec3{0, 10, 5}, kf[0].Loc)
	assertVec3(t, mgl64.Vec3{0, 1, 5}, kf[3].Loc)
	assert.InDelta(t, 2, kf[2].Scale[2], 1e-9)
	assert.InDelta(t, 1, kf[2].Scale[0], 1e-9)
}

func TestFrameTime(t *testing.T) {
	for _, test := range []struct {
		frame, start, end int
		time              float64
	}{
		{1, 1, 10, 0},
		{10, 1, 10, 0.9},
		{10, 10, 1, 0},
		{1, 10, 1, 0.9},
		{7, 10, 1, 0.3},
		{5, 5, 5, 0},
	} {
		assert.InDelta(t, test.time, frameTime(test.frame, test.start, test.end, 10), 1e-9,
			"frame %d of %d..%d", test.frame, test.start, test.end)
	}
}

func TestConvertAnimationQuaternion(t *testing.T) {
	sk := testAnimSkeleton(t)
	action := &scene.Action{Name: "Turn", Channels: []*scene.Channel{
		{Bone: "root", Curves: []*scene.Curve{
			linearCurve("QuatW", 1, 2, 2, 0),
			linearCurve("QuatX", 1, 0, 2, 0),
			linearCurve("QuatY", 1, 0, 2, 0),
			linearCurve("QuatZ", 1, 0, 2, 3),
		}},
	}}
	log := status.NewLogger()
	anim := ConvertAnimation(sk, AnimationRange{Name: "Turn", Action: action, Start: 1, End: 2}, 25, log)
	kf := anim.Tracks[0].KeyFrames
	require.Len(t, kf, 2)
	assertIdentityQuat(t, kf[0].Rot)
	assert.InDelta(t, 1, kf[1].Rot.V[2], 1e-9)
	assert.InDelta(t, 0, kf[1].Rot.W, 1e-9)
	assertVec3(t, mgl64.Vec3{}, kf[1].Loc)
}

func TestConvertAnimationZeroQuaternion(t *testing.T) {
	sk := testAnimSkeleton(t)
	curves := []*scene.Curve{}
	for _, n := range []string{"QuatW", "QuatX", "QuatY", "QuatZ"} {
		curves = append(curves, linearCurve(n, 1, 0))
	}
	action := &scene.Action{Name: "Zero", Channels: []*scene.Channel{{Bone: "root", Curves: curves}}}
	log := status.NewLogger()
	anim := ConvertAnimation(sk, AnimationRange{Name: "Zero", Action: action, Start: 1, End: 1}, 25, log)
	assertIdentityQuat(t, anim.Tracks[0].KeyFrames[0].Rot)
	assert.Equal(t, status.WARNING, log.Status())
}

func TestCurveIndicesGuess(t *testing.T) {
	unnamed := func(n int) []*scene.Curve {
		res := make([]*scene.Curve, n)
		for i := range res {
			res[i] = linearCurve("", 1, 0)
		}
		return res
	}

	for _, test := range []struct {
		count    int
		expected map[string]int
		status   int
	}{
		{4, map[string]int{"QuatX": 0, "QuatY": 1, "QuatZ": 2, "QuatW": 3}, status.WARNING},
		{7, map[string]int{"LocX": 0, "LocY": 1, "LocZ": 2, "QuatX": 3, "QuatY": 4, "QuatZ": 5, "QuatW": 6}, status.WARNING},
		{10, map[string]int{"LocX": 0, "LocY": 1, "LocZ": 2, "SizeX": 3, "SizeY": 4, "SizeZ": 5,
			"QuatX": 6, "QuatY": 7, "QuatZ": 8, "QuatW": 9}, status.WARNING},
		{5, map[string]int{}, status.ERROR},
	} {
		log := status.NewLogger()
		assert.Equal(t, test.expected, curveIndices(unnamed(test.count), log), "count %d", test.count)
		assert.Equal(t, test.status, log.Status(), "count %d", test.count)
	}

	log := status.NewLogger()
	ids := curveIndices([]*scene.Curve{linearCurve("SizeX"), linearCurve("LocZ"), linearCurve("RotX")}, log)
	assert.Equal(t, map[string]int{"SizeX": 0, "LocZ": 1, "QuatX": 2, "QuatY": 3, "QuatZ": 4, "QuatW": 5}, ids)
	assert.Equal(t, status.INFO, log.Status())
}

func TestConvertAnimationErrors(t *testing.T) {
	sk := testAnimSkeleton(t)
	action := &scene.Action{Name: "Walk", Channels: []*scene.Channel{
		{Bone: "root", Curves: []*scene.Curve{linearCurve("LocX", 1, 0)}},
		{Bone: "tail", Curves: []*scene.Curve{linearCurve("LocX", 1, 0)}},
		{Bone: "root", Curves: []*scene.Curve{linearCurve("LocY", 1, 0)}},
	}}
	log := status.NewLogger()
	r := AnimationRange{Name: "Walk", Action: action, Start: 1, End: 1}
	anim := ConvertAnimation(sk, r, 25, log)
	require.NotNil(t, anim)
	assert.Len(t, anim.Tracks, 1)
	assert.True(t, hasMessage(log, status.WARNING, `Unused action channel "tail" in action "Walk" for skeleton "Rig".`))
	assert.True(t, hasMessage(log, status.ERROR, `Ambiguous bone name "root", track already exists.`))

	assert.Nil(t, ConvertAnimation(sk, r, 25, log))
	assert.True(t, hasMessage(log, status.ERROR, `Ambiguous animation name "Walk".`))
	assert.Len(t, sk.Animations, 1)

	log = status.NewLogger()
	ConvertAnimations(sk, []AnimationRange{{Name: "Other", Action: action, Start: 1, End: 1}}, 0, log)
	assert.Equal(t, status.ERROR, log.Status())
	assert.Nil(t, sk.Animation("Other"))
}

func TestAnimationRanges(t *testing.T) {
	sc, err := scene.Decode(strings.NewReader(`
objects:
  - name: Rig
    type: Armature
    action: Idle
    armature:
      name: RigData
      bones:
        - {name: root, head: [0, 0, 0], tail: [0, 1, 0]}
  - name: Rig2
    type: Armature
    armature:
      name: RigData2
      bones:
        - {name: root, head: [0, 0, 0], tail: [0, 1, 0]}
    animations:
      - {name: Start, action: Idle, start: 1, end: 5}
      - {name: Missing, action: Nope, start: 1, end: 5}
actions:
  - name: Idle
    channels:
      - bone: root
        curves:
          - {name: LocX, points: [{frame: 3, value: 0}, {frame: 12, value: 1}]}
`))
	require.NoError(t, err)
	sk := testAnimSkeleton(t)
	log := status.NewLogger()

	ranges := animationRanges(sc, sc.Object("Rig"), sk, log)
	require.Len(t, ranges, 1)
	assert.Equal(t, AnimationRange{Name: "Idle", Action: sc.Action("Idle"), Start: 3, End: 12}, ranges[0])

	ranges = animationRanges(sc, sc.Object("Rig2"), sk, log)
	require.Len(t, ranges, 1)
	assert.Equal(t, "Start", ranges[0].Name)
	assert.True(t, hasMessage(log, status.ERROR, `Unknown action "Nope" for animation "Missing".`))

	// linked action without channels of skeleton bones is not exported
	other := ogre.NewSkeleton("Other")
	assert.Empty(t, animationRanges(sc, sc.Object("Rig"), other, log))
}

package exporter

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/ogre_xml_exporter/ogre"
	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/utils"
)

// AnimationRange is a frame window of action exported as one animation
type AnimationRange struct {
	Name       string
	Action     *scene.Action
	Start, End int
}

var curveNames = map[string]bool{
	"LocX": true, "LocY": true, "LocZ": true,
	"QuatX": true, "QuatY": true, "QuatZ": true, "QuatW": true,
	"SizeX": true, "SizeY": true, "SizeZ": true,
}

// curveIndices maps channel names to curve indices. Curves without name are
// guessed from curve count: 4 quaternion, 7 location and quaternion, 10 location,
// scale and quaternion.
func curveIndices(curves []*scene.Curve, log Logger) map[string]int {
	ids := make(map[string]int)
	index := 0
	haveQuat := false
	guessed := false
	for _, c := range curves {
		switch {
		case c.Name == "":
			if haveQuat || guessed {
				continue
			}
			guessed = true
			n := len(curves)
			if n != 4 && n != 7 && n != 10 {
				log.Error("IpoCurve.getName() not available!")
				log.Error("Could not guess the IpoCurve names. Other Blender versions may work.")
				continue
			}
			log.Warning("IpoCurve.getName() not available!")
			log.Warning("The exporter tries to guess the IpoCurve names.")
			if n >= 7 {
				for _, name := range []string{"LocX", "LocY", "LocZ"} {
					ids[name] = index
					index++
				}
			}
			if n == 10 {
				for _, name := range []string{"SizeX", "SizeY", "SizeZ"} {
					ids[name] = index
					index++
				}
			}
			for _, name := range []string{"QuatX", "QuatY", "QuatZ", "QuatW"} {
				ids[name] = index
				index++
			}
			haveQuat = true
		case curveNames[c.Name]:
			ids[c.Name] = index
			index++
		default:
			// unknown name takes place of quaternion curves
			if !haveQuat {
				for _, name := range []string{"QuatX", "QuatY", "QuatZ", "QuatW"} {
					ids[name] = index
					index++
				}
				haveQuat = true
			}
		}
	}
	return ids
}

type channelSampler struct {
	curves []*scene.Curve
	ids    map[string]int
}

func (s *channelSampler) curve(name string) *scene.Curve {
	i, ok := s.ids[name]
	if !ok || i >= len(s.curves) {
		return nil
	}
	return s.curves[i]
}

func (s *channelSampler) has(names ...string) bool {
	for _, n := range names {
		if s.curve(n) == nil {
			return false
		}
	}
	return true
}

func (s *channelSampler) value(name string, frame float64, def float64) float64 {
	if c := s.curve(name); c != nil {
		return c.Evaluate(frame)
	}
	return def
}

// keyFrames returns frames with authored points in window, window ends included
func keyFrames(curves []*scene.Curve, start, end int) []int {
	lo, hi := start, end
	if lo > hi {
		lo, hi = hi, lo
	}
	set := map[int]struct{}{start: {}, end: {}}
	for _, c := range curves {
		for _, p := range c.Points {
			set[int(p.Frame)] = struct{}{}
		}
	}
	frames := make([]int, 0, len(set))
	for f := range set {
		if f >= lo && f <= hi {
			frames = append(frames, f)
		}
	}
	sort.Ints(frames)
	return frames
}

// frameTime is seconds from start frame, also for backward playback.
// Backward ranges (start > end) count down from start, so the start frame
// plays at 0 and times stay non-negative. Counting from end would put every
// keyframe of such range at a negative time.
func frameTime(frame, start, end int, fps float64) float64 {
	if start <= end {
		return float64(frame-start) / fps
	}
	return float64(start-frame) / fps
}

func convertTrack(track *ogre.Track, ch *scene.Channel, r AnimationRange, fps float64, log Logger) float64 {
	sampler := &channelSampler{curves: ch.Curves, ids: curveIndices(ch.Curves, log)}
	hasLoc := sampler.has("LocX") || sampler.has("LocY") || sampler.has("LocZ")
	hasQuat := sampler.has("QuatW", "QuatX", "QuatY", "QuatZ")

	duration := 0.0
	for _, frame := range keyFrames(ch.Curves, r.Start, r.End) {
		t := frameTime(frame, r.Start, r.End, fps)
		duration = math.Max(duration, t)
		f := float64(frame)

		var loc mgl64.Vec3
		if hasLoc {
			loc = mgl64.Vec3{
				sampler.value("LocX", f, 0),
				sampler.value("LocY", f, 0),
				sampler.value("LocZ", f, 0),
			}
			loc = utils.PointByMatrix(loc, track.Bone.Conversion)
		}

		rot := mgl64.QuatIdent()
		if hasQuat {
			q := mgl64.Quat{
				W: sampler.value("QuatW", f, 1),
				V: mgl64.Vec3{
					sampler.value("QuatX", f, 0),
					sampler.value("QuatY", f, 0),
					sampler.value("QuatZ", f, 0),
				},
			}
			if l := q.Len(); l > ogre.Accuracy {
				rot = q.Scale(1 / l)
			} else {
				log.Warning("Zero quaternion in track \"%s\" at frame %d, identity used.", track.Bone.Name, frame)
			}
		}

		scale := mgl64.Vec3{
			sampler.value("SizeX", f, 1),
			sampler.value("SizeY", f, 1),
			sampler.value("SizeZ", f, 1),
		}
		track.AddKeyFrame(t, loc, rot, scale)
	}
	track.SortKeyFrames()
	return duration
}

// ConvertAnimation adds animation of range to skeleton. Name collisions,
// duplicate tracks and bones missing in skeleton are logged and skipped.
func ConvertAnimation(sk *ogre.Skeleton, r AnimationRange, fps float64, log Logger) *ogre.Animation {
	anim, err := sk.AddAnimation(r.Name)
	if err != nil {
		log.Error("Ambiguous animation name \"%s\".", r.Name)
		return nil
	}
	for _, ch := range r.Action.Channels {
		bone := sk.Bone(ch.Bone)
		if bone == nil {
			log.Warning("Unused action channel \"%s\" in action \"%s\" for skeleton \"%s\".", ch.Bone, r.Action.Name, sk.Name)
			continue
		}
		track, err := anim.AddTrack(bone)
		if err != nil {
			log.Error("Ambiguous bone name \"%s\", track already exists.", ch.Bone)
			continue
		}
		anim.Duration = math.Max(anim.Duration, convertTrack(track, ch, r, fps, log))
	}
	return anim
}

// animationRanges resolves export ranges of armature object. Without
// ranges the linked action is exported over its keyframe range.
func animationRanges(sc *scene.Scene, armObj *scene.Object, sk *ogre.Skeleton, log Logger) []AnimationRange {
	ranges := make([]AnimationRange, 0, len(armObj.Animations))
	if len(armObj.Animations) == 0 {
		if armObj.Action == "" {
			return ranges
		}
		action := sc.Action(armObj.Action)
		if action == nil {
			log.Error("Unknown action \"%s\" linked to object \"%s\".", armObj.Action, armObj.Name)
			return ranges
		}
		if !action.HasValidChannel(sk.BoneNames()) {
			return ranges
		}
		start, end := action.KeyFrameRange()
		return append(ranges, AnimationRange{Name: action.Name, Action: action, Start: start, End: end})
	}
	for _, er := range armObj.Animations {
		// unnamed range is exported under its action name
		name := er.Name
		if name == "" {
			name = er.Action
		}
		action := sc.Action(er.Action)
		if action == nil {
			log.Error("Unknown action \"%s\" for animation \"%s\".", er.Action, name)
			continue
		}
		ranges = append(ranges, AnimationRange{Name: name, Action: action, Start: er.Start, End: er.End})
	}
	return ranges
}

// ConvertAnimations converts every range, fps must be positive
func ConvertAnimations(sk *ogre.Skeleton, ranges []AnimationRange, fps float64, log Logger) {
	if len(ranges) == 0 {
		return
	}
	if fps <= 0 {
		log.Error("Invalid frame rate %v, animations of skeleton \"%s\" skipped.", fps, sk.Name)
		return
	}
	for _, r := range ranges {
		ConvertAnimation(sk, r, fps, log)
	}
}

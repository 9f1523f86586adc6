package ogre

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

type Bone struct {
	ID       int
	Name     string
	Parent   *Bone
	Children []*Bone
	// offset from parent bone
	Loc mgl64.Vec3
	Rot mgl64.Quat
	// converts source local bone coordinates into ogre local bone coordinates
	Conversion mgl64.Mat4
}

// IsAncestorOf reports whether b is strict ancestor of other
func (b *Bone) IsAncestorOf(other *Bone) bool {
	for p := other.Parent; p != nil; p = p.Parent {
		if p == b {
			return true
		}
	}
	return false
}

type Skeleton struct {
	Name       string
	Bones      []*Bone
	Animations []*Animation

	bones      map[string]*Bone
	animations map[string]*Animation
}

func NewSkeleton(name string) *Skeleton {
	return &Skeleton{
		Name:       name,
		Bones:      make([]*Bone, 0),
		Animations: make([]*Animation, 0),
		bones:      make(map[string]*Bone),
		animations: make(map[string]*Animation),
	}
}

// AddBone appends bone with id equal to its index in bone list
func (s *Skeleton) AddBone(parent *Bone, name string, loc mgl64.Vec3, rot mgl64.Quat, conversion mgl64.Mat4) (*Bone, error) {
	if _, ok := s.bones[name]; ok {
		return nil, errors.Errorf("Ambiguous bone name %q", name)
	}
	b := &Bone{
		ID:         len(s.Bones),
		Name:       name,
		Parent:     parent,
		Loc:        loc,
		Rot:        rot,
		Conversion: conversion,
	}
	if parent != nil {
		parent.Children = append(parent.Children, b)
	}
	s.Bones = append(s.Bones, b)
	s.bones[name] = b
	return b, nil
}

func (s *Skeleton) Bone(name string) *Bone {
	return s.bones[name]
}

func (s *Skeleton) BoneNames() []string {
	names := make([]string, len(s.Bones))
	for i, b := range s.Bones {
		names[i] = b.Name
	}
	return names
}

func (s *Skeleton) AddAnimation(name string) (*Animation, error) {
	if _, ok := s.animations[name]; ok {
		return nil, errors.Errorf("Ambiguous animation name %q", name)
	}
	a := &Animation{
		Name:   name,
		Tracks: make([]*Track, 0),
		tracks: make(map[string]*Track),
	}
	s.Animations = append(s.Animations, a)
	s.animations[name] = a
	return a, nil
}

func (s *Skeleton) Animation(name string) *Animation {
	return s.animations[name]
}

type Animation struct {
	Name string
	// seconds, maximum keyframe time
	Duration float64
	Tracks   []*Track

	tracks map[string]*Track
}

func (a *Animation) AddTrack(bone *Bone) (*Track, error) {
	if _, ok := a.tracks[bone.Name]; ok {
		return nil, errors.Errorf("Ambiguous bone name %q, track already exists", bone.Name)
	}
	t := &Track{Bone: bone, KeyFrames: make([]*KeyFrame, 0)}
	a.Tracks = append(a.Tracks, t)
	a.tracks[bone.Name] = t
	return t, nil
}

func (a *Animation) Track(bone string) *Track {
	return a.tracks[bone]
}

type Track struct {
	Bone      *Bone
	KeyFrames []*KeyFrame
}

type KeyFrame struct {
	Time  float64
	Loc   mgl64.Vec3
	Rot   mgl64.Quat
	Scale mgl64.Vec3
}

func (t *Track) AddKeyFrame(time float64, loc mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) *KeyFrame {
	k := &KeyFrame{Time: time, Loc: loc, Rot: rot, Scale: scale}
	t.KeyFrames = append(t.KeyFrames, k)
	return k
}

func (t *Track) SortKeyFrames() {
	sort.SliceStable(t.KeyFrames, func(i, j int) bool { return t.KeyFrames[i].Time < t.KeyFrames[j].Time })
}

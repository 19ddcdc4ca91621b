// Package animation discovers every animation of a skeleton by matching
// track names across the whole document.
package animation

import (
	"slices"
	"time"

	"eq-wld-decoder/internal/skeleton"
	"eq-wld-decoder/internal/wld"
)

const (
	// RestName names the animation whose tracks carry no prefix.
	RestName = "REST"
	// DefaultDelay is the frame delay of tracks without a sleep value.
	DefaultDelay = 100 * time.Millisecond
)

// Keyframe is one frame of a bone track.
type Keyframe struct {
	Time time.Duration
	skeleton.Transform
}

// BoneTrack is the keyframe data of one bone in one animation. Frames is
// shared with every other BoneTrack whose Track points at the same TrackDef.
type BoneTrack struct {
	Bone     int
	Track    int // Track fragment index, 0 for a rest pose given as a bare TrackDef
	TrackDef int
	Delay    time.Duration
	Frames   []skeleton.Transform
}

// Duration is the frame count times the frame delay.
func (t *BoneTrack) Duration() time.Duration {
	return time.Duration(len(t.Frames)) * t.Delay
}

// Keyframes returns the frames with frame i at i * Delay.
func (t *BoneTrack) Keyframes() []Keyframe {
	out := make([]Keyframe, len(t.Frames))
	for i, f := range t.Frames {
		out[i] = Keyframe{Time: time.Duration(i) * t.Delay, Transform: f}
	}
	return out
}

// Sample returns the frame shown at time at. Times past the last frame hold
// the last frame.
func (t *BoneTrack) Sample(at time.Duration) skeleton.Transform {
	if len(t.Frames) == 0 {
		return skeleton.Identity
	}
	i := 0
	if at > 0 && t.Delay > 0 {
		i = int(at / t.Delay)
	}
	return t.Frames[min(i, len(t.Frames)-1)]
}

// Animation is one named animation of a skeleton. Bones without a track
// for it are absent from Bones.
type Animation struct {
	Name     string
	Duration time.Duration
	Bones    map[int]*BoneTrack
}

// Set is every animation discovered for one skeleton.
type Set struct {
	Skeleton   *skeleton.Skeleton
	Animations map[string]*Animation
	Warnings   []*wld.Warning
}

// Get returns the animation called name.
func (s *Set) Get(name string) (*Animation, bool) {
	a, ok := s.Animations[name]
	return a, ok
}

// Names returns the animation names, RestName first and the rest sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Animations))
	for name := range s.Animations {
		if name != RestName {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	if _, ok := s.Animations[RestName]; ok {
		names = slices.Insert(names, 0, RestName)
	}
	return names
}

type options struct {
	matcher Matcher
	delay   time.Duration
}

// Option configures Synthesize.
type Option func(*options)

// WithMatcher replaces SuffixMatcher.
func WithMatcher(m Matcher) Option {
	return func(o *options) { o.matcher = m }
}

// WithDefaultDelay replaces DefaultDelay.
func WithDefaultDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

type candidate struct {
	index int
	name  string
	track *wld.Track
}

type synth struct {
	d      *wld.Document
	o      options
	set    *Set
	frames map[int][]skeleton.Transform
}

// Synthesize builds every animation of sk. It fails with
// ErrBrokenReference when a bone's rest track cannot be named.
func Synthesize(d *wld.Document, sk *skeleton.Skeleton, opts ...Option) (*Set, error) {
	o := options{matcher: SuffixMatcher{}, delay: DefaultDelay}
	for _, opt := range opts {
		opt(&o)
	}
	for _, b := range sk.Bones {
		if b.RestName == "" || b.RestDef == 0 {
			return nil, d.Errorf(sk.Index, wld.ErrBrokenReference, "bone %d (%s) has no named rest track", b.Index, b.Name)
		}
	}

	s := &synth{
		d:      d,
		o:      o,
		set:    &Set{Skeleton: sk, Animations: make(map[string]*Animation)},
		frames: make(map[int][]skeleton.Transform),
	}

	candidates := s.candidates()
	matches := make(map[string][]int)
	for _, b := range sk.Bones {
		if _, done := matches[b.RestName]; done {
			continue
		}
		found := []int{}
		for k, c := range candidates {
			if _, ok := o.matcher.Match(c.name, b.RestName); ok {
				found = append(found, k)
			}
		}
		matches[b.RestName] = found
	}

	for _, b := range sk.Bones {
		if b.RestTrack == 0 {
			s.add(RestName, &BoneTrack{Bone: b.Index, TrackDef: b.RestDef, Delay: o.delay, Frames: s.decode(b.RestDef)})
		}
		for _, k := range matches[b.RestName] {
			c := candidates[k]
			prefix, _ := o.matcher.Match(c.name, b.RestName)
			if prefix == "" {
				prefix = RestName
			}
			_, def, err := wld.ResolveIndex(d, c.track.Def)
			if err != nil {
				s.warn(c.index, "track definition: %v", err)
				continue
			}
			delay := o.delay
			if c.track.Sleep != nil && *c.track.Sleep > 0 {
				delay = time.Duration(*c.track.Sleep) * time.Millisecond
			}
			s.add(prefix, &BoneTrack{Bone: b.Index, Track: c.index, TrackDef: def, Delay: delay, Frames: s.decode(def)})
		}
	}
	return s.set, nil
}

// candidates scans every Track of the document once. Unnamed tracks are
// known by their TrackDef's name.
func (s *synth) candidates() []candidate {
	var out []candidate
	for i, t := range wld.All[*wld.Track](s.d) {
		name := s.d.Name(i)
		if name == "" {
			if _, def, err := wld.ResolveIndex(s.d, t.Def); err == nil {
				name = s.d.Name(def)
			}
		}
		if name != "" {
			out = append(out, candidate{index: i, name: name, track: t})
		}
	}
	return out
}

// decode decodes TrackDef def once per Synthesize call.
func (s *synth) decode(def int) []skeleton.Transform {
	if f, ok := s.frames[def]; ok {
		return f
	}
	td, _ := wld.At[*wld.TrackDef](s.d, def)
	f := skeleton.Frames(td)
	s.frames[def] = f
	return f
}

func (s *synth) add(name string, t *BoneTrack) {
	a, ok := s.set.Animations[name]
	if !ok {
		a = &Animation{Name: name, Bones: make(map[int]*BoneTrack)}
		s.set.Animations[name] = a
	}
	if prev, ok := a.Bones[t.Bone]; ok {
		if prev.TrackDef != t.TrackDef {
			s.warn(t.Track, "bone %d already has a %s track from fragment %d", t.Bone, name, prev.Track)
		}
		return
	}
	a.Bones[t.Bone] = t
	a.Duration = max(a.Duration, t.Duration())
}

func (s *synth) warn(index int, format string, args ...any) {
	s.set.Warnings = append(s.set.Warnings, s.d.Warnf(index, format, args...))
}

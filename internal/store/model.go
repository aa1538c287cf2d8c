// Package store keeps sprite and animation metadata.
package store

import (
	"fmt"
	"strings"

	"github.com/gogpu/spritekit"
)

// Category is the kind of movement an animation shows.
type Category string

// Categories, in processing order.
const (
	Idle   Category = "IDLE"
	Walk   Category = "WALK"
	Attack Category = "ATTACK"
)

// Categories returns every category in processing order.
func Categories() []Category {
	return []Category{Idle, Walk, Attack}
}

// ParseCategory matches s against the known categories, ignoring case.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", spritekit.ErrInvalidInput, s)
}

const (
	// DefaultFrameRate is the playback rate of a freshly imported animation.
	DefaultFrameRate = 8
	// DefaultScale is the display scale of a freshly imported sprite.
	DefaultScale = 1.0
)

// Hitbox is a collision rectangle in frame-local pixels.
type Hitbox struct {
	X      int `cbor:"x" json:"x"`
	Y      int `cbor:"y" json:"y"`
	Width  int `cbor:"width" json:"width"`
	Height int `cbor:"height" json:"height"`
}

// Validate rejects negative positions and empty rectangles.
func (h Hitbox) Validate() error {
	if h.X < 0 || h.Y < 0 || h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("%w: hitbox %dx%d at (%d,%d)", spritekit.ErrInvalidInput, h.Width, h.Height, h.X, h.Y)
	}
	return nil
}

// Animation describes one stored sheet: its slot in the sprite's storage
// layout and how to play it. FrameWidth and FrameHeight are per frame.
type Animation struct {
	ID          int64    `cbor:"id"`
	Category    Category `cbor:"category"`
	Index       int      `cbor:"index"`
	Frames      int      `cbor:"frames"`
	FrameWidth  int      `cbor:"frame_width"`
	FrameHeight int      `cbor:"frame_height"`
	FrameRate   int      `cbor:"frame_rate"`
	Hitbox      *Hitbox  `cbor:"hitbox,omitempty"`
}

// Sprite is a named character with its animations.
type Sprite struct {
	Name       string      `cbor:"name"`
	Scale      float64     `cbor:"scale"`
	Animations []Animation `cbor:"animations"`
}

func (s Sprite) clone() Sprite {
	out := s
	out.Animations = make([]Animation, len(s.Animations))
	for i, a := range s.Animations {
		if a.Hitbox != nil {
			h := *a.Hitbox
			a.Hitbox = &h
		}
		out.Animations[i] = a
	}
	return out
}

// Find returns the animation of category c with ordinal index.
func (s Sprite) Find(c Category, index int) (Animation, bool) {
	for _, a := range s.Animations {
		if a.Category == c && a.Index == index {
			return a, true
		}
	}
	return Animation{}, false
}

// First returns the lowest-indexed animation of category c.
func (s Sprite) First(c Category) (Animation, bool) {
	var best Animation
	found := false
	for _, a := range s.Animations {
		if a.Category != c {
			continue
		}
		if !found || a.Index < best.Index {
			best, found = a, true
		}
	}
	return best, found
}

package service

import (
	"time"

	"github.com/gogpu/spritekit/internal/storage"
	"github.com/gogpu/spritekit/internal/store"
)

// SpriteInfo is the flattened view of one animation of a sprite.
type SpriteInfo struct {
	AnimationID  int64          `json:"animationId"`
	Name         string         `json:"name"`
	Category     store.Category `json:"category,omitempty"`
	Index        int            `json:"index,omitempty"`
	ImageURL     string         `json:"imageUrl"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Frames       int            `json:"frames"`
	Scale        float64        `json:"scale"`
	FrameRate    int            `json:"frameRate"`
	HitboxX      *int           `json:"hitboxX"`
	HitboxY      *int           `json:"hitboxY"`
	HitboxWidth  *int           `json:"hitboxWidth"`
	HitboxHeight *int           `json:"hitboxHeight"`
}

func newInfo(sp store.Sprite, a store.Animation) SpriteInfo {
	info := SpriteInfo{
		AnimationID: a.ID,
		Name:        sp.Name,
		Category:    a.Category,
		Index:       a.Index,
		ImageURL:    storage.RelPath(sp.Name, string(a.Category), a.Index),
		Width:       a.FrameWidth,
		Height:      a.FrameHeight,
		Frames:      a.Frames,
		Scale:       sp.Scale,
		FrameRate:   a.FrameRate,
	}
	if h := a.Hitbox; h != nil {
		x, y, w, hh := h.X, h.Y, h.Width, h.Height
		info.HitboxX, info.HitboxY, info.HitboxWidth, info.HitboxHeight = &x, &y, &w, &hh
	}
	return info
}

// summaryInfo describes a sprite by its first idle animation, falling back to
// the first animation of the next category. A sprite without animations is
// described by name and scale only.
func summaryInfo(sp store.Sprite) SpriteInfo {
	for _, c := range store.Categories() {
		if a, ok := sp.First(c); ok {
			return newInfo(sp, a)
		}
	}
	return SpriteInfo{Name: sp.Name, Scale: sp.Scale}
}

// SpritePlay is the animation set a game client needs to play a sprite.
// Categories without animations are nil.
type SpritePlay struct {
	Idle   *SpriteInfo `json:"idle"`
	Walk   *SpriteInfo `json:"walk"`
	Attack *SpriteInfo `json:"attack"`
}

// Event types.
const (
	EventImported   = "sprite.imported"
	EventRenamed    = "sprite.renamed"
	EventDeleted    = "sprite.deleted"
	EventNormalized = "animation.normalized"
	EventFlipped    = "animation.flipped"
	EventUpdated    = "animation.updated"
)

// Event reports a change to stored sprites.
type Event struct {
	Type        string    `json:"type"`
	Sprite      string    `json:"sprite"`
	AnimationID int64     `json:"animationId,omitempty"`
	Time        time.Time `json:"time"`
}

// Publisher receives change events. Publish must not block.
type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

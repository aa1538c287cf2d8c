// Package service implements sprite operations on top of metadata, sheet
// storage, and the pixel algorithms.
package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/spritekit"
	"github.com/gogpu/spritekit/internal/optimize"
	"github.com/gogpu/spritekit/internal/storage"
	"github.com/gogpu/spritekit/internal/store"
)

// Metadata is the sprite metadata the service reads and updates.
// *store.FileStore implements it.
type Metadata interface {
	Create(sp store.Sprite) (store.Sprite, error)
	Get(name string) (store.Sprite, error)
	List() []store.Sprite
	Animation(id int64) (store.Sprite, store.Animation, error)
	UpdateAnimation(id int64, fn func(*store.Animation) error) (store.Animation, error)
	Rename(oldName, newName string, scale float64) (store.Sprite, error)
	Delete(name string) error
}

// MaxFrameRate is the highest accepted playback rate.
const MaxFrameRate = 120

// Service is safe for concurrent use. Rewrites of stored sheets are
// serialized.
type Service struct {
	meta      Metadata
	layout    *storage.Layout
	analyzer  *spritekit.Analyzer
	optimizer optimize.Optimizer
	publisher Publisher
	logger    *slog.Logger

	sheetMu sync.Mutex
}

// New creates a Service.
func New(meta Metadata, layout *storage.Layout, opts ...Option) *Service {
	s := &Service{
		meta:      meta,
		layout:    layout,
		optimizer: optimize.Nop{},
		publisher: nopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analyzer == nil {
		// Default params always validate.
		s.analyzer, _ = spritekit.NewAnalyzer()
	}
	return s
}

func (s *Service) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return spritekit.Logger()
}

func (s *Service) publish(typ, sprite string, id int64) {
	s.publisher.Publish(Event{Type: typ, Sprite: sprite, AnimationID: id, Time: time.Now().UTC()})
}

// List describes every sprite by its first idle animation, sorted by name.
func (s *Service) List() []SpriteInfo {
	sprites := s.meta.List()
	out := make([]SpriteInfo, 0, len(sprites))
	for _, sp := range sprites {
		out = append(out, summaryInfo(sp))
	}
	return out
}

// Animations lists every animation of a sprite in ID order.
func (s *Service) Animations(name string) ([]SpriteInfo, error) {
	sp, err := s.meta.Get(name)
	if err != nil {
		return nil, err
	}
	anims := slices.Clone(sp.Animations)
	slices.SortFunc(anims, func(a, b store.Animation) int { return cmp.Compare(a.ID, b.ID) })
	out := make([]SpriteInfo, 0, len(anims))
	for _, a := range anims {
		out = append(out, newInfo(sp, a))
	}
	return out, nil
}

// Info describes one animation.
func (s *Service) Info(id int64) (SpriteInfo, error) {
	sp, a, err := s.meta.Animation(id)
	if err != nil {
		return SpriteInfo{}, err
	}
	return newInfo(sp, a), nil
}

// Play returns the first animation of each category of a sprite.
func (s *Service) Play(name string) (SpritePlay, error) {
	sp, err := s.meta.Get(name)
	if err != nil {
		return SpritePlay{}, err
	}
	pick := func(c store.Category) *SpriteInfo {
		a, ok := sp.First(c)
		if !ok {
			return nil
		}
		info := newInfo(sp, a)
		return &info
	}
	return SpritePlay{Idle: pick(store.Idle), Walk: pick(store.Walk), Attack: pick(store.Attack)}, nil
}

// Normalize crops every frame of a stored sheet to the shared content
// rectangle, optimizes the result, and records the new frame size.
// A sheet without content is left untouched.
func (s *Service) Normalize(ctx context.Context, id int64) (SpriteInfo, error) {
	s.sheetMu.Lock()
	defer s.sheetMu.Unlock()

	sp, a, err := s.meta.Animation(id)
	if err != nil {
		return SpriteInfo{}, err
	}
	buf, err := s.layout.ReadSheet(sp.Name, string(a.Category), a.Index)
	if err != nil {
		return SpriteInfo{}, err
	}
	out, err := s.analyzer.Normalize(buf, a.Frames)
	if err != nil {
		return SpriteInfo{}, err
	}
	if out == buf {
		s.log().Info("normalize skipped, sheet has no content", "animation", id, "sprite", sp.Name)
		return newInfo(sp, a), nil
	}

	data, err := out.EncodeToBytes()
	if err != nil {
		return SpriteInfo{}, err
	}
	if small, err := s.optimizer.Optimize(ctx, data); err != nil {
		s.log().Warn("sheet optimization failed, keeping unoptimized sheet", "animation", id, "err", err)
	} else {
		data = small
	}
	if err := s.layout.WriteSheet(sp.Name, string(a.Category), a.Index, data); err != nil {
		return SpriteInfo{}, err
	}

	a, err = s.meta.UpdateAnimation(id, func(a *store.Animation) error {
		a.FrameWidth = out.Width() / a.Frames
		a.FrameHeight = out.Height()
		return nil
	})
	if err != nil {
		return SpriteInfo{}, err
	}

	s.log().Info("sheet normalized",
		"animation", id,
		"sprite", sp.Name,
		"width", out.Width(),
		"height", out.Height(),
		"frames", a.Frames,
		"bytes", len(data))
	s.publish(EventNormalized, sp.Name, id)
	return newInfo(sp, a), nil
}

// Flip mirrors every frame of a stored sheet inside its own slot.
func (s *Service) Flip(_ context.Context, id int64) error {
	s.sheetMu.Lock()
	defer s.sheetMu.Unlock()

	sp, a, err := s.meta.Animation(id)
	if err != nil {
		return err
	}
	buf, err := s.layout.ReadSheet(sp.Name, string(a.Category), a.Index)
	if err != nil {
		return err
	}
	out, err := spritekit.FlipHorizontal(buf, a.Frames)
	if err != nil {
		return err
	}
	data, err := out.EncodeToBytes()
	if err != nil {
		return err
	}
	if err := s.layout.WriteSheet(sp.Name, string(a.Category), a.Index, data); err != nil {
		return err
	}

	s.log().Info("sheet flipped", "animation", id, "sprite", sp.Name, "frames", a.Frames)
	s.publish(EventFlipped, sp.Name, id)
	return nil
}

// Rename changes a sprite's name and display scale and moves its stored
// sheets along.
func (s *Service) Rename(_ context.Context, oldName, newName string, scale float64) (SpriteInfo, error) {
	s.sheetMu.Lock()
	defer s.sheetMu.Unlock()

	prev, err := s.meta.Get(oldName)
	if err != nil {
		return SpriteInfo{}, err
	}
	sp, err := s.meta.Rename(oldName, newName, scale)
	if err != nil {
		return SpriteInfo{}, err
	}
	if err := s.layout.Rename(oldName, sp.Name); err != nil {
		if _, rerr := s.meta.Rename(sp.Name, oldName, prev.Scale); rerr != nil {
			s.log().Error("rename rollback failed", "sprite", sp.Name, "err", rerr)
		}
		return SpriteInfo{}, err
	}

	s.log().Info("sprite renamed", "from", oldName, "to", sp.Name, "scale", sp.Scale)
	s.publish(EventRenamed, sp.Name, 0)
	return summaryInfo(sp), nil
}

// Delete removes a sprite and its stored sheets.
func (s *Service) Delete(_ context.Context, name string) error {
	s.sheetMu.Lock()
	defer s.sheetMu.Unlock()

	if err := s.meta.Delete(name); err != nil {
		return err
	}
	if err := s.layout.Remove(name); err != nil {
		s.log().Warn("stored sheets not removed", "sprite", name, "err", err)
	}
	s.log().Info("sprite deleted", "sprite", name)
	s.publish(EventDeleted, name, 0)
	return nil
}

// SetFrameRate sets an animation's playback rate in frames per second.
func (s *Service) SetFrameRate(id int64, rate int) (SpriteInfo, error) {
	if rate < 1 || rate > MaxFrameRate {
		return SpriteInfo{}, fmt.Errorf("%w: frame rate %d outside 1..%d", spritekit.ErrInvalidInput, rate, MaxFrameRate)
	}
	return s.updateAnimation(id, func(a *store.Animation) error {
		a.FrameRate = rate
		return nil
	})
}

// SetHitbox stores an animation's collision rectangle.
func (s *Service) SetHitbox(id int64, h store.Hitbox) (SpriteInfo, error) {
	if err := h.Validate(); err != nil {
		return SpriteInfo{}, err
	}
	info, err := s.updateAnimation(id, func(a *store.Animation) error {
		a.Hitbox = &h
		return nil
	})
	if err == nil {
		s.log().Info("hitbox saved", "animation", id, "x", h.X, "y", h.Y, "width", h.Width, "height", h.Height)
	}
	return info, err
}

// DeleteHitbox clears an animation's collision rectangle.
func (s *Service) DeleteHitbox(id int64) (SpriteInfo, error) {
	info, err := s.updateAnimation(id, func(a *store.Animation) error {
		a.Hitbox = nil
		return nil
	})
	if err == nil {
		s.log().Info("hitbox deleted", "animation", id)
	}
	return info, err
}

func (s *Service) updateAnimation(id int64, fn func(*store.Animation) error) (SpriteInfo, error) {
	a, err := s.meta.UpdateAnimation(id, fn)
	if err != nil {
		return SpriteInfo{}, err
	}
	sp, _, err := s.meta.Animation(id)
	if err != nil {
		return SpriteInfo{}, err
	}
	s.publish(EventUpdated, sp.Name, id)
	return newInfo(sp, a), nil
}

// Preview renders a stored sheet enlarged by factor. A factor of 0 uses the
// sprite's display scale, rounded and at least 1.
func (s *Service) Preview(id int64, factor int) ([]byte, error) {
	sp, a, err := s.meta.Animation(id)
	if err != nil {
		return nil, err
	}
	if factor == 0 {
		factor = max(1, int(sp.Scale+0.5))
		factor = min(factor, spritekit.MaxScale)
	}
	buf, err := s.layout.ReadSheet(sp.Name, string(a.Category), a.Index)
	if err != nil {
		return nil, err
	}
	out, err := spritekit.Scale(buf, factor)
	if err != nil {
		return nil, err
	}
	return out.EncodeToBytes()
}

// SheetFile returns the file holding the stored sheet at the slash-separated
// path rel, as used in SpriteInfo.ImageURL.
func (s *Service) SheetFile(rel string) (string, error) {
	p, err := s.layout.Resolve(rel)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(p)
	if err != nil || fi.IsDir() {
		return "", fmt.Errorf("%w: %s", spritekit.ErrNotFound, rel)
	}
	return p, nil
}

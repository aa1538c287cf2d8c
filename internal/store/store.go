package store

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/gogpu/spritekit"
)

// FileStore holds metadata in memory and, when opened with a path, rewrites
// a CBOR file after every change. The file is replaced atomically, so a crash
// leaves either the old or the new state.
//
// FileStore is safe for concurrent use.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	nextID  int64
	sprites map[string]*Sprite
	byID    map[int64]string
}

type snapshot struct {
	NextID  int64    `cbor:"next_id"`
	Sprites []Sprite `cbor:"sprites"`
}

// Open loads the store at path. A missing file yields an empty store; an
// empty path yields a store that is never persisted.
func Open(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		nextID:  1,
		sprites: make(map[string]*Sprite),
		byID:    make(map[int64]string),
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	s.nextID = max(1, snap.NextID)
	for i := range snap.Sprites {
		sp := snap.Sprites[i]
		s.sprites[sp.Name] = &sp
		for _, a := range sp.Animations {
			s.byID[a.ID] = sp.Name
			s.nextID = max(s.nextID, a.ID+1)
		}
	}
	return s, nil
}

// NewMemory returns a store that is never persisted.
func NewMemory() *FileStore {
	s, _ := Open("")
	return s
}

// persist must be called with mu held for writing.
func (s *FileStore) persist() error {
	if s.path == "" {
		return nil
	}
	snap := snapshot{NextID: s.nextID, Sprites: s.sortedLocked()}
	data, err := cbor.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := spritekit.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	return nil
}

func (s *FileStore) sortedLocked() []Sprite {
	out := make([]Sprite, 0, len(s.sprites))
	for _, sp := range s.sprites {
		out = append(out, sp.clone())
	}
	slices.SortFunc(out, func(a, b Sprite) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Create adds a sprite and assigns IDs to its animations. Zero scale and
// frame rates are replaced by the defaults. A sprite with the same name
// yields spritekit.ErrDuplicateName.
func (s *FileStore) Create(sp Sprite) (Sprite, error) {
	name, err := ValidateName(sp.Name)
	if err != nil {
		return Sprite{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sprites[name]; ok {
		return Sprite{}, fmt.Errorf("%w: %q", spritekit.ErrDuplicateName, name)
	}

	stored := sp.clone()
	stored.Name = name
	if stored.Scale <= 0 {
		stored.Scale = DefaultScale
	}
	prevID := s.nextID
	for i := range stored.Animations {
		a := &stored.Animations[i]
		a.ID = s.nextID
		s.nextID++
		if a.FrameRate <= 0 {
			a.FrameRate = DefaultFrameRate
		}
		s.byID[a.ID] = name
	}
	s.sprites[name] = &stored

	if err := s.persist(); err != nil {
		delete(s.sprites, name)
		for _, a := range stored.Animations {
			delete(s.byID, a.ID)
		}
		s.nextID = prevID
		return Sprite{}, err
	}
	return stored.clone(), nil
}

// Get returns the sprite called name.
func (s *FileStore) Get(name string) (Sprite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.sprites[name]
	if !ok {
		return Sprite{}, fmt.Errorf("%w: sprite %q", spritekit.ErrNotFound, name)
	}
	return sp.clone(), nil
}

// List returns every sprite sorted by name.
func (s *FileStore) List() []Sprite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Animation returns the animation with the given ID and the sprite owning it.
func (s *FileStore) Animation(id int64) (Sprite, Animation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, i, err := s.lookupLocked(id)
	if err != nil {
		return Sprite{}, Animation{}, err
	}
	out := sp.clone()
	return out, out.Animations[i], nil
}

func (s *FileStore) lookupLocked(id int64) (*Sprite, int, error) {
	name, ok := s.byID[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: animation %d", spritekit.ErrNotFound, id)
	}
	sp := s.sprites[name]
	for i, a := range sp.Animations {
		if a.ID == id {
			return sp, i, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: animation %d", spritekit.ErrNotFound, id)
}

// UpdateAnimation applies fn to a copy of the animation and stores the result
// if fn succeeds. The ID and storage slot cannot be changed.
func (s *FileStore) UpdateAnimation(id int64, fn func(*Animation) error) (Animation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, i, err := s.lookupLocked(id)
	if err != nil {
		return Animation{}, err
	}
	old := sp.clone().Animations[i]
	next := sp.clone().Animations[i]
	if err := fn(&next); err != nil {
		return Animation{}, err
	}
	next.ID, next.Category, next.Index = old.ID, old.Category, old.Index

	sp.Animations[i] = next
	if err := s.persist(); err != nil {
		sp.Animations[i] = old
		return Animation{}, err
	}
	return sp.clone().Animations[i], nil
}

// Rename changes a sprite's name and scale. Renaming to the current name only
// updates the scale. The new name must not belong to another sprite.
func (s *FileStore) Rename(oldName, newName string, scale float64) (Sprite, error) {
	name, err := ValidateName(newName)
	if err != nil {
		return Sprite{}, err
	}
	if scale <= 0 {
		return Sprite{}, fmt.Errorf("%w: scale %v", spritekit.ErrInvalidInput, scale)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sprites[oldName]
	if !ok {
		return Sprite{}, fmt.Errorf("%w: sprite %q", spritekit.ErrNotFound, oldName)
	}
	if _, taken := s.sprites[name]; taken && name != oldName {
		return Sprite{}, fmt.Errorf("%w: %q", spritekit.ErrDuplicateName, name)
	}

	prev := sp.clone()
	s.rekeyLocked(sp, name)
	sp.Scale = scale

	if err := s.persist(); err != nil {
		s.rekeyLocked(sp, prev.Name)
		sp.Scale = prev.Scale
		return Sprite{}, err
	}
	return sp.clone(), nil
}

func (s *FileStore) rekeyLocked(sp *Sprite, name string) {
	delete(s.sprites, sp.Name)
	sp.Name = name
	s.sprites[name] = sp
	for _, a := range sp.Animations {
		s.byID[a.ID] = name
	}
}

// Delete removes a sprite and its animations.
func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sprites[name]
	if !ok {
		return fmt.Errorf("%w: sprite %q", spritekit.ErrNotFound, name)
	}
	delete(s.sprites, name)
	for _, a := range sp.Animations {
		delete(s.byID, a.ID)
	}

	if err := s.persist(); err != nil {
		s.sprites[name] = sp
		for _, a := range sp.Animations {
			s.byID[a.ID] = name
		}
		return err
	}
	return nil
}

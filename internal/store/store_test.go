package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/spritekit"
)

func knight() Sprite {
	return Sprite{
		Name: "knight",
		Animations: []Animation{
			{Category: Idle, Index: 1, Frames: 4, FrameWidth: 32, FrameHeight: 32},
			{Category: Walk, Index: 1, Frames: 6, FrameWidth: 32, FrameHeight: 30},
			{Category: Walk, Index: 2, Frames: 6, FrameWidth: 30, FrameHeight: 30, FrameRate: 12},
		},
	}
}

func TestFileStore_Create(t *testing.T) {
	s := NewMemory()
	sp, err := s.Create(knight())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sp.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", sp.Scale, DefaultScale)
	}
	for i, a := range sp.Animations {
		if a.ID != int64(i+1) {
			t.Errorf("animation %d ID = %d, want %d", i, a.ID, i+1)
		}
	}
	if sp.Animations[0].FrameRate != DefaultFrameRate || sp.Animations[2].FrameRate != 12 {
		t.Errorf("frame rates = %d/%d, want %d/12", sp.Animations[0].FrameRate, sp.Animations[2].FrameRate, DefaultFrameRate)
	}

	if _, err := s.Create(knight()); !errors.Is(err, spritekit.ErrDuplicateName) {
		t.Errorf("second Create() error = %v, want ErrDuplicateName", err)
	}
	if _, err := s.Create(Sprite{Name: "../x"}); !errors.Is(err, spritekit.ErrInvalidInput) {
		t.Errorf("Create(../x) error = %v, want ErrInvalidInput", err)
	}
}

func TestFileStore_ReturnsCopies(t *testing.T) {
	s := NewMemory()
	sp, _ := s.Create(knight())
	sp.Animations[0].Frames = 99

	got, err := s.Get("knight")
	if err != nil {
		t.Fatal(err)
	}
	if got.Animations[0].Frames != 4 {
		t.Error("mutating a returned sprite changed the store")
	}
}

func TestFileStore_UpdateAnimation(t *testing.T) {
	s := NewMemory()
	_, _ = s.Create(knight())

	a, err := s.UpdateAnimation(2, func(a *Animation) error {
		a.FrameRate = 24
		a.Hitbox = &Hitbox{X: 1, Y: 2, Width: 10, Height: 12}
		a.Index = 7 // ignored
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateAnimation() error = %v", err)
	}
	if a.FrameRate != 24 || a.Hitbox == nil || a.Index != 1 {
		t.Errorf("UpdateAnimation() = %+v", a)
	}

	errStop := errors.New("stop")
	if _, err := s.UpdateAnimation(2, func(a *Animation) error {
		a.FrameRate = 1
		return errStop
	}); !errors.Is(err, errStop) {
		t.Errorf("UpdateAnimation() error = %v, want errStop", err)
	}
	_, got, _ := s.Animation(2)
	if got.FrameRate != 24 {
		t.Errorf("FrameRate = %d after failed update, want 24", got.FrameRate)
	}

	if _, err := s.UpdateAnimation(42, func(*Animation) error { return nil }); !errors.Is(err, spritekit.ErrNotFound) {
		t.Errorf("UpdateAnimation(42) error = %v, want ErrNotFound", err)
	}
}

func TestFileStore_Rename(t *testing.T) {
	s := NewMemory()
	_, _ = s.Create(knight())
	_, _ = s.Create(Sprite{Name: "slime"})

	tests := []struct {
		name    string
		oldName string
		newName string
		scale   float64
		wantErr error
	}{
		{"taken", "knight", "slime", 1, spritekit.ErrDuplicateName},
		{"missing", "ghost", "wraith", 1, spritekit.ErrNotFound},
		{"bad scale", "knight", "paladin", 0, spritekit.ErrInvalidInput},
		{"bad name", "knight", "a/b", 1, spritekit.ErrInvalidInput},
		{"scale only", "knight", "knight", 2, nil},
		{"rename", "knight", "paladin", 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, err := s.Rename(tt.oldName, tt.newName, tt.scale)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Rename() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (sp.Name != tt.newName || sp.Scale != tt.scale) {
				t.Errorf("Rename() = %s x%v", sp.Name, sp.Scale)
			}
		})
	}

	if _, err := s.Get("knight"); !errors.Is(err, spritekit.ErrNotFound) {
		t.Errorf("old name still present: %v", err)
	}
	owner, _, err := s.Animation(1)
	if err != nil || owner.Name != "paladin" {
		t.Errorf("Animation(1) owner = %q, %v, want paladin", owner.Name, err)
	}
}

func TestFileStore_Delete(t *testing.T) {
	s := NewMemory()
	_, _ = s.Create(knight())

	if err := s.Delete("knight"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := s.Animation(1); !errors.Is(err, spritekit.ErrNotFound) {
		t.Errorf("Animation(1) error = %v, want ErrNotFound", err)
	}
	if err := s.Delete("knight"); !errors.Is(err, spritekit.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestFileStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprites.cbor")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_, _ = s.Create(knight())
	_, _ = s.UpdateAnimation(3, func(a *Animation) error {
		a.Hitbox = &Hitbox{X: 4, Y: 4, Width: 8, Height: 8}
		return nil
	})
	_, _ = s.Create(Sprite{Name: "slime", Animations: []Animation{{Category: Idle, Index: 1, Frames: 2}}})
	_ = s.Delete("slime")

	re, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := re.List(); len(got) != 1 || got[0].Name != "knight" {
		t.Fatalf("List() = %+v, want only knight", got)
	}
	_, a, err := re.Animation(3)
	if err != nil || a.Hitbox == nil || *a.Hitbox != (Hitbox{X: 4, Y: 4, Width: 8, Height: 8}) {
		t.Errorf("Animation(3) = %+v, %v", a, err)
	}

	// IDs are never reused, even for deleted animations.
	sp, _ := re.Create(Sprite{Name: "bat", Animations: []Animation{{Category: Idle, Index: 1, Frames: 1}}})
	if sp.Animations[0].ID != 5 {
		t.Errorf("new ID = %d, want 5", sp.Animations[0].ID)
	}
}

func TestOpen_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprites.cbor")
	if err := os.WriteFile(path, []byte{0xff, 0x00, 0x13}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Open() of a corrupt file should fail")
	}
}

func TestSprite_FirstAndFind(t *testing.T) {
	sp := Sprite{Animations: []Animation{
		{ID: 1, Category: Walk, Index: 2},
		{ID: 2, Category: Walk, Index: 1},
	}}
	if a, ok := sp.First(Walk); !ok || a.ID != 2 {
		t.Errorf("First(Walk) = %+v, %v", a, ok)
	}
	if _, ok := sp.First(Idle); ok {
		t.Error("First(Idle) found an animation")
	}
	if a, ok := sp.Find(Walk, 2); !ok || a.ID != 1 {
		t.Errorf("Find(Walk, 2) = %+v, %v", a, ok)
	}
}

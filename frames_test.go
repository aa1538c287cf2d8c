package spritekit

import (
	"errors"
	"testing"
)

func TestFrameWidth(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		frames  int
		want    int
		wantErr bool
	}{
		{"single frame", 12, 1, 12, false},
		{"even split", 12, 4, 3, false},
		{"one column per frame", 12, 12, 1, false},
		{"zero frames", 12, 0, 0, true},
		{"negative frames", 12, -2, 0, true},
		{"more frames than columns", 12, 13, 0, true},
		{"not divisible", 12, 5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := mustBuffer(t, tt.width, 2)
			got, err := FrameWidth(buf, tt.frames)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("FrameWidth() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FrameWidth() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FrameWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrameWidth_Nil(t *testing.T) {
	if _, err := FrameWidth(nil, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("FrameWidth(nil) error = %v, want ErrInvalidInput", err)
	}
}

func TestSplitFrames(t *testing.T) {
	buf := patterned(t, 9, 4)
	parts, err := SplitFrames(buf, 3)
	if err != nil {
		t.Fatalf("SplitFrames() error = %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("len(parts) = %d, want 3", len(parts))
	}
	for i, p := range parts {
		if p.Width() != 3 || p.Height() != 4 {
			t.Fatalf("part %d size = %dx%d, want 3x4", i, p.Width(), p.Height())
		}
		for y := range 4 {
			for x := range 3 {
				got, _ := p.NRGBAAt(x, y)
				want, _ := buf.NRGBAAt(i*3+x, y)
				if got != want {
					t.Fatalf("part %d (%d,%d) = %v, want %v", i, x, y, got, want)
				}
			}
		}
	}
}

func TestSplitFrames_Invalid(t *testing.T) {
	buf := mustBuffer(t, 10, 2)
	if _, err := SplitFrames(buf, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SplitFrames() error = %v, want ErrInvalidInput", err)
	}
}

package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gogpu/spritekit"
	"github.com/gogpu/spritekit/internal/archive"
	"github.com/gogpu/spritekit/internal/store"
)

type categoryFiles struct {
	category store.Category
	files    []string
}

// Import unpacks a zip archive holding one sprite folder with IDLE, WALK and
// ATTACK subfolders of PNG sheets, detects the frame count of every sheet,
// stores the sheets as {name}/{CATEGORY}/{n}.png and records the sprite.
//
// Sheets that do not decode are still stored in their slot but get no
// animation record. The returned info describes the sprite's first idle
// animation.
func (s *Service) Import(ctx context.Context, data []byte) (SpriteInfo, error) {
	if len(data) == 0 {
		return SpriteInfo{}, fmt.Errorf("%w: empty archive", spritekit.ErrInvalidInput)
	}
	s.log().Info("import started", "bytes", len(data))

	dir, cleanup, err := archive.ExtractToTemp(data, "spritekit-upload-")
	if err != nil {
		return SpriteInfo{}, err
	}
	defer cleanup()

	root, err := archive.FindRoot(dir)
	if err != nil {
		return SpriteInfo{}, err
	}
	name, err := store.ValidateName(filepath.Base(root))
	if err != nil {
		return SpriteInfo{}, err
	}
	if _, err := s.meta.Get(name); err == nil {
		return SpriteInfo{}, fmt.Errorf("%w: %q", spritekit.ErrDuplicateName, name)
	}

	var groups []categoryFiles
	total := 0
	for _, c := range store.Categories() {
		sub, ok := archive.FindSubdir(root, string(c))
		if !ok {
			continue
		}
		files, err := archive.ListPNG(sub)
		if err != nil {
			return SpriteInfo{}, err
		}
		if len(files) > 0 {
			groups = append(groups, categoryFiles{category: c, files: files})
			total += len(files)
		}
	}
	if total == 0 {
		return SpriteInfo{}, fmt.Errorf("%w: %q holds no IDLE, WALK or ATTACK sheets", spritekit.ErrInvalidInput, name)
	}

	sp := store.Sprite{Name: name, Scale: store.DefaultScale}
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return SpriteInfo{}, err
		}
		sp.Animations = append(sp.Animations, s.analyze(g)...)
	}

	created, err := s.meta.Create(sp)
	if err != nil {
		return SpriteInfo{}, err
	}
	if err := s.storeFiles(name, groups); err != nil {
		if derr := s.meta.Delete(name); derr != nil {
			s.log().Error("import rollback failed", "sprite", name, "err", derr)
		}
		_ = s.layout.Remove(name)
		return SpriteInfo{}, err
	}

	s.log().Info("sprite imported", "sprite", name, "sheets", total, "animations", len(created.Animations))
	s.publish(EventImported, name, 0)
	return summaryInfo(created), nil
}

// analyze detects the frames of every sheet in g. Ordinals follow the sorted
// file order whether or not a sheet decodes.
func (s *Service) analyze(g categoryFiles) []store.Animation {
	results := s.analyzer.DetectEach(len(g.files), func(i int) (*spritekit.PixelBuffer, error) {
		return s.analyzer.Load(g.files[i])
	})

	var anims []store.Animation
	for i, r := range results {
		if r.Err != nil {
			s.log().Warn("sheet unreadable, stored without animation",
				"category", g.category, "file", filepath.Base(g.files[i]), "err", r.Err)
			continue
		}
		if r.Width%r.Frames != 0 {
			s.log().Warn("sheet width not a multiple of the frame count, normalize and flip will reject it",
				"category", g.category, "index", i+1, "width", r.Width, "frames", r.Frames)
		}
		anims = append(anims, store.Animation{
			Category:    g.category,
			Index:       i + 1,
			Frames:      r.Frames,
			FrameWidth:  r.Width / r.Frames,
			FrameHeight: r.Height,
			FrameRate:   store.DefaultFrameRate,
		})
		s.log().Debug("sheet analyzed", "category", g.category, "index", i+1, "frames", r.Frames)
	}
	return anims
}

func (s *Service) storeFiles(name string, groups []categoryFiles) error {
	if err := s.layout.Reset(name); err != nil {
		return err
	}
	for _, g := range groups {
		for i, f := range g.files {
			if err := s.layout.CopySheet(f, name, string(g.category), i+1); err != nil {
				return err
			}
		}
	}
	return nil
}

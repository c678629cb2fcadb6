// Package progress owns every mutation of a player's ProgressStats.
// Callers never edit stats fields directly; they go through Update or one of
// the helpers built on it, which return a fresh value with the invariants
// re-established.
package progress

import (
	"errors"

	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

var (
	// ErrStickerLocked is returned when customizing a sticker that has not
	// been collected yet.
	ErrStickerLocked = errors.New("sticker is not collected")

	// ErrUnknownAlbumTheme is returned for album theme ids outside the catalog.
	ErrUnknownAlbumTheme = errors.New("unknown album theme")
)

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	CorrectAnswers      *int
	WrongAnswers        *int
	GamesPlayed         *int
	StickersCollected   []domain.StickerID
	AlbumThemeID        *domain.AlbumThemeID
	StickerOrder        []domain.StickerID
	CustomStickerImages map[domain.StickerID]domain.ImageData
}

// Initial returns the stats of a freshly onboarded player.
func Initial() domain.ProgressStats {
	return Normalize(domain.ProgressStats{})
}

// Update merges patch into current and returns the normalized result.
// current is never modified.
func Update(current domain.ProgressStats, patch Patch) domain.ProgressStats {
	next := current.Clone()

	if patch.CorrectAnswers != nil {
		next.CorrectAnswers = *patch.CorrectAnswers
	}
	if patch.WrongAnswers != nil {
		next.WrongAnswers = *patch.WrongAnswers
	}
	if patch.GamesPlayed != nil {
		next.GamesPlayed = *patch.GamesPlayed
	}
	if patch.StickersCollected != nil {
		next.StickersCollected = append([]domain.StickerID(nil), patch.StickersCollected...)
	}
	if patch.AlbumThemeID != nil {
		next.AlbumThemeID = *patch.AlbumThemeID
	}
	if patch.StickerOrder != nil {
		next.StickerOrder = append([]domain.StickerID(nil), patch.StickerOrder...)
	}
	if patch.CustomStickerImages != nil {
		if next.CustomStickerImages == nil {
			next.CustomStickerImages = make(map[domain.StickerID]domain.ImageData, len(patch.CustomStickerImages))
		}
		for id, img := range patch.CustomStickerImages {
			next.CustomStickerImages[id] = img
		}
	}

	return Normalize(next)
}

// Normalize applies load-time defaults and repairs invariants:
// non-negative counts, a deduplicated collected set restricted to the
// catalog, a sticker order that is a permutation of the catalog, a known
// album theme and a non-nil custom image map.
func Normalize(s domain.ProgressStats) domain.ProgressStats {
	out := s.Clone()

	out.CorrectAnswers = max(out.CorrectAnswers, 0)
	out.WrongAnswers = max(out.WrongAnswers, 0)
	out.GamesPlayed = max(out.GamesPlayed, 0)

	collected := make([]domain.StickerID, 0, len(out.StickersCollected))
	seen := make(map[domain.StickerID]bool, len(out.StickersCollected))
	for _, id := range out.StickersCollected {
		if seen[id] {
			continue
		}
		if _, ok := catalog.Sticker(id); !ok {
			continue
		}
		seen[id] = true
		collected = append(collected, id)
	}
	out.StickersCollected = collected

	if !isPermutation(out.StickerOrder) {
		out.StickerOrder = catalog.StickerIDs()
	}

	if _, ok := catalog.AlbumTheme(out.AlbumThemeID); !ok {
		out.AlbumThemeID = catalog.DefaultAlbumTheme
	}

	images := make(map[domain.StickerID]domain.ImageData, len(out.CustomStickerImages))
	for id, img := range out.CustomStickerImages {
		if _, ok := catalog.Sticker(id); ok && img != "" {
			images[id] = img
		}
	}
	out.CustomStickerImages = images

	return out
}

func isPermutation(order []domain.StickerID) bool {
	ids := catalog.StickerIDs()
	if len(order) != len(ids) {
		return false
	}
	want := make(map[domain.StickerID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, id := range order {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}

// Reorder moves the element at from to position to. Equal or out-of-range
// indices return an unchanged copy.
func Reorder(order []domain.StickerID, from, to int) []domain.StickerID {
	out := append([]domain.StickerID(nil), order...)
	if from == to || from < 0 || to < 0 || from >= len(out) || to >= len(out) {
		return out
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]domain.StickerID{moved}, out[to:]...)...)
	return out
}

// MoveSticker applies Reorder to the album order held in stats.
func MoveSticker(stats domain.ProgressStats, from, to int) domain.ProgressStats {
	return Update(stats, Patch{StickerOrder: Reorder(stats.StickerOrder, from, to)})
}

// SetCustomImage stores an artwork override for a collected sticker.
func SetCustomImage(stats domain.ProgressStats, id domain.StickerID, image domain.ImageData) (domain.ProgressStats, error) {
	if _, ok := catalog.Sticker(id); !ok {
		return stats, domain.ErrUnknownSticker
	}
	if !stats.HasSticker(id) {
		return stats, ErrStickerLocked
	}
	return Update(stats, Patch{CustomStickerImages: map[domain.StickerID]domain.ImageData{id: image}}), nil
}

// SetAlbumTheme selects the album background.
func SetAlbumTheme(stats domain.ProgressStats, id domain.AlbumThemeID) (domain.ProgressStats, error) {
	if _, ok := catalog.AlbumTheme(id); !ok {
		return stats, ErrUnknownAlbumTheme
	}
	return Update(stats, Patch{AlbumThemeID: &id}), nil
}

// RecordSession commits a finished quiz: counts are added, the game counter
// is incremented and an earned sticker is set-inserted.
func RecordSession(stats domain.ProgressStats, correct, total int, sticker *domain.StickerID) domain.ProgressStats {
	correct = min(max(correct, 0), max(total, 0))
	wrong := max(total, 0) - correct

	c := stats.CorrectAnswers + correct
	w := stats.WrongAnswers + wrong
	g := stats.GamesPlayed + 1
	patch := Patch{CorrectAnswers: &c, WrongAnswers: &w, GamesPlayed: &g}

	if sticker != nil && !stats.HasSticker(*sticker) {
		patch.StickersCollected = append(append([]domain.StickerID(nil), stats.StickersCollected...), *sticker)
	}
	return Update(stats, patch)
}

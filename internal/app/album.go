package app

import (
	"context"
	"slices"
	"strings"

	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/content"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/progress"
)

func (m *Machine) onStickerAlbum(s StickerAlbum, in Intent) bool {
	if m.player == nil {
		if _, ok := in.(Back); ok {
			m.enter(Dashboard{})
			return true
		}
		return false
	}

	switch in := in.(type) {
	case ReorderStickers:
		next := progress.MoveSticker(m.player.Stats, in.From, in.To)
		if slices.Equal(next.StickerOrder, m.player.Stats.StickerOrder) {
			return false
		}
		m.player.Stats = next
		m.save()
	case SelectAlbumTheme:
		next, err := progress.SetAlbumTheme(m.player.Stats, in.Theme)
		if err != nil {
			m.logger.Debug("album theme rejected", "theme", in.Theme, "error", err)
			return false
		}
		m.player.Stats = next
		m.save()
	case RequestStickerEdit:
		return m.requestEdit(s, in)
	case AcceptStickerEdit:
		if s.Edit == nil || s.Edit.Loading || s.Edit.Preview == "" {
			return false
		}
		next, err := progress.SetCustomImage(m.player.Stats, s.Edit.StickerID, s.Edit.Preview)
		if err != nil {
			m.logger.Debug("sticker edit rejected", "sticker", s.Edit.StickerID, "error", err)
			return false
		}
		m.player.Stats = next
		m.save()
		m.state = StickerAlbum{}
	case DiscardStickerEdit:
		if s.Edit == nil {
			return false
		}
		m.state = StickerAlbum{}
	case Back:
		m.enter(Dashboard{})
	default:
		return false
	}
	return true
}

// stickerImage returns the artwork currently shown for id.
func stickerImage(stats domain.ProgressStats, id domain.StickerID) domain.ImageData {
	if img, ok := stats.CustomStickerImages[id]; ok {
		return img
	}
	st, _ := catalog.Sticker(id)
	return domain.ImageData(st.URL)
}

func (m *Machine) requestEdit(s StickerAlbum, in RequestStickerEdit) bool {
	instruction := strings.TrimSpace(in.Instruction)
	if instruction == "" {
		m.logger.Debug("sticker edit rejected", "error", content.ErrEmptyInstruction)
		return false
	}
	if s.Edit != nil && s.Edit.Loading {
		return false
	}
	if _, ok := catalog.Sticker(in.Sticker); !ok {
		m.logger.Debug("sticker edit rejected", "sticker", in.Sticker, "error", domain.ErrUnknownSticker)
		return false
	}
	if !m.player.Stats.HasSticker(in.Sticker) {
		m.logger.Debug("sticker edit rejected", "sticker", in.Sticker, "error", progress.ErrStickerLocked)
		return false
	}

	m.editSeq++
	seq := m.editSeq
	source := stickerImage(m.player.Stats, in.Sticker)
	m.state = StickerAlbum{Edit: &StickerEdit{
		StickerID:   in.Sticker,
		Instruction: instruction,
		Loading:     true,
		seq:         seq,
	}}

	token := m.token
	m.later(func() {
		ctx, cancel := context.WithTimeout(m.ctx, m.cfg.ImageTimeout)
		defer cancel()
		preview := content.EditOrKeep(ctx, m.content, source, instruction, m.logger)
		m.deliver(token, func() {
			album := m.state.(StickerAlbum)
			if album.Edit == nil || album.Edit.seq != seq {
				return
			}
			edit := *album.Edit
			edit.Loading = false
			if preview == source {
				edit.Failed = true
			} else {
				edit.Preview = preview
			}
			m.state = StickerAlbum{Edit: &edit}
		})
	})
	return true
}

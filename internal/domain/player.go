package domain

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the longest player name accepted at onboarding, in runes.
const MaxNameLength = 15

// StickerID identifies a sticker in the static catalog.
type StickerID string

// AlbumThemeID identifies an album background theme.
type AlbumThemeID string

// AdventureThemeID identifies a narrative adventure setting.
type AdventureThemeID string

// ImageData is either a data URI ("data:image/png;base64,...") or a URL
// pointing at the sticker artwork.
type ImageData string

// IsDataURI reports whether the image is inlined as a data URI.
func (d ImageData) IsDataURI() bool {
	return strings.HasPrefix(string(d), "data:")
}

// DesignTheme is the app-wide visual presentation chosen before onboarding.
type DesignTheme string

const (
	DesignBoy  DesignTheme = "boy"
	DesignGirl DesignTheme = "girl"
)

// DefaultDesignTheme is applied to stored players that predate design themes.
const DefaultDesignTheme = DesignGirl

// Valid reports whether d is one of the two known design themes.
func (d DesignTheme) Valid() bool {
	return d == DesignBoy || d == DesignGirl
}

// Player is the single local player profile.
type Player struct {
	Name        string        `json:"name"`
	Avatar      string        `json:"avatar"`
	DesignTheme DesignTheme   `json:"designTheme"`
	Stats       ProgressStats `json:"stats"`
}

// ProgressStats holds everything the player accumulates over time. The JSON
// names match the browser storage format of earlier releases.
type ProgressStats struct {
	CorrectAnswers      int                     `json:"correctAnswers"`
	WrongAnswers        int                     `json:"wrongAnswers"`
	GamesPlayed         int                     `json:"gamesPlayed"`
	StickersCollected   []StickerID             `json:"stickersCollected"`
	AlbumThemeID        AlbumThemeID            `json:"albumThemeId,omitempty"`
	StickerOrder        []StickerID             `json:"stickerOrder,omitempty"`
	CustomStickerImages map[StickerID]ImageData `json:"customStickerImages,omitempty"`
}

// HasSticker reports whether id has been collected.
func (s ProgressStats) HasSticker(id StickerID) bool {
	for _, c := range s.StickersCollected {
		if c == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (s ProgressStats) Clone() ProgressStats {
	out := s
	out.StickersCollected = append([]StickerID(nil), s.StickersCollected...)
	out.StickerOrder = append([]StickerID(nil), s.StickerOrder...)
	if s.CustomStickerImages != nil {
		out.CustomStickerImages = make(map[StickerID]ImageData, len(s.CustomStickerImages))
		for k, v := range s.CustomStickerImages {
			out.CustomStickerImages[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	out := *p
	out.Stats = p.Stats.Clone()
	return &out
}

// NormalizeName trims and NFC-normalizes a player name and checks its length.
func NormalizeName(name string) (string, error) {
	n := strings.TrimSpace(norm.NFC.String(name))
	if n == "" {
		return "", ErrInvalidName
	}
	if utf8.RuneCountInString(n) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return n, nil
}

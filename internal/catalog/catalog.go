// Package catalog holds the static, compiled-in reference data: stickers,
// album themes, adventure themes, avatars, math topics and the two design
// themes. Nothing here is configurable at runtime.
package catalog

import "github.com/felixgeelhaar/matekkaland/internal/domain"

const dicebear = "https://api.dicebear.com/9.x/"

var stickers = []domain.Sticker{
	{ID: "s1", Name: "Bátor Felfedező", URL: dicebear + "adventurer/svg?seed=Alex"},
	{ID: "s2", Name: "Okos Robot", URL: dicebear + "bottts/svg?seed=Gizmo"},
	{ID: "s3", Name: "Varázsló", URL: dicebear + "adventurer/svg?seed=Merlin"},
	{ID: "s4", Name: "Űrhajós", URL: dicebear + "adventurer/svg?seed=Astro"},
	{ID: "s5", Name: "Boldog Láng", URL: dicebear + "fun-emoji/svg?seed=Fire"},
	{ID: "s6", Name: "Hegyi Túrázó", URL: dicebear + "adventurer/svg?seed=Climber"},
	{ID: "s7", Name: "Mélytengeri Búvár", URL: dicebear + "adventurer/svg?seed=Diver"},
	{ID: "s8", Name: "Cuki Szellem", URL: dicebear + "fun-emoji/svg?seed=Ghost"},
	{ID: "s9", Name: "Szivárvány", URL: dicebear + "fun-emoji/svg?seed=Rainbow"},
	{ID: "s10", Name: "Ninja Macska", URL: dicebear + "adventurer/svg?seed=Cat"},
	{ID: "s11", Name: "Zöld Szörnyike", URL: dicebear + "bottts/svg?seed=Monster"},
	{ID: "s12", Name: "Győztes Kupa", URL: dicebear + "fun-emoji/svg?seed=Trophy"},
}

// DefaultAlbumTheme is the album background used when none was chosen.
const DefaultAlbumTheme domain.AlbumThemeID = "classic"

var albumThemes = []domain.AlbumTheme{
	{ID: "classic", Name: "Klasszikus", Background: "#ffffff", Preview: "#ffffff"},
	{ID: "blue", Name: "Kék Ég", Background: "#eff6ff", Preview: "#bfdbfe"},
	{ID: "yellow", Name: "Napfény", Background: "#fefce8", Preview: "#fef08a"},
	{ID: "dark", Name: "Éjszaka", Background: "#1e293b", Preview: "#1e293b"},
	{ID: "green", Name: "Erdő", Background: "#f0fdf4", Preview: "#bbf7d0"},
	{ID: "grid", Name: "Matek Füzet", Background: "dotted:#e5e7eb", Preview: "#f3f4f6"},
}

var adventures = []domain.AdventureTheme{
	{ID: "space", Name: "Űrutazás", Emoji: "🚀", Description: "Számolj a csillagok között!", Gradient: "slate-900,purple-900,slate-900", Accent: "cyan-300"},
	{ID: "dino", Name: "Dínó Föld", Emoji: "🦖", Description: "Barátkozz össze a T-Rex-szel!", Gradient: "green-800,emerald-700,teal-900", Accent: "yellow-300"},
	{ID: "ocean", Name: "Tenger Alatt", Emoji: "🐬", Description: "Merülj le a kincsekért!", Gradient: "blue-600,cyan-500,blue-800", Accent: "white"},
	{ID: "magic", Name: "Varázslat", Emoji: "🧙", Description: "Bájitalok és varázsigék.", Gradient: "fuchsia-600,purple-600,pink-600", Accent: "yellow-200"},
	{ID: "zoo", Name: "Állatkert", Emoji: "🦁", Description: "Segíts az állatgondozóknak!", Gradient: "yellow-400,orange-400,red-400", Accent: "amber-900"},
}

var avatars = []string{
	"🦊", "🦁", "🦄", "🐸", "🐼", "🐯", "🤖", "👾", "👽", "🦸", "🧚", "🐱", "🐶", "🚀",
}

var topics = []domain.Topic{
	{ID: domain.TopicAddition, Label: "Összeadás"},
	{ID: domain.TopicSubtraction, Label: "Kivonás"},
	{ID: domain.TopicMultiplication, Label: "Szorzás"},
	{ID: domain.TopicDivision, Label: "Osztás"},
	{ID: domain.TopicRounding10, Label: "Kerekítés 10-esre"},
	{ID: domain.TopicRounding100, Label: "Kerekítés 100-asra"},
	{ID: domain.TopicMixed, Label: "Vegyes Feladatok"},
}

var designs = map[domain.DesignTheme]domain.DesignAttributes{
	domain.DesignBoy: {
		Theme:      domain.DesignBoy,
		Title:      "Galaktikus",
		Emoji:      "🚀",
		Tagline:    "Sötét színek, neon fények",
		Background: "#0f172a",
		Text:       "#ffffff",
		Accent:     "#22d3ee",
		Primary:    "#2563eb",
	},
	domain.DesignGirl: {
		Theme:      domain.DesignGirl,
		Title:      "Álomszép",
		Emoji:      "✨",
		Tagline:    "Pasztell színek, csillogás",
		Background: "#fff1f2",
		Text:       "#1e293b",
		Accent:     "#db2777",
		Primary:    "#ec4899",
	},
}

// Stickers returns the sticker catalog in canonical order.
func Stickers() []domain.Sticker {
	return append([]domain.Sticker(nil), stickers...)
}

// StickerIDs returns the canonical sticker order.
func StickerIDs() []domain.StickerID {
	ids := make([]domain.StickerID, len(stickers))
	for i, s := range stickers {
		ids[i] = s.ID
	}
	return ids
}

// Sticker looks up a sticker by id.
func Sticker(id domain.StickerID) (domain.Sticker, bool) {
	for _, s := range stickers {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Sticker{}, false
}

// AlbumThemes returns all album themes.
func AlbumThemes() []domain.AlbumTheme {
	return append([]domain.AlbumTheme(nil), albumThemes...)
}

// AlbumTheme looks up an album theme by id.
func AlbumTheme(id domain.AlbumThemeID) (domain.AlbumTheme, bool) {
	for _, t := range albumThemes {
		if t.ID == id {
			return t, true
		}
	}
	return domain.AlbumTheme{}, false
}

// Adventures returns all adventure themes.
func Adventures() []domain.AdventureTheme {
	return append([]domain.AdventureTheme(nil), adventures...)
}

// Adventure looks up an adventure theme by id.
func Adventure(id domain.AdventureThemeID) (domain.AdventureTheme, bool) {
	for _, a := range adventures {
		if a.ID == id {
			return a, true
		}
	}
	return domain.AdventureTheme{}, false
}

// Avatars returns the selectable avatar symbols.
func Avatars() []string {
	return append([]string(nil), avatars...)
}

// IsAvatar reports whether a is a selectable avatar.
func IsAvatar(a string) bool {
	for _, v := range avatars {
		if v == a {
			return true
		}
	}
	return false
}

// Topics returns the math topics in display order.
func Topics() []domain.Topic {
	return append([]domain.Topic(nil), topics...)
}

// Topic looks up a math topic.
func Topic(id domain.MathTopic) (domain.Topic, bool) {
	for _, t := range topics {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Topic{}, false
}

// Design resolves a design theme to its attribute record. Unknown values
// resolve to the default theme.
func Design(d domain.DesignTheme) domain.DesignAttributes {
	if attrs, ok := designs[d]; ok {
		return attrs
	}
	return designs[domain.DefaultDesignTheme]
}

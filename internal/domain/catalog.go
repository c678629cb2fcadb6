package domain

// Sticker is a collectible catalog item.
type Sticker struct {
	ID   StickerID `json:"id"`
	Name string    `json:"name"`
	URL  string    `json:"url"`
}

// AlbumTheme is a background style for the sticker album.
type AlbumTheme struct {
	ID         AlbumThemeID `json:"id"`
	Name       string       `json:"name"`
	Background string       `json:"background"`
	Preview    string       `json:"preview"`
}

// AdventureTheme is the narrative setting used to flavor question text.
type AdventureTheme struct {
	ID          AdventureThemeID `json:"id"`
	Name        string           `json:"name"`
	Emoji       string           `json:"emoji"`
	Description string           `json:"description"`
	Gradient    string           `json:"gradient"`
	Accent      string           `json:"accent"`
}

// DesignAttributes is the fixed attribute record a DesignTheme resolves to.
type DesignAttributes struct {
	Theme      DesignTheme `json:"theme"`
	Title      string      `json:"title"`
	Emoji      string      `json:"emoji"`
	Tagline    string      `json:"tagline"`
	Background string      `json:"background"`
	Text       string      `json:"text"`
	Accent     string      `json:"accent"`
	Primary    string      `json:"primary"`
}

// Topic describes a MathTopic for display and prompting.
type Topic struct {
	ID    MathTopic `json:"id"`
	Label string    `json:"label"`
}

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

// ErrUnknownIntent is returned by DecodeIntent for unregistered kinds.
var ErrUnknownIntent = errors.New("unknown intent")

// Intent is a user action dispatched to the machine.
type Intent interface {
	Kind() string
}

type (
	SelectDesignTheme struct {
		Theme domain.DesignTheme `json:"theme"`
	}
	SubmitProfile struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	OpenPlay        struct{}
	OpenAlbum       struct{}
	OpenStats       struct{}
	SelectAdventure struct {
		Adventure domain.AdventureThemeID `json:"adventure"`
	}
	ConfirmTopics struct {
		Topics []domain.MathTopic `json:"topics"`
	}
	Answer struct {
		Option float64 `json:"option"`
	}
	Back       struct{}
	ReturnHome struct{}

	ReorderStickers struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	SelectAlbumTheme struct {
		Theme domain.AlbumThemeID `json:"theme"`
	}
	RequestStickerEdit struct {
		Sticker     domain.StickerID `json:"sticker"`
		Instruction string           `json:"instruction"`
	}
	AcceptStickerEdit  struct{}
	DiscardStickerEdit struct{}
)

func (SelectDesignTheme) Kind() string  { return "select_design_theme" }
func (SubmitProfile) Kind() string      { return "submit_profile" }
func (OpenPlay) Kind() string           { return "open_play" }
func (OpenAlbum) Kind() string          { return "open_album" }
func (OpenStats) Kind() string          { return "open_stats" }
func (SelectAdventure) Kind() string    { return "select_adventure" }
func (ConfirmTopics) Kind() string      { return "confirm_topics" }
func (Answer) Kind() string             { return "answer" }
func (Back) Kind() string               { return "back" }
func (ReturnHome) Kind() string         { return "return_home" }
func (ReorderStickers) Kind() string    { return "reorder_stickers" }
func (SelectAlbumTheme) Kind() string   { return "select_album_theme" }
func (RequestStickerEdit) Kind() string { return "request_sticker_edit" }
func (AcceptStickerEdit) Kind() string  { return "accept_sticker_edit" }
func (DiscardStickerEdit) Kind() string { return "discard_sticker_edit" }

var intentDecoders = map[string]func(json.RawMessage) (Intent, error){
	SelectDesignTheme{}.Kind():  decodeInto[SelectDesignTheme],
	SubmitProfile{}.Kind():      decodeInto[SubmitProfile],
	OpenPlay{}.Kind():           decodeInto[OpenPlay],
	OpenAlbum{}.Kind():          decodeInto[OpenAlbum],
	OpenStats{}.Kind():          decodeInto[OpenStats],
	SelectAdventure{}.Kind():    decodeInto[SelectAdventure],
	ConfirmTopics{}.Kind():      decodeInto[ConfirmTopics],
	Answer{}.Kind():             decodeInto[Answer],
	Back{}.Kind():               decodeInto[Back],
	ReturnHome{}.Kind():         decodeInto[ReturnHome],
	ReorderStickers{}.Kind():    decodeInto[ReorderStickers],
	SelectAlbumTheme{}.Kind():   decodeInto[SelectAlbumTheme],
	RequestStickerEdit{}.Kind(): decodeInto[RequestStickerEdit],
	AcceptStickerEdit{}.Kind():  decodeInto[AcceptStickerEdit],
	DiscardStickerEdit{}.Kind(): decodeInto[DiscardStickerEdit],
}

func decodeInto[T Intent](raw json.RawMessage) (Intent, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeIntent builds an intent from its kind and JSON payload.
func DecodeIntent(kind string, payload json.RawMessage) (Intent, error) {
	dec, ok := intentDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, kind)
	}
	in, err := dec(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return in, nil
}

// IntentKinds lists the registered intent kinds in sorted order.
func IntentKinds() []string {
	return slices.Sorted(maps.Keys(intentDecoders))
}

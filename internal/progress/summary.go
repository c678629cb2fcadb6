package progress

import (
	"math"

	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

// Summary is the read model behind the stats screen.
type Summary struct {
	CorrectAnswers    int  `json:"correct_answers"`
	WrongAnswers      int  `json:"wrong_answers"`
	GamesPlayed       int  `json:"games_played"`
	TotalAnswers      int  `json:"total_answers"`
	Accuracy          int  `json:"accuracy"` // percent, rounded
	StickersCollected int  `json:"stickers_collected"`
	StickersTotal     int  `json:"stickers_total"`
	AlbumProgress     int  `json:"album_progress"` // percent, rounded
	Empty             bool `json:"empty"`
}

// Summarize derives the stats screen figures.
func Summarize(stats domain.ProgressStats) Summary {
	total := stats.CorrectAnswers + stats.WrongAnswers
	return Summary{
		CorrectAnswers:    stats.CorrectAnswers,
		WrongAnswers:      stats.WrongAnswers,
		GamesPlayed:       stats.GamesPlayed,
		TotalAnswers:      total,
		Accuracy:          percent(stats.CorrectAnswers, total),
		StickersCollected: len(stats.StickersCollected),
		StickersTotal:     len(catalog.StickerIDs()),
		AlbumProgress:     AlbumProgress(stats),
		Empty:             total == 0,
	}
}

// AlbumProgress returns the share of the catalog already collected.
func AlbumProgress(stats domain.ProgressStats) int {
	return percent(len(stats.StickersCollected), len(catalog.StickerIDs()))
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

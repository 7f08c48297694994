package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkNewBest       BookmarkType = "new_best"
	BookmarkBreakthrough  BookmarkType = "breakthrough"
	BookmarkLastTry       BookmarkType = "last_try"
	BookmarkRejectionWave BookmarkType = "rejection_wave"
	BookmarkStalled       BookmarkType = "stalled"
)

// Bookmark marks a generation worth a closer look.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Generation  int          `csv:"generation" json:"generation"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector watches generation stats for notable moments.
type BookmarkDetector struct {
	// Rolling history of accepted generations (circular buffer)
	history     []GenerationStats
	historySize int
	historyIdx  int
	historyFull bool

	triesBudget int
	bestScore   float64 // best single score seen so far
}

// NewBookmarkDetector creates a detector with the given history size.
// triesBudget is tries_per_generation.
func NewBookmarkDetector(historySize, triesBudget int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for breakthrough detection
	}
	return &BookmarkDetector{
		history:     make([]GenerationStats, historySize),
		historySize: historySize,
		triesBudget: triesBudget,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats GenerationStats) []Bookmark {
	var bookmarks []Bookmark

	if !stats.Improved {
		bookmarks = append(bookmarks, Bookmark{
			Type:       BookmarkStalled,
			Generation: stats.Generation,
			Description: fmt.Sprintf("No improvement on mean %.4f after %d tries",
				stats.PrevMean, stats.Tries),
		})
		if b := bd.checkRejectionWave(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		return bookmarks
	}

	if b := bd.checkNewBest(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkBreakthrough(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkLastTry(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkRejectionWave(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	if stats.BestScore > bd.bestScore {
		bd.bestScore = stats.BestScore
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats GenerationStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []GenerationStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkNewBest fires when a survivor beats every earlier one by at least 5%.
func (bd *BookmarkDetector) checkNewBest(stats GenerationStats) *Bookmark {
	if bd.bestScore == 0 || stats.BestScore < bd.bestScore*1.05 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkNewBest,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("Best score %.4f up from %.4f", stats.BestScore, bd.bestScore),
	}
}

// checkBreakthrough fires when the mean gain is more than twice the rolling
// average gain.
func (bd *BookmarkDetector) checkBreakthrough(stats GenerationStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var totalGain float64
	for _, h := range history {
		totalGain += h.ScoreMean - h.PrevMean
	}
	avgGain := totalGain / float64(len(history))
	if avgGain <= 0 {
		return nil
	}

	gain := stats.ScoreMean - stats.PrevMean
	if gain > avgGain*2.0 {
		return &Bookmark{
			Type:        BookmarkBreakthrough,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Mean gain %.4f is %.1fx average (%.4f)", gain, gain/avgGain, avgGain),
		}
	}
	return nil
}

// checkLastTry fires when a generation only improved on its final try.
func (bd *BookmarkDetector) checkLastTry(stats GenerationStats) *Bookmark {
	if bd.triesBudget < 2 || stats.Tries < bd.triesBudget {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkLastTry,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("Improved on try %d of %d", stats.Tries, bd.triesBudget),
	}
}

// checkRejectionWave fires when at least 90% of the final try's children
// were rejected outright.
func (bd *BookmarkDetector) checkRejectionWave(stats GenerationStats) *Bookmark {
	if stats.Children == 0 {
		return nil
	}
	rejected := stats.RejectedDisconnected + stats.RejectedRadius + stats.RejectedDensity + stats.RejectedEmpty
	frac := float64(rejected) / float64(stats.Children)
	if frac < 0.9 {
		return nil
	}
	return &Bookmark{
		Type:       BookmarkRejectionWave,
		Generation: stats.Generation,
		Description: fmt.Sprintf("%d of %d children rejected (empty %d, disconnected %d, radius %d, density %d)",
			rejected, stats.Children, stats.RejectedEmpty, stats.RejectedDisconnected, stats.RejectedRadius, stats.RejectedDensity),
	}
}

package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCrowdSpike         BookmarkType = "crowd_spike"
	BookmarkCullWave           BookmarkType = "cull_wave"
	BookmarkPopulationRecovery BookmarkType = "population_recovery"
	BookmarkPopulationCrash    BookmarkType = "population_crash"
	BookmarkStablePopulation   BookmarkType = "stable_population"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentPopMin       int // minimum population in recent history
	recentPopPeak      int // peak population in recent history
	stableWindowsCount int // consecutive windows with a steady population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable population detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if stats.DeathsCull > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkCullWave,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Balancer culled %d agents at population %d", stats.DeathsCull, stats.Population),
		})
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkCrowdSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPopulationRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStablePopulation(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.Population < bd.recentPopMin || bd.recentPopMin == 0 {
		bd.recentPopMin = stats.Population
	}
	if stats.Population > bd.recentPopPeak {
		bd.recentPopPeak = stats.Population
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkCrowdSpike fires when crowd deaths exceed twice the rolling average.
func (bd *BookmarkDetector) checkCrowdSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.DeathsCrowd
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.DeathsCrowd) > avg*2.0 && stats.DeathsCrowd >= 10 {
		return &Bookmark{
			Type:        BookmarkCrowdSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Crowd deaths %d are %.1fx average (%.1f)", stats.DeathsCrowd, float64(stats.DeathsCrowd)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPopulationRecovery(stats WindowStats) *Bookmark {
	if bd.recentPopMin == 0 || bd.recentPopMin > 20 {
		return nil
	}

	threshold := bd.recentPopMin * 3
	if stats.Population >= threshold && stats.Population >= 30 {
		oldMin := bd.recentPopMin
		bd.recentPopMin = stats.Population

		return &Bookmark{
			Type:        BookmarkPopulationRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population recovered from %d to %d", oldMin, stats.Population),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentPopPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Population)/float64(bd.recentPopPeak)
	if drop > 0.30 && stats.Population < bd.recentPopPeak-10 {
		oldPeak := bd.recentPopPeak
		bd.recentPopPeak = stats.Population

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Population),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStablePopulation(stats WindowStats) *Bookmark {
	if stats.Population < 10 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.Population)
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := float64(h.Population) - mean
		variance += d * d
	}
	variance /= 4

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if cv2 < 0.04 { // CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 {
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable population around %d over 5+ windows", stats.Population),
		}
	}
	return nil
}

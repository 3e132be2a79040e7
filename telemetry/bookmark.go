package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHarvestSurge   BookmarkType = "harvest_surge"
	BookmarkHarvestStall   BookmarkType = "harvest_stall"
	BookmarkSwarmBoom      BookmarkType = "swarm_boom"
	BookmarkCollisionStorm BookmarkType = "collision_storm"
	BookmarkStageCleared   BookmarkType = "stage_cleared"
)

// Detection thresholds.
const (
	surgeFactor     = 2.0
	surgeMinHarvest = 20
	boomFactor      = 2.0
	boomMinGrowth   = 20
	stormFactor     = 3.0
	stormMin        = 100
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Tick        int32
	Description string
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

	recentEntityMin int  // smallest swarm since the last boom, 0 = none yet
	stalled         bool // a stall was reported and harvesting has not resumed
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if stats.StageResets > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkStageCleared,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Reached stage %d with score %d", stats.Stage, stats.Score),
		})
	}

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkHarvestSurge,
			bd.checkHarvestStall,
			bd.checkSwarmBoom,
			bd.checkCollisionStorm,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)

	if stats.Harvests > 0 {
		bd.stalled = false
	}
	// An empty swarm is no baseline; the next non-empty window replaces it.
	if bd.recentEntityMin <= 0 || stats.Entities < bd.recentEntityMin {
		bd.recentEntityMin = stats.Entities
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

func (bd *BookmarkDetector) checkHarvestSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Harvests
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 || stats.Harvests < surgeMinHarvest {
		return nil
	}

	if float64(stats.Harvests) > avg*surgeFactor {
		return &Bookmark{
			Type:        BookmarkHarvestSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d harvests is %.1fx average (%.1f)", stats.Harvests, float64(stats.Harvests)/avg, avg),
		}
	}
	return nil
}

// checkHarvestStall fires once when a harvesting swarm stops harvesting outside a
// depletion phase.
func (bd *BookmarkDetector) checkHarvestStall(stats WindowStats) *Bookmark {
	if bd.stalled || stats.Harvests > 0 || stats.Entities == 0 || stats.Phase == "depleting" {
		return nil
	}
	last := bd.history[(bd.historyIdx+bd.historySize-1)%bd.historySize]
	if last.Harvests == 0 {
		return nil
	}

	bd.stalled = true
	return &Bookmark{
		Type:        BookmarkHarvestStall,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d entities stopped harvesting (%d last window)", stats.Entities, last.Harvests),
	}
}

func (bd *BookmarkDetector) checkSwarmBoom(stats WindowStats) *Bookmark {
	low := bd.recentEntityMin
	if low <= 0 || stats.Entities-low < boomMinGrowth || float64(stats.Entities) < float64(low)*boomFactor {
		return nil
	}

	bd.recentEntityMin = stats.Entities
	return &Bookmark{
		Type:        BookmarkSwarmBoom,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Swarm grew from %d to %d entities", low, stats.Entities),
	}
}

func (bd *BookmarkDetector) checkCollisionStorm(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Collisions < stormMin {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Collisions
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 || float64(stats.Collisions) <= avg*stormFactor {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkCollisionStorm,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d collisions is %.1fx average (%.1f)", stats.Collisions, float64(stats.Collisions)/avg, avg),
	}
}

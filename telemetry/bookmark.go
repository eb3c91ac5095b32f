package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/homeostat/components"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkDamageBurst  BookmarkType = "damage_burst"
	BookmarkDriveLow     BookmarkType = "drive_low"
	BookmarkFaultStreak  BookmarkType = "fault_streak"
	BookmarkDithering    BookmarkType = "dithering"
	BookmarkSteadyCourse BookmarkType = "steady_course"
)

// lowDriveLevel is the level below which a drive is bookmarked once.
const lowDriveLevel = 0.25

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

// BookmarkDetector detects notable moments in a run from window stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	lowSeen            [3]bool // drive already bookmarked as low
	steadyWindowsCount int     // consecutive windows without damage or switching
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady course detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkDamageBurst(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	bookmarks = append(bookmarks, bd.checkDriveLow(stats)...)
	if b := bd.checkFaultStreak(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkDithering(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSteadyCourse(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

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

// checkDamageBurst fires when the window's integrity loss is more than
// twice the rolling average. A first hit after quiet windows always fires.
func (bd *BookmarkDetector) checkDamageBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.IntegrityLoss == 0 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.IntegrityLoss
	}
	avg := total / float64(len(history))

	if stats.IntegrityLoss <= avg*2.0 {
		return nil
	}

	desc := fmt.Sprintf("Integrity loss %.4f after quiet windows", stats.IntegrityLoss)
	if avg > 0 {
		desc = fmt.Sprintf("Integrity loss %.4f is %.1fx average (%.4f)", stats.IntegrityLoss, stats.IntegrityLoss/avg, avg)
	}
	return &Bookmark{
		Type:        BookmarkDamageBurst,
		Tick:        stats.WindowEndTick,
		Description: desc,
	}
}

// checkDriveLow fires once per drive the first time its level ends a
// window below lowDriveLevel.
func (bd *BookmarkDetector) checkDriveLow(stats WindowStats) []Bookmark {
	var out []Bookmark
	levels := [3]float64{stats.Energy, stats.Tegument, stats.Integrity}
	for i, kind := range components.AllDrives() {
		if bd.lowSeen[i] || levels[i] >= lowDriveLevel {
			continue
		}
		bd.lowSeen[i] = true
		out = append(out, Bookmark{
			Type:        BookmarkDriveLow,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%s fell to %.3f", kind, levels[i]),
		})
	}
	return out
}

// checkFaultStreak fires when arbitration ties held the robot still for at
// least half the window.
func (bd *BookmarkDetector) checkFaultStreak(stats WindowStats) *Bookmark {
	if stats.Ticks == 0 || stats.FaultFrac < 0.5 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFaultStreak,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Fault group active %.0f%% of the window", stats.FaultFrac*100),
	}
}

// checkDithering fires when the winning group changed on more than half
// of the ticks in the window.
func (bd *BookmarkDetector) checkDithering(stats WindowStats) *Bookmark {
	if stats.Ticks < 4 || stats.Switches*2 <= stats.Ticks {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkDithering,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d behavior switches in %d ticks", stats.Switches, stats.Ticks),
	}
}

// checkSteadyCourse fires exactly once after five consecutive windows with
// no damage and no change of behavior.
func (bd *BookmarkDetector) checkSteadyCourse(stats WindowStats) *Bookmark {
	if stats.IntegrityLoss > 0 || stats.Switches > 0 {
		bd.steadyWindowsCount = 0
		return nil
	}

	bd.steadyWindowsCount++
	if bd.steadyWindowsCount == 5 {
		return &Bookmark{
			Type:        BookmarkSteadyCourse,
			Tick:        stats.WindowEndTick,
			Description: "No damage and no behavior switches over 5 windows",
		}
	}

	return nil
}

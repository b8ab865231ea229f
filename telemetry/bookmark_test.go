package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_CrowdSpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 100, Population: 200, DeathsCrowd: 5})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Population: 200, DeathsCrowd: 20})
	if !hasBookmark(bookmarks, BookmarkCrowdSpike) {
		t.Error("expected crowd_spike bookmark")
	}
}

func TestBookmarkDetector_CullWave(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bookmarks := bd.Check(WindowStats{WindowEndTick: 100, Population: 1100, DeathsCull: 40})
	if !hasBookmark(bookmarks, BookmarkCullWave) {
		t.Error("expected cull_wave bookmark")
	}
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 200, Population: 1000}), BookmarkCullWave) {
		t.Error("cull_wave without culls")
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 100, Population: 100})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Population: 50})
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("expected population_crash bookmark")
	}
}

func TestBookmarkDetector_PopulationRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 100, Population: 10})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 300, Population: 40})
	if !hasBookmark(bookmarks, BookmarkPopulationRecovery) {
		t.Error("expected population_recovery bookmark")
	}
}

func TestBookmarkDetector_StablePopulation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := -1
	for i := 0; i < 12; i++ {
		if hasBookmark(bd.Check(WindowStats{WindowEndTick: i * 100, Population: 150}), BookmarkStablePopulation) {
			if fired >= 0 {
				t.Fatalf("stable_population fired twice (windows %d and %d)", fired, i)
			}
			fired = i
		}
	}
	if fired != 8 {
		t.Errorf("stable_population fired at window %d, want 8", fired)
	}
}

package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timelineArgs(extra ...string) []string {
	args := []string{"--format", "json", "timeline", "-r", rohini, "-e", birthEpoch, "--horizon", "13", "-d", "0"}
	return append(args, extra...)
}

func TestTimelineWithoutCache(t *testing.T) {
	out, _, err := execute(t, timelineArgs()...)
	require.NoError(t, err)

	resp := decode[TimelineOutput](t, out)
	assert.False(t, resp.Data.Cached)
	assert.NotEmpty(t, resp.Data.KeyHash)
	assert.Equal(t, "VIMSOTTARI", resp.Data.Timeline.Key.System)
	assert.Equal(t, int64(13), resp.Data.Timeline.Key.HorizonYears)
	assert.Equal(t, []string{"Moon", "Mars"}, rulers(resp.Data.Timeline.Periods))
}

func TestTimelineDepthOrdersParentsFirst(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "timeline",
		"-r", rohini, "-e", birthEpoch, "--horizon", "13", "-d", "1")
	require.NoError(t, err)

	resp := decode[TimelineOutput](t, out)
	periods := resp.Data.Timeline.Periods
	require.NotEmpty(t, periods)
	assert.Equal(t, "Moon", periods[0].Ruler)
	assert.Equal(t, int64(0), periods[0].Depth)
	assert.Equal(t, int64(1), periods[1].Depth)
}

func TestTimelineRequiresEpoch(t *testing.T) {
	_, _, err := execute(t, "timeline", "-r", rohini)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTimelineZodiacSystem(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "timeline", "-s", "KAKSHYA", "-d", "0")
	require.NoError(t, err)

	resp := decode[TimelineOutput](t, out)
	assert.Len(t, resp.Data.Timeline.Periods, 96)
	assert.Equal(t, "Saturn", resp.Data.Timeline.Periods[0].Ruler)
}

func TestTimelineCacheRoundTrip(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache.db")

	out, _, err := execute(t, timelineArgs("--cache", cache)...)
	require.NoError(t, err)
	first := decode[TimelineOutput](t, out)
	assert.False(t, first.Data.Cached)

	out, _, err = execute(t, timelineArgs("--cache", cache)...)
	require.NoError(t, err)
	second := decode[TimelineOutput](t, out)
	assert.True(t, second.Data.Cached)
	assert.Equal(t, first.Data.KeyHash, second.Data.KeyHash)
	assert.Equal(t, first.Data.Timeline, second.Data.Timeline)

	out, _, err = execute(t, timelineArgs("--cache", cache, "--no-cache")...)
	require.NoError(t, err)
	assert.False(t, decode[TimelineOutput](t, out).Data.Cached)

	out, _, err = execute(t, "--cache", cache, "--format", "json", "cache", "list")
	require.NoError(t, err)
	list := decode[CacheListOutput](t, out)
	require.Len(t, list.Data.Timelines, 1)
	assert.Equal(t, first.Data.KeyHash, list.Data.Timelines[0].KeyHash)
	assert.Equal(t, int64(2), list.Data.Timelines[0].PeriodCount)

	out, _, err = execute(t, "--cache", cache, "--format", "json", "cache", "system", "vimsottari")
	require.NoError(t, err)
	sys := decode[CacheSystemOutput](t, out)
	assert.Equal(t, "VIMSOTTARI", sys.Data.System.ID)
	assert.NotEmpty(t, sys.Data.Hash)

	out, _, err = execute(t, "--cache", cache, "--format", "json", "cache", "purge", "VIMSOTTARI")
	require.NoError(t, err)
	assert.Equal(t, int64(1), decode[CachePurgeOutput](t, out).Data.Removed)

	out, _, err = execute(t, "--cache", cache, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no cached timelines")
}

func TestCacheSystemNotCached(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache.db")

	_, _, err := execute(t, "--cache", cache, "cache", "system", "YOGINI")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCacheRequiresPath(t *testing.T) {
	_, _, err := execute(t, "cache", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no cache configured")
}

func TestTimelineCacheMissesAfterBalanceChange(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache.db")
	dir := t.TempDir()
	writeFile(t, dir, "triad.cue", triadCUE)

	args := []string{"--cache", cache, "--systems", dir, "--format", "json",
		"timeline", "-s", "TRIAD", "-r", "45:00", "-e", birthEpoch, "-d", "0"}

	out, _, err := execute(t, args...)
	require.NoError(t, err)
	first := decode[TimelineOutput](t, out)
	assert.False(t, first.Data.Cached)
	assert.Equal(t, "Moon", first.Data.Timeline.Balance.Ruler)
	assert.Equal(t, int64(6), first.Data.Timeline.Key.HorizonYears)

	out, _, err = execute(t, args...)
	require.NoError(t, err)
	assert.True(t, decode[TimelineOutput](t, out).Data.Cached)

	// Same key, but shifting the span offset moves the birth ruler.
	writeFile(t, dir, "triad.cue", strings.Replace(triadCUE,
		`span_arcmin: 1800}`, `span_arcmin: 1800, offset: 1}`, 1))

	out, _, err = execute(t, args...)
	require.NoError(t, err)
	third := decode[TimelineOutput](t, out)
	assert.False(t, third.Data.Cached)
	assert.Equal(t, first.Data.KeyHash, third.Data.KeyHash)
	assert.Equal(t, "Mars", third.Data.Timeline.Balance.Ruler)
}

package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chenBenjamin97/football-analyzer/pkg/possession"
	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotPossessionWritesImage(t *testing.T) {
	tl := possession.NewTimeline([]tracks.Team{tracks.TeamNone, tracks.Team1, tracks.Team1, tracks.Team2})
	path := filepath.Join(t.TempDir(), "possession.png")

	require.NoError(t, PlotPossession(tl, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotPossessionEmptyTimeline(t *testing.T) {
	err := PlotPossession(possession.NewTimeline(nil), filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}

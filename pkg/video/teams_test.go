package video

import (
	"image"
	"image/color"
	"testing"

	"github.com/chenBenjamin97/football-analyzer/pkg/geometry"
	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

//halfWhiteFrame is black on the left half and white on the right half
func halfWhiteFrame() gocv.Mat {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 200, 200, gocv.MatTypeCV8UC3)
	gocv.Rectangle(&frame, image.Rect(100, 0, 200, 200), color.RGBA{255, 255, 255, 255}, -1)
	return frame
}

func TestUniformClassifierSplitsByBrightness(t *testing.T) {
	frame := halfWhiteFrame()
	defer frame.Close()

	players := map[int]*tracks.Record{
		1: {Box: geometry.Box(10, 10, 70, 100)},
		2: {Box: geometry.Box(120, 10, 180, 100)},
		3: nil,
	}

	got := NewUniformClassifier().Classify(frame, players)

	require.Len(t, got, 2)
	assert.Equal(t, tracks.Team1, got[1].Team)
	assert.Equal(t, tracks.Team2, got[2].Team)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, got[1].Color)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, got[2].Color)
}

func TestUniformClassifierIsSticky(t *testing.T) {
	frame := halfWhiteFrame()
	defer frame.Close()
	white := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 200, 200, gocv.MatTypeCV8UC3)
	defer white.Close()

	c := NewUniformClassifier()
	players := map[int]*tracks.Record{
		1: {Box: geometry.Box(10, 10, 70, 100)},
		2: {Box: geometry.Box(120, 10, 180, 100)},
	}
	c.Classify(frame, players)

	got := c.Classify(white, players)
	assert.Equal(t, tracks.Team1, got[1].Team)
	assert.Equal(t, tracks.Team2, got[2].Team)
}

func TestUniformClassifierMatchesLatePlayerToNearestTeam(t *testing.T) {
	frame := halfWhiteFrame()
	defer frame.Close()

	c := NewUniformClassifier()
	c.Classify(frame, map[int]*tracks.Record{
		1: {Box: geometry.Box(10, 10, 70, 100)},
		2: {Box: geometry.Box(120, 10, 180, 100)},
	})

	got := c.Classify(frame, map[int]*tracks.Record{
		3: {Box: geometry.Box(10, 100, 70, 190)},
	})
	require.Contains(t, got, 3)
	assert.Equal(t, tracks.Team1, got[3].Team)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, got[3].Color)

	got = c.Classify(frame, map[int]*tracks.Record{
		4: {Box: geometry.Box(120, 100, 180, 190)},
	})
	require.Contains(t, got, 4)
	assert.Equal(t, tracks.Team2, got[4].Team)
}

func TestUniformClassifierWaitsForBothTeams(t *testing.T) {
	frame := halfWhiteFrame()
	defer frame.Close()

	c := NewUniformClassifier()
	lone := map[int]*tracks.Record{2: {Box: geometry.Box(120, 10, 180, 100)}}
	assert.Empty(t, c.Classify(frame, lone))

	sameShirts := map[int]*tracks.Record{
		2: {Box: geometry.Box(120, 10, 180, 100)},
		4: {Box: geometry.Box(120, 100, 180, 190)},
	}
	assert.Empty(t, c.Classify(frame, sameShirts))

	got := c.Classify(frame, map[int]*tracks.Record{
		1: {Box: geometry.Box(10, 10, 70, 100)},
		2: {Box: geometry.Box(120, 10, 180, 100)},
	})
	assert.Equal(t, tracks.Team1, got[1].Team)
	assert.Equal(t, tracks.Team2, got[2].Team)
}

func TestUniformClassifierSkipsBoxesOutsideFrame(t *testing.T) {
	frame := halfWhiteFrame()
	defer frame.Close()

	got := NewUniformClassifier().Classify(frame, map[int]*tracks.Record{
		5: {Box: geometry.Box(500, 500, 560, 600)},
	})
	assert.Empty(t, got)
}

func TestShirtRectIsClippedMiddleThird(t *testing.T) {
	assert.Equal(t, image.Rect(20, 30, 40, 60), shirtRect(geometry.Box(0, 0, 60, 90), 100, 100))
	assert.Equal(t, image.Rect(90, 30, 100, 60), shirtRect(geometry.Box(70, 0, 130, 90), 100, 100))
}

type fixedTeams map[int]tracks.Team

func (f fixedTeams) Classify(_ gocv.Mat, players map[int]*tracks.Record) map[int]TeamAssignment {
	res := make(map[int]TeamAssignment)
	for id := range players {
		if team, ok := f[id]; ok {
			res[id] = TeamAssignment{Team: team, Color: color.RGBA{0, 0, 255, 255}}
		}
	}
	return res
}

func TestAssignTeamsWritesRecords(t *testing.T) {
	frames := blankFrames(1)
	defer CloseFrames(frames)

	store := tracks.NewStore(1)
	store.Players[0][1] = &tracks.Record{Box: geometry.Box(0, 0, 10, 10)}
	store.Players[0][2] = &tracks.Record{Box: geometry.Box(0, 0, 10, 10)}

	require.NoError(t, AssignTeams(fixedTeams{1: tracks.Team2, 7: tracks.Team1}, frames, store))

	assert.Equal(t, tracks.Team2, store.Players[0][1].Team)
	require.NotNil(t, store.Players[0][1].TeamColor)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, *store.Players[0][1].TeamColor)
	assert.Equal(t, tracks.TeamNone, store.Players[0][2].Team)
	assert.Nil(t, store.Players[0][2].TeamColor)

	assert.ErrorIs(t, AssignTeams(fixedTeams{}, blankFrames(0), store), tracks.ErrStoreMismatch)
}

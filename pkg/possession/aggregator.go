package possession

import (
	"fmt"

	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
)

//Timeline is the team in possession on every frame with running per team frame counts
type Timeline struct {
	Teams []tracks.Team

	team1 []int
	team2 []int
}

//NewTimeline builds the running counts for an already known possession sequence
func NewTimeline(teams []tracks.Team) *Timeline {
	tl := &Timeline{
		Teams: teams,
		team1: make([]int, len(teams)),
		team2: make([]int, len(teams)),
	}

	c1, c2 := 0, 0
	for i, team := range teams {
		switch team {
		case tracks.Team1:
			c1++
		case tracks.Team2:
			c2++
		}
		tl.team1[i] = c1
		tl.team2[i] = c2
	}

	return tl
}

//Len returns the number of frames on the timeline
func (tl *Timeline) Len() int {
	return len(tl.Teams)
}

//Counts returns how many frames, up to and including frame, each team had the ball
func (tl *Timeline) Counts(frame int) (team1, team2 int, err error) {
	if frame < 0 || frame >= len(tl.Teams) {
		return 0, 0, fmt.Errorf("frame %d out of timeline range [0, %d)", frame, len(tl.Teams))
	}
	return tl.team1[frame], tl.team2[frame], nil
}

//Shares returns each team's cumulative share of ball control up to and including frame.
//Both shares are 0 while no frame was attributed to any team.
func (tl *Timeline) Shares(frame int) (team1, team2 float64, err error) {
	c1, c2, err := tl.Counts(frame)
	if err != nil {
		return 0, 0, err
	}

	total := c1 + c2
	if total == 0 {
		return 0, 0, nil
	}
	return float64(c1) / float64(total), float64(c2) / float64(total), nil
}

//Aggregate walks the store once, frame by frame, marks the ball holder of every frame and returns who had the ball.
//When nobody can be assigned, or the holder has no team yet, the previous frame's team is kept. Before any assignment the team is tracks.TeamNone.
func Aggregate(store *tracks.Store, assigner *Assigner) *Timeline {
	teams := make([]tracks.Team, store.Len())
	lastKnown := tracks.TeamNone

	for frameNum := range teams {
		teams[frameNum] = lastKnown

		ball := store.Ball[frameNum]
		if ball == nil {
			continue
		}

		players := store.Players[frameNum]
		assigned := assigner.Assign(players, ball.Box)
		if assigned == NoPlayer {
			continue
		}

		player := players[assigned]
		player.HasBall = true
		if player.Team != tracks.TeamNone {
			lastKnown = player.Team
			teams[frameNum] = lastKnown
		}
	}

	return NewTimeline(teams)
}

package possession

import (
	"math"

	"github.com/chenBenjamin97/football-analyzer/pkg/geometry"
	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
	"github.com/chenBenjamin97/football-analyzer/pkg/utils"
)

//NoPlayer is returned by Assign when nobody is close enough to the ball
const NoPlayer = -1

//Assigner decides which player owns the ball on a single frame
type Assigner struct {
	//MaxDistance is exclusive: a player exactly this far from the ball does not get it
	MaxDistance float64
}

//NewAssigner returns an Assigner using utils.MaxPlayerBallDistance
func NewAssigner() *Assigner {
	return &Assigner{MaxDistance: utils.MaxPlayerBallDistance}
}

//Assign returns the track id of the player closest to the ball, or NoPlayer.
//A player's distance is the shorter of the distances from the ball center to the bottom-left and bottom-right corners of its box.
//Players are visited by ascending track id, so on equal distances the lowest id wins.
func (a *Assigner) Assign(players map[int]*tracks.Record, ball geometry.BoundingBox) int {
	ballPosition := ball.Center()

	minimumDistance := math.Inf(1)
	assigned := NoPlayer

	for _, id := range utils.SortedIDs(players) {
		player := players[id]
		if player == nil {
			continue
		}

		distance := math.Min(
			geometry.Distance(player.Box.BottomLeft(), ballPosition),
			geometry.Distance(player.Box.BottomRight(), ballPosition),
		)

		if distance < a.MaxDistance && distance < minimumDistance {
			minimumDistance = distance
			assigned = id
		}
	}

	return assigned
}

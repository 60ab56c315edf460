package video

import (
	"fmt"
	"image/color"

	"github.com/chenBenjamin97/football-analyzer/pkg/possession"
	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
	"github.com/chenBenjamin97/football-analyzer/pkg/utils"
	"gocv.io/x/gocv"
)

//Composer draws the track store and the possession timeline over video frames
type Composer struct {
	PlayerColor  color.RGBA //used for players without a team color
	RefereeColor color.RGBA
	BallColor    color.RGBA
	HolderColor  color.RGBA
	PanelAlpha   float64
}

//NewComposer returns a Composer with the default palette
func NewComposer() *Composer {
	return &Composer{
		PlayerColor:  color.RGBA{255, 0, 0, 255},
		RefereeColor: color.RGBA{255, 255, 0, 255},
		BallColor:    color.RGBA{0, 255, 0, 255},
		HolderColor:  color.RGBA{255, 0, 0, 255},
		PanelAlpha:   utils.ScoreboardAlpha,
	}
}

//Draw annotates every frame. The input frames are left untouched, the caller owns (and must close) the returned ones.
func (c *Composer) Draw(frames []gocv.Mat, store *tracks.Store, tl *possession.Timeline) ([]gocv.Mat, error) {
	if err := store.Validate(len(frames)); err != nil {
		return nil, err
	}
	if tl.Len() != len(frames) {
		return nil, fmt.Errorf("Draw: possession timeline has %d frames, video has %d", tl.Len(), len(frames))
	}

	out := make([]gocv.Mat, 0, len(frames))
	for frameNum, frame := range frames {
		annotated, err := c.DrawFrame(frame, frameNum, store, tl)
		if err != nil {
			CloseFrames(out)
			return nil, err
		}
		out = append(out, annotated)
	}
	return out, nil
}

//DrawFrame returns an annotated copy of frame, which is frame number frameNum of the video.
//Drawing order: players and referees, ball, ball holder, possession panel.
func (c *Composer) DrawFrame(frame gocv.Mat, frameNum int, store *tracks.Store, tl *possession.Timeline) (gocv.Mat, error) {
	if frameNum < 0 || frameNum >= store.Len() {
		return gocv.Mat{}, fmt.Errorf("DrawFrame: %w: frame %d of %d", tracks.ErrStoreMismatch, frameNum, store.Len())
	}
	team1, team2, err := tl.Shares(frameNum)
	if err != nil {
		return gocv.Mat{}, err
	}

	out := frame.Clone()

	players := store.Players[frameNum]
	for _, id := range utils.SortedIDs(players) {
		player := players[id]
		if player == nil || player.Box.IsZero() {
			continue
		}
		plotColor := c.PlayerColor
		if player.TeamColor != nil {
			plotColor = *player.TeamColor
		}
		trackID := id
		drawEllipse(&out, player.Box, plotColor, &trackID)
	}

	referees := store.Referees[frameNum]
	for _, id := range utils.SortedIDs(referees) {
		referee := referees[id]
		if referee == nil || referee.Box.IsZero() {
			continue
		}
		drawEllipse(&out, referee.Box, c.RefereeColor, nil)
	}

	if ball := store.Ball[frameNum]; ball != nil {
		drawTriangle(&out, ball.Box, c.BallColor)
	}

	for _, id := range utils.SortedIDs(players) {
		if player := players[id]; player != nil && player.HasBall && !player.Box.IsZero() {
			drawTriangle(&out, player.Box, c.HolderColor)
		}
	}

	drawTeamBallControl(&out, team1, team2, c.PanelAlpha)

	return out, nil
}

//CloseFrames releases every frame of a slice
func CloseFrames(frames []gocv.Mat) {
	for i := range frames {
		frames[i].Close()
	}
}

package video

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/chenBenjamin97/football-analyzer/pkg/geometry"
	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
	"gocv.io/x/gocv"
)

//TeamAssignment is the team of one player and the color it is drawn with
type TeamAssignment struct {
	Team  tracks.Team
	Color color.RGBA
}

//TeamClassifier decides the team of every player on a frame
type TeamClassifier interface {
	Classify(frame gocv.Mat, players map[int]*tracks.Record) map[int]TeamAssignment
}

//UniformClassifier splits players in two teams by the brightness of their shirts.
//The first frame showing both a darker and a lighter group is split on its median: the darker group is Team1, the rest Team2,
//and each group's mean brightness and color become the team's reference. Every player seen later goes to the team with the nearer reference.
//Players seen before both teams are known stay unassigned. A player keeps the first team it was given.
type UniformClassifier struct {
	players    map[int]tracks.Team
	colors     map[tracks.Team]color.RGBA
	brightness map[tracks.Team]float64
}

//NewUniformClassifier returns a classifier with no remembered players
func NewUniformClassifier() *UniformClassifier {
	return &UniformClassifier{
		players:    make(map[int]tracks.Team),
		colors:     make(map[tracks.Team]color.RGBA),
		brightness: make(map[tracks.Team]float64),
	}
}

type shirtSample struct {
	id         int
	brightness float64
	color      color.RGBA
}

//Classify implements TeamClassifier
func (u *UniformClassifier) Classify(frame gocv.Mat, players map[int]*tracks.Record) map[int]TeamAssignment {
	samples := u.sampleShirts(frame, players)

	if u.calibrated() {
		for _, s := range samples {
			u.players[s.id] = u.nearestTeam(s.brightness)
		}
	} else {
		u.calibrate(samples)
	}

	res := make(map[int]TeamAssignment, len(players))
	for id := range players {
		team, ok := u.players[id]
		if !ok {
			continue
		}
		res[id] = TeamAssignment{Team: team, Color: u.colors[team]}
	}
	return res
}

func (u *UniformClassifier) calibrated() bool {
	_, ok1 := u.brightness[tracks.Team1]
	_, ok2 := u.brightness[tracks.Team2]
	return ok1 && ok2
}

//calibrate splits samples on their median brightness and records both teams' references.
//Nothing is recorded when all samples fall on the same side of the median.
func (u *UniformClassifier) calibrate(samples []shirtSample) {
	if len(samples) < 2 {
		return
	}

	brightness := make([]float64, len(samples))
	for i, s := range samples {
		brightness[i] = s.brightness
	}
	sort.Float64s(brightness)
	median := brightness[len(brightness)/2]

	groups := map[tracks.Team][]shirtSample{}
	for _, s := range samples {
		team := tracks.Team2
		if s.brightness < median {
			team = tracks.Team1
		}
		groups[team] = append(groups[team], s)
	}
	if len(groups[tracks.Team1]) == 0 || len(groups[tracks.Team2]) == 0 {
		return
	}

	for team, group := range groups {
		var gray, r, g, b float64
		for _, s := range group {
			gray += s.brightness
			r += float64(s.color.R)
			g += float64(s.color.G)
			b += float64(s.color.B)
			u.players[s.id] = team
		}
		n := float64(len(group))
		u.brightness[team] = gray / n
		u.colors[team] = color.RGBA{uint8(r / n), uint8(g / n), uint8(b / n), 255}
	}
}

//nearestTeam returns the team whose reference brightness is closest, Team1 on a tie
func (u *UniformClassifier) nearestTeam(brightness float64) tracks.Team {
	if math.Abs(brightness-u.brightness[tracks.Team1]) <= math.Abs(brightness-u.brightness[tracks.Team2]) {
		return tracks.Team1
	}
	return tracks.Team2
}

//sampleShirts measures the middle third of every player's bounding box, trying to catch the uniform only.
//Players already assigned to a team are skipped.
func (u *UniformClassifier) sampleShirts(frame gocv.Mat, players map[int]*tracks.Record) []shirtSample {
	samples := make([]shirtSample, 0, len(players))
	if frame.Empty() {
		return samples
	}

	grayFrame := gocv.NewMat()
	defer grayFrame.Close()
	gocv.CvtColor(frame, &grayFrame, gocv.ColorBGRToGray)

	for id, player := range players {
		if player == nil {
			continue
		}
		if _, ok := u.players[id]; ok {
			continue
		}

		roiRect := shirtRect(player.Box, frame.Rows(), frame.Cols())
		if roiRect.Empty() {
			continue
		}

		grayROI := grayFrame.Region(roiRect)
		colorROI := frame.Region(roiRect)
		gray := grayROI.Mean()
		bgr := colorROI.Mean()
		grayROI.Close()
		colorROI.Close()

		samples = append(samples, shirtSample{
			id:         id,
			brightness: gray.Val1,
			color:      color.RGBA{uint8(bgr.Val3), uint8(bgr.Val2), uint8(bgr.Val1), 255},
		})
	}
	return samples
}

//shirtRect returns the middle third of a bounding box, clipped to the frame
func shirtRect(box geometry.BoundingBox, frameHeight, frameWidth int) image.Rectangle {
	r := box.Rect()
	w, h := r.Dx(), r.Dy()
	shirt := image.Rect(r.Min.X+w/3, r.Min.Y+h/3, r.Max.X-w/3, r.Max.Y-h/3)
	return shirt.Intersect(image.Rect(0, 0, frameWidth, frameHeight))
}

//AssignTeams runs the classifier on every frame and stores the teams on the player records
func AssignTeams(classifier TeamClassifier, frames []gocv.Mat, store *tracks.Store) error {
	if err := store.Validate(len(frames)); err != nil {
		return err
	}

	for frameNum, frame := range frames {
		players := store.Players[frameNum]
		for id, assignment := range classifier.Classify(frame, players) {
			player, ok := players[id]
			if !ok || player == nil {
				continue
			}
			teamColor := assignment.Color
			player.Team = assignment.Team
			player.TeamColor = &teamColor
		}
	}
	return nil
}

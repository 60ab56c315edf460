package video

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chenBenjamin97/football-analyzer/pkg/geometry"
	"gocv.io/x/gocv"
)

var black = color.RGBA{0, 0, 0, 255}
var white = color.RGBA{255, 255, 255, 255}

const (
	labelWidth  = 40
	labelHeight = 20
)

//drawEllipse plots an open ellipse under the feet of a person. When trackID is not nil, the id is printed in a filled tag below the ellipse.
func drawEllipse(frame *gocv.Mat, box geometry.BoundingBox, plotColor color.RGBA, trackID *int) {
	foot := box.Foot().ImagePoint()
	xCenter, y2 := foot.X, foot.Y
	width := int(box.Width())

	gocv.Ellipse(frame, foot, image.Pt(width, int(0.35*float64(width))), 0, -45, 235, plotColor, 2)

	if trackID == nil {
		return
	}

	tagRect := image.Rect(xCenter-labelWidth/2, y2-labelHeight/2+15, xCenter+labelWidth/2, y2+labelHeight/2+15)
	gocv.Rectangle(frame, tagRect, plotColor, -1) //thickness -1 == filled rectangle

	xText := tagRect.Min.X + 12
	if *trackID > 99 {
		xText -= 10
	}
	gocv.PutText(frame, fmt.Sprintf("%d", *trackID), image.Pt(xText, tagRect.Min.Y+15), gocv.FontHersheySimplex, 0.6, black, 2)
}

//drawTriangle plots a filled triangle pointing down at the top center of given bounding box
func drawTriangle(frame *gocv.Mat, box geometry.BoundingBox, plotColor color.RGBA) {
	top := geometry.Point{X: box.Center().X, Y: box.Y1}.ImagePoint()
	x, y := top.X, top.Y

	points := gocv.NewPointsVectorFromPoints([][]image.Point{{
		image.Pt(x, y),
		image.Pt(x-10, y-20),
		image.Pt(x+10, y-20),
	}})
	defer points.Close()

	gocv.DrawContours(frame, points, 0, plotColor, -1)
	gocv.DrawContours(frame, points, 0, black, 2)
}

//scoreboardRect returns the possession panel area, anchored to the bottom-right corner of the frame
func scoreboardRect(cols, rows int) image.Rectangle {
	return image.Rect(cols-570, rows-230, cols-20, rows-110)
}

//drawTeamBallControl blends a white panel into the frame and writes both teams' ball control share on it
func drawTeamBallControl(frame *gocv.Mat, team1, team2, alpha float64) {
	panel := scoreboardRect(frame.Cols(), frame.Rows())

	overlay := frame.Clone()
	defer overlay.Close()
	gocv.Rectangle(&overlay, panel, white, -1)
	gocv.AddWeighted(overlay, alpha, *frame, 1-alpha, 0, frame)

	gocv.PutText(frame, fmt.Sprintf("Team 1 Ball Control: %.2f%%", team1*100), image.Pt(panel.Min.X+50, panel.Min.Y+50), gocv.FontHersheySimplex, 1, black, 3)
	gocv.PutText(frame, fmt.Sprintf("Team 2 Ball Control: %.2f%%", team2*100), image.Pt(panel.Min.X+50, panel.Min.Y+100), gocv.FontHersheySimplex, 1, black, 3)
}

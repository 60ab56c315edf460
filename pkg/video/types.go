package video

import (
	"github.com/chenBenjamin97/football-analyzer/pkg/geometry"
	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
)

//objectBoundingBox is one detected object as printed by the detector and exchanged with the tracker process.
//ID is only set on boxes coming back from the tracker.
type objectBoundingBox struct {
	ID         int `json:"ID,omitempty"`
	Class      int
	Confidence float64
	Xmin       float64
	Ymin       float64
	Xmax       float64
	Ymax       float64
}

//frameVocabulary is the class id -> class name mapping the detector prints before a frame's objects
type frameVocabulary struct {
	Names map[int]string
}

func (o objectBoundingBox) detection() tracks.Detection {
	return tracks.Detection{
		Box:        geometry.Box(o.Xmin, o.Ymin, o.Xmax, o.Ymax),
		ClassID:    o.Class,
		Confidence: o.Confidence,
		TrackID:    o.ID,
	}
}

func newObjectBoundingBox(d tracks.Detection) objectBoundingBox {
	return objectBoundingBox{
		ID:         d.TrackID,
		Class:      d.ClassID,
		Confidence: d.Confidence,
		Xmin:       d.Box.X1,
		Ymin:       d.Box.Y1,
		Xmax:       d.Box.X2,
		Ymax:       d.Box.Y2,
	}
}

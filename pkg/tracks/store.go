package tracks

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/chenBenjamin97/football-analyzer/pkg/geometry"
	"github.com/chenBenjamin97/football-analyzer/pkg/utils"
)

//ErrStoreMismatch is returned when a store does not line up with the frames it is used against
var ErrStoreMismatch = errors.New("track store does not match video")

//Class is the kind of entity a track belongs to
type Class int

const (
	ClassPlayer Class = iota + 1
	ClassReferee
	ClassBall
)

func (c Class) String() string {
	switch c {
	case ClassPlayer:
		return "player"
	case ClassReferee:
		return "referee"
	case ClassBall:
		return "ball"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

//Team is the side a player plays for. TeamNone doubles as "no possession yet" on a timeline.
type Team int

const (
	TeamNone Team = iota
	Team1
	Team2
)

func (t Team) String() string {
	switch t {
	case TeamNone:
		return "none"
	case Team1:
		return "team 1"
	case Team2:
		return "team 2"
	default:
		return fmt.Sprintf("Team(%d)", int(t))
	}
}

//Record holds everything known about one entity on one frame
type Record struct {
	Box       geometry.BoundingBox
	Position  geometry.Point
	Team      Team
	TeamColor *color.RGBA
	HasBall   bool
}

//Store is the frame indexed track timeline of one video.
//Players and Referees hold one map (TrackID -> Record) per frame, Ball holds at most one record per frame (nil when missing).
//All three slices always have the same length, the number of frames.
type Store struct {
	Players  []map[int]*Record
	Referees []map[int]*Record
	Ball     []*Record
}

//NewStore allocates an empty store for frames frames
func NewStore(frames int) *Store {
	s := &Store{
		Players:  make([]map[int]*Record, frames),
		Referees: make([]map[int]*Record, frames),
		Ball:     make([]*Record, frames),
	}
	for i := 0; i < frames; i++ {
		s.Players[i] = make(map[int]*Record)
		s.Referees[i] = make(map[int]*Record)
	}
	return s
}

//Len returns the number of frames the store covers
func (s *Store) Len() int {
	return len(s.Players)
}

//Tracks returns the per frame maps of a class.
//The ball has no maps of its own, its view holds the frame's ball record under utils.BallTrackID, or nothing when the ball is missing.
func (s *Store) Tracks(c Class) []map[int]*Record {
	switch c {
	case ClassPlayer:
		return s.Players
	case ClassReferee:
		return s.Referees
	case ClassBall:
		view := make([]map[int]*Record, len(s.Ball))
		for i, ball := range s.Ball {
			view[i] = make(map[int]*Record, 1)
			if ball != nil {
				view[i][utils.BallTrackID] = ball
			}
		}
		return view
	default:
		return nil
	}
}

//TrackCount returns the number of distinct track ids of a class over the whole video
func (s *Store) TrackCount(c Class) int {
	ids := make(map[int]struct{})
	for _, frame := range s.Tracks(c) {
		for id, rec := range frame {
			if rec != nil {
				ids[id] = struct{}{}
			}
		}
	}
	return len(ids)
}

//Validate checks the structural invariants of the store against the real frame count
func (s *Store) Validate(frames int) error {
	if s == nil {
		return fmt.Errorf("%w: nil store", ErrStoreMismatch)
	}
	if len(s.Players) != frames || len(s.Referees) != frames || len(s.Ball) != frames {
		return fmt.Errorf("%w: %d frames in video, store has players=%d referees=%d ball=%d",
			ErrStoreMismatch, frames, len(s.Players), len(s.Referees), len(s.Ball))
	}
	for i := 0; i < frames; i++ {
		if s.Players[i] == nil || s.Referees[i] == nil {
			return fmt.Errorf("%w: frame %d has no track map", ErrStoreMismatch, i)
		}
	}
	return nil
}

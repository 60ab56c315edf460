package tracks

import (
	"errors"
)

//ErrNoBallAnchor is returned when the ball was never detected, so there is nothing to interpolate from
var ErrNoBallAnchor = errors.New("ball never detected: no anchor for interpolation")

//InterpolateBall fills every missing ball frame.
//Gaps between two known frames are linearly interpolated coordinate by coordinate, a gap before the first known frame takes the first known box
//and a gap after the last known frame keeps the last known box. Known frames are returned untouched.
func InterpolateBall(balls []*Record) ([]*Record, error) {
	known := make([]int, 0, len(balls))
	for i, r := range balls {
		if r != nil {
			known = append(known, i)
		}
	}

	if len(known) == 0 {
		if len(balls) == 0 {
			return []*Record{}, nil
		}
		return nil, ErrNoBallAnchor
	}

	res := make([]*Record, len(balls))
	copy(res, balls)

	first, last := known[0], known[len(known)-1]
	for i := 0; i < first; i++ {
		res[i] = &Record{Box: balls[first].Box}
	}
	for i := last + 1; i < len(balls); i++ {
		res[i] = &Record{Box: balls[last].Box}
	}

	for k := 1; k < len(known); k++ {
		from, to := known[k-1], known[k]
		span := float64(to - from)
		for i := from + 1; i < to; i++ {
			res[i] = &Record{Box: balls[from].Box.Lerp(balls[to].Box, float64(i-from)/span)}
		}
	}

	return res, nil
}

//RepairBall replaces the ball timeline of the store with its interpolated version
func (s *Store) RepairBall() error {
	balls, err := InterpolateBall(s.Ball)
	if err != nil {
		return err
	}
	s.Ball = balls
	return nil
}

package tracks

//AddPositions attaches a position to every record: box center for the ball, foot point for players and referees.
//Running it again gives the same result.
func (s *Store) AddPositions() {
	for _, frame := range s.Players {
		for _, r := range frame {
			if r != nil {
				r.Position = r.Box.Foot()
			}
		}
	}
	for _, frame := range s.Referees {
		for _, r := range frame {
			if r != nil {
				r.Position = r.Box.Foot()
			}
		}
	}
	for _, r := range s.Ball {
		if r != nil {
			r.Position = r.Box.Center()
		}
	}
}

package booking

// Candidate is a table together with the confirmed bookings it already carries.
type Candidate struct {
	ID       uint
	Capacity int
	Booked   []Interval
}

func (c Candidate) fits(party int) bool {
	return c.Capacity >= party
}

func (c Candidate) freeFor(proposed Interval) bool {
	return !Conflicts(c.Booked, proposed)
}

// CheckTable -> validates a caller-chosen table for the proposed booking
func CheckTable(c Candidate, proposed Interval, party int) error {
	if party < 1 {
		return ErrInvalidPartySize
	}
	if !c.fits(party) {
		return ErrPartyTooLarge
	}
	if !c.freeFor(proposed) {
		return ErrTableUnavailable
	}
	return nil
}

// SelectTable picks the free table whose capacity is closest to the party size,
// preferring the lowest table ID on ties. The input order does not matter.
func SelectTable(candidates []Candidate, proposed Interval, party int) (Candidate, error) {
	if party < 1 {
		return Candidate{}, ErrInvalidPartySize
	}

	var best Candidate
	found := false
	for _, c := range candidates {
		if !c.fits(party) || !c.freeFor(proposed) {
			continue
		}
		if !found || better(c, best) {
			best = c
			found = true
		}
	}
	if !found {
		return Candidate{}, ErrNoTableAvailable
	}
	return best, nil
}

func better(a, b Candidate) bool {
	if a.Capacity != b.Capacity {
		return a.Capacity < b.Capacity
	}
	return a.ID < b.ID
}

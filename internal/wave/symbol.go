package wave

import "fmt"

// Channel identifies one wave type carried by a member.
type Channel int

const (
	// Bending is the propagating flexural wave.
	Bending Channel = iota
	// Evanescent is the flexural near-field wave decaying with distance.
	Evanescent
	// Longitudinal is the propagating axial wave.
	Longitudinal
)

// NumChannels is the number of wave types in every amplitude vector.
const NumChannels = 3

func (c Channel) String() string {
	switch c {
	case Bending:
		return "b"
	case Evanescent:
		return "e"
	case Longitudinal:
		return "l"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Direction is the sense of travel along the member axis.
type Direction int

const (
	// Plus waves travel from the near end towards the far end.
	Plus Direction = iota
	// Minus waves travel from the far end towards the near end.
	Minus
)

func (d Direction) String() string {
	if d == Plus {
		return "+"
	}
	return "-"
}

// Symbol is one complex amplitude unknown. It is comparable and used as a map key.
type Symbol struct {
	Member  int
	Station string
	Dir     Direction
	Channel Channel
}

// String renders the symbol as station_channel^direction member, e.g. a_b^+0.
func (s Symbol) String() string {
	return fmt.Sprintf("%s_%s^%s%d", s.Station, s.Channel, s.Dir, s.Member)
}

// Vector holds the symbols of one wave group, in channel order.
type Vector [NumChannels]Symbol

// NewVector returns the channel symbols of a wave group at a member station.
func NewVector(member int, station string, dir Direction) Vector {
	var v Vector
	for c := 0; c < NumChannels; c++ {
		v[c] = Symbol{Member: member, Station: station, Dir: dir, Channel: Channel(c)}
	}
	return v
}

// Symbols returns the vector as a slice.
func (v Vector) Symbols() []Symbol {
	out := make([]Symbol, NumChannels)
	copy(out, v[:])
	return out
}

package bargaining

import (
	"math"

	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
)

// DefaultMoveThreshold is the utility change below which a party's utility
// counts as unchanged.
const DefaultMoveThreshold = 0.005

// Move classifies a step from one bid to the next by how it changes the
// utility of the bidder and of its opponent.
type Move int

const (
	Silent      Move = iota // neither utility changes
	Nice                    // only the opponent gains
	Fortunate               // both gain
	Selfish                 // the bidder gains, the opponent loses
	Concession              // the bidder loses, the opponent gains
	Unfortunate             // both lose
	numMoves
)

var moveNames = [numMoves]string{"silent", "nice", "fortunate", "selfish", "concession", "unfortunate"}

func (m Move) String() string {
	if m < 0 || m >= numMoves {
		return "unknown"
	}
	return moveNames[m]
}

// ParseMove returns the move with the given name.
func ParseMove(name string) (Move, bool) {
	for i, n := range moveNames {
		if n == name {
			return Move(i), true
		}
	}
	return 0, false
}

// ClassifyMove classifies a step from the change in the bidder's utility
// (own) and the opponent's utility (other).
func ClassifyMove(own, other, threshold float64) Move {
	switch {
	case math.Abs(own) < threshold:
		switch {
		case math.Abs(other) < threshold:
			return Silent
		case other > 0:
			return Nice
		case own >= 0:
			return Selfish
		default:
			return Unfortunate
		}
	case own >= threshold:
		if other >= 0 {
			return Fortunate
		}
		return Selfish
	default:
		if other >= 0 {
			return Concession
		}
		return Unfortunate
	}
}

// ClassifyMoves classifies every step of a party's bid sequence. self is the
// bidder's utility and other its opponent's.
func ClassifyMoves(bids []domain.Bid, self, other preference.Evaluator, threshold float64) []Move {
	if len(bids) < 2 {
		return nil
	}
	moves := make([]Move, 0, len(bids)-1)
	lastSelf, lastOther := self.Evaluate(bids[0]), other.Evaluate(bids[0])
	for _, b := range bids[1:] {
		u1, u2 := self.Evaluate(b), other.Evaluate(b)
		moves = append(moves, ClassifyMove(u1-lastSelf, u2-lastOther, threshold))
		lastSelf, lastOther = u1, u2
	}
	return moves
}

// MoveDistribution is the share of each move type in a sequence, indexed by
// Move.
type MoveDistribution [numMoves]float64

// Frequencies returns the share of each move type in moves. It is all zeros
// for an empty sequence.
func Frequencies(moves []Move) MoveDistribution {
	var d MoveDistribution
	if len(moves) == 0 {
		return d
	}
	for _, m := range moves {
		d[m]++
	}
	for i := range d {
		d[i] /= float64(len(moves))
	}
	return d
}

// AverageDistributions averages the distributions of several sessions.
func AverageDistributions(ds []MoveDistribution) MoveDistribution {
	var avg MoveDistribution
	if len(ds) == 0 {
		return avg
	}
	for _, d := range ds {
		for i, v := range d {
			avg[i] += v
		}
	}
	for i := range avg {
		avg[i] /= float64(len(ds))
	}
	return avg
}

// Map returns the distribution keyed by move name, for logging.
func (d MoveDistribution) Map() map[string]float64 {
	out := make(map[string]float64, numMoves)
	for i, v := range d {
		out[Move(i).String()] = v
	}
	return out
}

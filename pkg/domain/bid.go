package domain

import "strings"

// Bid assigns one value to every issue, indexed by issue position.
// A Bid is immutable; equality is structural.
type Bid struct {
	values []Value
}

// NewBid builds a bid from values in issue order.
func NewBid(values ...Value) Bid {
	v := make([]Value, len(values))
	copy(v, values)
	return Bid{values: v}
}

// Len returns the number of assigned issues.
func (b Bid) Len() int {
	return len(b.values)
}

// Value returns the value assigned to issue i.
func (b Bid) Value(i int) Value {
	return b.values[i]
}

// Values returns a copy of the assigned values.
func (b Bid) Values() []Value {
	out := make([]Value, len(b.values))
	copy(out, b.values)
	return out
}

// Equal reports whether both bids assign the same values.
func (b Bid) Equal(o Bid) bool {
	if len(b.values) != len(o.values) {
		return false
	}
	for i := range b.values {
		if b.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

// Key returns a string usable as a map key for the bid.
func (b Bid) Key() string {
	parts := make([]string, len(b.values))
	for i, v := range b.values {
		parts[i] = string(v)
	}
	return strings.Join(parts, "\x1f")
}

// String renders the bid values in issue order.
func (b Bid) String() string {
	parts := make([]string, len(b.values))
	for i, v := range b.values {
		parts[i] = string(v)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// HammingDistance counts the issues on which a and b assign different values.
func HammingDistance(a, b Bid) int {
	n := len(a.values)
	if len(b.values) > n {
		n = len(b.values)
	}
	diff := 0
	for i := 0; i < n; i++ {
		if i >= len(a.values) || i >= len(b.values) || a.values[i] != b.values[i] {
			diff++
		}
	}
	return diff
}

// Similarity is the fraction of issues on which a and b agree:
// 1 - hamming(a, b) / numberOfIssues.
func Similarity(a, b Bid, numberOfIssues int) float64 {
	if numberOfIssues <= 0 {
		return 0
	}
	return 1 - float64(HammingDistance(a, b))/float64(numberOfIssues)
}

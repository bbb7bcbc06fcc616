// Package domain describes the negotiation space: issues with discrete
// candidate values, complete bids over those issues, and bid histories.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoIssues is returned when a domain is built without any issue.
	ErrNoIssues = errors.New("domain has no issues")

	// ErrUnknownValue is returned when a bid assigns a value that is not a
	// candidate of its issue.
	ErrUnknownValue = errors.New("value is not a candidate of issue")
)

// Value is one discrete candidate value of an issue.
type Value string

// Issue is a negotiable attribute with a finite set of candidate values.
type Issue struct {
	ID     int
	Name   string
	Values []Value
}

// HasValue reports whether v is a candidate value of the issue.
func (i Issue) HasValue(v Value) bool {
	for _, c := range i.Values {
		if c == v {
			return true
		}
	}
	return false
}

// Domain is the immutable set of issues negotiated over in one session.
type Domain struct {
	Name   string
	issues []Issue
	index  map[string]int
}

// New validates the issues and builds a Domain.
// Issue IDs are assigned from their position.
func New(name string, issues []Issue) (*Domain, error) {
	if len(issues) == 0 {
		return nil, ErrNoIssues
	}

	d := &Domain{
		Name:   name,
		issues: make([]Issue, len(issues)),
		index:  make(map[string]int, len(issues)),
	}
	for pos, is := range issues {
		if is.Name == "" {
			return nil, fmt.Errorf("issue %d has no name", pos)
		}
		if _, dup := d.index[is.Name]; dup {
			return nil, fmt.Errorf("duplicate issue %q", is.Name)
		}
		if len(is.Values) == 0 {
			return nil, fmt.Errorf("issue %q has no candidate values", is.Name)
		}
		seen := make(map[Value]struct{}, len(is.Values))
		for _, v := range is.Values {
			if _, dup := seen[v]; dup {
				return nil, fmt.Errorf("issue %q: duplicate value %q", is.Name, v)
			}
			seen[v] = struct{}{}
		}

		values := make([]Value, len(is.Values))
		copy(values, is.Values)
		d.issues[pos] = Issue{ID: pos, Name: is.Name, Values: values}
		d.index[is.Name] = pos
	}
	return d, nil
}

// NumIssues returns the number of issues.
func (d *Domain) NumIssues() int {
	return len(d.issues)
}

// Issue returns the issue at position i.
func (d *Domain) Issue(i int) Issue {
	return d.issues[i]
}

// IssueIndex returns the position of the named issue.
func (d *Domain) IssueIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// MaxValueCount returns the largest number of candidate values over all
// issues. It sizes the recent-bid window used by the learning models.
func (d *Domain) MaxValueCount() int {
	max := 0
	for _, is := range d.issues {
		if len(is.Values) > max {
			max = len(is.Values)
		}
	}
	return max
}

// Size returns the number of distinct bids in the domain.
func (d *Domain) Size() int {
	n := 1
	for _, is := range d.issues {
		n *= len(is.Values)
	}
	return n
}

// Validate checks that b assigns a candidate value to every issue.
func (d *Domain) Validate(b Bid) error {
	if b.Len() != len(d.issues) {
		return fmt.Errorf("bid has %d values, domain has %d issues", b.Len(), len(d.issues))
	}
	for i, is := range d.issues {
		if !is.HasValue(b.Value(i)) {
			return fmt.Errorf("issue %q value %q: %w", is.Name, b.Value(i), ErrUnknownValue)
		}
	}
	return nil
}

// BidFromMap builds a bid from an issue name to value mapping.
func (d *Domain) BidFromMap(m map[string]string) (Bid, error) {
	if len(m) != len(d.issues) {
		return Bid{}, fmt.Errorf("bid assigns %d issues, domain has %d", len(m), len(d.issues))
	}
	values := make([]Value, len(d.issues))
	for name, v := range m {
		i, ok := d.index[name]
		if !ok {
			return Bid{}, fmt.Errorf("unknown issue %q", name)
		}
		values[i] = Value(v)
	}
	b := Bid{values: values}
	if err := d.Validate(b); err != nil {
		return Bid{}, err
	}
	return b, nil
}

// AllBids enumerates the whole outcome space. The last issue varies fastest.
func (d *Domain) AllBids() []Bid {
	out := make([]Bid, 0, d.Size())
	cursor := make([]int, len(d.issues))
	for {
		values := make([]Value, len(d.issues))
		for i, c := range cursor {
			values[i] = d.issues[i].Values[c]
		}
		out = append(out, Bid{values: values})

		pos := len(cursor) - 1
		for pos >= 0 {
			cursor[pos]++
			if cursor[pos] < len(d.issues[pos].Values) {
				break
			}
			cursor[pos] = 0
			pos--
		}
		if pos < 0 {
			return out
		}
	}
}

// Format renders a bid with issue names, for logging.
func (d *Domain) Format(b Bid) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < b.Len() && i < len(d.issues); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.issues[i].Name)
		sb.WriteByte('=')
		sb.WriteString(string(b.Value(i)))
	}
	sb.WriteByte('}')
	return sb.String()
}

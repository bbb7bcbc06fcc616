package domain

// History is the append-only sequence of bids made by one party.
// Insertion order is meaningful.
type History struct {
	bids []Bid
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Add appends a bid.
func (h *History) Add(b Bid) {
	h.bids = append(h.bids, b)
}

// Len returns the number of recorded bids.
func (h *History) Len() int {
	return len(h.bids)
}

// At returns the i-th bid in insertion order.
func (h *History) At(i int) Bid {
	return h.bids[i]
}

// Last returns the most recent bid.
func (h *History) Last() (Bid, bool) {
	if len(h.bids) == 0 {
		return Bid{}, false
	}
	return h.bids[len(h.bids)-1], true
}

// Previous returns the bid before the most recent one.
func (h *History) Previous() (Bid, bool) {
	if len(h.bids) < 2 {
		return Bid{}, false
	}
	return h.bids[len(h.bids)-2], true
}

// LastN returns the n most recent bids, most recent first.
// It returns nil when fewer than n+1 bids have been recorded, so a window is
// only formed once it can be compared against an older bid.
func (h *History) LastN(n int) []Bid {
	if n <= 0 || len(h.bids) < n+1 {
		return nil
	}
	out := make([]Bid, n)
	for i := 0; i < n; i++ {
		out[i] = h.bids[len(h.bids)-1-i]
	}
	return out
}

// Bids returns a copy of the recorded bids.
func (h *History) Bids() []Bid {
	out := make([]Bid, len(h.bids))
	copy(out, h.bids)
	return out
}

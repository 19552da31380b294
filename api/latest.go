package api

import "sync/atomic"

// LatestGate orders overlapping fetches for the same resource. A caller takes
// a ticket before issuing a request and checks the ticket when the response
// arrives; a response whose ticket has been superseded must be discarded, so
// a slow early response can never overwrite a fast later one.
//
//	seq := gate.Next()
//	resp := trading.OrderBook(ctx, pair, depth)
//	if gate.Latest(seq) {
//	    render(resp)
//	}
type LatestGate struct {
	seq atomic.Uint64
}

// Next issues a new ticket, superseding all previous ones.
func (g *LatestGate) Next() uint64 {
	return g.seq.Add(1)
}

// Latest reports whether ticket is still the most recently issued.
func (g *LatestGate) Latest(ticket uint64) bool {
	return g.seq.Load() == ticket
}

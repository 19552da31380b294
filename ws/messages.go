package ws

import (
	"encoding/json"
	"time"
)

// Wildcard subscribes to every event type.
const Wildcard = "*"

// Event types the backends publish. The channel is open-ended; these are the
// ones the frontends consume today.
const (
	EventOrderCreated       = "order_created"
	EventOrderFilled        = "order_filled"
	EventOrderCancelled     = "order_cancelled"
	EventTradeExecuted      = "trade_executed"
	EventTickerUpdate       = "ticker_update"
	EventOrderBookUpdate    = "orderbook_update"
	EventPositionUpdate     = "position_update"
	EventBalanceUpdate      = "balance_update"
	EventTransactionUpdate  = "transaction_update"
	EventAlertNew           = "alert:new"
	EventAuditNew           = "audit:new"
	EventKYCUpdate          = "kyc:update"
	EventTransactionFlagged = "transaction:flagged"
)

// Message is one inbound frame. Every frame, whatever its declared type, is
// wrapped into this shape before fan-out; Payload stays raw for the
// subscriber to decode.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Payload, v)
}

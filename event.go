package stockledger

import "fmt"

// MovementEvent is one observed presence of a case at a location on a
// date, as extracted from a source record. Events are raw material:
// they carry no direction yet.
type MovementEvent struct {
	CaseID   string
	Date     Date
	Location string // canonical warehouse or site name
	Qty      Quantity
	SourceID string // identifier of the record the event came from
}

// Direction distinguishes stock arriving at a location from stock
// leaving it.
type Direction string

const (
	Entry Direction = "ENTRY"
	Exit  Direction = "EXIT"
)

func (d Direction) String() string { return string(d) }

// ParseDirection converts a string into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Entry, Exit:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Kind refines a transaction's direction: where the stock came from or
// where it went.
type Kind string

const (
	// KindIn marks stock received at a warehouse.
	KindIn Kind = "IN"
	// KindTransferOut marks stock moved to another warehouse.
	KindTransferOut Kind = "TRANSFER_OUT"
	// KindFinalOut marks stock delivered to a site, leaving the
	// warehouse network for good.
	KindFinalOut Kind = "FINAL_OUT"
)

func (k Kind) String() string { return string(k) }

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindIn, KindTransferOut, KindFinalOut:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

// Transaction is one directed stock movement derived from a case's
// movement history. Every hop between locations yields an EXIT at the
// previous location and an ENTRY at the next; the ledger is folded
// from these.
type Transaction struct {
	CaseID       string    `json:"case"`
	Date         Date      `json:"date"`
	Qty          Quantity  `json:"qty"`
	Direction    Direction `json:"direction"`
	Kind         Kind      `json:"kind"`
	Location     string    `json:"location"`
	Counterparty string    `json:"counterparty"` // other end of the hop, or SOURCE
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s at %q from/to %q", t.Date, t.CaseID, t.Direction, t.Qty, t.Location, t.Counterparty)
}

// Anomaly records a movement that contradicts the case lifecycle, such
// as a case reappearing in a warehouse after final delivery. Anomalies
// are reported, never silently fixed.
type Anomaly struct {
	CaseID   string `json:"case"`
	Date     Date   `json:"date"`
	Location string `json:"location"`
	Detail   string `json:"detail"`
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s %s at %q: %s", a.Date, a.CaseID, a.Location, a.Detail)
}

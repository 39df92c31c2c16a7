package prediction

import (
	"time"

	"github.com/kilianp07/orderbot/core/model"
)

// State is the input of a forecast. Pending must be in dispatch order: VIP
// lane first, each lane oldest first.
type State struct {
	Now     time.Time
	Pending []model.Order
	Bots    []model.Bot
}

// ETA is the predicted processing window of one order. OrderID is zero for
// a hypothetical order.
type ETA struct {
	OrderID int              `json:"order_id,omitempty"`
	Class   model.OrderClass `json:"class"`
	Start   time.Time        `json:"start"`
	End     time.Time        `json:"end"`
	Wait    time.Duration    `json:"wait"`
}

// Engine forecasts processing windows.
type Engine interface {
	// Forecast returns one ETA per pending order, in dispatch order. It
	// returns nil when no bot exists.
	Forecast(s State) []ETA
	// Estimate predicts the window of an order of the given class submitted
	// now. ok is false when no bot exists.
	Estimate(s State, class model.OrderClass, duration time.Duration) (eta ETA, ok bool)
}

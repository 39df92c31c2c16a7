package prediction

import (
	"time"

	"github.com/kilianp07/orderbot/core/model"
)

// Greedy replays the dispatch rule: the next pending order goes to the bot
// that frees up first, ties broken by bot id.
type Greedy struct{}

var _ Engine = Greedy{}

type slot struct {
	botID int
	free  time.Time
}

func (Greedy) Forecast(s State) []ETA {
	slots := freeSlots(s)
	if len(slots) == 0 {
		return nil
	}
	out := make([]ETA, 0, len(s.Pending))
	for _, o := range s.Pending {
		out = append(out, place(slots, s.Now, o.CreatedAt, o.ID, o.Class, o.ProcessDuration))
	}
	return out
}

func (Greedy) Estimate(s State, class model.OrderClass, duration time.Duration) (ETA, bool) {
	slots := freeSlots(s)
	if len(slots) == 0 {
		return ETA{}, false
	}
	for _, o := range s.Pending {
		// a new VIP order only waits behind pending VIP orders
		if class == model.ClassVIP && o.Class != model.ClassVIP {
			continue
		}
		place(slots, s.Now, o.CreatedAt, o.ID, o.Class, o.ProcessDuration)
	}
	return place(slots, s.Now, s.Now, 0, class, duration), true
}

// place books the earliest slot for an order and returns its window.
func place(slots []slot, now, created time.Time, id int, class model.OrderClass, d time.Duration) ETA {
	best := 0
	for i := 1; i < len(slots); i++ {
		if slots[i].free.Before(slots[best].free) ||
			(slots[i].free.Equal(slots[best].free) && slots[i].botID < slots[best].botID) {
			best = i
		}
	}
	start := slots[best].free
	if start.Before(now) {
		start = now
	}
	end := start.Add(d)
	slots[best].free = end
	return ETA{OrderID: id, Class: class, Start: start, End: end, Wait: start.Sub(created)}
}

func freeSlots(s State) []slot {
	slots := make([]slot, 0, len(s.Bots))
	for _, b := range s.Bots {
		free := s.Now
		if o := b.CurrentOrder; b.Status == model.BotBusy && o != nil && o.ProcessStartAt != nil {
			if end := o.ProcessStartAt.Add(o.ProcessDuration); end.After(free) {
				free = end
			}
		}
		slots = append(slots, slot{botID: b.ID, free: free})
	}
	return slots
}

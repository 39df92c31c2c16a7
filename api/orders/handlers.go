package orders

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/orderbot/core/events"
	"github.com/kilianp07/orderbot/core/journal"
	"github.com/kilianp07/orderbot/core/model"
	"github.com/kilianp07/orderbot/pkg/export"
)

// SubmitRequest is the body of POST /api/orders.
type SubmitRequest struct {
	Class      string `json:"class"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Report())
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	class, err := model.ParseOrderClass(req.Class)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, err := model.DurationFromMS(req.DurationMS)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	o := s.ctrl.SubmitOrder(class, d)
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleAddBot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, s.ctrl.AddBot())
}

func (s *Server) handleRemoveBot(w http.ResponseWriter, _ *http.Request) {
	b := s.ctrl.RemoveBot()
	if b == nil {
		http.Error(w, "no bot to remove", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	class, err := model.ParseOrderClass(v.Get("class"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var d time.Duration
	if raw := v.Get("duration_ms"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			d, err = model.DurationFromMS(ms)
		}
		if err != nil {
			http.Error(w, "invalid duration_ms", http.StatusBadRequest)
			return
		}
	}
	eta, ok := s.ctrl.Estimate(class, d)
	if !ok {
		http.Error(w, "no bot to process orders", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, eta)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	var buf bytes.Buffer
	if err := export.Write(&buf, format, s.ctrl.Snapshot().Completed); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	q, err := parseJournalQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	records := []journal.Record{}
	if s.store != nil {
		res, err := s.store.Query(r.Context(), q)
		if err != nil {
			s.log.Errorf("journal query: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		records = append(records, res...)
	}
	writeJSON(w, http.StatusOK, records)
}

func parseJournalQuery(r *http.Request) (journal.Query, error) {
	v := r.URL.Query()
	q := journal.Query{Event: events.Type(v.Get("event"))}
	var err error
	if s := v.Get("start"); s != "" {
		if q.Start, err = time.Parse(time.RFC3339, s); err != nil {
			return q, err
		}
	}
	if s := v.Get("end"); s != "" {
		if q.End, err = time.Parse(time.RFC3339, s); err != nil {
			return q, err
		}
	}
	if s := v.Get("order_id"); s != "" {
		if q.OrderID, err = strconv.Atoi(s); err != nil {
			return q, err
		}
	}
	if s := v.Get("bot_id"); s != "" {
		if q.BotID, err = strconv.Atoi(s); err != nil {
			return q, err
		}
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

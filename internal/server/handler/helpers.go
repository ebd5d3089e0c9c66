package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/service"
)

// writePayload writes a pre-marshaled JSON payload. Services return their
// responses already serialized so cache hits are byte-identical.
func writePayload(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(payload)
}

// writeJSON marshals v as JSON and writes it with the given status code. If
// marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"success":false,"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	writePayload(w, status, data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// parseListParams extracts the market-listing filters from the query string.
// The service layer applies the limit cap and the minimum search length.
func parseListParams(r *http.Request) service.ListParams {
	q := r.URL.Query()

	params := service.ListParams{
		Category:   q.Get("category"),
		Search:     q.Get("search"),
		MarketType: strings.ToLower(q.Get("marketType")),
		TagSlug:    q.Get("tagSlug"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			params.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			params.Offset = n
		}
	}
	return params
}

// parseInterval maps the interval query value onto a history interval,
// defaulting to 1D. Matching is case-insensitive.
func parseInterval(v string) domain.HistoryInterval {
	switch strings.ToUpper(v) {
	case "1H":
		return domain.Interval1H
	case "6H":
		return domain.Interval6H
	case "1W":
		return domain.Interval1W
	case "1M":
		return domain.Interval1M
	case "MAX":
		return domain.IntervalMax
	default:
		return domain.Interval1D
	}
}

// parseTimeframe maps the timeframe query value onto a profile/leaderboard
// timeframe, defaulting to ALL.
func parseTimeframe(v string) domain.Timeframe {
	switch strings.ToUpper(v) {
	case "1D":
		return domain.Timeframe1D
	case "1W":
		return domain.Timeframe1W
	case "1M":
		return domain.Timeframe1M
	default:
		return domain.TimeframeAll
	}
}

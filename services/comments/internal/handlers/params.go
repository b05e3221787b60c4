package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/social-pulse/services/comments/internal/store"
)

// paramError is a validation failure that becomes a 400 response.
type paramError struct {
	Message string
	Details map[string]any
}

func (e *paramError) Error() string { return e.Message }

func invalidParam(name string, valid []string) *paramError {
	return &paramError{
		Message: "Invalid parameter",
		Details: map[string]any{"parameter": name, "valid_values": valid},
	}
}

// parsePage reads limit/offset. Out-of-range or non-numeric values are
// rejected, never clamped. limitMsg is the over-ceiling message, which
// differs between listing and search.
func parsePage(q url.Values, defaultLimit, maxLimit int, limitMsg string) (store.Page, *paramError) {
	p := store.Page{Limit: defaultLimit}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return p, &paramError{Message: "Invalid limit parameter"}
		}
		if n > maxLimit {
			return p, &paramError{Message: fmt.Sprintf(limitMsg, maxLimit)}
		}
		p.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, &paramError{Message: "Invalid offset parameter"}
		}
		p.Offset = n
	}
	return p, nil
}

// parseFilters reads the filter params shared by every read endpoint and
// returns the store filter set plus the echo map reflected in the response.
// Platform params are handled by the caller since each endpoint sources them
// differently.
func parseFilters(q url.Values, userID string) (store.Filters, map[string]any, *paramError) {
	f := store.Filters{UserID: userID}
	echo := map[string]any{}

	if status := q.Get("status"); status != "" {
		if !store.ValidStatus(status) {
			return f, nil, invalidParam("status", store.Statuses)
		}
		f.Status = status
		echo["status"] = status
	}
	if sentiment := q.Get("sentiment"); sentiment != "" {
		if !store.ValidSentiment(sentiment) {
			return f, nil, invalidParam("sentiment", store.SentimentBuckets)
		}
		f.Sentiment = sentiment
		echo["sentiment"] = sentiment
	}

	if raw := q.Get("date_from"); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			return f, nil, &paramError{Message: "Invalid date_from parameter"}
		}
		f.DateFrom = &t
		echo["date_from"] = raw
	}
	if raw := q.Get("date_to"); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			return f, nil, &paramError{Message: "Invalid date_to parameter"}
		}
		if dateOnly {
			// Inclusive upper bound covers the whole named day.
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.DateTo = &t
		echo["date_to"] = raw
	}

	if sort := q.Get("sort"); sort != "" {
		if sort != "newest" && sort != "recent" {
			return f, nil, invalidParam("sort", []string{"newest", "recent"})
		}
		echo["sort"] = sort
	}

	return f, echo, nil
}

// parsePlatforms validates a comma-separated platform list.
func parsePlatforms(raw string) ([]string, *paramError) {
	if raw == "" {
		return nil, nil
	}
	var platforms []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if !store.ValidPlatform(p) {
			return nil, invalidParam("platform", store.Platforms)
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

func parseDate(raw string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, err
}

func boolFlag(q url.Values, name string) bool {
	v := strings.ToLower(q.Get(name))
	return v == "true" || v == "1"
}

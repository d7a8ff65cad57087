package impact

import (
	"strings"
	"time"

	"github.com/mira/volunteer-hub/internal/models"
)

// Status is the derived lifecycle stage of an application. It is computed on
// every read and never persisted as-is; legacy rows store free-text variants
// ("pending", "Completed") that ParseStatus folds into this closed set.
type Status string

const (
	StatusUpcoming  Status = "Upcoming"
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// ParseStatus normalizes a raw stored status value. Unrecognized values
// report ok=false and default to Upcoming rather than erroring.
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "upcoming":
		return StatusUpcoming, true
	case "pending":
		return StatusPending, true
	case "completed":
		return StatusCompleted, true
	}
	return StatusUpcoming, false
}

// DeriveStatus maps one (application, opportunity date, proofs) triple to
// exactly one status. Priority order, first match wins:
//
//  1. any verified proof        -> Completed
//  2. stored status "Completed" -> Completed
//  3. opportunity date < today  -> Pending
//  4. otherwise                 -> Upcoming
func DeriveStatus(rawStatus, opportunityDate string, proofs []models.Proof) Status {
	return DeriveStatusAt(rawStatus, opportunityDate, proofs, time.Now())
}

func DeriveStatusAt(rawStatus, opportunityDate string, proofs []models.Proof, now time.Time) Status {
	for _, p := range proofs {
		if p.Verified {
			return StatusCompleted
		}
	}

	if s, ok := ParseStatus(rawStatus); ok && s == StatusCompleted {
		return StatusCompleted
	}

	// Compare calendar days, not instants. Parsing the Y/M/D components into
	// a midnight in now's location keeps "today" and the opportunity's
	// calendar date on the same axis regardless of where the code runs;
	// comparing ISO timestamps in UTC shifts the effective day near midnight.
	y, m, d, ok := parseYMD(opportunityDate)
	if !ok {
		return StatusUpcoming
	}
	oppDay := time.Date(y, time.Month(m), d, 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if oppDay.Before(today) {
		return StatusPending
	}
	return StatusUpcoming
}

// ParseCalendarDate parses the leading YYYY-MM-DD of a date string into a
// local-midnight time, ignoring any time/timezone suffix.
func ParseCalendarDate(raw string) (time.Time, bool) {
	y, m, d, ok := parseYMD(raw)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), true
}

func parseYMD(raw string) (year, month, day int, ok bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 10 || raw[4] != '-' || raw[7] != '-' {
		return 0, 0, 0, false
	}

	year = atoi(raw[0:4])
	month = atoi(raw[5:7])
	day = atoi(raw[8:10])
	if year <= 0 || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

package deploy

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/mgmt"
)

// SummaryName is the hostname shown on the trailing summary record.
const SummaryName = "** ALL (Summary) **"

// Record is one line of an activity report: a child action and the server
// it ran on, or the parent action's summary.
type Record struct {
	ActionID int    `json:"id"`
	ServerID int    `json:"server_id,omitempty"`
	Hostname string `json:"computer_name"`
	Status   Status `json:"activity_status"`
	Summary  bool   `json:"summary,omitempty"`
}

// Report is an ordered snapshot of a deployment: child records sorted by
// hostname (case-insensitive, stable), then exactly one summary record.
type Report []Record

// Equal reports whether two reports hold the same records in the same order.
func (r Report) Equal(other Report) bool {
	return slices.Equal(r, other)
}

// Summary returns the trailing summary record.
func (r Report) Summary() (Record, bool) {
	if len(r) == 0 || !r[len(r)-1].Summary {
		return Record{}, false
	}
	return r[len(r)-1], true
}

// Status is the parent action's status, or "" if the report has no summary.
func (r Report) Status() Status {
	s, _ := r.Summary()
	return s.Status
}

// Servers returns the per-server records, without the summary.
func (r Report) Servers() []Record {
	if _, ok := r.Summary(); ok {
		return r[:len(r)-1]
	}
	return r
}

// Counts tallies per-server records by status.
func (r Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, rec := range r.Servers() {
		counts[rec.Status]++
	}
	return counts
}

// Text renders one "<hostname>: <status>" line per record, in report order.
func (r Report) Text() string {
	var b strings.Builder
	for _, rec := range r {
		fmt.Fprintf(&b, "%s: %s\n", rec.Hostname, rec.Status)
	}
	return b.String()
}

// SortRecords orders records by hostname, case-insensitive ascending.
// Records whose names differ only by case keep their input order.
func SortRecords(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return strings.Compare(strings.ToLower(a.Hostname), strings.ToLower(b.Hostname))
	})
}

// BuildReport fetches the current state of parentID and its children.
// A child on a server outside servers, or a parent lookup that doesn't
// return exactly one action, is a data error.
func BuildReport(ctx context.Context, client mgmt.Client, parentID int, servers ServerSet) (Report, error) {
	children, err := client.ListActions(ctx, mgmt.ActionFilter{ParentID: parentID})
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("Failed to list actions under %d", parentID))
	}

	report := make(Report, 0, len(children)+1)
	for _, child := range children {
		hostname, ok := servers.Hostname(child.ServerID)
		if !ok {
			return nil, errors.New(errors.ErrData,
				fmt.Sprintf("Action %d ran on server %d, which is not in the target group", child.ID, child.ServerID),
				"The group changed after dispatch, or the API returned inconsistent data.")
		}
		report = append(report, Record{
			ActionID: child.ID,
			ServerID: child.ServerID,
			Hostname: hostname,
			Status:   Status(child.Status),
		})
	}
	SortRecords(report)

	parents, err := client.ListActions(ctx, mgmt.ActionFilter{ID: parentID})
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("Failed to look up action %d", parentID))
	}
	if len(parents) != 1 {
		return nil, errors.New(errors.ErrData,
			fmt.Sprintf("Expected exactly one action with id %d, got %d", parentID, len(parents)),
			"The management API returned inconsistent data.")
	}
	parent := parents[0]
	if parent.ID != parentID {
		return nil, errors.New(errors.ErrData,
			fmt.Sprintf("Asked for action %d, got action %d", parentID, parent.ID),
			"The management API returned inconsistent data.")
	}

	report = append(report, Record{
		ActionID: parent.ID,
		Hostname: SummaryName,
		Status:   Status(parent.Status),
		Summary:  true,
	})
	return report, nil
}

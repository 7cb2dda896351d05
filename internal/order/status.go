package order

import "strings"

// Status is the display vocabulary shown to staff.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusPreparing  Status = "Preparing"
	StatusReady      Status = "Ready"
	StatusServed     Status = "Served"
	StatusInProgress Status = "In Progress"
	StatusPaid       Status = "Paid"
	StatusCancelled  Status = "Cancelled"
)

var known = map[string]Status{
	"pending":     StatusPending,
	"preparing":   StatusPreparing,
	"ready":       StatusReady,
	"served":      StatusServed,
	"in progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"paid":        StatusPaid,
	"cancelled":   StatusCancelled,
	"canceled":    StatusCancelled,
}

// NormalizeStatus maps a backend status onto the display vocabulary,
// case-insensitively. "in_progress", "In-Progress" and "in progress" are the
// same value. Unrecognized input is returned unchanged so operators still see
// what the backend sent.
func NormalizeStatus(raw string) Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	if s, ok := known[key]; ok {
		return s
	}
	return Status(raw)
}

// BackendValue is the value sent in status update requests: lower snake case.
func (s Status) BackendValue() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "_")
}

func (s Status) String() string { return string(s) }

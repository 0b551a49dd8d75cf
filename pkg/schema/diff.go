package schema

// ChangeStatus classifies one activity's transition between the current and
// the proposed itinerary.
type ChangeStatus string

const (
	ChangeAdded     ChangeStatus = "added"
	ChangeModified  ChangeStatus = "modified"
	ChangeDeleted   ChangeStatus = "deleted"
	ChangeUnchanged ChangeStatus = "unchanged"
)

// ActivityChange pairs an activity with its transition status. For modified
// activities the proposed version is carried; for deleted ones the current.
type ActivityChange struct {
	Activity Activity     `json:"activity"`
	Status   ChangeStatus `json:"status"`
}

// DiffEntry is the per-day classification of a proposed itinerary change.
type DiffEntry struct {
	Day     int              `json:"day"`
	Changes []ActivityChange `json:"changes"`
}

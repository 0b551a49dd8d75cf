package schema

// Itinerary is the authoritative trip plan as served by the itinerary store.
type Itinerary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Destination string         `json:"destination,omitempty"`
	StartDate   string         `json:"startDate,omitempty"`
	EndDate     string         `json:"endDate,omitempty"`
	Days        []ItineraryDay `json:"days"`
}

// ItineraryDay groups the activities scheduled for one day of the trip.
type ItineraryDay struct {
	Day        int        `json:"day"`
	Activities []Activity `json:"activities"`
}

// Activity is a single scheduled item within a day.
type Activity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
}

// ContentEquals reports whether two activities carry the same content,
// ignoring identity. Used to distinguish modified from unchanged.
func (a Activity) ContentEquals(other Activity) bool {
	return a.Name == other.Name &&
		a.Description == other.Description &&
		a.Location == other.Location &&
		a.StartTime == other.StartTime &&
		a.EndTime == other.EndTime
}

// DayByNumber returns the day entry with the given day number, if present.
func (it *Itinerary) DayByNumber(day int) (ItineraryDay, bool) {
	for _, d := range it.Days {
		if d.Day == day {
			return d, true
		}
	}
	return ItineraryDay{}, false
}

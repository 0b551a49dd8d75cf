package schema

import "fmt"

// ValidateItinerary validates the structural invariants of an itinerary:
// non-empty ID, unique day numbers, and unique activity IDs within each day.
func ValidateItinerary(it *Itinerary) error {
	if it.ID == "" {
		return fmt.Errorf("itinerary ID must not be empty")
	}

	seenDays := make(map[int]bool, len(it.Days))
	for _, day := range it.Days {
		if day.Day < 1 {
			return fmt.Errorf("day number must be positive, got %d", day.Day)
		}
		if seenDays[day.Day] {
			return fmt.Errorf("duplicate day number: %d", day.Day)
		}
		seenDays[day.Day] = true

		seenActivities := make(map[string]bool, len(day.Activities))
		for _, act := range day.Activities {
			if act.ID == "" {
				return fmt.Errorf("day %d: activity %q has no ID", day.Day, act.Name)
			}
			if seenActivities[act.ID] {
				return fmt.Errorf("day %d: duplicate activity ID: %s", day.Day, act.ID)
			}
			seenActivities[act.ID] = true
		}
	}

	return nil
}

// ValidateHILState validates the protocol contract of a HIL descriptor. A
// descriptor with the flag set must carry a confirmation message and a
// proposed-changes payload; silently proceeding without them would drop a
// pending confirmation.
func ValidateHILState(h *HILState) error {
	if !h.IsHIL {
		return nil
	}
	if h.ConfirmationMessage == "" {
		return fmt.Errorf("HIL flag set but confirmationMessage is missing")
	}
	if h.ProposedChanges == nil {
		return fmt.Errorf("HIL flag set but proposedChanges is missing")
	}
	return nil
}

// ValidateMessage validates a single conversation message.
func ValidateMessage(m *Message) error {
	if m.ID == "" {
		return fmt.Errorf("message ID must not be empty")
	}
	switch m.Role {
	case RoleHuman, RoleAI:
	default:
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	return nil
}

package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"wayfare/pkg/schema"
)

// ComputeDiff classifies every activity of the current and proposed
// itineraries, per day. Activities are matched by ID; an activity present
// only in proposed is added, only in current is deleted, in both with
// differing content is modified, otherwise unchanged. A day missing from
// proposed yields an all-deleted entry; a new day yields an all-added one.
// Output is ordered by day number, current activities first in their
// original order, then unmatched proposed ones in theirs.
func ComputeDiff(current, proposed *schema.Itinerary) []schema.DiffEntry {
	if current == nil {
		current = &schema.Itinerary{}
	}
	if proposed == nil {
		proposed = &schema.Itinerary{}
	}

	dayNumbers := lo.Uniq(append(
		lo.Map(current.Days, func(d schema.ItineraryDay, _ int) int { return d.Day }),
		lo.Map(proposed.Days, func(d schema.ItineraryDay, _ int) int { return d.Day })...,
	))
	sort.Ints(dayNumbers)

	entries := make([]schema.DiffEntry, 0, len(dayNumbers))
	for _, day := range dayNumbers {
		currentDay, _ := current.DayByNumber(day)
		proposedDay, _ := proposed.DayByNumber(day)
		entries = append(entries, diffDay(day, currentDay.Activities, proposedDay.Activities))
	}

	return entries
}

func diffDay(day int, currentActs, proposedActs []schema.Activity) schema.DiffEntry {
	proposedByID := lo.KeyBy(
		lo.Filter(proposedActs, func(a schema.Activity, _ int) bool { return a.ID != "" }),
		func(a schema.Activity) string { return a.ID },
	)

	matched := make(map[string]bool, len(proposedByID))
	changes := make([]schema.ActivityChange, 0, len(currentActs)+len(proposedActs))

	for _, act := range currentActs {
		after, ok := proposedByID[act.ID]
		if act.ID == "" || !ok {
			changes = append(changes, schema.ActivityChange{Activity: act, Status: schema.ChangeDeleted})
			continue
		}

		matched[act.ID] = true
		if act.ContentEquals(after) {
			changes = append(changes, schema.ActivityChange{Activity: act, Status: schema.ChangeUnchanged})
		} else {
			// Carry the proposed version so the preview shows the result.
			changes = append(changes, schema.ActivityChange{Activity: after, Status: schema.ChangeModified})
		}
	}

	for _, act := range proposedActs {
		if act.ID != "" && matched[act.ID] {
			continue
		}
		changes = append(changes, schema.ActivityChange{Activity: act, Status: schema.ChangeAdded})
	}

	return schema.DiffEntry{Day: day, Changes: changes}
}

// DiffPreview computes the per-day diff between the live itinerary and the
// pending proposed changes. Returns nil with no error when no confirmation
// is pending.
func (s *Session) DiffPreview(ctx context.Context) ([]schema.DiffEntry, error) {
	s.mu.Lock()
	hil := s.hil
	itineraryID := s.itineraryID
	s.mu.Unlock()

	if hil == nil || hil.ProposedChanges == nil {
		return nil, nil
	}

	current, err := s.store.GetItinerary(ctx, itineraryID)
	if err != nil {
		return nil, &ReconcileError{
			ItineraryID: itineraryID,
			Message:     "fetch live itinerary for preview",
			Err:         err,
		}
	}

	return ComputeDiff(current, hil.ProposedChanges), nil
}

// RenderDiff formats diff entries for terminal display.
func RenderDiff(entries []schema.DiffEntry) string {
	var b strings.Builder

	for _, entry := range entries {
		fmt.Fprintf(&b, "Day %d:\n", entry.Day)
		for _, change := range entry.Changes {
			marker := "[=]"
			switch change.Status {
			case schema.ChangeAdded:
				marker = "[+]"
			case schema.ChangeDeleted:
				marker = "[-]"
			case schema.ChangeModified:
				marker = "[*]"
			}

			fmt.Fprintf(&b, "  %s %s", marker, change.Activity.Name)
			if change.Activity.StartTime != "" {
				fmt.Fprintf(&b, " (%s)", change.Activity.StartTime)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

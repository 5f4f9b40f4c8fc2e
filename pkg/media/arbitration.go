package media

import "time"

// Select elects the current source among sources (ordered by id).
//
// Playing sources are preferred; among them the highest LastActivity
// wins, ties going to the earlier id. With nothing playing, the most
// recently active source of any status is kept. The winner's
// LastActivity is bumped to now, which keeps an elected source in
// place while other sessions report the same state.
//
// changed reports whether the elected id differs from previousID.
func Select(sources Sources, previousID string, now time.Time) (currentID string, changed bool) {
	if len(sources) == 0 {
		return "", previousID != ""
	}

	var best *Source
	for _, s := range sources {
		if s.Status != Playing {
			continue
		}
		if best == nil || s.LastActivity.After(best.LastActivity) {
			best = s
		}
	}

	if best == nil {
		for _, s := range sources {
			if !s.Active() {
				continue
			}
			if best == nil || s.LastActivity.After(best.LastActivity) {
				best = s
			}
		}
	}

	if best == nil {
		return "", previousID != ""
	}
	best.LastActivity = now
	return best.ID, best.ID != previousID
}

package place

import "slices"

// Merge combines an existing record (nil when unknown) with a fetched payload.
//
// Upstream fields always take the fetched values, even when empty. Platform
// fields keep their existing values; the only exception is a sentinel
// category, which adopts the category computed from the fetched types.
// Merge is pure and idempotent for a fixed payload.
func Merge(existing *Record, fetched Payload) Record {
	up := cloneUpstream(fetched.Upstream)
	computed := CategoryFor(up.Types)

	var out Record
	if existing == nil {
		out = Record{
			ID: fetched.ID,
			Platform: PlatformFields{
				Category:  computed,
				CreatedAt: fetched.FetchedAt,
				SearchKeywords: Keywords(
					append([]string{up.Name, up.FormattedAddress, computed}, up.Types...)...,
				),
			},
			Sync: SyncMeta{IsActive: true},
		}
	} else {
		out = *existing
		out.Platform.SearchKeywords = slices.Clone(existing.Platform.SearchKeywords)
		if isSentinelCategory(out.Platform.Category) {
			out.Platform.Category = computed
		}
	}

	out.Upstream = up
	out.Sync.LastSyncedAt = fetched.FetchedAt
	out.Sync.Language = fetched.Language
	return out
}

func cloneUpstream(u UpstreamFields) UpstreamFields {
	u.Types = slices.Clone(u.Types)
	u.Photos = slices.Clone(u.Photos)
	for i := range u.Photos {
		u.Photos[i].Attributions = slices.Clone(u.Photos[i].Attributions)
	}
	if u.OpeningHours != nil {
		oh := *u.OpeningHours
		oh.WeekdayText = slices.Clone(oh.WeekdayText)
		oh.Periods = slices.Clone(oh.Periods)
		u.OpeningHours = &oh
	}
	return u
}

package mailbox

import (
	"time"

	"github.com/elecmate/commsdesk/internal/models"
)

// Bucket is a recency section of the mailbox.
type Bucket string

const (
	BucketToday     Bucket = "Today"
	BucketYesterday Bucket = "Yesterday"
	BucketThisWeek  Bucket = "This Week"
	BucketEarlier   Bucket = "Earlier"
)

// Buckets lists the recency buckets in display order.
var Buckets = []Bucket{BucketToday, BucketYesterday, BucketThisWeek, BucketEarlier}

type Group struct {
	Bucket   Bucket           `json:"label"`
	Messages []models.Message `json:"messages"`
}

type Grouping struct {
	Pinned []models.Message `json:"pinned"`
	Groups []Group          `json:"groups"`
}

type GroupOptions struct {
	// PinnedOnAllTabs pulls pinned messages out on every tab instead of on
	// the inbox only.
	PinnedOnAllTabs bool
}

// Boundaries are the ISO dates separating the buckets, derived from one
// evaluation instant.
type Boundaries struct {
	Today     string
	Yesterday string
	WeekAgo   string
}

// BoundariesAt truncates now to its calendar day in now's location.
func BoundariesAt(now time.Time) Boundaries {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Boundaries{
		Today:     day.Format(models.DateLayout),
		Yesterday: day.AddDate(0, 0, -1).Format(models.DateLayout),
		WeekAgo:   day.AddDate(0, 0, -7).Format(models.DateLayout),
	}
}

// Classify returns the first bucket whose inclusive lower bound date meets.
func (b Boundaries) Classify(date string) Bucket {
	switch {
	case date >= b.Today:
		return BucketToday
	case date >= b.Yesterday:
		return BucketYesterday
	case date >= b.WeekAgo:
		return BucketThisWeek
	}
	return BucketEarlier
}

// GroupMessages partitions msgs into the pinned section and recency buckets
// evaluated at now. Empty buckets are omitted; order within each bucket
// follows msgs.
func GroupMessages(msgs []models.Message, ov *models.Overlay, tab Tab, now time.Time, opts GroupOptions) Grouping {
	out := Grouping{Pinned: []models.Message{}, Groups: []Group{}}

	extractPinned := tab == TabInbox || opts.PinnedOnAllTabs
	bounds := BoundariesAt(now)
	byBucket := make(map[Bucket][]models.Message, len(Buckets))

	for _, m := range msgs {
		if extractPinned && ov.IsPinned(m.ID) {
			out.Pinned = append(out.Pinned, m)
			continue
		}
		b := bounds.Classify(m.Date)
		byBucket[b] = append(byBucket[b], m)
	}

	for _, b := range Buckets {
		if len(byBucket[b]) == 0 {
			continue
		}
		out.Groups = append(out.Groups, Group{Bucket: b, Messages: byBucket[b]})
	}
	return out
}

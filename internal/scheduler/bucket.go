package scheduler

import "time"

// Bucket identifies one calendar minute. Two instants share a Bucket
// exactly when they fall in the same UTC minute, so 10:00:01 and 10:00:59
// collide while 10:01:00 does not. Bucketing never alters the instant
// it was derived from.
type Bucket int64

// BucketOf returns the minute bucket containing t.
func BucketOf(t time.Time) Bucket {
	sec := t.Unix()
	m := sec / 60
	if sec%60 < 0 {
		m--
	}
	return Bucket(m)
}

// Time returns the first instant of the bucket in UTC.
func (b Bucket) Time() time.Time {
	return time.Unix(int64(b)*60, 0).UTC()
}

func (b Bucket) String() string {
	return b.Time().Format("2006-01-02T15:04Z")
}

package metrics

import "testing"

// A nil recorder stands in for "metrics disabled" everywhere, so every
// method must tolerate it.
func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder

	r.RecordRefresh("ok", 1.5)
	r.RecordLastRefresh(1756735200)
	r.RecordAPIRequest("quote", "ok")
	r.RecordSnapshotRows("low", 15)
}

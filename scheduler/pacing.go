// Pacing ownership note: spec.md §4.1 says "session is the only place
// that may write to the socket... pacing is enforced here," so the
// single mutex-guarded last-write watermark (with a per-category delay)
// lives in session.Session (waitForPacing/pacingFor), not here. The
// Scheduler's job is only to decide *when* a category's payload
// becomes ready (beacon tick, bulletin tick, refresh tick, or a
// dispatcher response arriving) and hand it to session.Session.Send,
// which blocks until its own pacing watermark clears. This mirrors
// peer/backoff.go's minimal-state style: one clock, one owner.
package scheduler

// Package notify implements the single-slot toast used by every Bloomly front end.
//
// A [Center] holds at most one [Notification]. [Center.Show] replaces the slot
// and arms an expiry timer; the slot clears itself after the configured TTL
// (3 seconds by default). Components receive the center through the [Notifier]
// interface instead of looking it up globally.
//
// Every Show cancels the previously armed timer, so a newer message is always
// visible for a full TTL. A generation counter guards against a timer that fired
// concurrently with a newer Show.
//
// Observers register with [Center.Subscribe] and receive an [Event] for each
// show and each clear. The web front end forwards these over a websocket and the
// TUI turns them into bubbletea messages.
//
// Time is read through a [Clock] so tests can use [FakeClock] and advance
// simulated time deterministically.
package notify

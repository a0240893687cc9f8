// Package garden holds the view state behind plant search and the personal garden.
//
// [SearchView] runs catalog queries and saves results as favorites. [GardenView]
// lists favorites and handles inline rename and removal. Both report outcomes
// through a [notify.Notifier] and keep remote failures out of their return path
// to the user: the caller gets an error for logging or exit codes, the user gets
// a notification.
//
// Writes go remote first. Local state is replaced only after the store confirms,
// so a failed write leaves the view exactly as it was.
//
// Each search carries a generation number. A result that arrives after a newer
// submit is dropped instead of overwriting fresher results.
package garden

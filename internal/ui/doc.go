// Package ui implements the interactive Bloomly terminal interface using bubbletea's Elm architecture.
//
// The TUI has two tabs over the same views the browser app uses:
//  1. [SearchTab] : search the plant catalog and save results to the garden
//  2. [GardenTab] : browse saved plants, rename them in place or remove them
//
// A player bar at the bottom mirrors the ambient player (now playing, position, paused state) and a toast
// line above the tabs shows the notification slot. Toasts arrive through [notify.Center.Subscribe], so they
// expire on the same timer as everywhere else.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern. Every remote call runs
// inside a [tea.Cmd] and reports back with one of the messages in message.go.
//
// Keyboard: "/" focuses search, enter submits/saves/commits, tab switches views, r renames, d removes,
// esc cancels an edit, n/p/space/l drive the player and q quits. Help is displayed via charmbracelet/bubbles/help.
package ui

// Package ui is the Bubble Tea front end of companion.
//
// The root Model routes between the login screen and the dashboard using
// the session snapshot and route.Router. Each dashboard mount owns a
// query.Scope: queries and mutations run as tea.Cmds inside that scope and
// report back as messages tagged with the scope id, so results that arrive
// after logout or a remount are dropped.
//
// The dashboard shows the video card (statistics, rating, edit details) next
// to a tabbed panel with the comment section and the notes section. Local
// drafts and pending flags live in the model; server data lives in the
// query cache and is refetched after each successful mutation invalidates it.
package ui

package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the video card is
	// stacked above the panel instead of beside it.
	LayoutCompactWidth = 100

	// LayoutCardWidth is the video card width in the side-by-side layout.
	LayoutCardWidth = 44
)

// Input limits.
const (
	CommentCharLimit = 10000
	NoteCharLimit    = 20000
	TitleCharLimit   = 100

	// DescriptionPreviewLines caps the description shown on the card.
	DescriptionPreviewLines = 6
)

// Timing constants.
const (
	// SuccessFlash is how long a success indicator stays visible.
	SuccessFlash = time.Second

	// LoginWaitTimeout bounds how long the login screen waits for the
	// browser to land on the callback.
	LoginWaitTimeout = 5 * time.Minute

	// LogoutTimeout bounds the server logout call.
	LogoutTimeout = 10 * time.Second
)

package ui

import (
	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/query"
)

// Cache keys shared by the dashboard queries and the mutations that
// invalidate them.
var (
	keyVideo    = query.Key{"video"}
	keyComments = query.Key{"comments"}
	keyRating   = query.Key{"videoRating"}
	keyNotes    = query.Key{"notes"}
)

func notesKey(videoID api.ID) query.Key {
	return query.Key{"notes", videoID.String()}
}

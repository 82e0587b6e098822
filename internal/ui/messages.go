package ui

import (
	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/query"
	"github.com/five82/companion/internal/session"
)

// Session messages

type sessionMsg struct {
	snap session.Snapshot
}

// Login messages carry the attempt that produced them so a cancelled
// attempt cannot disturb a newer one.
type loginPendingMsg struct {
	attempt int
	cb      LoginCallback
	url     string
	openErr error
	err     error
}

type loginDoneMsg struct {
	attempt int
	snap    session.Snapshot
	err     error
}

type logoutDoneMsg struct {
	snap session.Snapshot
	err  error
}

// Query messages. scope is the dashboard mount that asked for the data;
// messages for a closed mount are dropped.

type videoMsg struct {
	scope uint64
	res   query.Result[*api.Video]
}

type commentsMsg struct {
	scope uint64
	res   query.Result[[]api.Comment]
}

type notesMsg struct {
	scope uint64
	res   query.Result[[]api.Note]
}

type ratingMsg struct {
	scope uint64
	res   query.Result[api.Rating]
}

// Mutation messages

type opKind int

const (
	opRate opKind = iota
	opUpdateVideo
	opAddComment
	opReply
	opDeleteComment
	opAddNote
	opUpdateNote
	opDeleteNote
)

func (o opKind) String() string {
	switch o {
	case opRate:
		return "Rating"
	case opUpdateVideo:
		return "Saving details"
	case opAddComment:
		return "Posting comment"
	case opReply:
		return "Replying"
	case opDeleteComment:
		return "Deleting comment"
	case opAddNote:
		return "Adding note"
	case opUpdateNote:
		return "Saving note"
	case opDeleteNote:
		return "Deleting note"
	default:
		return "Request"
	}
}

// settledMsg reports that a mutation resolved. target is the comment or
// note the mutation acted on, when there is one.
type settledMsg struct {
	scope       uint64
	op          opKind
	target      api.ID
	err         error
	invalidated []query.Key
}

// flashDoneMsg hides a success indicator. seq guards against an older
// timer hiding a newer indicator.
type flashDoneMsg struct {
	scope  uint64
	op     opKind
	target api.ID
	seq    int
}

// confirmedMsg is emitted by the delete confirmation dialog.
type confirmedMsg struct {
	op     opKind
	target api.ID
}

// editVideoSubmitMsg is emitted by the edit-details dialog.
type editVideoSubmitMsg struct {
	update api.VideoUpdate
}

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/query"
)

type replyVars struct {
	commentID api.ID
	text      string
}

type noteVars struct {
	videoID api.ID
	noteID  api.ID
	content string
}

// mutations holds every server write the dashboard can perform, each bound
// to the keys it invalidates on success.
type mutations struct {
	rate          *query.Mutation[api.Rating, struct{}]
	updateVideo   *query.Mutation[api.VideoUpdate, *api.Video]
	addComment    *query.Mutation[string, *api.Comment]
	reply         *query.Mutation[replyVars, *api.Reply]
	deleteComment *query.Mutation[api.ID, struct{}]
	addNote       *query.Mutation[noteVars, *api.Note]
	updateNote    *query.Mutation[noteVars, *api.Note]
	deleteNote    *query.Mutation[noteVars, struct{}]
}

func newMutations(b api.Backend, cache *query.Cache, log logrus.FieldLogger) mutations {
	// commentCount lives on the video, so comment writes refresh it too.
	commentKeys := func() []query.Key { return []query.Key{keyComments, keyVideo} }
	noteKeys := func(v noteVars) []query.Key { return []query.Key{notesKey(v.videoID)} }

	m := mutations{
		rate: query.NewMutation("rate", cache,
			func(ctx context.Context, r api.Rating) (struct{}, error) {
				return struct{}{}, b.RateVideo(ctx, r)
			},
			func(api.Rating, struct{}) []query.Key { return []query.Key{keyRating, keyVideo} }),
		updateVideo: query.NewMutation("update_video", cache, b.UpdateVideo,
			func(api.VideoUpdate, *api.Video) []query.Key { return []query.Key{keyVideo} }),
		addComment: query.NewMutation("add_comment", cache, b.AddComment,
			func(string, *api.Comment) []query.Key { return commentKeys() }),
		reply: query.NewMutation("reply", cache,
			func(ctx context.Context, v replyVars) (*api.Reply, error) {
				return b.ReplyToComment(ctx, v.commentID, v.text)
			},
			func(replyVars, *api.Reply) []query.Key { return commentKeys() }),
		deleteComment: query.NewMutation("delete_comment", cache,
			func(ctx context.Context, id api.ID) (struct{}, error) {
				return struct{}{}, b.DeleteComment(ctx, id)
			},
			func(api.ID, struct{}) []query.Key { return commentKeys() }),
		addNote: query.NewMutation("add_note", cache,
			func(ctx context.Context, v noteVars) (*api.Note, error) {
				return b.AddNote(ctx, v.videoID, v.content)
			},
			func(v noteVars, _ *api.Note) []query.Key { return noteKeys(v) }),
		updateNote: query.NewMutation("update_note", cache,
			func(ctx context.Context, v noteVars) (*api.Note, error) {
				return b.UpdateNote(ctx, v.noteID, v.content)
			},
			func(v noteVars, _ *api.Note) []query.Key { return noteKeys(v) }),
		deleteNote: query.NewMutation("delete_note", cache,
			func(ctx context.Context, v noteVars) (struct{}, error) {
				return struct{}{}, b.DeleteNote(ctx, v.noteID)
			},
			func(v noteVars, _ struct{}) []query.Key { return noteKeys(v) }),
	}

	log = log.WithField("component", "ui")
	logStages(m.rate, log, "rate")
	logStages(m.updateVideo, log, "update_video")
	logStages(m.addComment, log, "add_comment")
	logStages(m.reply, log, "reply")
	logStages(m.deleteComment, log, "delete_comment")
	logStages(m.addNote, log, "add_note")
	logStages(m.updateNote, log, "update_note")
	logStages(m.deleteNote, log, "delete_note")
	return m
}

func logStages[V, R any](mut *query.Mutation[V, R], log logrus.FieldLogger, name string) {
	mut.Subscribe(func(ev query.Event[V, R]) {
		log.WithFields(logrus.Fields{"mutation": name, "stage": ev.Stage.String()}).Debug("mutation stage")
	})
}

// mutateCmd runs mut inside scope and reports the settled outcome.
func mutateCmd[V, R any](scope *query.Scope, mut *query.Mutation[V, R], op opKind, target api.ID, vars V) tea.Cmd {
	id := scope.ID()
	ctx := scope.Context()
	return func() tea.Msg {
		ev := mut.Mutate(ctx, vars)
		return settledMsg{scope: id, op: op, target: target, err: ev.Err, invalidated: ev.Invalidated}
	}
}

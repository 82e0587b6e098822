package ui

import (
	"strings"

	"github.com/five82/companion/internal/query"
)

// renderVideoCard draws the video details, statistics and rating controls.
func (m Model) renderVideoCard(width int) string {
	styles := m.theme.Styles()
	res := m.dash.video
	v := m.dash.videoData()

	if v == nil {
		switch {
		case res.Status == query.StatusError:
			return styles.DangerText.Render(wrap("Couldn't load the video", width)) + "\n\n" +
				styles.MutedText.Render(wrap(describeError(res.Err), width)) + "\n\n" +
				styles.Key.Render("R") + styles.MutedText.Render(" try again")
		case res.Status == query.StatusSuccess:
			return styles.MutedText.Render("No video found.")
		default:
			return m.spinnerView() + styles.MutedText.Render(" Loading video…")
		}
	}

	var b lineBuilder
	b.write(styles.Text.Bold(true).Render(wrap(v.Title, width)))
	meta := v.ChannelTitle
	if date := formatDate(v.ParsedPublishedAt()); date != "" {
		if meta != "" {
			meta += " · "
		}
		meta += date
	}
	if meta != "" {
		b.write(styles.MutedText.Render(wrap(meta, width)))
	}
	b.write("")

	stats := v.Statistics
	b.write(styles.AccentText.Render(formatCount(uint64(stats.ViewCount))) + styles.MutedText.Render(" views  ") +
		styles.AccentText.Render(formatCount(uint64(stats.LikeCount))) + styles.MutedText.Render(" likes  ") +
		styles.AccentText.Render(formatCount(uint64(stats.CommentCount))) + styles.MutedText.Render(" comments"))
	if rating := m.renderRating(); rating != "" {
		b.write(rating)
	}
	b.write("")

	if desc := strings.TrimSpace(v.Description); desc != "" {
		b.write(styles.Text.Render(firstLines(wrap(desc, width), DescriptionPreviewLines)))
	} else {
		b.write(styles.FaintText.Render("No description."))
	}
	b.write("")
	b.write(styles.InfoText.Render(wrap(v.WatchURL(), width)))
	if thumb := v.Thumbnail(); thumb != "" {
		b.write(styles.FaintText.Render(truncate(thumb, width)))
	}
	b.write("")

	switch {
	case m.dash.savingVideo:
		b.write(m.spinnerView() + styles.MutedText.Render(" Saving details…"))
	default:
		b.write(styles.Key.Render("E") + styles.MutedText.Render(" edit details"))
	}
	if res.Fetching && res.HasData {
		b.write(styles.FaintText.Render("↻ refreshing"))
	} else if res.Status == query.StatusError {
		b.write(styles.WarningText.Render(wrap("Refresh failed: "+describeError(res.Err), width)))
	}
	return b.String()
}

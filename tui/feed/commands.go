package feed

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/giggles/app"
)

// fetchVideos returns a command that loads the feed.
func fetchVideos(videos app.VideoService, seq int) tea.Cmd {
	return func() tea.Msg {
		if videos == nil {
			return VideosLoadedMsg{Seq: seq}
		}
		list, err := videos.ListVideos(context.Background())
		if err != nil {
			return VideosErrorMsg{Seq: seq, Err: err}
		}
		return VideosLoadedMsg{Seq: seq, Videos: list}
	}
}

func playTick() tea.Cmd {
	return tea.Tick(playInterval, func(time.Time) tea.Msg { return playTickMsg{} })
}

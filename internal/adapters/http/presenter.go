package httpadapter

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kirillkom/medguard/internal/core/domain"
)

// feedMagnitudes renders the short relative times the feed and inbox show:
// "Just now", "12m ago", "2h ago", "Yesterday", "3d ago".
var feedMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "Just now", DivBy: time.Second},
	{D: time.Hour, Format: "%dm %s", DivBy: time.Minute},
	{D: 24 * time.Hour, Format: "%dh %s", DivBy: time.Hour},
	{D: 48 * time.Hour, Format: "Yesterday", DivBy: time.Hour},
	{D: math.MaxInt64, Format: "%dd %s", DivBy: 24 * time.Hour},
}

func relativeTime(then, now time.Time) string {
	return humanize.CustomRelTime(then, now, "ago", "from now", feedMagnitudes)
}

type commentView struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

type postView struct {
	ID        string        `json:"id"`
	Author    string        `json:"author"`
	Content   string        `json:"content"`
	Time      string        `json:"time"`
	CreatedAt time.Time     `json:"created_at"`
	Likes     int           `json:"likes"`
	Liked     bool          `json:"liked"`
	Comments  []commentView `json:"comments"`
	Tags      []string      `json:"tags"`
}

type notificationView struct {
	ID        string                  `json:"id"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Time      string                  `json:"time"`
	CreatedAt time.Time               `json:"created_at"`
	IsRead    bool                    `json:"is_read"`
}

type notificationsView struct {
	Notifications []notificationView `json:"notifications"`
	HasUnread     bool               `json:"has_unread"`
}

type sessionView struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func presentComment(c domain.Comment, now time.Time) commentView {
	return commentView{
		ID:        c.ID,
		Author:    c.Author,
		Content:   c.Content,
		Time:      relativeTime(c.CreatedAt, now),
		CreatedAt: c.CreatedAt,
	}
}

func presentPost(p domain.Post, viewerID string, now time.Time) postView {
	comments := make([]commentView, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, presentComment(c, now))
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postView{
		ID:        p.ID,
		Author:    p.Author,
		Content:   p.Content,
		Time:      relativeTime(p.CreatedAt, now),
		CreatedAt: p.CreatedAt,
		Likes:     p.TotalLikes(),
		Liked:     p.IsLikedBy(viewerID),
		Comments:  comments,
		Tags:      tags,
	}
}

func presentPosts(posts []domain.Post, viewerID string, now time.Time) []postView {
	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, presentPost(p, viewerID, now))
	}
	return out
}

func presentNotifications(items []domain.Notification, now time.Time) notificationsView {
	view := notificationsView{Notifications: make([]notificationView, 0, len(items))}
	for _, n := range items {
		if !n.IsRead {
			view.HasUnread = true
		}
		view.Notifications = append(view.Notifications, notificationView{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Time:      relativeTime(n.CreatedAt, now),
			CreatedAt: n.CreatedAt,
			IsRead:    n.IsRead,
		})
	}
	return view
}

package domain

import "time"

type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"-"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"-"`
	Content   string    `json:"content"`
	Likes     int       `json:"-"`
	LikedBy   []string  `json:"-"`
	Comments  []Comment `json:"comments"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

const DefaultPostTag = "General"

// TotalLikes counts seeded likes plus likes from network members.
func (p Post) TotalLikes() int {
	return p.Likes + len(p.LikedBy)
}

func (p Post) IsLikedBy(userID string) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

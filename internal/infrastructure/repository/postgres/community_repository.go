package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/medguard/internal/core/domain"
)

type CommunityRepository struct {
	db *sql.DB
}

func NewCommunityRepository(db *sql.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// postSelect loads a post with its comments and likers in one round trip.
const postSelect = `
SELECT p.id, p.author, p.author_id, p.content, p.likes, p.tags, p.created_at,
	COALESCE((
		SELECT jsonb_agg(jsonb_build_object(
			'id', c.id, 'author', c.author, 'author_id', c.author_id,
			'content', c.content, 'created_at', c.created_at
		) ORDER BY c.created_at, c.id)
		FROM post_comments c WHERE c.post_id = p.id
	), '[]'::jsonb) AS comments,
	COALESCE((
		SELECT jsonb_agg(l.user_id ORDER BY l.user_id)
		FROM post_likes l WHERE l.post_id = p.id
	), '[]'::jsonb) AS liked_by
FROM posts p
`

type commentRecord struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *CommunityRepository) CreatePost(ctx context.Context, post *domain.Post) error {
	tagsJSON, err := json.Marshal(post.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO posts (id, author, author_id, content, likes, tags, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, post.ID, post.Author, post.AuthorID, post.Content, post.Likes, tagsJSON, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	for i := range post.Comments {
		if err := r.AddComment(ctx, post.ID, &post.Comments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *CommunityRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, postSelect+`WHERE p.id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get post", fmt.Errorf("post %s", id))
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}

func (r *CommunityRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, postSelect+`ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

func (r *CommunityRepository) AddComment(ctx context.Context, postID string, comment *domain.Comment) error {
	result, err := r.db.ExecContext(ctx, `
INSERT INTO post_comments (id, post_id, author, author_id, content, created_at)
SELECT $1, $2, $3, $4, $5, $6
WHERE EXISTS (SELECT 1 FROM posts WHERE id = $2)
`, comment.ID, postID, comment.Author, comment.AuthorID, comment.Content, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert comment rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "add comment", fmt.Errorf("post %s", postID))
	}
	return nil
}

func (r *CommunityRepository) SetLike(ctx context.Context, postID, userID string, liked bool) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return domain.WrapError(domain.ErrNotFound, "set like", fmt.Errorf("post %s", postID))
	}

	query := `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`
	if liked {
		query = `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	}
	if _, err := r.db.ExecContext(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("set like: %w", err)
	}
	return nil
}

func scanPost(row rowScanner) (domain.Post, error) {
	var post domain.Post
	var tagsRaw, commentsRaw, likedRaw []byte
	err := row.Scan(
		&post.ID,
		&post.Author,
		&post.AuthorID,
		&post.Content,
		&post.Likes,
		&tagsRaw,
		&post.CreatedAt,
		&commentsRaw,
		&likedRaw,
	)
	if err != nil {
		return domain.Post{}, err
	}
	if err := json.Unmarshal(tagsRaw, &post.Tags); err != nil {
		return domain.Post{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal(likedRaw, &post.LikedBy); err != nil {
		return domain.Post{}, fmt.Errorf("unmarshal likes: %w", err)
	}
	var comments []commentRecord
	if err := json.Unmarshal(commentsRaw, &comments); err != nil {
		return domain.Post{}, fmt.Errorf("unmarshal comments: %w", err)
	}
	post.Comments = make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		post.Comments = append(post.Comments, domain.Comment{
			ID:        c.ID,
			Author:    c.Author,
			AuthorID:  c.AuthorID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return post, nil
}

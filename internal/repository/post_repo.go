package repository

import (
	"database/sql"
	"fmt"
	"time"

	"familycircle/internal/database"
	"familycircle/internal/models"
)

// PostRepository handles database operations for the feed: posts, comments
// and likes.
type PostRepository struct {
	db *database.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *database.DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePost inserts a new post
func (r *PostRepository) CreatePost(circleID, authorID int64, title, content, imageURL string) (*models.Post, error) {
	query := "INSERT INTO posts (circle_id, author_id, title, content, image_url) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, circleID, authorID, title, content, nullIfEmpty(imageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return &models.Post{
		ID:        id,
		CircleID:  circleID,
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}, nil
}

const postSelect = `
	SELECT p.id, p.circle_id, p.author_id, p.title, p.content, COALESCE(p.image_url, ''), p.created_at,
	       u.display_name, COALESCE(u.photo_url, ''),
	       (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id),
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
	       (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = ?)
	FROM posts p
	INNER JOIN users u ON p.author_id = u.id
`

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	post := &models.Post{}
	var likedByMe int
	err := row.Scan(
		&post.ID, &post.CircleID, &post.AuthorID, &post.Title, &post.Content, &post.ImageURL, &post.CreatedAt,
		&post.AuthorName, &post.AuthorPhoto,
		&post.LikeCount, &post.CommentCount, &likedByMe,
	)
	if err != nil {
		return nil, err
	}
	post.LikedByMe = likedByMe > 0
	return post, nil
}

// GetFeed retrieves the newest posts in a circle. viewerID drives the
// LikedByMe flag.
func (r *PostRepository) GetFeed(circleID, viewerID int64, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	query := postSelect + " WHERE p.circle_id = ? ORDER BY p.created_at DESC LIMIT ?"
	rows, err := r.db.Query(query, viewerID, circleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed: %w", err)
	}
	return posts, nil
}

// GetPost retrieves a single post. Returns nil when no post matches.
func (r *PostRepository) GetPost(postID, viewerID int64) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRow(postSelect+" WHERE p.id = ?", viewerID, postID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// DeletePost removes a post. Comments and likes cascade.
func (r *PostRepository) DeletePost(postID int64) error {
	if _, err := r.db.Exec("DELETE FROM posts WHERE id = ?", postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// CreateComment inserts a comment on a post
func (r *PostRepository) CreateComment(postID, authorID int64, content string) (*models.Comment, error) {
	query := "INSERT INTO comments (post_id, author_id, content) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, postID, authorID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return &models.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}

// GetComments retrieves all comments on a post, oldest first
func (r *PostRepository) GetComments(postID int64) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.created_at,
		       u.display_name, COALESCE(u.photo_url, '')
		FROM comments c
		INNER JOIN users u ON c.author_id = u.id
		WHERE c.post_id = ?
		ORDER BY c.created_at ASC
	`
	rows, err := r.db.Query(query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Content, &comment.CreatedAt,
			&comment.AuthorName, &comment.AuthorPhoto,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// LikePost records a like. Liking twice is a no-op.
func (r *PostRepository) LikePost(postID, userID int64) error {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM post_likes WHERE post_id = ? AND user_id = ?", postID, userID).Scan(&count); err != nil {
		return fmt.Errorf("failed to check like: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := r.db.Exec("INSERT INTO post_likes (post_id, user_id) VALUES (?, ?)", postID, userID); err != nil {
		return fmt.Errorf("failed to like post: %w", err)
	}
	return nil
}

// UnlikePost removes a like. Unliking a post that was not liked is a no-op.
func (r *PostRepository) UnlikePost(postID, userID int64) error {
	if _, err := r.db.Exec("DELETE FROM post_likes WHERE post_id = ? AND user_id = ?", postID, userID); err != nil {
		return fmt.Errorf("failed to unlike post: %w", err)
	}
	return nil
}

// DeleteUserPosts removes all posts authored by a user
func (r *PostRepository) DeleteUserPosts(userID int64) error {
	if _, err := r.db.Exec("DELETE FROM posts WHERE author_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user posts: %w", err)
	}
	return nil
}

// DeleteUserActivity removes a user's comments and likes
func (r *PostRepository) DeleteUserActivity(userID int64) error {
	if _, err := r.db.Exec("DELETE FROM comments WHERE author_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user comments: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM post_likes WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user likes: %w", err)
	}
	return nil
}

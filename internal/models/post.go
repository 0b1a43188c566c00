package models

import "time"

// Post is a feed entry scoped to a circle.
type Post struct {
	ID        int64     `json:"id"`
	CircleID  int64     `json:"circleId"`
	AuthorID  int64     `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// Populated via JOIN for feed views.
	AuthorName   string `json:"authorName,omitempty"`
	AuthorPhoto  string `json:"authorPhoto,omitempty"`
	LikeCount    int    `json:"likeCount"`
	CommentCount int    `json:"commentCount"`
	LikedByMe    bool   `json:"likedByMe"`
}

// Comment is a reply on a post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	AuthorID  int64     `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	AuthorName  string `json:"authorName,omitempty"`
	AuthorPhoto string `json:"authorPhoto,omitempty"`
}

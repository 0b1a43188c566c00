package service

import (
	"errors"

	"familycircle/internal/models"
	"familycircle/internal/repository"
	"familycircle/internal/validation"
)

var ErrPostNotFound = errors.New("post not found")

// PostService handles the circle feed. Every operation is scoped to the
// caller's own circle; posts in other circles behave as if they do not
// exist.
type PostService struct {
	posts *repository.PostRepository
}

func NewPostService(posts *repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// CreatePost adds a post to the caller's circle feed.
func (s *PostService) CreatePost(user *models.User, title, content, imageURL string) (*models.Post, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	if title == "" {
		return nil, validation.Error{Field: "title", Message: "Title is required"}
	}
	return s.posts.CreatePost(*user.CircleID, user.ID, title, content, imageURL)
}

// GetFeed returns the caller's circle feed, newest first.
func (s *PostService) GetFeed(user *models.User, limit int) ([]models.Post, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	return s.posts.GetFeed(*user.CircleID, user.ID, limit)
}

// GetPost returns a single post from the caller's circle.
func (s *PostService) GetPost(user *models.User, postID int64) (*models.Post, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	post, err := s.posts.GetPost(postID, user.ID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.CircleID != *user.CircleID {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// DeletePost removes a post. The author or a circle admin may delete.
func (s *PostService) DeletePost(user *models.User, postID int64) error {
	post, err := s.GetPost(user, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != user.ID && user.CircleRole != models.RoleAdmin {
		return ErrNotAdmin
	}
	return s.posts.DeletePost(postID)
}

// AddComment replies to a post in the caller's circle.
func (s *PostService) AddComment(user *models.User, postID int64, content string) (*models.Comment, error) {
	if content == "" {
		return nil, validation.Error{Field: "content", Message: "Comment cannot be empty"}
	}
	if _, err := s.GetPost(user, postID); err != nil {
		return nil, err
	}
	return s.posts.CreateComment(postID, user.ID, content)
}

// GetComments lists a post's comments, oldest first.
func (s *PostService) GetComments(user *models.User, postID int64) ([]models.Comment, error) {
	if _, err := s.GetPost(user, postID); err != nil {
		return nil, err
	}
	return s.posts.GetComments(postID)
}

// LikePost records the caller's like. Liking twice is a no-op.
func (s *PostService) LikePost(user *models.User, postID int64) error {
	if _, err := s.GetPost(user, postID); err != nil {
		return err
	}
	return s.posts.LikePost(postID, user.ID)
}

// UnlikePost removes the caller's like.
func (s *PostService) UnlikePost(user *models.User, postID int64) error {
	if _, err := s.GetPost(user, postID); err != nil {
		return err
	}
	return s.posts.UnlikePost(postID, user.ID)
}

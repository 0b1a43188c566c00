package repository

import (
	"path/filepath"
	"testing"
	"time"

	"familycircle/internal/database"
	"familycircle/internal/models"
)

// newTestDB opens a throwaway SQLite database with the real migrations
// applied, so the repositories are exercised against the actual schema.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.SQLiteDialect{}, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, repo *UserRepository, email string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(email, "$2a$10$fakehash", "Jane", "Doe")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func TestUserLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user := createTestUser(t, repo, "jane@example.com")
	if user.DisplayName != "Jane Doe" {
		t.Errorf("DisplayName = %q, want %q", user.DisplayName, "Jane Doe")
	}
	if !user.IsAdmin {
		t.Error("the first user should be an application admin")
	}

	second := createTestUser(t, repo, "john@example.com")
	if second.IsAdmin {
		t.Error("later users should not be application admins")
	}

	found, err := repo.GetUserByEmail("jane@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if found == nil || found.ID != user.ID {
		t.Fatalf("GetUserByEmail returned %+v, want user %d", found, user.ID)
	}

	missing, err := repo.GetUserByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for an unknown email, got %+v", missing)
	}

	if _, err := repo.CreateUser("jane@example.com", "hash", "Jane", "Again"); err == nil {
		t.Error("expected a unique constraint error for a duplicate email")
	}

	if err := repo.UpdateNames(user.ID, "Janet", "Doe"); err != nil {
		t.Fatalf("UpdateNames failed: %v", err)
	}
	updated, err := repo.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if updated.DisplayName != "Janet Doe" {
		t.Errorf("DisplayName after update = %q, want %q", updated.DisplayName, "Janet Doe")
	}

	if err := repo.DeleteUser(user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	gone, err := repo.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if gone != nil {
		t.Error("expected the user to be gone after deletion")
	}
}

func TestSessions(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := createTestUser(t, repo, "jane@example.com")

	session, err := repo.CreateSession("session-token", user.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ID != "session-token" {
		t.Errorf("session ID = %q", session.ID)
	}

	found, err := repo.GetSession("session-token")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if found == nil || found.UserID != user.ID {
		t.Fatalf("GetSession returned %+v", found)
	}

	if _, err := repo.CreateSession("expired-token", user.ID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := repo.DeleteExpiredSessions(); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	expired, err := repo.GetSession("expired-token")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if expired != nil {
		t.Error("expected the expired session to be removed")
	}

	// Deleting the user cascades to their sessions.
	if err := repo.DeleteUser(user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	orphan, err := repo.GetSession("session-token")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if orphan != nil {
		t.Error("expected sessions to cascade on user deletion")
	}
}

func TestPasswordResetTokens(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := createTestUser(t, repo, "jane@example.com")

	if err := repo.CreatePasswordResetToken("reset-token", user.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreatePasswordResetToken failed: %v", err)
	}

	token, err := repo.GetPasswordResetToken("reset-token")
	if err != nil {
		t.Fatalf("GetPasswordResetToken failed: %v", err)
	}
	if token == nil || token.UserID != user.ID || token.Used {
		t.Fatalf("GetPasswordResetToken returned %+v", token)
	}

	if err := repo.MarkPasswordResetTokenAsUsed("reset-token"); err != nil {
		t.Fatalf("MarkPasswordResetTokenAsUsed failed: %v", err)
	}
	used, err := repo.GetPasswordResetToken("reset-token")
	if err != nil {
		t.Fatalf("GetPasswordResetToken failed: %v", err)
	}
	if !used.Used {
		t.Error("expected the token to be marked used")
	}
}

func TestCreateCircleInvariant(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	circles := NewCircleRepository(db)
	creator := createTestUser(t, users, "jane@example.com")

	circle, err := circles.CreateCircle("The Does", creator.ID)
	if err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}
	if len(circle.InviteCode) != 6 {
		t.Errorf("invite code %q should be 6 characters", circle.InviteCode)
	}

	// The creator must simultaneously appear as an admin member and carry
	// the circle on their user row.
	member, err := circles.GetMembership(circle.ID, creator.ID)
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	if member == nil || !member.IsAdmin() {
		t.Fatalf("expected an admin membership for the creator, got %+v", member)
	}

	reloaded, err := users.GetUserByID(creator.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if reloaded.CircleID == nil || *reloaded.CircleID != circle.ID {
		t.Errorf("user.CircleID = %v, want %d", reloaded.CircleID, circle.ID)
	}
	if reloaded.CircleRole != models.RoleAdmin {
		t.Errorf("user.CircleRole = %q, want %q", reloaded.CircleRole, models.RoleAdmin)
	}

	byCode, err := circles.GetCircleByInviteCode(circle.InviteCode)
	if err != nil {
		t.Fatalf("GetCircleByInviteCode failed: %v", err)
	}
	if byCode == nil || byCode.ID != circle.ID {
		t.Fatalf("GetCircleByInviteCode returned %+v", byCode)
	}

	members, memberUsers, err := circles.GetMembers(circle.ID)
	if err != nil {
		t.Fatalf("GetMembers failed: %v", err)
	}
	if len(members) != 1 || len(memberUsers) != 1 {
		t.Fatalf("expected exactly one member, got %d", len(members))
	}
	if memberUsers[0].ID != creator.ID {
		t.Errorf("member user = %d, want %d", memberUsers[0].ID, creator.ID)
	}
}

func TestRemoveMemberClearsUserRow(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	circles := NewCircleRepository(db)
	creator := createTestUser(t, users, "jane@example.com")

	circle, err := circles.CreateCircle("The Does", creator.ID)
	if err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}

	if err := circles.RemoveMember(circle.ID, creator.ID); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	member, err := circles.GetMembership(circle.ID, creator.ID)
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	if member != nil {
		t.Error("expected the membership row to be gone")
	}

	reloaded, err := users.GetUserByID(creator.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if reloaded.CircleID != nil {
		t.Errorf("user.CircleID = %v, want nil", *reloaded.CircleID)
	}
}

func TestFeedCountsAndLikes(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	circles := NewCircleRepository(db)
	posts := NewPostRepository(db)

	author := createTestUser(t, users, "jane@example.com")
	viewer := createTestUser(t, users, "john@example.com")
	circle, err := circles.CreateCircle("The Does", author.ID)
	if err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}

	post, err := posts.CreatePost(circle.ID, author.ID, "Beach day", "Who is in?", "")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if _, err := posts.CreateComment(post.ID, viewer.ID, "Me!"); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if err := posts.LikePost(post.ID, viewer.ID); err != nil {
		t.Fatalf("LikePost failed: %v", err)
	}
	// Liking twice must stay idempotent.
	if err := posts.LikePost(post.ID, viewer.ID); err != nil {
		t.Fatalf("second LikePost failed: %v", err)
	}

	feed, err := posts.GetFeed(circle.ID, viewer.ID, 0)
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected 1 post in the feed, got %d", len(feed))
	}
	got := feed[0]
	if got.LikeCount != 1 {
		t.Errorf("LikeCount = %d, want 1", got.LikeCount)
	}
	if got.CommentCount != 1 {
		t.Errorf("CommentCount = %d, want 1", got.CommentCount)
	}
	if !got.LikedByMe {
		t.Error("expected LikedByMe for the viewer")
	}
	if got.AuthorName != "Jane Doe" {
		t.Errorf("AuthorName = %q, want %q", got.AuthorName, "Jane Doe")
	}

	asAuthor, err := posts.GetPost(post.ID, author.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if asAuthor.LikedByMe {
		t.Error("the author has not liked their own post")
	}

	if err := posts.UnlikePost(post.ID, viewer.ID); err != nil {
		t.Fatalf("UnlikePost failed: %v", err)
	}
	refetched, err := posts.GetPost(post.ID, viewer.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if refetched.LikeCount != 0 || refetched.LikedByMe {
		t.Errorf("after unlike: LikeCount = %d, LikedByMe = %v", refetched.LikeCount, refetched.LikedByMe)
	}
}

func TestDeleteUserActivity(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	circles := NewCircleRepository(db)
	posts := NewPostRepository(db)

	author := createTestUser(t, users, "jane@example.com")
	commenter := createTestUser(t, users, "john@example.com")
	circle, err := circles.CreateCircle("The Does", author.ID)
	if err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}

	post, err := posts.CreatePost(circle.ID, author.ID, "Beach day", "Who is in?", "")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if _, err := posts.CreateComment(post.ID, commenter.ID, "Me!"); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if err := posts.LikePost(post.ID, commenter.ID); err != nil {
		t.Fatalf("LikePost failed: %v", err)
	}

	if err := posts.DeleteUserActivity(commenter.ID); err != nil {
		t.Fatalf("DeleteUserActivity failed: %v", err)
	}

	got, err := posts.GetPost(post.ID, author.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.CommentCount != 0 || got.LikeCount != 0 {
		t.Errorf("after activity deletion: comments = %d, likes = %d", got.CommentCount, got.LikeCount)
	}

	if err := posts.DeleteUserPosts(author.ID); err != nil {
		t.Fatalf("DeleteUserPosts failed: %v", err)
	}
	gone, err := posts.GetPost(post.ID, author.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if gone != nil {
		t.Error("expected the author's post to be deleted")
	}
}

func TestTaskOrderingAndClear(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	circles := NewCircleRepository(db)
	tasks := NewTaskRepository(db)

	creator := createTestUser(t, users, "jane@example.com")
	helper := createTestUser(t, users, "john@example.com")
	circle, err := circles.CreateCircle("The Does", creator.ID)
	if err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}

	soon := time.Now().Add(24 * time.Hour)
	later := time.Now().Add(72 * time.Hour)

	first, err := tasks.CreateTask(circle.ID, creator.ID, &helper.ID, "Buy groceries", &soon)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := tasks.CreateTask(circle.ID, creator.ID, nil, "Plan trip", &later); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := tasks.SetTaskDone(first.ID, true); err != nil {
		t.Fatalf("SetTaskDone failed: %v", err)
	}

	list, err := tasks.GetCircleTasks(circle.ID)
	if err != nil {
		t.Fatalf("GetCircleTasks failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	// Open tasks come before done ones.
	if list[0].Done || !list[1].Done {
		t.Errorf("task ordering wrong: done flags %v, %v", list[0].Done, list[1].Done)
	}
	if list[1].AssigneeName != "John Doe" {
		t.Errorf("AssigneeName = %q, want %q", list[1].AssigneeName, "John Doe")
	}

	// Clearing a user deletes their created tasks and unassigns the rest.
	if err := tasks.ClearUserTasks(helper.ID); err != nil {
		t.Fatalf("ClearUserTasks failed: %v", err)
	}
	list, err = tasks.GetCircleTasks(circle.ID)
	if err != nil {
		t.Fatalf("GetCircleTasks failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected the creator's tasks to survive, got %d", len(list))
	}
	for _, task := range list {
		if task.AssignedTo != nil && *task.AssignedTo == helper.ID {
			t.Error("expected the helper to be unassigned")
		}
	}

	if err := tasks.ClearUserTasks(creator.ID); err != nil {
		t.Fatalf("ClearUserTasks failed: %v", err)
	}
	list, err = tasks.GetCircleTasks(circle.ID)
	if err != nil {
		t.Fatalf("GetCircleTasks failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no tasks after clearing the creator, got %d", len(list))
	}
}

func TestEventWindow(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	circles := NewCircleRepository(db)
	events := NewEventRepository(db)

	creator := createTestUser(t, users, "jane@example.com")
	circle, err := circles.CreateCircle("The Does", creator.ID)
	if err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}

	nextWeek := time.Now().Add(7 * 24 * time.Hour)
	nextMonth := time.Now().Add(30 * 24 * time.Hour)

	if _, err := events.CreateEvent(circle.ID, creator.ID, "Birthday", "Home", nextWeek, nil); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if _, err := events.CreateEvent(circle.ID, creator.ID, "Holiday", "", nextMonth, nil); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	window, err := events.GetCircleEvents(circle.ID, time.Now(), time.Now().Add(14*24*time.Hour))
	if err != nil {
		t.Fatalf("GetCircleEvents failed: %v", err)
	}
	if len(window) != 1 {
		t.Fatalf("expected 1 event in the two-week window, got %d", len(window))
	}
	if window[0].Title != "Birthday" {
		t.Errorf("event title = %q, want %q", window[0].Title, "Birthday")
	}

	if err := events.DeleteUserEvents(creator.ID); err != nil {
		t.Fatalf("DeleteUserEvents failed: %v", err)
	}
	remaining, err := events.GetCircleEvents(circle.ID, time.Now(), time.Now().Add(60*24*time.Hour))
	if err != nil {
		t.Fatalf("GetCircleEvents failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected no events after deletion, got %d", len(remaining))
	}
}

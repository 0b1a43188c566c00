package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"familycircle/internal/config"
	"familycircle/internal/database"
	"familycircle/internal/logger"
)

// snapshot is the backup file format: every durable table except
// sessions and reset tokens, which are transient by nature.
type snapshot struct {
	ExportedAt time.Time    `json:"exportedAt"`
	Users      []userRow    `json:"users"`
	Circles    []circleRow  `json:"circles"`
	Members    []memberRow  `json:"members"`
	Posts      []postRow    `json:"posts"`
	Comments   []commentRow `json:"comments"`
	Likes      []likeRow    `json:"likes"`
	Tasks      []taskRow    `json:"tasks"`
	Events     []eventRow   `json:"events"`
}

type userRow struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"passwordHash"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	DisplayName   string    `json:"displayName"`
	PhotoURL      *string   `json:"photoUrl"`
	CircleID      *int64    `json:"circleId"`
	CircleRole    *string   `json:"circleRole"`
	OAuthProvider *string   `json:"oauthProvider"`
	OAuthSubject  *string   `json:"oauthSubject"`
	IsAdmin       bool      `json:"isAdmin"`
	CreatedAt     time.Time `json:"createdAt"`
}

type circleRow struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode"`
	CreatedBy  int64     `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

type memberRow struct {
	CircleID int64     `json:"circleId"`
	UserID   int64     `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type postRow struct {
	ID        int64     `json:"id"`
	CircleID  int64     `json:"circleId"`
	AuthorID  int64     `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type commentRow struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	AuthorID  int64     `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type likeRow struct {
	PostID int64 `json:"postId"`
	UserID int64 `json:"userId"`
}

type taskRow struct {
	ID         int64      `json:"id"`
	CircleID   int64      `json:"circleId"`
	CreatedBy  int64      `json:"createdBy"`
	AssignedTo *int64     `json:"assignedTo"`
	Title      string     `json:"title"`
	DueDate    *time.Time `json:"dueDate"`
	Done       bool       `json:"done"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type eventRow struct {
	ID        int64      `json:"id"`
	CircleID  int64      `json:"circleId"`
	CreatedBy int64      `json:"createdBy"`
	Title     string     `json:"title"`
	Location  *string    `json:"location"`
	StartsAt  time.Time  `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

func main() {
	logger.Init()

	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.Load()
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	switch os.Args[1] {
	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		out := fs.String("out", "familycircle-backup.json", "output file")
		fs.Parse(os.Args[2:])
		if err := export(db, *out); err != nil {
			log.Fatal().Err(err).Msg("Export failed")
		}
	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		in := fs.String("in", "familycircle-backup.json", "input file")
		fs.Parse(os.Args[2:])
		if err := restore(db, *in); err != nil {
			log.Fatal().Err(err).Msg("Import failed")
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: backup <export|import> [flags]")
	os.Exit(2)
}

func export(db *database.DB, path string) error {
	snap := snapshot{ExportedAt: time.Now().UTC()}

	rows, err := db.Query(`SELECT id, email, password_hash, first_name, last_name, display_name,
		photo_url, circle_id, circle_role, oauth_provider, oauth_subject, is_admin, created_at FROM users ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to read users: %w", err)
	}
	for rows.Next() {
		var u userRow
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.DisplayName,
			&u.PhotoURL, &u.CircleID, &u.CircleRole, &u.OAuthProvider, &u.OAuthSubject, &u.IsAdmin, &u.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan user: %w", err)
		}
		snap.Users = append(snap.Users, u)
	}
	rows.Close()

	rows, err = db.Query("SELECT id, name, invite_code, created_by, created_at FROM circles ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to read circles: %w", err)
	}
	for rows.Next() {
		var c circleRow
		if err := rows.Scan(&c.ID, &c.Name, &c.InviteCode, &c.CreatedBy, &c.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan circle: %w", err)
		}
		snap.Circles = append(snap.Circles, c)
	}
	rows.Close()

	rows, err = db.Query("SELECT circle_id, user_id, role, joined_at FROM circle_members ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to read members: %w", err)
	}
	for rows.Next() {
		var m memberRow
		if err := rows.Scan(&m.CircleID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan member: %w", err)
		}
		snap.Members = append(snap.Members, m)
	}
	rows.Close()

	rows, err = db.Query("SELECT id, circle_id, author_id, title, content, image_url, created_at FROM posts ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to read posts: %w", err)
	}
	for rows.Next() {
		var p postRow
		if err := rows.Scan(&p.ID, &p.CircleID, &p.AuthorID, &p.Title, &p.Content, &p.ImageURL, &p.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan post: %w", err)
		}
		snap.Posts = append(snap.Posts, p)
	}
	rows.Close()

	rows, err = db.Query("SELECT id, post_id, author_id, content, created_at FROM comments ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to read comments: %w", err)
	}
	for rows.Next() {
		var c commentRow
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		snap.Comments = append(snap.Comments, c)
	}
	rows.Close()

	rows, err = db.Query("SELECT post_id, user_id FROM post_likes")
	if err != nil {
		return fmt.Errorf("failed to read likes: %w", err)
	}
	for rows.Next() {
		var l likeRow
		if err := rows.Scan(&l.PostID, &l.UserID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan like: %w", err)
		}
		snap.Likes = append(snap.Likes, l)
	}
	rows.Close()

	rows, err = db.Query("SELECT id, circle_id, created_by, assigned_to, title, due_date, done, created_at FROM tasks ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to read tasks: %w", err)
	}
	for rows.Next() {
		var t taskRow
		if err := rows.Scan(&t.ID, &t.CircleID, &t.CreatedBy, &t.AssignedTo, &t.Title, &t.DueDate, &t.Done, &t.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan task: %w", err)
		}
		snap.Tasks = append(snap.Tasks, t)
	}
	rows.Close()

	rows, err = db.Query("SELECT id, circle_id, created_by, title, location, starts_at, ends_at, created_at FROM events ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	for rows.Next() {
		var e eventRow
		if err := rows.Scan(&e.ID, &e.CircleID, &e.CreatedBy, &e.Title, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan event: %w", err)
		}
		snap.Events = append(snap.Events, e)
	}
	rows.Close()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	log.Info().Str("file", path).
		Int("users", len(snap.Users)).
		Int("circles", len(snap.Circles)).
		Int("posts", len(snap.Posts)).
		Msg("Export complete")
	return nil
}

// restore loads a snapshot into an empty database. Rows are inserted with
// their original IDs so cross-references survive the round trip.
func restore(db *database.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}

	var existing int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&existing); err != nil {
		return fmt.Errorf("failed to check database: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("refusing to import into a database that already has %d users", existing)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Users first: circles.created_by carries a foreign key to users,
	// while users.circle_id is a plain column.
	for _, u := range snap.Users {
		if _, err := tx.Exec(`INSERT INTO users (id, email, password_hash, first_name, last_name, display_name,
			photo_url, circle_id, circle_role, oauth_provider, oauth_subject, is_admin, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.DisplayName,
			u.PhotoURL, u.CircleID, u.CircleRole, u.OAuthProvider, u.OAuthSubject, u.IsAdmin, u.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert user %d: %w", u.ID, err)
		}
	}
	for _, c := range snap.Circles {
		if _, err := tx.Exec("INSERT INTO circles (id, name, invite_code, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
			c.ID, c.Name, c.InviteCode, c.CreatedBy, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert circle %d: %w", c.ID, err)
		}
	}
	for _, m := range snap.Members {
		if _, err := tx.Exec("INSERT INTO circle_members (circle_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
			m.CircleID, m.UserID, m.Role, m.JoinedAt); err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}
	}
	for _, p := range snap.Posts {
		if _, err := tx.Exec("INSERT INTO posts (id, circle_id, author_id, title, content, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.CircleID, p.AuthorID, p.Title, p.Content, p.ImageURL, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert post %d: %w", p.ID, err)
		}
	}
	for _, c := range snap.Comments {
		if _, err := tx.Exec("INSERT INTO comments (id, post_id, author_id, content, created_at) VALUES (?, ?, ?, ?, ?)",
			c.ID, c.PostID, c.AuthorID, c.Content, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert comment %d: %w", c.ID, err)
		}
	}
	for _, l := range snap.Likes {
		if _, err := tx.Exec("INSERT INTO post_likes (post_id, user_id) VALUES (?, ?)", l.PostID, l.UserID); err != nil {
			return fmt.Errorf("failed to insert like: %w", err)
		}
	}
	for _, t := range snap.Tasks {
		if _, err := tx.Exec("INSERT INTO tasks (id, circle_id, created_by, assigned_to, title, due_date, done, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			t.ID, t.CircleID, t.CreatedBy, t.AssignedTo, t.Title, t.DueDate, t.Done, t.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert task %d: %w", t.ID, err)
		}
	}
	for _, e := range snap.Events {
		if _, err := tx.Exec("INSERT INTO events (id, circle_id, created_by, title, location, starts_at, ends_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			e.ID, e.CircleID, e.CreatedBy, e.Title, e.Location, e.StartsAt, e.EndsAt, e.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert event %d: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Info().Str("file", path).
		Int("users", len(snap.Users)).
		Int("circles", len(snap.Circles)).
		Msg("Import complete")
	return nil
}

package handlers

import (
	"net/http"
	"time"

	"familycircle/internal/security"
	"familycircle/internal/service"
)

// Router bundles the handlers and registers the API surface on a mux.
type Router struct {
	auth     *AuthHandler
	oauth    *OAuthHandler
	account  *AccountHandler
	circle   *CircleHandler
	posts    *PostHandler
	tasks    *TaskHandler
	events   *EventHandler
	sessions *service.AuthService

	authLimiter *security.RateLimiter
}

func NewRouter(
	auth *AuthHandler,
	oauth *OAuthHandler,
	account *AccountHandler,
	circle *CircleHandler,
	posts *PostHandler,
	tasks *TaskHandler,
	events *EventHandler,
	sessions *service.AuthService,
) *Router {
	return &Router{
		auth:     auth,
		oauth:    oauth,
		account:  account,
		circle:   circle,
		posts:    posts,
		tasks:    tasks,
		events:   events,
		sessions: sessions,

		// Credential endpoints get a tight budget to slow down guessing.
		authLimiter: security.NewRateLimiter(20, 15*time.Minute),
	}
}

// RegisterRoutes wires every endpoint onto the mux.
func (rt *Router) RegisterRoutes(mux *http.ServeMux) {
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		return RateLimit(rt.authLimiter, h)
	}
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(rt.sessions, h)
	}

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/register", limited(rt.auth.Register))
	mux.HandleFunc("POST /api/auth/login", limited(rt.auth.Login))
	mux.HandleFunc("POST /api/auth/logout", rt.auth.Logout)
	mux.HandleFunc("GET /api/auth/state", rt.auth.AuthState)
	mux.HandleFunc("POST /api/auth/password-reset", limited(rt.auth.RequestPasswordReset))
	mux.HandleFunc("POST /api/auth/password-reset/confirm", limited(rt.auth.ResetPassword))
	mux.HandleFunc("GET /api/auth/google", rt.oauth.StartGoogleOAuth)
	mux.HandleFunc("GET /api/auth/google/callback", rt.oauth.GoogleCallback)

	mux.HandleFunc("GET /api/me", protected(rt.account.Me))
	mux.HandleFunc("PUT /api/me", protected(rt.account.UpdateProfile))
	mux.HandleFunc("POST /api/me/photo", protected(rt.account.UploadPhoto))
	mux.HandleFunc("DELETE /api/me", protected(rt.account.DeleteAccount))
	mux.HandleFunc("GET /api/users/{id}", protected(rt.account.PublicProfile))

	mux.HandleFunc("GET /api/circle", protected(rt.circle.GetCircle))
	mux.HandleFunc("PUT /api/circle", protected(rt.circle.RenameCircle))
	mux.HandleFunc("POST /api/circle/join", protected(rt.circle.JoinCircle))
	mux.HandleFunc("POST /api/circle/leave", protected(rt.circle.LeaveCircle))

	mux.HandleFunc("POST /api/posts", protected(rt.posts.CreatePost))
	mux.HandleFunc("GET /api/posts", protected(rt.posts.GetFeed))
	mux.HandleFunc("GET /api/posts/{id}", protected(rt.posts.GetPost))
	mux.HandleFunc("DELETE /api/posts/{id}", protected(rt.posts.DeletePost))
	mux.HandleFunc("POST /api/posts/{id}/comments", protected(rt.posts.AddComment))
	mux.HandleFunc("GET /api/posts/{id}/comments", protected(rt.posts.GetComments))
	mux.HandleFunc("POST /api/posts/{id}/like", protected(rt.posts.LikePost))
	mux.HandleFunc("DELETE /api/posts/{id}/like", protected(rt.posts.UnlikePost))

	mux.HandleFunc("POST /api/tasks", protected(rt.tasks.CreateTask))
	mux.HandleFunc("GET /api/tasks", protected(rt.tasks.GetTasks))
	mux.HandleFunc("PUT /api/tasks/{id}/done", protected(rt.tasks.SetTaskDone))
	mux.HandleFunc("DELETE /api/tasks/{id}", protected(rt.tasks.DeleteTask))

	mux.HandleFunc("POST /api/events", protected(rt.events.CreateEvent))
	mux.HandleFunc("GET /api/events", protected(rt.events.GetEvents))
	mux.HandleFunc("PUT /api/events/{id}", protected(rt.events.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{id}", protected(rt.events.DeleteEvent))
}

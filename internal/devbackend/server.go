// Package devbackend - поддельный REST-бэкенд блога для локального запуска и тестов клиента.
package devbackend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/log"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/UkralStul/blogfront/internal/api"
	"github.com/UkralStul/blogfront/internal/authz"
	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/validate"
)

const (
	defaultSessionTTL     = 30 * time.Minute
	keepAlivePingInterval = 10 * time.Second
)

// Server обслуживает REST API и websocket-ленту комментариев.
type Server struct {
	store      Storage
	observer   *CommentObserver
	sessions   *sessionStore
	upgrader   websocket.Upgrader
	router     chi.Router
	requestLog bool
	bcryptCost int
}

// ServerOption настраивает Server.
type ServerOption func(*Server)

// WithRequestLog включает chi-логгер запросов.
func WithRequestLog(enabled bool) ServerOption {
	return func(s *Server) { s.requestLog = enabled }
}

func WithSessionTTL(d time.Duration) ServerOption {
	return func(s *Server) { s.sessions.ttl = d }
}

// WithBcryptCost нужен тестам: минимальная стоимость хэша ускоряет их.
func WithBcryptCost(cost int) ServerOption {
	return func(s *Server) { s.bcryptCost = cost }
}

func NewServer(store Storage, opts ...ServerOption) *Server {
	s := &Server{
		store:      store,
		observer:   NewCommentObserver(),
		sessions:   newSessionStore(defaultSessionTTL),
		bcryptCost: bcrypt.DefaultCost,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Observer нужен тестам, чтобы дождаться подписчика.
func (s *Server) Observer() *CommentObserver { return s.observer }

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	if s.requestLog {
		router.Use(middleware.Logger)
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Route("/api/posts", func(r chi.Router) {
		r.Get("/", s.listPosts)
		r.Post("/", s.createPost)
		r.Get("/{id}", s.getPost)
		r.Put("/{id}", s.updatePost)
		r.Delete("/{id}", s.deletePost)
	})
	router.Route("/api/comments", func(r chi.Router) {
		r.Get("/post/{postId}", s.listComments)
		r.Post("/", s.createComment)
		r.Put("/{id}", s.updateComment)
		r.Delete("/{id}", s.deleteComment)
	})
	router.Route("/api/users", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.loginUser)
		r.Get("/", s.listUsers)
		r.Get("/{pid}", s.getUser)
		r.Put("/{pid}", s.changePassword)
		r.Post("/{pid}/withdraw", s.withdraw)
		r.Delete("/{pid}", s.deleteUser)
	})
	router.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", s.loginAdmin)
		r.Post("/logout", s.logoutAdmin)
		r.Get("/{id}", s.getAdmin)
	})
	router.Get("/ws/comments/{postId}", s.watchComments)
	return router
}

// === Helpers ===

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("devbackend: write response: %s", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoParent), errors.Is(err, ErrEmpty):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("devbackend: %s", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func writeValidation(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, err.Error())
}

// actor возвращает участника сессии запроса; админ важнее пользователя.
func (s *Server) actor(r *http.Request) domain.Principal {
	_, sess, ok := s.sessions.lookup(r)
	if !ok {
		return domain.Guest()
	}
	if sess.adminID != 0 {
		if a, err := s.store.GetAdmin(r.Context(), sess.adminID); err == nil {
			return domain.AdminPrincipal(a.Admin)
		}
	}
	if sess.userPID != 0 {
		if u, err := s.store.GetUser(r.Context(), sess.userPID); err == nil {
			return domain.UserPrincipal(userOf(u))
		}
	}
	return domain.Guest()
}

// sessionHas сообщает, вошел ли в сессию запроса автор с данным id и видом.
func (s *Server) sessionHas(r *http.Request, kind domain.AuthorKind, id int64) bool {
	_, sess, ok := s.sessions.lookup(r)
	if !ok || id == 0 {
		return false
	}
	if kind == domain.AuthorAdmin {
		return sess.adminID == id
	}
	return sess.userPID == id
}

func userOf(u UserRecord) domain.User {
	return domain.User{PID: u.PID, UserID: u.UserID, NickName: u.NickName, Email: u.Email}
}

// === Posts ===

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	var boardType domain.BoardType
	if raw := r.URL.Query().Get("boardType"); raw != "" {
		bt, err := domain.ParseBoardType(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		boardType = bt
	}
	posts, err := s.store.ListPosts(r.Context(), boardType)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func postDraft(p domain.Post) domain.PostDraft {
	return domain.PostDraft{Title: p.Title, Content: p.Content, BoardType: p.BoardType, Category: p.Category, Tags: p.Tags}
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var in domain.Post
	if !decode(w, r, &in) {
		return
	}
	actor := s.actor(r)
	if actor.IsGuest() || actor.ActorID() != in.AuthorID {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	draft, err := validate.Post(postDraft(in))
	if err != nil {
		writeValidation(w, err)
		return
	}

	post, err := s.store.CreatePost(r.Context(), domain.Post{
		Title:     draft.Title,
		Content:   draft.Content,
		BoardType: draft.BoardType,
		Category:  draft.Category,
		Tags:      draft.Tags,
		AuthorID:  in.AuthorID,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// ownedPost загружает пост и проверяет право участника его менять.
func (s *Server) ownedPost(w http.ResponseWriter, r *http.Request) (domain.Post, bool) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return domain.Post{}, false
	}
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return domain.Post{}, false
	}
	actor := s.actor(r)
	if actor.IsGuest() {
		writeError(w, http.StatusUnauthorized, "login required")
		return domain.Post{}, false
	}
	if !authz.CanModify(actor, post) {
		writeError(w, http.StatusForbidden, "not the author")
		return domain.Post{}, false
	}
	return post, true
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var in domain.Post
	if !decode(w, r, &in) {
		return
	}
	post, ok := s.ownedPost(w, r)
	if !ok {
		return
	}
	draft, err := validate.Post(postDraft(in))
	if err != nil {
		writeValidation(w, err)
		return
	}
	post.Title, post.Content, post.BoardType = draft.Title, draft.Content, draft.BoardType
	post.Category, post.Tags = draft.Category, draft.Tags

	updated, err := s.store.UpdatePost(r.Context(), post)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.ownedPost(w, r)
	if !ok {
		return
	}
	if err := s.store.DeletePost(r.Context(), post.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Comments ===

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(w, r, "postId")
	if !ok {
		return
	}
	comments, err := s.store.ListComments(r.Context(), postID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]api.CommentWire, 0, len(comments))
	for _, c := range comments {
		out = append(out, api.WireComment(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var in api.CommentWire
	if !decode(w, r, &in) {
		return
	}
	c := in.Comment()
	if !s.sessionHas(r, c.AuthorKind, c.AuthorID) {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	content, err := validate.Comment(c.Content)
	if err != nil {
		writeValidation(w, err)
		return
	}
	c.Content = content

	created, err := s.store.CreateComment(r.Context(), c)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.observer.Publish(created)
	writeJSON(w, http.StatusCreated, api.WireComment(created))
}

func (s *Server) ownedComment(w http.ResponseWriter, r *http.Request) (domain.Comment, bool) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return domain.Comment{}, false
	}
	c, err := s.store.GetComment(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return domain.Comment{}, false
	}
	actor := s.actor(r)
	if actor.IsGuest() {
		writeError(w, http.StatusUnauthorized, "login required")
		return domain.Comment{}, false
	}
	if !authz.CanModify(actor, c) {
		writeError(w, http.StatusForbidden, "not the author")
		return domain.Comment{}, false
	}
	return c, true
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &in) {
		return
	}
	c, ok := s.ownedComment(w, r)
	if !ok {
		return
	}
	content, err := validate.Comment(in.Content)
	if err != nil {
		writeValidation(w, err)
		return
	}
	updated, err := s.store.UpdateComment(r.Context(), c.ID, content)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.WireComment(updated))
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	c, ok := s.ownedComment(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteComment(r.Context(), c.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// watchComments отдает новые комментарии поста по websocket.
func (s *Server) watchComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(w, r, "postId")
	if !ok {
		return
	}
	// Проверяем, существует ли пост, прежде чем подписываться
	if _, err := s.store.GetPost(r.Context(), postID); err != nil {
		writeStoreError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("devbackend: websocket upgrade: %s", err)
		return
	}
	defer conn.Close()

	comments, unsubscribe := s.observer.Subscribe(postID)
	defer unsubscribe()

	// читаем только чтобы заметить закрытие соединения клиентом
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(keepAlivePingInterval)
	defer ping.Stop()
	for {
		select {
		case c, ok := <-comments:
			if !ok {
				return
			}
			if err := conn.WriteJSON(api.WireComment(c)); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// === Users ===

type userLoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    *domain.User  `json:"user,omitempty"`
	Admin   *domain.Admin `json:"admin,omitempty"`
}

const badCredentials = "아이디 또는 비밀번호가 일치하지 않습니다."

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in domain.Registration
	if !decode(w, r, &in) {
		return
	}
	in.ConfirmPassword = in.Password
	if err := validate.Registration(in); err != nil {
		writeValidation(w, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	u, err := s.store.CreateUser(r.Context(), UserRecord{
		Account: domain.Account{
			UserID:      in.UserID,
			NickName:    in.NickName,
			Email:       in.Email,
			PhoneNumber: in.PhoneNumber,
		},
		PasswordHash: hash,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u.Account)
}

func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var in userLoginRequest
	if !decode(w, r, &in) {
		return
	}
	u, err := s.store.UserByLogin(r.Context(), in.UserID)
	if err != nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, loginResponse{Message: badCredentials})
		return
	}
	s.sessions.update(w, r, func(sess *session) { sess.userPID = u.PID })
	user := userOf(u)
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: "로그인 성공", User: &user})
}

// selfOrAdmin разрешает доступ к учетной записи ее владельцу и админу.
func (s *Server) selfOrAdmin(w http.ResponseWriter, r *http.Request) (int64, bool) {
	pid, ok := idParam(w, r, "pid")
	if !ok {
		return 0, false
	}
	actor := s.actor(r)
	if _, isAdmin := actor.Admin(); isAdmin {
		return pid, true
	}
	if u, isUser := actor.User(); isUser && u.PID == pid {
		return pid, true
	}
	writeError(w, http.StatusUnauthorized, "login required")
	return 0, false
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	pid, ok := s.selfOrAdmin(w, r)
	if !ok {
		return
	}
	u, err := s.store.GetUser(r.Context(), pid)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userOf(u))
}

// self разрешает доступ только вошедшему владельцу учетной записи.
func (s *Server) self(w http.ResponseWriter, r *http.Request) (UserRecord, bool) {
	pid, ok := idParam(w, r, "pid")
	if !ok {
		return UserRecord{}, false
	}
	if !s.sessionHas(r, domain.AuthorUser, pid) {
		writeError(w, http.StatusUnauthorized, "login required")
		return UserRecord{}, false
	}
	u, err := s.store.GetUser(r.Context(), pid)
	if err != nil {
		writeStoreError(w, err)
		return UserRecord{}, false
	}
	return u, true
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decode(w, r, &in) {
		return
	}
	u, ok := s.self(w, r)
	if !ok {
		return
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.CurrentPassword)) != nil {
		writeError(w, http.StatusBadRequest, "현재 비밀번호가 일치하지 않습니다.")
		return
	}
	if err := validate.Password(in.NewPassword); err != nil {
		writeValidation(w, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.bcryptCost)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.store.SetUserPassword(r.Context(), u.PID, hash); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "비밀번호가 변경되었습니다."})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	u, ok := s.self(w, r)
	if !ok {
		return
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.Password)) != nil {
		writeError(w, http.StatusBadRequest, "비밀번호가 일치하지 않습니다.")
		return
	}
	if err := s.store.DeleteUser(r.Context(), u.PID); err != nil {
		writeStoreError(w, err)
		return
	}
	s.sessions.dropUser(u.PID)
	writeJSON(w, http.StatusOK, messageBody{Message: "회원 탈퇴가 완료되었습니다."})
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := s.actor(r).Admin(); !ok {
		writeError(w, http.StatusUnauthorized, "admin login required")
		return false
	}
	return true
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]domain.Account, 0, len(users))
	for _, u := range users {
		out = append(out, u.Account)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	pid, ok := idParam(w, r, "pid")
	if !ok {
		return
	}
	if err := s.store.DeleteUser(r.Context(), pid); err != nil {
		writeStoreError(w, err)
		return
	}
	s.sessions.dropUser(pid)
	w.WriteHeader(http.StatusNoContent)
}

// === Admin ===

func (s *Server) loginAdmin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AdminName string `json:"adminName"`
		Password  string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	a, err := s.store.AdminByName(r.Context(), in.AdminName)
	if err != nil || bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(in.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, loginResponse{Message: badCredentials})
		return
	}
	s.sessions.update(w, r, func(sess *session) { sess.adminID = a.ID })
	admin := a.Admin
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: "관리자 로그인 성공", Admin: &admin})
}

func (s *Server) logoutAdmin(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.sessions.lookup(r); ok {
		s.sessions.update(w, r, func(sess *session) { sess.adminID = 0 })
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "로그아웃 되었습니다."})
}

func (s *Server) getAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if !s.sessionHas(r, domain.AuthorAdmin, id) {
		writeError(w, http.StatusUnauthorized, "admin login required")
		return
	}
	a, err := s.store.GetAdmin(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Admin)
}

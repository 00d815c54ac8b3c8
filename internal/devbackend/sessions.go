package devbackend

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie - имя куки сессии, как у Spring-бэкенда блога.
const SessionCookie = "JSESSIONID"

// session - кто вошел в рамках одной куки. Пользователь и админ независимы.
type session struct {
	userPID int64
	adminID int64
	expires time.Time
}

type sessionStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	byID map[string]*session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:  ttl,
		now:  time.Now,
		byID: make(map[string]*session),
	}
}

// lookup возвращает копию живой сессии по куке запроса.
func (s *sessionStore) lookup(r *http.Request) (string, session, bool) {
	ck, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", session{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[ck.Value]
	if !ok {
		return "", session{}, false
	}
	if s.now().After(sess.expires) {
		delete(s.byID, ck.Value)
		return "", session{}, false
	}
	return ck.Value, *sess, true
}

// update меняет сессию запроса, создавая ее и выставляя куку при необходимости.
func (s *sessionStore) update(w http.ResponseWriter, r *http.Request, fn func(*session)) {
	id, _, ok := s.lookup(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.byID[id]
	if !ok || sess == nil {
		id = uuid.NewString()
		sess = &session{}
		s.byID[id] = sess
	}
	fn(sess)
	sess.expires = s.now().Add(s.ttl)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Expires:  sess.expires,
	})
}

// dropUser снимает вход пользователя pid во всех сессиях.
func (s *sessionStore) dropUser(pid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.byID {
		if sess.userPID == pid {
			sess.userPID = 0
		}
	}
}

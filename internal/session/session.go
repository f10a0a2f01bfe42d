// Package session stores the login and checkout state in the gin cookie session.
package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "user_id"
	selectionKey = "selected_cart_items"
	lastOrderKey = "last_orders"
)

// Flash levels.
const (
	Success = "success"
	Warning = "warning"
	Error   = "error"
)

// Session wraps the request's cookie session. Writes are buffered until Save.
type Session struct {
	s sessions.Session
}

func From(c *gin.Context) *Session {
	return &Session{s: sessions.Default(c)}
}

func (s *Session) UserID() (uint, bool) {
	id, ok := s.s.Get(userIDKey).(uint)
	return id, ok && id != 0
}

// Login replaces whatever the session held with a fresh login for userID.
func (s *Session) Login(userID uint) {
	s.s.Clear()
	s.s.Set(userIDKey, userID)
}

func (s *Session) Logout() {
	s.s.Clear()
	s.s.Options(sessions.Options{Path: "/", MaxAge: -1})
}

func (s *Session) Selection() []uint {
	return s.uints(selectionKey)
}

func (s *Session) SetSelection(ids []uint) {
	s.s.Set(selectionKey, append([]uint(nil), ids...))
}

func (s *Session) ClearSelection() {
	s.s.Delete(selectionKey)
}

func (s *Session) LastOrders() []uint {
	return s.uints(lastOrderKey)
}

func (s *Session) SetLastOrders(ids []uint) {
	s.s.Set(lastOrderKey, append([]uint(nil), ids...))
}

func (s *Session) Get(key string) interface{} {
	return s.s.Get(key)
}

func (s *Session) Set(key string, val interface{}) {
	s.s.Set(key, val)
}

func (s *Session) Delete(key string) {
	s.s.Delete(key)
}

// Flash queues a message for the next rendered view.
func (s *Session) Flash(level, msg string) {
	s.s.AddFlash(msg, level)
}

// Messages pops every queued flash, keyed by level.
func (s *Session) Messages() map[string][]string {
	out := map[string][]string{}
	for _, level := range []string{Success, Warning, Error} {
		for _, f := range s.s.Flashes(level) {
			if msg, ok := f.(string); ok {
				out[level] = append(out[level], msg)
			}
		}
	}
	return out
}

func (s *Session) Save() error {
	return s.s.Save()
}

func (s *Session) uints(key string) []uint {
	ids, _ := s.s.Get(key).([]uint)
	return ids
}

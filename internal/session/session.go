// Package session carries the admin credentials and feature preferences that admin
// components receive explicitly instead of looking them up from ambient state.
package session

import (
	"sync/atomic"

	"github.com/jakubkanna/labguy-manager/internal/entity"
)

// Session is the authenticated admin context of one page.
type Session struct {
	Token       string
	Preferences *entity.Preferences
	Loading     *Loading
}

// Complete reports whether both a token and preferences are available.
func (s Session) Complete() bool {
	return s.Token != "" && s.Preferences != nil
}

// Loading is the page-wide busy indicator. Nested holders are counted so that the
// indicator only clears after the last one is released.
type Loading struct {
	n atomic.Int32
}

// Hold marks the page busy and returns the release func.
func (l *Loading) Hold() func() {
	if l == nil {
		return func() {}
	}
	l.n.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			l.n.Add(-1)
		}
	}
}

func (l *Loading) Active() bool {
	return l != nil && l.n.Load() > 0
}

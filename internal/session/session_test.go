package session

import (
	"testing"

	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestComplete(t *testing.T) {
	assert.False(t, Session{}.Complete())
	assert.False(t, Session{Token: "t"}.Complete())
	assert.False(t, Session{Preferences: &entity.Preferences{}}.Complete())
	assert.True(t, Session{Token: "t", Preferences: &entity.Preferences{}}.Complete())
}

func TestLoading(t *testing.T) {
	var l Loading
	assert.False(t, l.Active())

	r1 := l.Hold()
	r2 := l.Hold()
	assert.True(t, l.Active())

	r1()
	r1()
	assert.True(t, l.Active())
	r2()
	assert.False(t, l.Active())

	var nilLoading *Loading
	nilLoading.Hold()()
	assert.False(t, nilLoading.Active())
}

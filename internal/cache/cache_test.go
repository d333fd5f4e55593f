package cache

import (
	"testing"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestPreferences(t *testing.T) {
	c := New()
	assert.Equal(t, entity.DefaultPreferences(), c.GetPreferences())

	p := entity.Preferences{EnableImages: false, Enable3D: true, UpdatedAt: time.Unix(10, 0)}
	c.SetPreferences(p)
	assert.Equal(t, p, c.GetPreferences())
}

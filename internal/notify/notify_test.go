package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_AssignsID(t *testing.T) {
	a := New("Title", "Body")
	b := New("Title", "Body")

	assert.Equal(t, "Title", a.Title)
	assert.Equal(t, "Body", a.Body)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestStatus_InitialState(t *testing.T) {
	s := NewStatus()

	assert.False(t, s.Online())
	assert.Empty(t, s.CriticalError())
}

func TestStatus_Transitions(t *testing.T) {
	s := NewStatus()

	s.SetOnline(true)
	assert.True(t, s.Online())

	s.SetOnline(false)
	assert.False(t, s.Online())

	s.SetCriticalError("connection to the server failed")
	assert.Equal(t, "connection to the server failed", s.CriticalError())

	// Coming back online clears the error.
	s.SetOnline(true)
	assert.True(t, s.Online())
	assert.Empty(t, s.CriticalError())
}

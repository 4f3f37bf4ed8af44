package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneEvents_NilBecomesEmpty(t *testing.T) {
	cloned := CloneEvents(nil)
	assert.NotNil(t, cloned)
	assert.Empty(t, cloned)
}

func TestCloneEvents_IsIndependent(t *testing.T) {
	original := []Event{{ID: 1, Name: "Farmers Market"}}
	cloned := CloneEvents(original)
	cloned[0].Name = "changed"

	assert.Equal(t, "Farmers Market", original[0].Name)
}

func TestCloneIDs_NilBecomesEmpty(t *testing.T) {
	assert.Equal(t, []int64{}, CloneIDs(nil))
}

func TestMaxID(t *testing.T) {
	assert.Equal(t, int64(0), MaxID(nil))
	assert.Equal(t, int64(42), MaxID([]Event{{ID: 3}, {ID: 42}, {ID: 7}}))
}

func TestIndexByID(t *testing.T) {
	byID := IndexByID([]Event{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	assert.Equal(t, "b", byID[2].Name)
	_, ok := byID[3]
	assert.False(t, ok)
}

func TestEvent_HasDescription(t *testing.T) {
	assert.False(t, Event{}.HasDescription())
	assert.True(t, Event{Description: "bring a mat"}.HasDescription())
}

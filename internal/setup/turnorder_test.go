// internal/setup/turnorder_test.go
package setup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parlorbot/parlor/internal/chat"
)

func users(ids ...string) []chat.User {
	out := make([]chat.User, len(ids))
	for i, id := range ids {
		out[i] = chat.User{ID: id, Tag: id + "#0001"}
	}
	return out
}

func ids(order []chat.User) []string {
	out := make([]string, len(order))
	for i, u := range order {
		out[i] = u.ID
	}
	return out
}

func TestRepositionMovesToFront(t *testing.T) {
	order := users("a", "b", "c")
	got := Reposition(order, order[1], 1)
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestRepositionMovesToBack(t *testing.T) {
	order := users("a", "b", "c")
	got := Reposition(order, order[0], 3)
	assert.Equal(t, []string{"b", "c", "a"}, ids(got))
}

func TestRepositionPreservesRelativeOrder(t *testing.T) {
	order := users("a", "b", "c", "d", "e")
	got := Reposition(order, order[4], 2)
	assert.Equal(t, []string{"a", "e", "b", "c", "d"}, ids(got))
}

func TestRepositionDoesNotMutateInput(t *testing.T) {
	order := users("a", "b", "c")
	_ = Reposition(order, order[2], 1)
	assert.Equal(t, []string{"a", "b", "c"}, ids(order))
}

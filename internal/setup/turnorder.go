// internal/setup/turnorder.go
package setup

import "github.com/parlorbot/parlor/internal/chat"

// Reposition returns a new order with user moved to the 1-based position
// pos. The input slice is never mutated and the relative order of all other
// users is preserved. The caller validates pos against [1, len(order)].
func Reposition(order []chat.User, user chat.User, pos int) []chat.User {
	out := make([]chat.User, 0, len(order))
	for _, u := range order {
		if u.ID != user.ID {
			out = append(out, u)
		}
	}
	out = append(out, chat.User{})
	copy(out[pos:], out[pos-1:])
	out[pos-1] = user
	return out
}

// indexOf returns the position of the user with the given ID, or -1.
func indexOf(order []chat.User, id string) int {
	for i, u := range order {
		if u.ID == id {
			return i
		}
	}
	return -1
}

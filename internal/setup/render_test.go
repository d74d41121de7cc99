// internal/setup/render_test.go
package setup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testView() View {
	players := users("1", "2")
	return View{
		Name:      "liars-dice",
		HostTag:   "host#0001",
		Prefix:    "!",
		Players:   players,
		TurnOrder: players,
		Options: map[string]any{
			"wildOnes":     true,
			"startingDice": float64(5),
		},
		HasOptions: true,
	}
}

func TestRenderDeterministic(t *testing.T) {
	v := testView()
	assert.Equal(t, Render(v), Render(v))
}

func TestRenderSections(t *testing.T) {
	out := Render(testView())
	assert.Contains(t, out, "**Setting up game:** liars-dice")
	assert.Contains(t, out, "**Host:** host#0001")
	assert.Contains(t, out, "<@1> <@2>")
	assert.Contains(t, out, "**Current turn order:**")
	assert.Contains(t, out, "<@1>, <@2>")
	assert.Contains(t, out, "`startingDice`: `5`")
	assert.Contains(t, out, "`wildOnes`: `true`")
	assert.Contains(t, out, "`!setupgame start`")
	assert.Contains(t, out, "`!setupgame cancel`")
	assert.Contains(t, out, "120 seconds")
}

func TestRenderRandomizedMarker(t *testing.T) {
	v := testView()
	v.RandomTurns = true
	out := Render(v)
	assert.Contains(t, out, "*Randomized!*")
	assert.NotContains(t, out, "<@1>, <@2>")
}

func TestRenderNoTurnOrderSection(t *testing.T) {
	v := testView()
	v.TurnOrder = nil
	assert.NotContains(t, Render(v), "**Current turn order:**")
}

func TestRenderNoOptionsNotice(t *testing.T) {
	v := testView()
	v.HasOptions = false
	v.Options = nil
	out := Render(v)
	assert.Contains(t, out, "This game has no custom rules available.")
	assert.NotContains(t, out, "**Game options:**")
}

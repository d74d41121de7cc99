// internal/games/builtin.go
package games

// Builtin returns the descriptors shipped with the bot.
func Builtin() []Descriptor {
	return []Descriptor{
		{
			Name:           "coup",
			MaxPlayers:     6,
			DefaultOptions: map[string]any{},
			TurnOrder:      true,
		},
		{
			Name:       "liars-dice",
			MaxPlayers: 8,
			DefaultOptions: map[string]any{
				"startingDice": float64(5),
				"wildOnes":     true,
			},
			TurnOrder: true,
		},
		{
			Name:       "hangman",
			MaxPlayers: 4,
			DefaultOptions: map[string]any{
				"theme":      "classic",
				"maxGuesses": float64(8),
			},
			TurnOrder: false,
		},
	}
}

// RegisterBuiltin loads every built-in descriptor into the registry.
func RegisterBuiltin(r *Registry) {
	for _, d := range Builtin() {
		r.Register(d)
	}
}

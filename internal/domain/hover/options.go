package hover

// DefaultPlayersPerGame is the fixed party size of a league game.
const DefaultPlayersPerGame = 3

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithPlayersPerGame sets the divisor used to turn row counts into games.
func WithPlayersPerGame(n int) Option {
	return func(b *Builder) {
		b.playersPerGame = n
	}
}

// WithRoster fixes the order players are listed in a summary.
func WithRoster(players []string) Option {
	return func(b *Builder) {
		b.roster = append([]string(nil), players...)
	}
}

// WithLineBreak sets the separator between summary lines, e.g. "<br>" for HTML tooltips.
func WithLineBreak(sep string) Option {
	return func(b *Builder) {
		if sep != "" {
			b.lineBreak = sep
		}
	}
}

package domain

// Engine is the slice of the rules engine the online client depends on.
type Engine interface {
	ParseGameState(raw string) (*GameState, error)
	GameOption(name string) (GameOption, bool)
}

// UHPEngine reads snapshots in the Universal Hive Protocol game string format.
type UHPEngine struct{}

func (UHPEngine) ParseGameState(raw string) (*GameState, error) {
	return ParseGameState(raw)
}

func (UHPEngine) GameOption(name string) (GameOption, bool) {
	return ParseGameOption(name)
}

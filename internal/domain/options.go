package domain

// GameOption is a rule variant the server can toggle for a match.
type GameOption string

const (
	OptionMosquito                      GameOption = "Mosquito"
	OptionLadybug                       GameOption = "Ladybug"
	OptionPillBug                       GameOption = "PillBug"
	OptionNoFirstMoveQueen              GameOption = "NoFirstMoveQueen"
	OptionAllowSpecialAbilityAfterYoink GameOption = "AllowSpecialAbilityAfterYoink"
)

// AllGameOptions lists every option the engine models, expansions first.
var AllGameOptions = []GameOption{
	OptionMosquito,
	OptionLadybug,
	OptionPillBug,
	OptionNoFirstMoveQueen,
	OptionAllowSpecialAbilityAfterYoink,
}

// expansion options are encoded in the game type string by their initial
var expansionCodes = map[GameOption]byte{
	OptionMosquito: 'M',
	OptionLadybug:  'L',
	OptionPillBug:  'P',
}

func (o GameOption) IsExpansion() bool {
	_, ok := expansionCodes[o]
	return ok
}

// ParseGameOption matches a raw option name against the known set.
func ParseGameOption(name string) (GameOption, bool) {
	for _, option := range AllGameOptions {
		if string(option) == name {
			return option, true
		}
	}
	return "", false
}

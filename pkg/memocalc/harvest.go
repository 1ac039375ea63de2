package memocalc

// Token is one number found in the fully reduced text.
type Token struct {
	Value    float64 `json:"value" yaml:"value"`
	Literal  string  `json:"literal" yaml:"literal"`
	Position int     `json:"position" yaml:"position"`
}

// harvest collects every literal of text left to right.
func harvest(text string) []Token {
	locs := literalPattern.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		lit := text[loc[0]:loc[1]]
		v, ok := parseNumber(lit)
		if !ok {
			continue
		}
		tokens = append(tokens, Token{Value: v, Literal: lit, Position: loc[0]})
	}
	return tokens
}

func total(tokens []Token) float64 {
	sum := 0.0
	for _, t := range tokens {
		sum += t.Value
	}
	return sum
}

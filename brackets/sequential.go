package brackets

// SequentialGenerator pairs the roster in registration order:
// roster[0] vs roster[1], roster[2] vs roster[3], and so on. With an odd
// roster the trailing team receives a bye and no match is created for it.
type SequentialGenerator struct{}

func NewSequentialGenerator() Generator {
	return &SequentialGenerator{}
}

func (g *SequentialGenerator) Name() string {
	return StrategySequential
}

func (g *SequentialGenerator) Generate(teamIDs []int) (*Result, error) {
	if len(teamIDs) < 2 {
		return nil, ErrNotEnoughTeams
	}

	result := &Result{
		Pairings: make([]Pairing, 0, len(teamIDs)/2),
	}
	for i := 0; i+1 < len(teamIDs); i += 2 {
		result.Pairings = append(result.Pairings, Pairing{
			Team1ID: teamIDs[i],
			Team2ID: teamIDs[i+1],
			Round:   1,
		})
	}
	if len(teamIDs)%2 != 0 {
		result.Byes = append(result.Byes, teamIDs[len(teamIDs)-1])
	}
	return result, nil
}

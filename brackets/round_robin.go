package brackets

// RoundRobinGenerator emits one fixture for every distinct pair of teams, in
// roster order: roster[0] plays everyone below it, then roster[1], and so on.
// Every team is matched, so a round robin never produces byes.
type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return StrategyRoundRobin
}

func (g *RoundRobinGenerator) Generate(teamIDs []int) (*Result, error) {
	n := len(teamIDs)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}

	result := &Result{
		Pairings: make([]Pairing, 0, n*(n-1)/2),
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			result.Pairings = append(result.Pairings, Pairing{
				Team1ID: teamIDs[i],
				Team2ID: teamIDs[j],
				Round:   1,
			})
		}
	}
	return result, nil
}

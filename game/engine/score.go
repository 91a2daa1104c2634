package engine

var chainPowerTable = [...]int{0, 8, 16, 32, 64, 128, 256, 512, 999}

// ChainPower returns the multiplier of a chain level, clamped at the last
// table entry.
func ChainPower(level int) int {
	if level < 0 {
		return 0
	}
	if level >= len(chainPowerTable) {
		level = len(chainPowerTable) - 1
	}
	return chainPowerTable[level]
}

// Score tracks clears for one board.
type Score struct {
	Points        int `json:"points"`
	PiecesCleared int `json:"pieces_cleared"`
	GroupsCleared int `json:"groups_cleared"`
	LongestChain  int `json:"longest_chain"`
	ChainPower    int `json:"chain_power"`
}

// record accounts one removal step at the given chain level.
func (s *Score) record(level, pieces, groups int) int {
	power := ChainPower(level)
	points := 10 * pieces * max(1, power)
	s.Points += points
	s.PiecesCleared += pieces
	s.GroupsCleared += groups
	s.ChainPower = power
	s.LongestChain = max(s.LongestChain, level+1)
	return points
}

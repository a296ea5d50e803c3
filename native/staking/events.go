package staking

// Event types emitted by the host when stake state changes.
const (
	EventStaked   = "staking.staked"
	EventUnstaked = "staking.unstaked"
	EventMerged   = "staking.merged"
)

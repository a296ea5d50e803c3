package rewards

// Event types emitted by the host when reward state changes.
const (
	EventAccrued          = "rewards.accrued"
	EventClaimed          = "rewards.claimed"
	EventReferralCredited = "rewards.referral.credited"
	EventReferralSkipped  = "rewards.referral.skipped"
	EventReferrerBound    = "rewards.referrer.bound"
)

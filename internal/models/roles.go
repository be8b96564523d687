package models

const (
	NormalUser = "player"
	VIPUser    = "vip-player"
	VVIPUser   = "vvip-player"
)

// IsVIP reports whether the role unlocks VIP-only offers.
func IsVIP(role string) bool {
	return role == VIPUser || role == VVIPUser
}

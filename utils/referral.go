package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ReferralCodePrefix tags every code so partners recognize it on sight.
const ReferralCodePrefix = "IK"

// ReferralCode derives the public referral code for an email.
// Format: IK-<first 8 hex chars of sha256(lowercased email), uppercased>.
//
// Deterministic on purpose: the code must be re-derivable without a lookup,
// and re-registering an existing affiliate must yield the same code instead
// of minting a new one.
func ReferralCode(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	digest := hex.EncodeToString(sum[:])
	return fmt.Sprintf("%s-%s", ReferralCodePrefix, strings.ToUpper(digest[:8]))
}

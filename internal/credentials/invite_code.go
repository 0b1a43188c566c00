// Package credentials generates the shareable codes handed to users.
package credentials

import (
	"crypto/rand"
	"math/big"
)

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// InviteCodeLength is the length of generated circle invite codes.
const InviteCodeLength = 6

// GenerateInviteCode generates a random invite code for a family circle.
// Codes are not guaranteed unique; the storage layer enforces uniqueness
// and callers retry on collision.
func GenerateInviteCode() (string, error) {
	code := make([]byte, InviteCodeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeAlphabet[num.Int64()]
	}
	return string(code), nil
}

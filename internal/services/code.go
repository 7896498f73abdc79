package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeLength      = 6
	codeChars       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeMaxAttempts = 10
)

// uniqueCode generates a 6-character code not yet taken according to exists
func uniqueCode(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < codeMaxAttempts; i++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code existence: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique code after %d attempts", codeMaxAttempts)
}

// generateCode generates a random 6-character code
func generateCode() (string, error) {
	code := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeChars)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random: %w", err)
		}
		code[i] = codeChars[n.Int64()]
	}
	return string(code), nil
}

// pageBounds clamps list pagination to the API limits
func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

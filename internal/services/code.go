package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/roayati/clubs/internal/repository"
)

// generateRegCode returns REG- followed by 8 uppercase hex characters.
func generateRegCode() string {
	id := uuid.New()
	return "REG-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// uniqueRegCode retries until the code is unused.
func uniqueRegCode(ctx context.Context, regs repository.RegistrationRepository) (string, error) {
	for i := 0; i < 5; i++ {
		code := generateRegCode()
		taken, err := regs.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "REG-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")), nil
}

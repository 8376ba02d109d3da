package authkit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// usernameFromEmail derives a human-facing handle from the email local-part.
func usernameFromEmail(email string) string {
	if strings.Contains(email, "@") {
		return strings.Split(email, "@")[0]
	}
	return email
}

// deriveUniqueUsername resolves the handle for a new registration. On
// collision it appends a millisecond timestamp. This is best-effort
// uniqueness for human-facing handles, not a distributed allocator; the
// store's unique constraint remains the final arbiter.
func deriveUniqueUsername(ctx context.Context, store CredentialStore, email string, now time.Time) (string, error) {
	username := usernameFromEmail(email)

	taken, err := store.ExistsByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if taken {
		username = fmt.Sprintf("%s_%d", username, now.UnixMilli())
	}

	return username, nil
}

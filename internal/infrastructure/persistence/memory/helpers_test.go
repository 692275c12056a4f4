package memory

import "github.com/sync-campus/sync-hub/internal/infrastructure/auth"

func credential(userID, email string) auth.Credential {
	return auth.Credential{UserID: userID, Email: email, PasswordHash: "hash"}
}

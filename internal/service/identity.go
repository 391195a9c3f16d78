package service

import (
	"context"
	"log"
	"strings"

	"github.com/iammohit64/wrap-up/internal/model"
	"github.com/iammohit64/wrap-up/internal/repository"
)

// AnonymousName is returned for empty identities and anon_ session ids.
const AnonymousName = "Anonymous"

// IdentityService resolves a wallet address or session identity to a display
// name. Resolution is best-effort by design: a failed profile lookup degrades
// to a truncated address instead of propagating the error.
type IdentityService struct {
	userRepo repository.UserRepository
}

func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// ResolveDisplayName maps an identity to a human-readable name. Never fails.
func (s *IdentityService) ResolveDisplayName(ctx context.Context, identity string) string {
	if identity == "" || strings.HasPrefix(identity, model.AnonPrefix) {
		return AnonymousName
	}

	user, err := s.userRepo.GetByWallet(ctx, identity)
	if err != nil {
		if err != model.ErrUserNotFound {
			log.Printf("[Identity] Lookup failed for %s, falling back to truncated form: %v", identity, err)
		}
		return TruncateIdentity(identity)
	}
	if user.DisplayName != nil && *user.DisplayName != "" {
		return *user.DisplayName
	}
	return TruncateIdentity(identity)
}

// TruncateIdentity shortens a wallet address to its first six and last four
// characters. Identities too short to truncate are returned as-is.
func TruncateIdentity(identity string) string {
	if len(identity) <= 10 {
		return identity
	}
	return identity[:6] + "..." + identity[len(identity)-4:]
}

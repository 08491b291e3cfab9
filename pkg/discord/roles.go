package discord

import (
	"context"
	"fmt"

	idiscord "github.com/fadedpez/tucoblackjack/internal/discord"
	"github.com/fadedpez/tucoblackjack/pkg/services/blackjack"
)

// RoleMultiplierResolver grants the best winnings multiplier among a member's guild roles
type RoleMultiplierResolver struct {
	session     idiscord.SessionHandler
	guildID     string
	multipliers map[string]float64 // role ID -> multiplier
}

// NewRoleMultiplierResolver creates a resolver for the given guild
func NewRoleMultiplierResolver(session idiscord.SessionHandler, guildID string, multipliers map[string]float64) *RoleMultiplierResolver {
	return &RoleMultiplierResolver{
		session:     session,
		guildID:     guildID,
		multipliers: multipliers,
	}
}

var _ blackjack.MultiplierResolver = (*RoleMultiplierResolver)(nil)

// Resolve implements blackjack.MultiplierResolver
func (r *RoleMultiplierResolver) Resolve(_ context.Context, playerID string) (float64, error) {
	if len(r.multipliers) == 0 || r.guildID == "" {
		return 1, nil
	}

	member, err := r.session.GuildMember(r.guildID, playerID)
	if err != nil {
		return 1, fmt.Errorf("looking up member %s: %w", playerID, err)
	}

	best := 1.0
	for _, roleID := range member.Roles {
		if m, ok := r.multipliers[roleID]; ok && m > best {
			best = m
		}
	}
	return best, nil
}

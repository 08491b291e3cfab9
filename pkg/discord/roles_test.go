package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	discordmock "github.com/fadedpez/tucoblackjack/internal/discord/mock"
	"github.com/stretchr/testify/assert"
)

func TestRoleMultiplierResolver(t *testing.T) {
	multipliers := map[string]float64{"vip": 1.5, "whale": 2, "penalty": 0.5}

	testCases := []struct {
		name     string
		roles    []string
		expected float64
	}{
		{name: "no roles", roles: nil, expected: 1},
		{name: "unlisted role", roles: []string{"member"}, expected: 1},
		{name: "single role", roles: []string{"vip"}, expected: 1.5},
		{name: "best role wins", roles: []string{"vip", "whale"}, expected: 2},
		{name: "never below one", roles: []string{"penalty"}, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			session := &discordmock.SessionHandler{}
			session.On("GuildMember", "guild", "alice").Return(&discordgo.Member{Roles: tc.roles}, nil)
			resolver := NewRoleMultiplierResolver(session, "guild", multipliers)

			m, err := resolver.Resolve(context.Background(), "alice")

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, m)
		})
	}
}

func TestRoleMultiplierResolverWithoutRolesSkipsLookup(t *testing.T) {
	session := &discordmock.SessionHandler{}
	resolver := NewRoleMultiplierResolver(session, "guild", nil)

	m, err := resolver.Resolve(context.Background(), "alice")

	assert.NoError(t, err)
	assert.Equal(t, 1.0, m)
	session.AssertNotCalled(t, "GuildMember", "guild", "alice")
}

func TestRoleMultiplierResolverLookupFailure(t *testing.T) {
	session := &discordmock.SessionHandler{}
	session.On("GuildMember", "guild", "alice").Return(nil, errors.New("unknown member"))
	resolver := NewRoleMultiplierResolver(session, "guild", map[string]float64{"vip": 2})

	m, err := resolver.Resolve(context.Background(), "alice")

	assert.Error(t, err)
	assert.Equal(t, 1.0, m)
}

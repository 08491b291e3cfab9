package discord

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	discordmock "github.com/fadedpez/tucoblackjack/internal/discord/mock"
	"github.com/fadedpez/tucoblackjack/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ResponseTestSuite struct {
	suite.Suite
	session     *discordmock.SessionHandler
	interaction *discordgo.InteractionCreate
}

func TestResponseSuite(t *testing.T) {
	suite.Run(t, new(ResponseTestSuite))
}

func (s *ResponseTestSuite) SetupTest() {
	s.session = &discordmock.SessionHandler{}
	s.session.Test(s.T())
	s.interaction = &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:   "test_interaction",
			Type: discordgo.InteractionApplicationCommand,
		},
	}
}

func (s *ResponseTestSuite) TestNewResponse() {
	components := []discordgo.MessageComponent{
		discordgo.Button{
			Label: "Test Button",
			Style: discordgo.PrimaryButton,
		},
	}

	resp := NewResponse("test content", components)

	s.Equal("test content", resp.Content)
	s.Equal(components, resp.Components)
	s.False(resp.Ephemeral)
}

func (s *ResponseTestSuite) TestNewEmbedResponse() {
	embed := &discordgo.MessageEmbed{Title: "Blackjack"}

	resp := NewEmbedResponse(embed, nil)

	s.Equal([]*discordgo.MessageEmbed{embed}, resp.Embeds)
	s.Empty(resp.Content)
	s.False(resp.Ephemeral)
}

func (s *ResponseTestSuite) TestNewEphemeralResponse() {
	resp := NewEphemeralResponse("only you", nil)

	s.Equal("only you", resp.Content)
	s.True(resp.Ephemeral)
}

func (s *ResponseTestSuite) TestNewErrorResponse() {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "plain error",
			err:      errors.New("disk on fire"),
			expected: "💥 Something went wrong, try again in a moment",
		},
		{
			name:     "insufficient credits",
			err:      types.NewGameError(types.ErrInsufficientCredits, "You need 50 credits"),
			expected: "💸 You need 50 credits",
		},
		{
			name:     "wrapped game error",
			err:      fmt.Errorf("apply: %w", types.NewGameError(types.ErrNotYourGame, "That's not your game")),
			expected: "👤 That's not your game",
		},
		{
			name:     "unmapped code",
			err:      types.NewGameError(types.ErrorCode("SOMETHING_NEW"), "new failure"),
			expected: "❌ new failure",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp := NewErrorResponse(tc.err)

			s.Equal(tc.expected, resp.Content)
			s.True(resp.Ephemeral)
		})
	}
}

func (s *ResponseTestSuite) TestSendResponse() {
	s.session.On("InteractionRespond", s.interaction.Interaction, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Type == discordgo.InteractionResponseChannelMessageWithSource &&
			r.Data.Content == "test content" &&
			r.Data.Flags == 0
	})).Return(nil)

	err := SendResponse(s.session, s.interaction, NewResponse("test content", nil))

	s.NoError(err)
	s.session.AssertExpectations(s.T())
}

func (s *ResponseTestSuite) TestUpdateResponse() {
	s.session.On("InteractionRespond", s.interaction.Interaction, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Type == discordgo.InteractionResponseUpdateMessage && r.Data.Content == "updated"
	})).Return(nil)

	err := UpdateResponse(s.session, s.interaction, NewResponse("updated", nil))

	s.NoError(err)
	s.session.AssertExpectations(s.T())
}

func (s *ResponseTestSuite) TestEditResponse() {
	embed := &discordgo.MessageEmbed{Title: "Dealer draws"}
	s.session.On("InteractionResponseEdit", s.interaction.Interaction, mock.MatchedBy(func(e *discordgo.WebhookEdit) bool {
		return e.Embeds != nil && len(*e.Embeds) == 1 && (*e.Embeds)[0] == embed
	})).Return(&discordgo.Message{ID: "msg"}, nil)

	err := EditResponse(s.session, s.interaction.Interaction, NewEmbedResponse(embed, nil))

	s.NoError(err)
	s.session.AssertExpectations(s.T())
}

func (s *ResponseTestSuite) TestSendErrorResponse() {
	s.session.On("InteractionRespond", s.interaction.Interaction, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Data.Flags == discordgo.MessageFlagsEphemeral && r.Data.Content == "🏁 This game is over"
	})).Return(nil)

	err := SendErrorResponse(s.session, s.interaction, types.NewGameError(types.ErrGameEnded, "This game is over"))

	s.NoError(err)
	s.session.AssertExpectations(s.T())
}

func (s *ResponseTestSuite) TestInteractionUserID() {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "guild-user"}},
	}}
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "dm-user"},
	}}

	s.Equal("guild-user", InteractionUserID(guild))
	s.Equal("dm-user", InteractionUserID(dm))
	s.Empty(InteractionUserID(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}))
}

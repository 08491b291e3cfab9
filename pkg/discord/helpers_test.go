package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/fadedpez/tucoblackjack/pkg/services/blackjack"
	"github.com/stretchr/testify/mock"
)

type MockTable struct {
	mock.Mock
}

func (m *MockTable) StartGame(ctx context.Context, playerID string, bet int64) (*blackjack.GameView, error) {
	args := m.Called(ctx, playerID, bet)
	view, _ := args.Get(0).(*blackjack.GameView)
	return view, args.Error(1)
}

func (m *MockTable) ApplyActionTo(ctx context.Context, playerID, gameID string, action blackjack.Action, handIndex int) (*blackjack.GameView, error) {
	args := m.Called(ctx, playerID, gameID, action, handIndex)
	view, _ := args.Get(0).(*blackjack.GameView)
	return view, args.Error(1)
}

// fixedRandom always returns the same double
type fixedRandom float64

func (f fixedRandom) NextInt(bound int) (int, error) {
	return int(float64(f) * float64(bound)), nil
}

func (f fixedRandom) NextDouble() (float64, error) {
	return float64(f), nil
}

// orderedRandom never swaps, so shuffled decks deal in suit and rank order
type orderedRandom struct{}

func (orderedRandom) NextInt(bound int) (int, error) {
	return bound - 1, nil
}

func (orderedRandom) NextDouble() (float64, error) {
	return 0, nil
}

func card(rank entities.Rank, suit entities.Suit) entities.Card {
	return entities.NewCard(suit, rank)
}

func playerTurnView() *blackjack.GameView {
	return &blackjack.GameView{
		GameID:     "game-1",
		PlayerID:   "alice",
		Bet:        100,
		Multiplier: 1,
		Phase:      blackjack.PhasePlayerTurn,
		Dealer: blackjack.DealerView{
			Cards:      []entities.Card{card(entities.Nine, entities.Clubs)},
			HoleHidden: true,
			Value:      9,
		},
		Hands: []blackjack.HandView{{
			Cards:  []entities.Card{card(entities.Five, entities.Hearts), card(entities.Six, entities.Spades)},
			Value:  11,
			Status: blackjack.StatusPlaying,
			Stake:  100,
			Result: blackjack.ResultInProgress,
		}},
		Actions: []blackjack.Action{blackjack.ActionHit, blackjack.ActionStand, blackjack.ActionDoubleDown},
	}
}

func dealerTurnView() *blackjack.GameView {
	v := playerTurnView()
	v.Phase = blackjack.PhaseDealerTurn
	v.Actions = nil
	v.Dealer = blackjack.DealerView{
		Cards: []entities.Card{card(entities.Seven, entities.Diamonds), card(entities.Nine, entities.Clubs)},
		Value: 16,
	}
	v.Hands[0].Status = blackjack.StatusStand
	return v
}

func endedView(result blackjack.Result, credit int64) *blackjack.GameView {
	v := dealerTurnView()
	v.Phase = blackjack.PhaseEnded
	v.Dealer.Cards = append(v.Dealer.Cards, card(entities.Two, entities.Hearts))
	v.Dealer.Value = 18
	v.Hands[0].Result = result
	v.Settlement = &blackjack.Settlement{
		Hands:       []blackjack.HandSettlement{{Stake: 100, Result: result, Credit: credit}},
		TotalStake:  100,
		TotalCredit: credit,
	}
	return v
}

func commandInteraction(name, userID string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:     "interaction-" + name,
			Type:   discordgo.InteractionApplicationCommand,
			Member: &discordgo.Member{User: &discordgo.User{ID: userID, Username: userID}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func betOf(amount int64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "bet",
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(amount),
	}
}

func buttonInteraction(customID, userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:     "button",
			Type:   discordgo.InteractionMessageComponent,
			Member: &discordgo.Member{User: &discordgo.User{ID: userID, Username: userID}},
			Data:   discordgo.MessageComponentInteractionData{CustomID: customID},
		},
	}
}

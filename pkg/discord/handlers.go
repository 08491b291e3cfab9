package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	idiscord "github.com/fadedpez/tucoblackjack/internal/discord"
	"github.com/fadedpez/tucoblackjack/internal/types"
	"github.com/fadedpez/tucoblackjack/pkg/services/blackjack"
)

const (
	actionPrefix   = "bj"
	requestTimeout = 10 * time.Second
)

// gameButton is the decoded custom ID of an action button
type gameButton struct {
	action    blackjack.Action
	ownerID   string
	gameID    string
	handIndex int
}

// actionID encodes a button as bj:<action>:<owner>:<game>:<hand>
func actionID(action blackjack.Action, ownerID, gameID string, handIndex int) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d", actionPrefix, action, ownerID, gameID, handIndex)
}

func parseActionID(customID string) (gameButton, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 5 || parts[0] != actionPrefix || parts[3] == "" {
		return gameButton{}, fmt.Errorf("not a game button: %q", customID)
	}
	action, err := blackjack.ParseAction(parts[1])
	if err != nil {
		return gameButton{}, err
	}
	handIndex, err := strconv.Atoi(parts[4])
	if err != nil {
		return gameButton{}, fmt.Errorf("bad hand index in %q: %w", customID, err)
	}
	return gameButton{action: action, ownerID: parts[2], gameID: parts[3], handIndex: handIndex}, nil
}

func (b *Bot) handleInteractions(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatch(i)
}

func (b *Bot) dispatch(i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("interaction handler panicked", "interaction", i.ID, "panic", r)
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch name := i.ApplicationCommandData().Name; name {
		case commandBlackjack:
			b.handleBlackjackCommand(i)
		case commandWallet:
			b.handleWalletCommand(i)
		default:
			b.logger.Warn("unknown command", "command", name)
		}
	case discordgo.InteractionMessageComponent:
		b.handleGameAction(i)
	}
}

func betOption(options []*discordgo.ApplicationCommandInteractionDataOption) int64 {
	for _, opt := range options {
		if opt.Name == "bet" {
			return opt.IntValue()
		}
	}
	return 0
}

// displayName prefers the guild nickname over the account name
func displayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil {
		if i.Member.Nick != "" {
			return i.Member.Nick
		}
		if i.Member.User != nil {
			return i.Member.User.Username
		}
	}
	if i.User != nil {
		return i.User.Username
	}
	return "Unknown Player"
}

func (b *Bot) handleBlackjackCommand(i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	userID := idiscord.InteractionUserID(i)
	bet := betOption(i.ApplicationCommandData().Options)

	if _, _, err := b.wallets.GetOrCreateWallet(ctx, userID); err != nil {
		b.logger.Error("failed to open wallet", "user", userID, "err", err)
		b.respondError(i, types.WrapError(types.ErrDatabaseError, "¡Ay, caramba! Tuco can't find your wallet", err))
		return
	}

	view, err := b.table.StartGame(ctx, userID, bet)
	if err != nil {
		b.respondError(i, err)
		return
	}

	name := displayName(i)
	if !view.Ended() {
		b.observer.Track(view.GameID, i.Interaction, name)
	}

	if err := idiscord.SendResponse(b.session, i, b.renderer.Game(view, name)); err != nil {
		b.logger.Error("failed to send game", "game", view.GameID, "err", err)
	}
}

func (b *Bot) handleGameAction(i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	button, err := parseActionID(customID)
	if err != nil {
		b.logger.Warn("ignoring component", "custom_id", customID, "err", err)
		return
	}

	userID := idiscord.InteractionUserID(i)
	if userID != button.ownerID {
		b.respondError(i, types.NewGameError(types.ErrNotYourGame, "¡Oye! That's not your game, amigo"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	view, err := b.table.ApplyActionTo(ctx, userID, button.gameID, button.action, button.handIndex)
	if err != nil {
		b.respondError(i, err)
		return
	}

	if view.Ended() {
		b.observer.Forget(view.GameID)
	}

	if err := idiscord.UpdateResponse(b.session, i, b.renderer.Game(view, displayName(i))); err != nil {
		b.logger.Error("failed to update game", "game", view.GameID, "err", err)
	}
}

func (b *Bot) handleWalletCommand(i *discordgo.InteractionCreate) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("error acknowledging interaction", "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	userID := idiscord.InteractionUserID(i)
	userWallet, _, err := b.wallets.GetOrCreateWallet(ctx, userID)
	if err != nil {
		b.logger.Error("failed to open wallet", "user", userID, "err", err)
		b.followup(i, &discordgo.WebhookParams{
			Content: "¡Ay, caramba! *looks confused* Failed to retrieve your wallet!",
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return
	}

	transactions, err := b.wallets.GetRecentTransactions(ctx, userID, b.cfg.HistoryLimit)
	if err != nil {
		b.logger.Warn("failed to load transactions", "user", userID, "err", err)
	}

	lines := make([]string, 0, len(transactions))
	for _, tx := range transactions {
		lines = append(lines, fmt.Sprintf("%s | %+d | %s", tx.Timestamp.Format("01/02 15:04"), tx.Amount, tx.Description))
	}

	b.followup(i, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{walletEmbed(displayName(i), userWallet.Balance, lines)},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) followup(i *discordgo.InteractionCreate, params *discordgo.WebhookParams) {
	if _, err := b.session.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		b.logger.Error("error sending followup message", "err", err)
	}
}

func (b *Bot) respondError(i *discordgo.InteractionCreate, err error) {
	if code := types.CodeOf(err); code == types.ErrInternalError || code == types.ErrDatabaseError {
		b.logger.Error("interaction failed", "user", idiscord.InteractionUserID(i), "err", err)
	}
	if sendErr := idiscord.SendErrorResponse(b.session, i, err); sendErr != nil {
		b.logger.Error("error sending error response", "err", sendErr)
	}
}

package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	idiscord "github.com/fadedpez/tucoblackjack/internal/discord"
	"github.com/fadedpez/tucoblackjack/pkg/random"
	"github.com/fadedpez/tucoblackjack/pkg/services/blackjack"
)

const (
	tucoGold  = 0xFFD700
	walletTag = 0x00FF00
)

var (
	winQuips = []string{
		"¡Ay, qué suerte! Take your money before Tuco changes his mind.",
		"¡Bueno, bueno! The cards love you today, amigo.",
		"Tuco pays, Tuco always pays. Now get out of my sight.",
	}
	lossQuips = []string{
		"¡Ja! The house thanks you for your donation, amigo.",
		"Don't cry, ese. There's always the next hand.",
		"Tuco's rings need polishing. Your credits will help.",
	}
	pushQuips = []string{
		"¡Empate! Nobody wins, nobody dies. Today.",
		"A tie? Tuco hates ties. Take your money back.",
	}
)

// Renderer turns game snapshots into Discord messages
type Renderer struct {
	random random.Source
}

// NewRenderer creates a Renderer; src picks the dealer's closing line
func NewRenderer(src random.Source) *Renderer {
	if src == nil {
		src = random.NewCrypto()
	}
	return &Renderer{random: src}
}

// Game renders the full game message: the table embed plus the buttons for the active hand
func (r *Renderer) Game(view *blackjack.GameView, playerName string) *idiscord.Response {
	return idiscord.NewEmbedResponse(r.gameEmbed(view, playerName), gameButtons(view))
}

func (r *Renderer) gameEmbed(view *blackjack.GameView, playerName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "¡Blackjack con Tuco!",
		Color: tucoGold,
	}

	embed.Fields = append(embed.Fields, dealerField(view))
	for idx, hand := range view.Hands {
		embed.Fields = append(embed.Fields, handField(view, idx, hand, playerName))
	}

	switch view.Phase {
	case blackjack.PhasePlayerTurn:
		embed.Description = betLine(view)
	case blackjack.PhaseDealerTurn:
		embed.Description = "*Tuco flips his hole card and reaches for the deck...*"
	case blackjack.PhaseEnded:
		embed.Description = resultsDescription(view)
		embed.Footer = &discordgo.MessageEmbedFooter{Text: r.quip(view)}
	}

	return embed
}

func betLine(view *blackjack.GameView) string {
	if view.Multiplier > 1 {
		return fmt.Sprintf("Bet: %d credits (winnings x%.2g)", view.Bet, view.Multiplier)
	}
	return fmt.Sprintf("Bet: %d credits", view.Bet)
}

// dealerField creates the dealer's hand field
func dealerField(view *blackjack.GameView) *discordgo.MessageEmbedField {
	value := fmt.Sprintf("%s\nScore: %d", FormatCards(view.Dealer.Cards), view.Dealer.Value)
	if view.Dealer.HoleHidden {
		value = fmt.Sprintf("%s %s\nScore: ?", hiddenCard, FormatCards(view.Dealer.Cards))
	}
	return &discordgo.MessageEmbedField{
		Name:   "🎩 El Dealer (Tuco)",
		Value:  value,
		Inline: true,
	}
}

func handField(view *blackjack.GameView, idx int, hand blackjack.HandView, playerName string) *discordgo.MessageEmbedField {
	name := playerName
	if len(view.Hands) > 1 {
		name = fmt.Sprintf("%s (Hand %d)", playerName, idx+1)
	}
	if view.Phase == blackjack.PhasePlayerTurn && idx == view.Active {
		name = "👉 " + name
	}

	value := fmt.Sprintf("%s\nScore: %d%s\nStake: %d", FormatCards(hand.Cards), hand.Value, statusMessage(hand.Status), hand.Stake)
	if hand.Doubled {
		value += " (doubled)"
	}

	return &discordgo.MessageEmbedField{
		Name:   name,
		Value:  value,
		Inline: true,
	}
}

// statusMessage returns a status message based on hand status
func statusMessage(status blackjack.Status) string {
	switch status {
	case blackjack.StatusBust:
		return " 💥 ¡BUST!"
	case blackjack.StatusStand:
		return " 🛑 ¡STAND!"
	default:
		return ""
	}
}

func resultLabel(result blackjack.Result) string {
	switch result {
	case blackjack.ResultPlayerBlackjack:
		return "💰 ¡BLACKJACK! ¡GANADOR!"
	case blackjack.ResultPlayerWin:
		return "💰 ¡GANADOR!"
	case blackjack.ResultPush:
		return "🍻 ¡EMPATE!"
	default:
		return "🤦 ¡PERDEDOR!"
	}
}

// resultsDescription summarizes each hand and the credits that moved
func resultsDescription(view *blackjack.GameView) string {
	var sb strings.Builder
	switch {
	case view.Forced:
		sb.WriteString("*Tuco slams the table. This game is over, amigo.*\n\n")
	case view.Dealer.Value > blackjack.BlackjackValue:
		sb.WriteString("¡MADRE DE DIOS! Tuco went bust!\n\n")
	default:
		fmt.Fprintf(&sb, "¡El Dealer tiene %d! Let's see who won...\n\n", view.Dealer.Value)
	}

	if view.Settlement == nil {
		return sb.String()
	}

	for idx, line := range view.Settlement.Hands {
		net := line.Credit - line.Stake
		fmt.Fprintf(&sb, "**Hand %d**: %s (%d) **%+d**\n", idx+1, resultLabel(line.Result), view.Hands[idx].Value, net)
	}
	if len(view.Settlement.Hands) > 1 {
		fmt.Fprintf(&sb, "\n**Total**: **%+d**", view.Settlement.Net())
	}
	return sb.String()
}

// quip picks the dealer's closing line for a finished game
func (r *Renderer) quip(view *blackjack.GameView) string {
	lines := pushQuips
	if view.Settlement != nil {
		switch net := view.Settlement.Net(); {
		case net > 0:
			lines = winQuips
		case net < 0:
			lines = lossQuips
		}
	}

	d, err := r.random.NextDouble()
	if err != nil {
		return lines[0]
	}
	idx := int(d * float64(len(lines)))
	if idx >= len(lines) {
		idx = len(lines) - 1
	}
	return lines[idx]
}

var actionLabels = []struct {
	action blackjack.Action
	label  string
	style  discordgo.ButtonStyle
}{
	{blackjack.ActionHit, "Hit", discordgo.PrimaryButton},
	{blackjack.ActionStand, "Stand", discordgo.SecondaryButton},
	{blackjack.ActionDoubleDown, "Double Down", discordgo.SuccessButton},
	{blackjack.ActionSplit, "Split", discordgo.DangerButton},
}

// gameButtons creates the action buttons for the active hand. Finished or dealer turns get none.
func gameButtons(view *blackjack.GameView) []discordgo.MessageComponent {
	if len(view.Actions) == 0 {
		return []discordgo.MessageComponent{}
	}

	row := discordgo.ActionsRow{}
	for _, candidate := range actionLabels {
		if !view.CanAct(candidate.action) {
			continue
		}
		row.Components = append(row.Components, discordgo.Button{
			Label:    candidate.label,
			Style:    candidate.style,
			CustomID: actionID(candidate.action, view.PlayerID, view.GameID, view.Active),
		})
	}
	return []discordgo.MessageComponent{row}
}

// walletEmbed shows a balance and the most recent ledger entries
func walletEmbed(name string, balance int64, lines []string) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Balance", Value: fmt.Sprintf("%d credits", balance)},
	}
	if len(lines) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Transaction History",
			Value: strings.Join(lines, "\n"),
		})
	}
	return &discordgo.MessageEmbed{
		Title:       "Your Wallet",
		Description: fmt.Sprintf("Here's your current wallet status, %s", name),
		Color:       walletTag,
		Fields:      fields,
	}
}

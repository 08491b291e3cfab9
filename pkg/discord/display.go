package discord

import (
	"strings"

	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

const hiddenCard = "🎴"

var suitEmoji = map[entities.Suit]string{
	entities.Hearts:   "♥️",
	entities.Diamonds: "♦️",
	entities.Clubs:    "♣️",
	entities.Spades:   "♠️",
}

var rankEmoji = map[entities.Rank]string{
	entities.Ace:   "🅰️",
	entities.Two:   "2️⃣",
	entities.Three: "3️⃣",
	entities.Four:  "4️⃣",
	entities.Five:  "5️⃣",
	entities.Six:   "6️⃣",
	entities.Seven: "7️⃣",
	entities.Eight: "8️⃣",
	entities.Nine:  "9️⃣",
	entities.Ten:   "🔟",
	entities.Jack:  "🇯",
	entities.Queen: "🇶",
	entities.King:  "🇰",
}

// FormatCards renders cards as emoji separated by spaces
func FormatCards(cards []entities.Card) string {
	parts := make([]string, 0, len(cards))
	for _, card := range cards {
		parts = append(parts, FormatCard(card))
	}
	return strings.Join(parts, " ")
}

// FormatCard renders a single card, falling back to its short form for unknown ranks
func FormatCard(card entities.Card) string {
	rank, ok := rankEmoji[card.Rank]
	if !ok {
		return card.Short()
	}
	return rank + suitEmoji[card.Suit]
}

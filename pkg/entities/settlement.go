package entities

import "time"

// HandOutcome is the settled state of one player hand
type HandOutcome struct {
	Cards   []Card `json:"cards"`
	Value   int    `json:"value"`
	Stake   int64  `json:"stake"`
	Result  string `json:"result"`
	Credit  int64  `json:"credit"`
	Doubled bool   `json:"doubled"`
}

// SettlementEvent is the audit record written once per finished game
type SettlementEvent struct {
	ID          string        `json:"event_id"`
	GameID      string        `json:"game_id"`
	PlayerID    string        `json:"player_id"`
	Bet         int64         `json:"bet"`
	Multiplier  float64       `json:"multiplier"`
	Hands       []HandOutcome `json:"hands"`
	DealerCards []Card        `json:"dealer_cards"`
	DealerValue int           `json:"dealer_value"`
	TotalStake  int64         `json:"total_stake"`
	TotalCredit int64         `json:"total_credit"`
	Net         int64         `json:"net"`
	Forced      bool          `json:"forced"`
	CreditError string        `json:"credit_error,omitempty"`
	SettledAt   time.Time     `json:"settled_at"`
}

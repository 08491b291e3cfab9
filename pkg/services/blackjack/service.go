package blackjack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucoblackjack/internal/games"
	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/internal/types"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/fadedpez/tucoblackjack/pkg/random"
	"github.com/fadedpez/tucoblackjack/pkg/repositories/audit"
	"github.com/fadedpez/tucoblackjack/pkg/services/wallet"
	"github.com/google/uuid"
)

// Service runs blackjack games against the credit ledger. Each player has at most one
// game; the registry entry lives from the bet until settlement.
type Service struct {
	ledger      wallet.Ledger
	registry    *games.Registry[*session]
	lastEnded   sync.Map // playerID -> ID of the player's last settled game
	multipliers MultiplierResolver
	audit       *audit.Async
	dealer      *DealerOrchestrator
	newDeck     func() (*entities.Deck, error)
	logger      *logging.Logger

	// Options, consumed by NewService
	clock        quartz.Clock
	random       random.Source
	sink         audit.Sink
	observer     Observer
	initialDelay time.Duration
	hitDelay     time.Duration
}

// Option configures a Service
type Option func(*Service)

func WithMultiplierResolver(r MultiplierResolver) Option {
	return func(s *Service) { s.multipliers = r }
}

// WithAuditSink sets where settlement events go. Writes are always asynchronous.
func WithAuditSink(sink audit.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func WithClock(c quartz.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithRandom(src random.Source) Option {
	return func(s *Service) { s.random = src }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithDealerDelays sets the pause before the hole card is revealed and between dealer hits
func WithDealerDelays(initial, hit time.Duration) Option {
	return func(s *Service) {
		s.initialDelay = initial
		s.hitDelay = hit
	}
}

// NewService creates a new blackjack service
func NewService(ledger wallet.Ledger, opts ...Option) *Service {
	s := &Service{
		ledger:       ledger,
		registry:     games.NewRegistry[*session](),
		multipliers:  FixedMultiplier(1),
		observer:     nopObserver{},
		initialDelay: DefaultInitialDealerDelay,
		hitDelay:     DefaultDealerHitDelay,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = logging.OrDefault(s.logger).WithComponent("blackjack")
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.random == nil {
		s.random = random.NewCrypto()
	}
	if s.newDeck == nil {
		s.newDeck = func() (*entities.Deck, error) {
			return entities.NewShuffledDeck(s.random)
		}
	}
	s.audit = audit.NewAsync(s.sink, 0, s.logger)

	s.dealer = &DealerOrchestrator{
		clock:        s.clock,
		initialDelay: s.initialDelay,
		hitDelay:     s.hitDelay,
		settle:       s.settleLocked,
		fail:         s.failLocked,
		observer:     s.observer,
		logger:       s.logger.WithComponent("dealer"),
	}
	return s
}

// StartGame takes the bet and deals a new game for the player
func (s *Service) StartGame(ctx context.Context, playerID string, bet int64) (*GameView, error) {
	if bet <= 0 {
		return nil, types.NewGameError(types.ErrInvalidArgument, "Bet must be a positive number")
	}

	balance, found, err := s.ledger.GetBalance(ctx, playerID)
	if err != nil {
		return nil, types.WrapError(types.ErrDeductionFailed, "Could not check your balance", err)
	}
	if !found || balance < bet {
		return nil, types.NewGameError(types.ErrInsufficientCredits, fmt.Sprintf("You need %d credits to place that bet", bet))
	}

	multiplier := s.resolveMultiplier(ctx, playerID)

	deck, err := s.newDeck()
	if err != nil {
		return nil, types.WrapError(types.ErrInternalError, "Could not shuffle the deck", err)
	}

	sess, err := s.registry.TryCreate(playerID, func() (*session, error) {
		return newLockedSession(), nil
	})
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	gameID := uuid.NewString()
	ok, err := s.ledger.DeductIfSufficient(wallet.WithReference(ctx, gameID, "Blackjack bet"), playerID, bet)
	if err != nil {
		s.registry.RemoveIf(playerID, sess)
		return nil, types.WrapError(types.ErrDeductionFailed, "Could not take your bet", err)
	}
	if !ok {
		s.registry.RemoveIf(playerID, sess)
		return nil, types.NewGameError(types.ErrInsufficientCredits, fmt.Sprintf("You need %d credits to place that bet", bet))
	}

	game, err := NewGame(gameID, playerID, bet, multiplier, deck)
	if err != nil {
		s.refund(ctx, playerID, gameID, bet)
		s.registry.RemoveIf(playerID, sess)
		return nil, types.WrapError(types.ErrInternalError, "Could not deal the cards", err)
	}

	sess.game = game
	s.lastEnded.Delete(playerID)
	s.logger.Info("game started", "game", game.ID, "player", playerID, "bet", bet, "multiplier", multiplier)

	s.afterAction(sess)
	return NewGameView(game), nil
}

// ApplyAction plays one decision on the player's game
func (s *Service) ApplyAction(ctx context.Context, playerID string, action Action, handIndex int) (*GameView, error) {
	return s.ApplyActionTo(ctx, playerID, "", action, handIndex)
}

// ApplyActionTo plays one decision on the game gameID. A gameID that is not the player's
// live game is treated as ended. An empty gameID targets whatever game is live.
func (s *Service) ApplyActionTo(ctx context.Context, playerID, gameID string, action Action, handIndex int) (view *GameView, err error) {
	sess, ok := s.registry.Get(playerID)
	if !ok {
		if _, ended := s.lastEnded.Load(playerID); ended || gameID != "" {
			return nil, types.NewGameError(types.ErrGameEnded, "That game is already over")
		}
		return nil, types.NewGameError(types.ErrNotYourGame, "You don't have a game in progress")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := sess.game
	if g == nil {
		return nil, types.NewGameError(types.ErrNotYourGame, "You don't have a game in progress")
	}
	if g.Ended() || (gameID != "" && g.ID != gameID) {
		return nil, types.NewGameError(types.ErrGameEnded, "That game is already over")
	}

	defer func() {
		if r := recover(); r != nil {
			s.failLocked(sess, fmt.Errorf("%s panicked: %v", action, r))
			view, err = NewGameView(g), nil
		}
	}()

	if err := s.apply(ctx, g, action, handIndex); err != nil {
		if gameErr, ok := types.AsGameError(err); ok {
			return nil, gameErr
		}
		s.failLocked(sess, err)
		return NewGameView(g), nil
	}

	s.afterAction(sess)
	return NewGameView(g), nil
}

// apply performs the action. Rule violations come back as GameErrors; anything else
// means the game can no longer be trusted.
func (s *Service) apply(ctx context.Context, g *Game, action Action, handIndex int) error {
	switch action {
	case ActionHit:
		return classify(g.Hit(handIndex))
	case ActionStand:
		return classify(g.Stand(handIndex))
	case ActionDoubleDown:
		cost, err := g.DoubleDownCost(handIndex)
		if err != nil {
			return classify(err)
		}
		if err := s.reserve(ctx, g, cost, "Blackjack double down"); err != nil {
			return err
		}
		return classify(g.DoubleDown(handIndex))
	case ActionSplit:
		cost, err := g.SplitCost(handIndex)
		if err != nil {
			return classify(err)
		}
		if err := s.reserve(ctx, g, cost, "Blackjack split"); err != nil {
			return err
		}
		return classify(g.Split(handIndex))
	}
	return types.NewGameError(types.ErrActionUnavailable, fmt.Sprintf("Unknown action %q", action))
}

// classify turns rule violations into GameErrors and passes everything else through
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrGameEnded):
		return types.WrapError(types.ErrGameEnded, "That game is already over", err)
	case errors.Is(err, ErrNotPlayerTurn),
		errors.Is(err, ErrNotActiveHand),
		errors.Is(err, ErrActionNotAllowed),
		errors.Is(err, ErrHandBust),
		errors.Is(err, ErrHandStand):
		return types.WrapError(types.ErrActionUnavailable, "You can't do that right now", err)
	}
	return err
}

// reserve debits the extra stake of a double down or split before the game changes
func (s *Service) reserve(ctx context.Context, g *Game, amount int64, description string) error {
	ok, err := s.ledger.DeductIfSufficient(wallet.WithReference(ctx, g.ID, description), g.PlayerID, amount)
	if err != nil {
		return types.WrapError(types.ErrDeductionFailed, "Could not take the extra stake", err)
	}
	if !ok {
		return types.NewGameError(types.ErrInsufficientCredits, fmt.Sprintf("You need %d more credits for that", amount))
	}
	return nil
}

// refund returns a bet whose game never started
func (s *Service) refund(ctx context.Context, playerID, gameID string, amount int64) {
	ctx = wallet.WithReference(context.WithoutCancel(ctx), gameID, "Blackjack refund")
	if ok, err := s.ledger.Increment(ctx, playerID, amount); err != nil || !ok {
		s.logger.Error("failed to refund bet", "game", gameID, "player", playerID, "amount", amount, "error", err)
	}
}

// afterAction settles an ended game or hands a finished player phase to the dealer.
// The caller must hold the session lock.
func (s *Service) afterAction(sess *session) {
	switch sess.game.Phase {
	case PhaseEnded:
		s.settleLocked(sess)
	case PhaseDealerTurn:
		s.dealer.Start(sess)
	}
}

// failLocked ends the game with whatever state it has and settles it
func (s *Service) failLocked(sess *session, cause error) {
	g := sess.game
	s.logger.Error("game failed, forcing the end", "game", g.ID, "player", g.PlayerID, "phase", g.Phase, "error", cause)
	g.ForceEnd()
	s.settleLocked(sess)
}

// settleLocked credits the ledger, evicts the session and records the audit event.
// It runs at most once per session. The caller must hold the session lock.
func (s *Service) settleLocked(sess *session) {
	sess.settleOnce.Do(func() {
		g := sess.game
		st := Settle(g)
		event := newSettlementEvent(g, st)

		if st.TotalCredit > 0 {
			ctx := wallet.WithReference(context.Background(), g.ID, "Blackjack payout")
			ok, err := s.ledger.Increment(ctx, g.PlayerID, st.TotalCredit)
			switch {
			case err != nil:
				event.CreditError = err.Error()
				s.logger.Error("failed to credit payout", "game", g.ID, "player", g.PlayerID, "amount", st.TotalCredit, "error", err)
			case !ok:
				event.CreditError = "wallet not found"
				s.logger.Error("payout wallet missing", "game", g.ID, "player", g.PlayerID, "amount", st.TotalCredit)
			}
		}

		s.lastEnded.Store(g.PlayerID, g.ID)
		s.registry.RemoveIf(g.PlayerID, sess)

		s.audit.Record(context.Background(), event)
		s.logger.Info("game settled",
			"game", g.ID,
			"player", g.PlayerID,
			"stake", st.TotalStake,
			"credit", st.TotalCredit,
			"net", st.Net(),
			"forced", g.Forced,
		)
	})
}

func (s *Service) resolveMultiplier(ctx context.Context, playerID string) float64 {
	m, err := s.multipliers.Resolve(ctx, playerID)
	if err != nil {
		s.logger.Warn("could not resolve multiplier, using 1", "player", playerID, "error", err)
		return 1
	}
	if m < 1 {
		return 1
	}
	return m
}

// ActiveGame returns the player's game in progress, if any
func (s *Service) ActiveGame(playerID string) (*GameView, bool) {
	sess, ok := s.registry.Get(playerID)
	if !ok {
		return nil, false
	}
	view := sess.view()
	return view, view != nil
}

// ActiveCount returns the number of games in progress
func (s *Service) ActiveCount() int {
	return s.registry.Len()
}

// ForceEndAll ends and settles every game in progress. Used on shutdown so no bet is
// left unsettled.
func (s *Service) ForceEndAll() int {
	var sessions []*session
	s.registry.Range(func(_ string, sess *session) bool {
		sessions = append(sessions, sess)
		return true
	})

	ended := 0
	for _, sess := range sessions {
		sess.mu.Lock()
		if sess.game != nil && !sess.game.Ended() {
			s.failLocked(sess, errors.New("shutting down"))
			ended++
		}
		sess.mu.Unlock()
	}
	return ended
}

// Wait blocks until pending audit writes have finished
func (s *Service) Wait() {
	s.audit.Wait()
}

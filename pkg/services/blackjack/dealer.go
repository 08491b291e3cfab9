package blackjack

import (
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucoblackjack/internal/logging"
)

const (
	DefaultInitialDealerDelay = 1500 * time.Millisecond
	DefaultDealerHitDelay     = 1000 * time.Millisecond
)

// DealerOrchestrator plays the dealer's hand one card per timer tick once the player
// phase is over, then settles the game. It always runs to settlement.
type DealerOrchestrator struct {
	clock        quartz.Clock
	initialDelay time.Duration
	hitDelay     time.Duration
	settle       func(*session)        // called with the session locked
	fail         func(*session, error) // called with the session locked
	observer     Observer
	logger       *logging.Logger
}

// Start schedules the first dealer step. The caller must hold the session lock.
func (d *DealerOrchestrator) Start(sess *session) {
	if sess.dealerStarted {
		return
	}
	sess.dealerStarted = true
	d.clock.AfterFunc(d.initialDelay, func() { d.step(sess) }, "dealer", "reveal")
}

func (d *DealerOrchestrator) step(sess *session) {
	view := d.advance(sess)
	d.publish(view)
}

// advance runs one dealer step under the session lock and returns the resulting view
func (d *DealerOrchestrator) advance(sess *session) (view *GameView) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := sess.game
	defer func() {
		if r := recover(); r != nil {
			d.fail(sess, fmt.Errorf("dealer step panicked: %v", r))
			view = NewGameView(g)
		}
	}()

	if g.Ended() {
		// Forced elsewhere; settling again is a no-op
		d.settle(sess)
		return NewGameView(g)
	}

	if err := d.play(g); err != nil {
		d.fail(sess, err)
		return NewGameView(g)
	}

	if g.Ended() {
		d.settle(sess)
	} else {
		d.clock.AfterFunc(d.hitDelay, func() { d.step(sess) }, "dealer", "hit")
	}
	return NewGameView(g)
}

// play deals at most one card and finishes the game once the dealer stands or busts
func (d *DealerOrchestrator) play(g *Game) error {
	if g.DealerShouldDraw() {
		if err := g.DealerDraw(); err != nil {
			return fmt.Errorf("dealer draw: %w", err)
		}
		d.logger.Debug("dealer drew", "game", g.ID, "value", g.Dealer.Value())
	}
	if g.DealerShouldDraw() {
		return nil
	}
	return g.Finish()
}

func (d *DealerOrchestrator) publish(view *GameView) {
	if view == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("observer panicked", "game", view.GameID, "panic", r)
		}
	}()
	d.observer.GameUpdated(view)
}

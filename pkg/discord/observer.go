package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	idiscord "github.com/fadedpez/tucoblackjack/internal/discord"
	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/services/blackjack"
)

type trackedGame struct {
	interaction *discordgo.Interaction
	playerName  string
}

type pendingEdit struct {
	game trackedGame
	view *blackjack.GameView
}

// GameObserver edits the original game message as the dealer plays.
// GameUpdated only queues the latest view per game; Run performs the edits in order.
type GameObserver struct {
	session  idiscord.SessionHandler
	renderer *Renderer
	logger   *logging.Logger

	mu      sync.Mutex
	games   map[string]trackedGame
	pending map[string]*blackjack.GameView
	order   []string
	wake    chan struct{}
}

// NewGameObserver creates a new GameObserver
func NewGameObserver(session idiscord.SessionHandler, renderer *Renderer, logger *logging.Logger) *GameObserver {
	if renderer == nil {
		renderer = NewRenderer(nil)
	}
	return &GameObserver{
		session:  session,
		renderer: renderer,
		logger:   logging.OrDefault(logger).WithComponent("observer"),
		games:    make(map[string]trackedGame),
		pending:  make(map[string]*blackjack.GameView),
		wake:     make(chan struct{}, 1),
	}
}

var _ blackjack.Observer = (*GameObserver)(nil)

// Track remembers which interaction owns the message for a game
func (o *GameObserver) Track(gameID string, i *discordgo.Interaction, playerName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.games[gameID] = trackedGame{interaction: i, playerName: playerName}
}

// Forget drops a game that ended without a dealer turn
func (o *GameObserver) Forget(gameID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.games, gameID)
	delete(o.pending, gameID)
}

// Tracked returns the number of games with a live message
func (o *GameObserver) Tracked() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.games)
}

// GameUpdated implements blackjack.Observer
func (o *GameObserver) GameUpdated(view *blackjack.GameView) {
	o.mu.Lock()
	if _, ok := o.games[view.GameID]; !ok {
		o.mu.Unlock()
		return
	}
	if _, queued := o.pending[view.GameID]; !queued {
		o.order = append(o.order, view.GameID)
	}
	o.pending[view.GameID] = view
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Run applies queued edits until ctx is done, then flushes what is left
func (o *GameObserver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			o.flush()
			return nil
		case <-o.wake:
			o.flush()
		}
	}
}

func (o *GameObserver) flush() {
	o.mu.Lock()
	order, pending := o.order, o.pending
	o.order, o.pending = nil, make(map[string]*blackjack.GameView)

	edits := make([]pendingEdit, 0, len(order))
	for _, gameID := range order {
		game, ok := o.games[gameID]
		if !ok {
			continue
		}
		view := pending[gameID]
		if view.Ended() {
			delete(o.games, gameID)
		}
		edits = append(edits, pendingEdit{game: game, view: view})
	}
	o.mu.Unlock()

	for _, edit := range edits {
		resp := o.renderer.Game(edit.view, edit.game.playerName)
		if err := idiscord.EditResponse(o.session, edit.game.interaction, resp); err != nil {
			o.logger.Error("failed to edit game message", "game", edit.view.GameID, "err", err)
		}
	}
}

package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Sessions reports the live games
type Sessions interface {
	ActiveCount() int
}

// Balances looks up wallet balances
type Balances interface {
	GetBalance(ctx context.Context, userID string) (int64, bool, error)
}

// SetupRouter builds the read-only status routes
func SetupRouter(sessions Sessions, balances Balances, logger *logging.Logger) *gin.Engine {
	logger = logging.OrDefault(logger).WithComponent("status")

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"active": sessions.ActiveCount()})
	})

	r.GET("/wallets/:id", func(c *gin.Context) {
		userID := c.Param("id")
		balance, found, err := balances.GetBalance(c.Request.Context(), userID)
		if err != nil {
			logger.Error("balance lookup failed", "user", userID, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "balance lookup failed"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "balance": balance})
	})

	return r
}

// Server serves the status routes until its context is cancelled
type Server struct {
	srv    *http.Server
	logger *logging.Logger
}

// NewServer creates a Server listening on addr
func NewServer(addr string, sessions Sessions, balances Balances, logger *logging.Logger) *Server {
	logger = logging.OrDefault(logger).WithComponent("status")
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           SetupRouter(sessions, balances, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run listens until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status server listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

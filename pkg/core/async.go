package core

import (
	"context"
	"sync"
)

// AsyncClient runs turns in background goroutines.
//
// Each method returns a channel that receives exactly one result and is then
// closed. Wait blocks until every started turn has finished. After Close,
// ChatAsync delivers an outcome carrying ErrClosed without running the turn.
//
// Example:
//
//	async := core.NewAsyncClient(client)
//	defer async.Close()
//
//	outcome := <-async.ChatAsync(ctx, "user_001", "Remember that I like tea")
//	if outcome.Error != nil {
//	    log.Fatal(outcome.Error)
//	}
type AsyncClient struct {
	*Client

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncClient wraps client.
func NewAsyncClient(client *Client) *AsyncClient {
	return &AsyncClient{Client: client}
}

// ChatOutcome is the result of an asynchronous turn.
type ChatOutcome struct {
	// Result is nil if an error occurred.
	Result *ChatResult

	// Error is nil if the turn succeeded.
	Error error
}

// ChatAsync runs Chat in a separate goroutine.
//
// Args:
//   - ctx: Context for controlling the turn
//   - userID: Owner of the recalled and stored memories
//   - input: Raw user input
//   - opts: Per-turn options
//
// Returns:
//   - <-chan *ChatOutcome: Receives exactly one outcome, then closes
func (ac *AsyncClient) ChatAsync(ctx context.Context, userID, input string, opts ...ChatOption) <-chan *ChatOutcome {
	out := make(chan *ChatOutcome, 1)

	ac.mu.Lock()
	if ac.closed {
		ac.mu.Unlock()
		out <- &ChatOutcome{Error: NewMemoryError("ChatAsync", ErrClosed)}
		close(out)
		return out
	}
	ac.wg.Add(1)
	ac.mu.Unlock()

	go func() {
		defer ac.wg.Done()
		result, err := ac.Chat(ctx, userID, input, opts...)
		out <- &ChatOutcome{Result: result, Error: err}
		close(out)
	}()

	return out
}

// Wait waits for all asynchronous turns to complete.
func (ac *AsyncClient) Wait() {
	ac.wg.Wait()
}

// Close rejects new turns, waits for running ones, then closes the
// underlying client. Later calls return nil.
func (ac *AsyncClient) Close() error {
	ac.mu.Lock()
	if ac.closed {
		ac.mu.Unlock()
		return nil
	}
	ac.closed = true
	ac.mu.Unlock()

	ac.Wait()
	return ac.Client.Close()
}

package transport

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/errors"
)

type request struct {
	ctx  context.Context
	done chan error
}

// Channel runs the executor on its own goroutine and hands requests to it
// over a channel, the way a guest would trap into a separate host thread.
// Start must be called before Call.
type Channel struct {
	exec     Executor
	mem      hostcall.Memory
	requests chan request
	quit     chan struct{}
	wg       sync.WaitGroup

	startOnce sync.Once
	closeOnce sync.Once
}

// NewChannel creates a stopped channel transport.
func NewChannel(exec Executor, mem hostcall.Memory) *Channel {
	return &Channel{
		exec:     exec,
		mem:      mem,
		requests: make(chan request),
		quit:     make(chan struct{}),
	}
}

// Start launches the host goroutine.
func (c *Channel) Start() {
	c.startOnce.Do(func() {
		c.wg.Add(1)
		go c.serve()
	})
}

func (c *Channel) serve() {
	defer c.wg.Done()
	for {
		select {
		case req := <-c.requests:
			start := time.Now()
			err := c.exec.Execute(req.ctx, c.mem)
			Logger().Debug("host request served",
				zap.Duration("took", time.Since(start)),
				zap.Error(err))
			req.done <- err
		case <-c.quit:
			return
		}
	}
}

// Call hands the pending request to the host goroutine and waits for it.
// If ctx ends after the host accepted the request, Call returns an error
// for which Abandoned is true.
func (c *Channel) Call(ctx context.Context) error {
	req := request{ctx: ctx, done: make(chan error, 1)}

	select {
	case c.requests <- req:
	case <-ctx.Done():
		return errors.Transport("request not sent", ctx.Err())
	case <-c.quit:
		return errors.Transport("transport closed", nil)
	}

	select {
	case err := <-req.done:
		if err != nil {
			return errors.Transport("host execution failed", err)
		}
		return nil
	case <-ctx.Done():
		Logger().Warn("request abandoned in flight", zap.Error(ctx.Err()))
		return abandoned(ctx.Err())
	}
}

// Close stops the host goroutine after any request it is serving.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
	c.wg.Wait()
	return nil
}

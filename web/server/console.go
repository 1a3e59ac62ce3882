package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-dof-raytracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	source      string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger tagging messages with source
func NewWebLogger(source string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		source:      source,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	// Also write to stdout for server logs
	fmt.Print(message)

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Source:    wl.source,
			Message:   message,
			Timestamp: time.Now(),
			Level:     "info",
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// Console keeps the most recent messages sent to its input channel
type Console struct {
	input chan ConsoleMessage

	mu       sync.Mutex
	history  []ConsoleMessage
	capacity int
}

// NewConsole creates a console holding up to capacity messages (at least
// one) and starts draining its input
func NewConsole(capacity int) *Console {
	if capacity < 1 {
		capacity = 1
	}
	c := &Console{
		input:    make(chan ConsoleMessage, 64),
		capacity: capacity,
	}
	go c.drain()
	return c
}

// Input returns the channel loggers write to
func (c *Console) Input() chan<- ConsoleMessage {
	return c.input
}

func (c *Console) drain() {
	for msg := range c.input {
		c.Add(msg)
	}
}

// Add appends a message, dropping the oldest once full
func (c *Console) Add(msg ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, msg)
	if over := len(c.history) - c.capacity; over > 0 {
		c.history = append(c.history[:0], c.history[over:]...)
	}
}

// Messages returns a copy of the retained messages, oldest first
func (c *Console) Messages() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ConsoleMessage, len(c.history))
	copy(out, c.history)
	return out
}

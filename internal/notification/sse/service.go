// Package sse provides Server-Sent Events support for live pipeline activity.
package sse

import (
	"encoding/json"
	"net/http"
	"sync"

	"leadflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

const clientBuffer = 32

// Event represents an SSE event payload.
type Event struct {
	Type      string `json:"type"`
	Workspace string `json:"workspace"`
	Data      any    `json:"data,omitempty"`
}

// client represents a connected SSE client.
type client struct {
	workspace string
	events    chan Event
}

// Service manages SSE connections and event broadcasting.
type Service struct {
	mu      sync.RWMutex
	clients map[string][]*client // workspace -> clients
	log     *logger.Logger
}

// New creates a new SSE service.
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[string][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.workspace] = append(s.clients[c.workspace], c)
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.workspace]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.workspace] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[c.workspace]) == 0 {
		delete(s.clients, c.workspace)
	}
}

// Clients returns the number of connections watching workspace.
func (s *Service) Clients(workspace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[workspace])
}

// Publish sends an event to every client watching its workspace. Slow
// clients drop events instead of blocking the publisher.
func (s *Service) Publish(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients[event.Workspace] {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse buffer full, dropping event", "workspace", event.Workspace, "type", event.Type)
		}
	}
}

// Handler returns a Gin handler that streams events for the workspace
// returned by resolve.
func (s *Service) Handler(resolve func(*gin.Context) (string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace, ok := resolve(c)
		if !ok {
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		cl := &client{
			workspace: workspace,
			events:    make(chan Event, clientBuffer),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"workspace": workspace})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event := <-cl.events:
				data, err := json.Marshal(event)
				if err != nil {
					s.log.Error("sse marshal failed", "type", event.Type, "error", err)
					continue
				}
				c.SSEvent(event.Type, string(data))
				c.Writer.Flush()
			}
		}
	}
}

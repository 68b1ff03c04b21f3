package plot

import (
	"strings"
	"sync"

	"github.com/matzehuels/locuszoom/pkg/scene"
)

// Curtain is a panel's error overlay.
type Curtain struct {
	mu      sync.Mutex
	showing bool
	err     error
	message string
}

// CurtainState is a snapshot of a curtain.
type CurtainState struct {
	Showing bool   `json:"showing"`
	Message string `json:"message,omitempty"`
}

// Drop shows the curtain with err's message.
func (c *Curtain) Drop(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showing = true
	c.err = err
	c.message = ""
	if err != nil {
		c.message = err.Error()
	}
}

// Raise hides the curtain.
func (c *Curtain) Raise() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showing = false
	c.err = nil
	c.message = ""
}

// State returns a snapshot.
func (c *Curtain) State() CurtainState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CurtainState{Showing: c.showing, Message: c.message}
}

// Err returns the error the curtain was dropped with, or nil when raised.
func (c *Curtain) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Curtain) node(id string, w, h float64) *scene.Node {
	st := c.State()
	g := scene.Group(id, "lz-curtain")
	if !st.Showing {
		return g.Set("style", "display: none")
	}
	g.Append(scene.Rect(0, 0, w, h).Set("fill", "#D3D3D3").Set("fill-opacity", 0.6))
	text := scene.Text(20, 30, "").Set("class", "lz-curtain-content")
	for i, ln := range strings.Split(st.Message, "\n") {
		span := scene.New("tspan").Set("x", 20.0).Set("dy", float64(min(i, 1))*1.2*12)
		span.Text = ln
		text.Append(span)
	}
	return g.Append(text)
}

package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handler performs the effect of one operation. A returned error becomes a
// failure envelope; it is never propagated to the transport.
type Handler func(ctx context.Context, args Args) ([]mcp.Content, error)

// Descriptor is the immutable declaration of one operation.
type Descriptor struct {
	Name        string
	Description string
	// FailurePhrase completes "Failed to ..." in failure envelopes,
	// e.g. "boot device". Defaults to the name with underscores as spaces.
	FailurePhrase string
	Params        []Param
	Handler       Handler
}

// failurePhrase returns the phrase used to prefix failure messages.
func (d Descriptor) failurePhrase() string {
	if d.FailurePhrase != "" {
		return d.FailurePhrase
	}
	return strings.ReplaceAll(d.Name, "_", " ")
}

// Catalog is the ordered table of registered operations. It is filled once
// while the server is built and only read afterwards.
type Catalog struct {
	mu          sync.RWMutex
	descriptors []Descriptor
	byName      map[string]int
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[string]int),
	}
}

// Register adds a descriptor.
func (c *Catalog) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidDescriptor)
	}
	if d.Handler == nil {
		return fmt.Errorf("%w: tool %s has no handler", ErrInvalidDescriptor, d.Name)
	}

	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" || seen[p.Name] {
			return fmt.Errorf("%w: tool %s has an empty or repeated parameter name %q", ErrInvalidDescriptor, d.Name, p.Name)
		}
		seen[p.Name] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byName[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, d.Name)
	}

	// Copy the parameter table so later mutation by the caller cannot leak in.
	d.Params = append([]Param(nil), d.Params...)

	c.byName[d.Name] = len(c.descriptors)
	c.descriptors = append(c.descriptors, d)
	return nil
}

// MustRegister registers each descriptor and panics on the first failure.
// Used for the static operation table, where a bad entry is a programming error.
func (c *Catalog) MustRegister(descriptors ...Descriptor) {
	for _, d := range descriptors {
		if err := c.Register(d); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the descriptor registered under name.
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return c.descriptors[idx], true
}

// Descriptors returns all descriptors in registration order.
func (c *Catalog) Descriptors() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Len returns the number of registered descriptors.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.descriptors)
}

// Tools returns the mcp-go definitions of every descriptor, in order.
func (c *Catalog) Tools() []mcp.Tool {
	descriptors := c.Descriptors()
	out := make([]mcp.Tool, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d.Tool())
	}
	return out
}

package tool

import (
	"strings"
	"sync"

	"github.com/modal-agent/mago/providers/ai"
)

// Catalog manages a collection of tools with thread-safe operations.
// It provides name-keyed dispatch for tool calls and produces the tool
// descriptions advertised to the model.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]GenericTool
	order []string // registration order for stable Descriptions output
}

// NewCatalog creates a catalog pre-populated with the given tools.
// Tool names are taken from each tool's ToolInfo().Name.
func NewCatalog(tools ...GenericTool) *Catalog {
	catalog := &Catalog{tools: make(map[string]GenericTool)}
	catalog.Add(tools...)
	return catalog
}

// Add registers tools in the catalog. Names are matched case-insensitively;
// a tool with an existing name replaces the previous registration.
func (c *Catalog) Add(tools ...GenericTool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tools {
		name := strings.ToLower(t.ToolInfo().Name)
		if _, exists := c.tools[name]; !exists {
			c.order = append(c.order, name)
		}
		c.tools[name] = t
	}
}

// Get retrieves a tool by name (case-insensitive).
// Returns the tool and true if found, nil and false otherwise.
func (c *Catalog) Get(name string) (GenericTool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, exists := c.tools[strings.ToLower(name)]
	return t, exists
}

// Has checks if a tool with the given name exists (case-insensitive).
func (c *Catalog) Has(name string) bool {
	_, exists := c.Get(name)
	return exists
}

// Remove removes a tool from the catalog by name (case-insensitive).
// Returns true if the tool was found and removed, false otherwise.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	lowerName := strings.ToLower(name)
	if _, exists := c.tools[lowerName]; !exists {
		return false
	}
	delete(c.tools, lowerName)
	for i, n := range c.order {
		if n == lowerName {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Descriptions returns the tool descriptions to advertise to the model, in
// registration order.
func (c *Catalog) Descriptions() []ai.ToolDescription {
	c.mu.RLock()
	defer c.mu.RUnlock()

	descs := make([]ai.ToolDescription, 0, len(c.order))
	for _, name := range c.order {
		descs = append(descs, c.tools[name].ToolInfo())
	}
	return descs
}

// Size returns the number of tools in the catalog.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Merge adds all tools from another catalog into this one.
// Existing names are replaced with the tool from other.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	other.mu.RLock()
	tools := make([]GenericTool, 0, len(other.order))
	for _, name := range other.order {
		tools = append(tools, other.tools[name])
	}
	other.mu.RUnlock()

	c.Add(tools...)
}

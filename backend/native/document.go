//go:build !(js && wasm)

package native

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/triangle/gpucore"
)

// Document holds the elements a native backend resolves by identifier.
// It plays the part of a web page: elements are either canvases or other
// elements, which cannot be rendered to.
//
// Document is safe for concurrent use.
type Document struct {
	mu       sync.RWMutex
	canvases map[string]*Canvas
	others   map[string]string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		canvases: make(map[string]*Canvas),
		others:   make(map[string]string),
	}
}

// AddCanvas adds a canvas of width x height physical pixels, replacing any
// element with the same id.
func (d *Document) AddCanvas(id string, width, height int) *Canvas {
	c := newCanvas(id, width, height)
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.others, id)
	d.canvases[id] = c
	return c
}

// AddElement adds a non-canvas element with the given tag name, replacing
// any element with the same id.
func (d *Document) AddElement(id, tag string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.canvases, id)
	d.others[id] = tag
}

// Remove removes the element with the given id.
func (d *Document) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.canvases, id)
	delete(d.others, id)
}

// Canvas returns the canvas with the given id.
func (d *Document) Canvas(id string) (*Canvas, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if c, ok := d.canvases[id]; ok {
		return c, nil
	}
	if tag, ok := d.others[id]; ok {
		return nil, fmt.Errorf("%w: %q is a <%s>", gpucore.ErrNotCanvas, id, tag)
	}
	return nil, fmt.Errorf("%w: %q", gpucore.ErrCanvasNotFound, id)
}

// IDs returns the ids of all elements in sorted order.
func (d *Document) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.canvases)+len(d.others))
	for id := range d.canvases {
		ids = append(ids, id)
	}
	for id := range d.others {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package server

import (
	"context"
	"net/http"
	"slices"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/nodetree"
	"github.com/conneroisu/canon/internal/widgets/dragdrop"
)

// LayoutResponse is the body of GET /api/layout.
type LayoutResponse struct {
	Lists    map[string][]string `json:"lists"`
	Document nodetree.Document   `json:"document"`
}

// trackLayout mirrors every drag container of doc into the layout model.
func (s *Server) trackLayout(ctx context.Context, doc *dom.Document) {
	for _, c := range doc.QuerySelectorAll(behavior.MarkerDragDrop.Selector()) {
		s.trackContainer(ctx, c)
	}
}

func (s *Server) trackContainer(ctx context.Context, container *dom.Element) {
	list := container.ID()
	if list == "" {
		return
	}
	var items []nodetree.Item
	for _, el := range container.QuerySelectorAll("[data-drag-item][data-drag-id]") {
		kind := nodetree.Kind(el.GetAttribute("data-block"))
		if !kind.Known() || kind == nodetree.KindSlot {
			kind = ""
		}
		items = append(items, nodetree.Item{ID: el.GetAttribute("data-drag-id"), Kind: kind})
	}
	if err := s.layout.Track(list, items); err != nil {
		s.logger.Warn(ctx, err, "layout tracking failed", "list", list)
	}
}

// onReorder applies a drop to the layout model and then to the container.
// Runs on the document loop.
func (s *Server) onReorder(ctx context.Context, ev *dom.Event) {
	container := ev.Target
	if container == nil || container.ID() == "" {
		return
	}
	from, _ := ev.Detail["dragFrom"].(string)
	to, _ := ev.Detail["dragTo"].(string)

	list := container.ID()
	if !slices.Contains(s.layout.Lists(), list) {
		s.trackContainer(ctx, container)
	}
	if err := s.layout.Reorder(list, from, to); err != nil {
		s.logger.Warn(ctx, err, "reorder rejected", "list", list, "from", from, "to", to)
		return
	}
	dragdrop.Move(container, from, to)
	s.logger.Debug(ctx, "reorder applied", "list", list, "order", s.layout.Order(list))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var resp LayoutResponse
	err := s.do(r.Context(), func(*dom.Document) {
		resp.Lists = make(map[string][]string)
		for _, list := range s.layout.Lists() {
			resp.Lists[list] = s.layout.Order(list)
		}
		resp.Document = s.layout.Export("canon")
	})
	if err != nil {
		http.Error(w, "document unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

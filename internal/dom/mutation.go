package dom

import (
	"golang.org/x/net/html"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// MutationRecord describes a change to the child list of Target. Only
// element nodes are reported.
type MutationRecord struct {
	Target  *Element
	Added   []*Element
	Removed []*Element
}

// MutationObserverInit selects what an observation reports.
type MutationObserverInit struct {
	ChildList bool
	Subtree   bool
}

// MutationCallback receives a batch of records.
type MutationCallback func(records []MutationRecord, observer *MutationObserver)

type observation struct {
	target *html.Node
	opts   MutationObserverInit
}

// MutationObserver batches child-list mutations and delivers them in a
// queued task.
type MutationObserver struct {
	doc          *Document
	callback     MutationCallback
	observations []observation
	records      []MutationRecord
	scheduled    bool
}

// NewMutationObserver creates an observer that is not yet observing.
func (d *Document) NewMutationObserver(cb MutationCallback) *MutationObserver {
	return &MutationObserver{doc: d, callback: cb}
}

// Observe starts observing target.
func (m *MutationObserver) Observe(target *Element, opts MutationObserverInit) error {
	if target == nil {
		return canonerrors.NewObserverError("cannot observe a nil target", nil)
	}
	if !opts.ChildList {
		return canonerrors.NewObserverError("observation must request childList", nil)
	}
	for i, o := range m.observations {
		if o.target == target.node {
			m.observations[i].opts = opts
			return nil
		}
	}
	if len(m.observations) == 0 {
		m.doc.mutationObservers = append(m.doc.mutationObservers, m)
	}
	m.observations = append(m.observations, observation{target: target.node, opts: opts})
	return nil
}

// Disconnect stops all observations and drops pending records.
func (m *MutationObserver) Disconnect() {
	m.observations = nil
	m.records = nil
	obs := m.doc.mutationObservers
	for i, o := range obs {
		if o == m {
			m.doc.mutationObservers = append(obs[:i], obs[i+1:]...)
			break
		}
	}
}

// TakeRecords returns and clears pending records.
func (m *MutationObserver) TakeRecords() []MutationRecord {
	out := m.records
	m.records = nil
	return out
}

func (m *MutationObserver) interested(parent *html.Node) bool {
	for _, o := range m.observations {
		if o.target == parent {
			return true
		}
		if o.opts.Subtree && isAncestorOrSelf(o.target, parent) {
			return true
		}
	}
	return false
}

func (m *MutationObserver) deliver() {
	m.scheduled = false
	records := m.TakeRecords()
	if len(records) == 0 || len(m.observations) == 0 {
		return
	}
	m.callback(records, m)
}

// notifyChildList queues a record for every observer watching parent.
func (d *Document) notifyChildList(parent *html.Node, added, removed []*html.Node) {
	if len(d.mutationObservers) == 0 {
		return
	}
	rec := MutationRecord{Target: d.wrap(parent)}
	for _, n := range added {
		if el := d.wrap(n); el != nil {
			rec.Added = append(rec.Added, el)
		}
	}
	for _, n := range removed {
		if el := d.wrap(n); el != nil {
			rec.Removed = append(rec.Removed, el)
		}
	}
	if rec.Target == nil || (len(rec.Added) == 0 && len(rec.Removed) == 0) {
		return
	}
	for _, m := range d.mutationObservers {
		if !m.interested(parent) {
			continue
		}
		m.records = append(m.records, rec)
		if !m.scheduled {
			m.scheduled = true
			d.loop.Post(m.deliver)
		}
	}
}

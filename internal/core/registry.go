package core

import (
	"fmt"
	"sort"
	"sync"
)

// formRegistry holds every registered form. defs is kept sorted by group,
// then key, so listings never need to sort.
type formRegistry struct {
	mu    sync.RWMutex
	byKey map[string]int
	defs  []FormDefinition
}

var registry = &formRegistry{byKey: make(map[string]int)}

func formLess(a, b FormInfo) bool {
	if a.Group != b.Group {
		return a.Group < b.Group
	}
	return a.Key < b.Key
}

// Register adds a form definition to the registry. Forms register from init
// functions, so a malformed definition panics instead of returning an error:
// a missing or duplicate key, an import label with no record key, or a column
// without a label.
func Register(def FormDefinition) {
	if def.Info.Key == "" {
		panic("form registered without key")
	}
	for i, c := range def.Columns {
		if c.Label == "" {
			panic(fmt.Sprintf("form %s: column %d has no label", def.Info.Key, i))
		}
	}
	for label, key := range def.Import {
		if key == "" {
			panic(fmt.Sprintf("form %s: import label %q has no key", def.Info.Key, label))
		}
	}

	def.Info.Export = len(def.Columns) > 0 || def.Dynamic != DynamicNone
	def.Info.Import = len(def.Import) > 0
	if def.Info.Filename == "" {
		def.Info.Filename = def.Info.Key
	}

	r := registry
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[def.Info.Key]; exists {
		panic(fmt.Sprintf("form already registered: %s", def.Info.Key))
	}
	at := sort.Search(len(r.defs), func(i int) bool { return formLess(def.Info, r.defs[i].Info) })
	r.defs = append(r.defs, FormDefinition{})
	copy(r.defs[at+1:], r.defs[at:])
	r.defs[at] = def
	r.reindex()
}

func (r *formRegistry) reindex() {
	for i, d := range r.defs {
		r.byKey[d.Info.Key] = i
	}
}

// Get returns a form definition by key.
func Get(key string) (FormDefinition, bool) {
	r := registry
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byKey[key]
	if !ok {
		return FormDefinition{}, false
	}
	return r.defs[i], true
}

// lookup returns the form named key, or a KindUnknownForm error when it is
// not registered or does not support the direction asked for.
func lookup(op, key string, export bool) (FormDefinition, error) {
	def, ok := Get(key)
	switch {
	case !ok:
		return def, fail(op, KindUnknownForm, fmt.Errorf("form %q", key))
	case export && !def.Info.Export:
		return def, fail(op, KindUnknownForm, fmt.Errorf("form %q has no export columns", key))
	case !export && !def.Info.Import:
		return def, fail(op, KindUnknownForm, fmt.Errorf("form %q has no import labels", key))
	}
	return def, nil
}

// All returns every registered form, sorted by group then key.
func All() []FormDefinition {
	r := registry
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]FormDefinition(nil), r.defs...)
}

// ByGroup returns the forms of one group, sorted by key.
func ByGroup(group string) []FormDefinition {
	r := registry
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo := sort.Search(len(r.defs), func(i int) bool { return r.defs[i].Info.Group >= group })
	hi := lo
	for hi < len(r.defs) && r.defs[hi].Info.Group == group {
		hi++
	}
	return append([]FormDefinition(nil), r.defs[lo:hi]...)
}

// Groups returns the distinct group names in order.
func Groups() []string {
	r := registry
	r.mu.RLock()
	defer r.mu.RUnlock()

	var groups []string
	for _, d := range r.defs {
		if n := len(groups); n == 0 || groups[n-1] != d.Info.Group {
			groups = append(groups, d.Info.Group)
		}
	}
	return groups
}

// Infos returns the display information of every form, in All order.
func Infos() []FormInfo {
	defs := All()
	out := make([]FormInfo, len(defs))
	for i, d := range defs {
		out[i] = d.Info
	}
	return out
}

// FormCount returns the number of registered forms.
func FormCount() int {
	r := registry
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Clear removes all registered forms. Tests use it to install their own.
func Clear() {
	r := registry
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey = make(map[string]int)
	r.defs = nil
}

package store

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"gopkg.in/yaml.v3"
)

// YAMLFile is the on-disk layout read by YAMLStore:
//
//	notify:
//	  "01": [{code: "1", label: 소재}]
//	malls: [{code: "10001", label: G마켓}]
//	fields: {1: blank, 2: comment, 3: receiver_name}
//	packing_rules: {1: [receiver_name, receiver_address]}
//	order_forms:
//	  - id: 9
//	    name: 택배양식
//	    packing: 1
//	    entries: [{field: 3, title: 수취인}]
type YAMLFile struct {
	Notify       map[string][]core.CodeLabel `yaml:"notify"`
	Malls        []core.CodeLabel            `yaml:"malls"`
	Fields       map[int]string              `yaml:"fields"`
	PackingRules map[int64][]string          `yaml:"packing_rules"`
	OrderForms   []core.OrderForm            `yaml:"order_forms"`
}

// YAMLStore serves column data from a YAML document. It is read-only after
// construction and safe for concurrent use.
type YAMLStore struct {
	file  YAMLFile
	forms map[int64]core.OrderForm
}

// LoadYAML reads a YAMLStore from path.
func LoadYAML(path string) (*YAMLStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forms file: %w", err)
	}
	s, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseYAML builds a YAMLStore from a document. Every order form entry must
// name a field of the catalogue.
func ParseYAML(data []byte) (*YAMLStore, error) {
	var f YAMLFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse forms file: %w", err)
	}

	s := &YAMLStore{file: f, forms: make(map[int64]core.OrderForm, len(f.OrderForms))}
	for _, form := range f.OrderForms {
		if _, dup := s.forms[form.ID]; dup {
			return nil, fmt.Errorf("order form %d defined twice", form.ID)
		}
		for i, e := range form.Entries {
			if _, ok := f.Fields[e.FieldID]; !ok {
				return nil, fmt.Errorf("order form %d entry %d: unknown field %d", form.ID, i, e.FieldID)
			}
		}
		form.Catalogue = f.Fields
		s.forms[form.ID] = form
	}
	return s, nil
}

// NotifyColumns returns the notify items of an assortment. Unknown
// assortments have none.
func (s *YAMLStore) NotifyColumns(ctx context.Context, assortCode string) ([]core.CodeLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.file.Notify[assortCode], nil
}

// MallColumns returns the configured malls.
func (s *YAMLStore) MallColumns(ctx context.Context) ([]core.CodeLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.file.Malls, nil
}

// OrderForm returns a copy of a configured order form.
func (s *YAMLStore) OrderForm(ctx context.Context, id int64) (*core.OrderForm, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	form, ok := s.forms[id]
	if !ok {
		return nil, errNotFound("order form", fmt.Errorf("order form %d not found", id))
	}
	return &form, nil
}

// OrderFormIDs lists the configured order forms in id order.
func (s *YAMLStore) OrderFormIDs() []int64 {
	ids := make([]int64, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PackingRule returns the configured fields of a rule, falling back to
// DefaultPackingRules.
func (s *YAMLStore) PackingRule(ctx context.Context, id int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f, ok := s.file.PackingRules[id]; ok && len(f) > 0 {
		return f, nil
	}
	return defaultPackingRule(id)
}

// Package store supplies the data-driven parts of exports: notify items,
// malls, stored order download forms and packing rules. PGStore reads them
// from the back-office database; YAMLStore from a file for offline use.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PGStore, satisfied by *pgxpool.Pool,
// *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DefaultPackingRules are used for packing rule ids that have no stored
// fields. Orders to the same receiver and address ship together.
var DefaultPackingRules = map[int64][]string{
	1: {"receiver_name", "receiver_address"},
	2: {"receiver_name", "receiver_tel", "receiver_address"},
	3: {"orderer_name", "receiver_name", "receiver_address"},
}

// errNotFound marks a missing form or rule.
func errNotFound(op string, err error) error {
	return &core.Error{Kind: core.KindUnknownForm, Op: op, Err: err}
}

var (
	_ core.ColumnSource = (*PGStore)(nil)
	_ core.ColumnSource = (*YAMLStore)(nil)
)

// PGStore reads column data from Postgres.
type PGStore struct {
	db DBTX
}

// NewPGStore creates a store over db.
func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db}
}

const notifyColumnsSQL = `
SELECT item_code, item_name
  FROM goods_notify_items
 WHERE assort_code = $1
 ORDER BY sort_order, id`

// NotifyColumns returns the notify items of an assortment in display order.
func (s *PGStore) NotifyColumns(ctx context.Context, assortCode string) ([]core.CodeLabel, error) {
	return s.codeLabels(ctx, "notify columns", notifyColumnsSQL, assortCode)
}

const mallColumnsSQL = `
SELECT id::text, mall_name
  FROM malls
 WHERE use_yn = 'Y'
 ORDER BY id`

// MallColumns returns the active malls.
func (s *PGStore) MallColumns(ctx context.Context) ([]core.CodeLabel, error) {
	return s.codeLabels(ctx, "mall columns", mallColumnsSQL)
}

func (s *PGStore) codeLabels(ctx context.Context, op, sql string, args ...any) ([]core.CodeLabel, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []core.CodeLabel
	for rows.Next() {
		var c core.CodeLabel
		if err := rows.Scan(&c.Code, &c.Label); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

const orderFormSQL = `
SELECT id, name, COALESCE(packing_rule_id, 0), fields
  FROM order_download_forms
 WHERE id = $1`

const excelFieldsSQL = `
SELECT id, field_name
  FROM excel_fields`

// OrderForm loads an order download form together with the field catalogue.
// A missing form is reported as core.ErrUnknownForm.
func (s *PGStore) OrderForm(ctx context.Context, id int64) (*core.OrderForm, error) {
	var (
		form   core.OrderForm
		fields []byte
	)
	err := s.db.QueryRow(ctx, orderFormSQL, id).Scan(&form.ID, &form.Name, &form.Packing, &fields)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errNotFound("order form", fmt.Errorf("order form %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("order form %d: %w", id, err)
	}

	form.Entries, err = core.ParseOrderFormEntries(fields)
	if err != nil {
		return nil, errNotFound("order form", fmt.Errorf("order form %d: %w", id, err))
	}

	rows, err := s.db.Query(ctx, excelFieldsSQL)
	if err != nil {
		return nil, fmt.Errorf("excel fields: %w", err)
	}
	defer rows.Close()

	form.Catalogue = make(map[int]string)
	for rows.Next() {
		var (
			fid  int
			name string
		)
		if err := rows.Scan(&fid, &name); err != nil {
			return nil, fmt.Errorf("excel fields: scan: %w", err)
		}
		form.Catalogue[fid] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("excel fields: %w", err)
	}
	return &form, nil
}

const packingRuleSQL = `
SELECT field_name
  FROM packing_rule_fields
 WHERE packing_rule_id = $1
 ORDER BY seq`

// PackingRule returns the fields that decide whether orders ship together.
// Rules without stored fields fall back to DefaultPackingRules.
func (s *PGStore) PackingRule(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.db.Query(ctx, packingRuleSQL, id)
	if err != nil {
		return nil, fmt.Errorf("packing rule %d: %w", id, err)
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("packing rule %d: scan: %w", id, err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("packing rule %d: %w", id, err)
	}
	if len(fields) > 0 {
		return fields, nil
	}
	return defaultPackingRule(id)
}

func defaultPackingRule(id int64) ([]string, error) {
	if f, ok := DefaultPackingRules[id]; ok {
		return f, nil
	}
	return nil, errNotFound("packing rule", fmt.Errorf("packing rule %d not found", id))
}

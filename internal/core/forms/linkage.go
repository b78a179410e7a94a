package forms

import (
	"github.com/JonMunkholm/sheetmap/internal/core"
)

func init() {
	registerLinkageProductNames()
	registerLinkagePrices()
	registerLinkageDetailNotes()
}

// Per-mall product names are cut by the marketplaces at this many legacy
// bytes.
const linkageNameBudget = 50

func registerLinkageProductNames() {
	spec := core.ColumnSpec{
		col("쇼핑몰코드", "mall_id"),
		col("상품코드(변경불가)", "id"),
		col("자사상품코드(변경불가)", "own_code"),
		col("상품명", "product_name"),
		col("판매상태(변경불가)", "sale_status_name"),
		col("매입처(변경불가)", "supplier_name"),
	}
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "linkage_product_names",
			Group:    "Linkage",
			Label:    "쇼핑몰별 상품명",
			Filename: "쇼핑몰별상품명",
		},
		Columns: spec,
		Import:  importLabels(spec),
		Budgets: core.BudgetRules{"product_name": linkageNameBudget},
	})
}

func registerLinkagePrices() {
	spec := core.ColumnSpec{
		col("쇼핑몰코드", "mall_id"),
		col("상품코드(변경불가)", "id"),
		col("자사상품코드(변경불가)", "own_code"),
		col("상품명(변경불가)", "product_name"),
		col("판매상태(변경불가)", "sale_status_name"),
		col("매입처(변경불가)", "supplier_name"),
		col("소비자가", "market_price"),
		col("판매가", "sale_price"),
		col("공급가", "supply_price"),
		col("수수료", "commission"),
	}
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "linkage_prices",
			Group:    "Linkage",
			Label:    "쇼핑몰별 가격",
			Filename: "쇼핑몰별가격",
		},
		Columns: spec,
		Import:  importLabels(spec),
	})
}

func registerLinkageDetailNotes() {
	spec := core.ColumnSpec{
		col("쇼핑몰코드", "mall_id", core.ZeroBlank()),
		col("상품코드(변경불가)", "id"),
		col("자사상품코드(변경불가)", "own_code"),
		col("상세설명 상단", "head_note"),
		col("상세설명", "detail_note"),
		col("상세설명 하단", "tail_note"),
		col("판매상태(변경불가)", "sale_status_name"),
		col("매입처(변경불가)", "supplier_name"),
	}
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "linkage_detail_notes",
			Group:    "Linkage",
			Label:    "쇼핑몰별 상세설명",
			Filename: "쇼핑몰별상세설명",
		},
		Columns: spec,
		Import:  importLabels(spec),
	})
}

package forms

import (
	"github.com/JonMunkholm/sheetmap/internal/core"
)

func init() {
	registerProductMatches()
	registerExpectedOrderOptions()
	registerAdjustmentCompare()
	registerOrderInvoices()
}

func registerProductMatches() {
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "product_matches",
			Group:    "Orders",
			Label:    "상품매칭",
			Filename: "상품매칭",
		},
		Columns: core.ColumnSpec{
			col("쇼핑몰명", "mall_name"),
			col("쇼핑몰상품코드", "mall_product_id"),
			col("쇼핑몰옵션명", "order_option"),
			col("상품코드", "product_id"),
			optionCodeCol("옵션코드", "product_id", "option_code"),
			col("옵션명", "option_item"),
		},
		Import: core.LabelMap{
			"쇼핑몰명":    "mall_name",
			"쇼핑몰상품코드": "mall_product_id",
			"쇼핑몰옵션명":  "order_option",
			"옵션코드":    "option_code",
		},
	})
}

func registerExpectedOrderOptions() {
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "expected_order_options",
			Group:    "Orders",
			Label:    "예상주문옵션",
			Filename: "예상주문옵션",
		},
		Columns: core.ColumnSpec{
			col("쇼핑몰명", "mall_name"),
			col("쇼핑몰상품코드", "mall_product_id"),
			mallOptionName("쇼핑몰옵션명", "option_name", "option_item"),
			col("상품코드", "product_id"),
			optionCodeCol("옵션코드", "product_id", "option_code"),
			col("옵션명", "option_item"),
		},
	})
}

// Settlement comparison sheets go back to the marketplace reconciliation
// upload, so only the order id and the reflected amount are written.
func registerAdjustmentCompare() {
	spec := core.ColumnSpec{
		col("주문번호(변경불가)", "id"),
		col("정산금액", "reflection_amount"),
	}
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "adjustment_compare",
			Group:    "Orders",
			Label:    "정산금액비교",
			Filename: "정산금액비교",
		},
		Columns: spec,
		Import:  importLabels(spec),
	})
}

func registerOrderInvoices() {
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:   "order_invoices",
			Group: "Orders",
			Label: "송장 업로드",
		},
		Import: core.LabelMap{
			"주문번호":       "id",
			"주문번호(변경불가)": "id",
			"택배사":        "delivery_company",
			"택배사코드":      "delivery_company_id",
			"송장번호":       "invoice",
			"운송장번호":      "invoice",
		},
		Budgets: core.BudgetRules{"invoice": 30},
	})
}

package forms

import (
	"github.com/JonMunkholm/sheetmap/internal/core"
)

func init() {
	registerErpStocks()
}

// ERP stock exports share their leading columns; the stock columns depend on
// which stock the customer manages.
func erpStockPrefix() core.ColumnSpec {
	return core.ColumnSpec{
		col("상품코드", "product_id"),
		col("자사상품코드", "own_code"),
		col("상품명", "product_name"),
		optionCodeCol("옵션코드", "product_id", "option_code"),
		col("옵션상세", "option_item"),
		col("바코드", "stock_barcode"),
	}
}

func registerErpStocks() {
	variants := []struct {
		key, label string
		cols       core.ColumnSpec
	}{
		{
			key:   "erp_stocks",
			label: "재고현황",
			cols: core.ColumnSpec{
				col("실재고", "present_stock", core.Int()),
				col("미접수수량", "no_shipping_quantity", core.Int()),
				intDiff("실재고-미발송수량", "present_stock", "no_shipping_quantity"),
			},
		},
		{
			key:   "erp_stocks_warehouse",
			label: "재고현황(재고관리)",
			cols: core.ColumnSpec{
				col("실재고(재고관리)", "warehouse_present_stock", core.Int()),
				col("미접수수량", "no_shipping_quantity", core.Int()),
				intDiff("실재고(재고관리)-미발송수량", "warehouse_present_stock", "no_shipping_quantity"),
			},
		},
		{
			key:   "erp_stocks_erp",
			label: "재고현황(ERP)",
			cols: core.ColumnSpec{
				col("품번(ERP)", "style_no"),
				col("색상(ERP)", "color_code"),
				col("사이즈(ERP)", "size_code"),
				col("품번명(ERP)", "style_name"),
				col("색상명(ERP)", "color_name"),
				col("사이즈명(ERP)", "size_name"),
				col("상품상태(ERP)", "product_status_name"),
				col("가능재고(ERP)", "use_stock", core.Int()),
				col("미접수수량", "no_shipping_quantity", core.Int()),
				intDiff("가능재고(ERP)-미접수수량", "use_stock", "no_shipping_quantity"),
			},
		},
	}

	for _, v := range variants {
		core.Register(core.FormDefinition{
			Info: core.FormInfo{
				Key:      v.key,
				Group:    "ERP",
				Label:    v.label,
				Filename: v.label,
			},
			Columns: append(erpStockPrefix(), v.cols...),
		})
	}
}

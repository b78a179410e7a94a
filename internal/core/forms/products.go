package forms

import (
	"fmt"

	"github.com/JonMunkholm/sheetmap/internal/codes"
	"github.com/JonMunkholm/sheetmap/internal/core"
)

func init() {
	registerProducts()
	registerProductStocks()
	registerProductStockSets()
	registerProductNotifies()
}

// Extra image slots 23..35 are stored in image_url28..image_url40.
const extraImageSlots = 35

func productColumns() core.ColumnSpec {
	cat := codes.Default()
	enum := func(name string) core.Coercion {
		return core.EnumMap(name, cat.MustTable(name))
	}

	spec := core.ColumnSpec{
		col("(필수) 상품코드", "id"),
		col("카테고리", "category_kind"),
		col("카테고리ID", "category_id", core.ZeroBlank()),
		col("(필수) 상품명", "product_name"),
		col("상품약어", "short_name"),
		col("검색어", "keyword"),
		col("영문상품명", "english_name"),
		col("중문상품명", "chinese_name"),
		col("매입상품명", "purchase_product_name"),
		col("자사상품코드", "own_code"),
		col("브랜드명", "brand"),
		col("모델명", "model"),
		col("모델번호", "model_no"),
		col("(필수) 판매상태", "sale_status", enum(codes.SaleStatus)),
		col("매입처", "supplier_name"),
		col("(필수) 제조사", "manufacturer"),
		col("(필수) 원산지", "origin_name"),
		col("남녀정보", "gender", enum(codes.Gender)),
		col("판매지역정보", "sale_area", enum(codes.SaleArea)),
		col("시즌정보", "season", enum(codes.Season)),
		col("배송비정보", "delivery_method", enum(codes.DeliveryMethod)),
		col("(필수) 과세정보", "tax", enum(codes.Tax)),
		col("배송비", "delivery_fee"),
		col("식품재료/원산지", "food_origin"),
		col("제조년도", "manufacture_at", core.ZeroBlank()),
		col("발행일(제조일)", "issue_date", core.ZeroBlank()),
		col("유효기간", "expiry_at", core.ZeroBlank()),
		col("농수산물구분", "agro_fishery", core.ZeroBlank()),
		col("상품전체중량", "weight", core.BlankWhenZero("kg")),
		col("인증대상구분", "certify_assort", enum(codes.CertifyAssort)),
		col("인증대상품목", "certify_item", core.NestedEnum(cat.MustNested(codes.CertifyItem), "certify_assort")),
		col("인증문서번호", "certify_doc_no"),
		col("인증기관", "certify_organization", enum(codes.CertifyOrganization)),
		col("발급일자", "certify_issue_date", core.ZeroBlank()),
		col("인증일자", "certify_date", core.ZeroBlank()),
		col("인증기간(시작일)", "certify_start_date", core.ZeroBlank()),
		col("인증기간(종료일)", "certify_end_date", core.ZeroBlank()),
		col("인증문서이미지", "image_url100"),
		col("신고대상", "certify_report", enum(codes.CertifyReport)),
		col("신고기관", "certify_report_org"),
		col("신고번호", "certify_report_no"),
		col("품목허가번호", "certify_permit_no"),
		col("사전광고심의유무", "certify_consider_yn", enum(codes.CertifyConsider)),
		col("사전광고심의번호", "certify_consider_no"),
		col("소비자가", "market_price"),
		col("(필수) 판매가", "sale_price"),
		col("공급가(원가)", "supply_price"),
		col("공급가 수수료", "supply_commission"),
		col("매입가(원가)", "buyer_price"),
		col("매입가수수료", "buyer_commission"),
	}

	for i := 1; i <= 3; i++ {
		spec = append(spec,
			col(fmt.Sprintf("옵션명%d", i), fmt.Sprintf("option_name%d", i)),
			col(fmt.Sprintf("옵션상세%d", i), fmt.Sprintf("option_value%d", i)),
		)
	}

	spec = append(spec,
		col("상품간략 설명", "short_note"),
		col("상품추가 설명1", "add_note"),
		col("상품추가 설명2", "add_note2"),
		col("상세설명 상단", "head_note"),
		col("(필수) 상세설명", "detail_note"),
		col("상세설명 하단", "tail_note"),
		col("(필수) 대표이미지", "image_url1"),
		col("11번가 목록이미지", "image_url2"),
		col("리스트이미지", "image_url3"),
		col("W컨셉 대표이미지", "image_url4"),
		col("WIZWID 대표이미지", "image_url5"),
		col("무신사 대표이미지", "image_url6"),
		col("OCO 대표이미지", "image_url41"),
		col("이지웰 모바일이미지", "image_url42"),
	)
	for slot := 7; slot <= extraImageSlots; slot++ {
		n := slot
		if slot >= 23 {
			n = slot + 5
		}
		spec = append(spec, col(fmt.Sprintf("부가이미지%d", slot), fmt.Sprintf("image_url%d", n)))
	}

	spec = append(spec, col("정보고시분류코드", "notify_code"))
	for i := 1; i <= 15; i++ {
		spec = append(spec, col(fmt.Sprintf("정보고시상세%d", i), fmt.Sprintf("notify%d", i)))
	}

	spec = append(spec,
		col("색상", "color", core.IfNull(0)),
		col("물류처", "logistic_name"),
	)
	for i := 0; i < 7; i++ {
		spec = append(spec, col(fmt.Sprintf("품질검사(QA)%d", i+1), fmt.Sprintf("image_url%d", 200+i)))
	}
	return append(spec, col("실재고계", "stock_cnt", core.IfNull(0)))
}

func registerProducts() {
	spec := productColumns()
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "products",
			Group:    "Products",
			Label:    "상품",
			Filename: "상품",
		},
		Columns: spec,
		Import:  importLabels(spec),
		Budgets: core.BudgetRules{
			"product_name": 100,
			"short_name":   50,
			"keyword":      100,
		},
		Dynamic: core.DynamicMalls,
	})
}

func registerProductStocks() {
	spec := core.ColumnSpec{
		col("옵션ID(변경불가)", "id"),
		optionCodeCol("옵션코드(변경불가)", "product_id", "option_code"),
		col("상품명(변경불가)", "product_name"),
		col("옵션상세(변경불가)", "option_item"),
		col("바코드", "stock_barcode"),
		col("옵션별칭", "stock_name"),
		col("재고코드", "stock_code"),
		col("실재고(변경불가)", "present_stock", core.Int()),
		col("자동재고", "automatic_stock", core.Int()),
		col("안전재고", "safety_stock", core.Int()),
		col("임의재고", "virtual_stock", core.Int()),
		col("묶음수량", "bundle_amount", core.Int()),
		col("판매상태(변경불가)", "option_sale_status_name"),
		col("공급가(변경불가)", "supply_price", core.Int()),
		col("판매가(변경불가)", "sale_price", core.Int()),
		col("추가금액", "add_price", core.Int()),
		col("입력일(변경불가)", "created_at", core.DateFormat(stampFormat)),
		col("수정일(변경불가)", "updated_at", core.DateFormat(stampFormat)),
		col("자사상품코드(변경불가)", "own_code"),
		col("모델명(변경불가)", "model"),
		col("모델번호(변경불가)", "model_no"),
	}
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "product_stocks",
			Group:    "Products",
			Label:    "옵션재고",
			Filename: "옵션재고",
		},
		Columns: spec,
		Import:  importLabels(spec),
		SortBy:  []string{"product_id", "option_code"},
	})
}

func registerProductStockSets() {
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "product_stock_sets",
			Group:    "Products",
			Label:    "세트옵션",
			Filename: "세트옵션",
		},
		Columns: core.ColumnSpec{
			col("옵션ID(변경불가)", "id"),
			optionCodeCol("옵션코드(변경불가)", "product_id", "option_code"),
			col("상품명(변경불가)", "product_name"),
			col("옵션상세(변경불가)", "option_item"),
			col("세트ID(변경불가)", "stock_set_id"),
			optionCodeCol("세트옵션코드", "setting_product_id", "setting_option_code"),
			col("세트상품명(변경불가)", "setting_product_name"),
			col("세트옵션상세(변경불가)", "setting_option_item"),
			col("세트옵션판매가", "setting_sale_price"),
		},
		Import: core.LabelMap{
			"옵션ID(변경불가)": "id",
			"세트ID(변경불가)": "stock_set_id",
			"세트옵션코드":     "setting_option",
			"세트옵션판매가":    "setting_sale_price",
		},
		SortBy: []string{"product_id", "option_code"},
	})
}

// Notify exports get their columns from the notify items of the requested
// assortment; the prefix columns are the service defaults.
func registerProductNotifies() {
	core.Register(core.FormDefinition{
		Info: core.FormInfo{
			Key:      "product_notifies",
			Group:    "Products",
			Label:    "상품정보고시",
			Filename: "상품정보고시",
		},
		Dynamic:      core.DynamicNotify,
		DynamicLabel: core.NotifyAssortLabel,
		Import: core.LabelMap{
			"쇼핑몰코드":      "mall_id",
			"상품코드(변경불가)": "id",
			"상품정보고시":     "assort_code",
		},
	})
}

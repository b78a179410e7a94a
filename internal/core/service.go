package core

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/JonMunkholm/sheetmap/internal/logging"
	"github.com/JonMunkholm/sheetmap/internal/workbook"
	"github.com/google/uuid"
)

// Notify exports start with these columns; the assortment code column and
// one column per notify item follow.
var notifyPrefix = ColumnSpec{
	{Label: "쇼핑몰코드", Binding: Field("mall_id")},
	{Label: "상품코드(변경불가)", Binding: Field("id")},
	{Label: "자사상품코드(변경불가)", Binding: Field("own_code")},
	{Label: "상품명(변경불가)", Binding: Field("product_name")},
	{Label: "판매상태(변경불가)", Binding: Field("sale_status_name")},
}

// NotifyAssortLabel heads the assortment code column of notify exports.
const NotifyAssortLabel = "상품정보고시"

// Service runs import and export jobs. It is safe for concurrent use; calls
// share no mutable state besides the job limiter.
type Service struct {
	importer *Importer
	emitter  *Emitter
	source   ColumnSource
	limiter  *JobLimiter
}

// ServiceConfig holds the tunables of a Service.
type ServiceConfig struct {
	Decode        workbook.Options
	MaxFileSize   int64
	Writer        Writer
	MaxConcurrent int
	MaxWait       time.Duration
}

// NewService creates a Service. source may be nil when no form needs
// data-driven columns.
func NewService(cfg ServiceConfig, source ColumnSource) *Service {
	return &Service{
		importer: NewImporter(cfg.Decode, cfg.MaxFileSize),
		emitter:  NewEmitter(nil, cfg.Writer),
		source:   source,
		limiter:  NewJobLimiter(cfg.MaxConcurrent, cfg.MaxWait),
	}
}

// ListForms returns information about all registered forms.
func (s *Service) ListForms() []FormInfo {
	return Infos()
}

// ListFormsByGroup returns forms organized by group.
func (s *Service) ListFormsByGroup() map[string][]FormInfo {
	result := make(map[string][]FormInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// LimiterStatus reports job slot usage.
func (s *Service) LimiterStatus() JobLimiterStatus {
	return s.limiter.Status()
}

// WaitForDrain blocks until running jobs finish or ctx is done.
func (s *Service) WaitForDrain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// job acquires a slot and returns a context tagged with a fresh job id.
func (s *Service) job(ctx context.Context, kind string, attrs ...any) (context.Context, func(err error), error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, nil, err
	}

	jobID := uuid.New().String()
	ctx = logging.WithJobID(ctx, jobID)
	log := logging.WithFields(ctx, append(attrs, ClientFrom(ctx).logAttrs()...)...)
	log.Info(kind + " started")
	start := time.Now()

	done := func(err error) {
		defer s.limiter.Release()
		elapsed := time.Since(start)
		if err != nil {
			log.Warn(kind+" failed", "kind", KindOf(err).String(), "error", err, "duration", elapsed)
			return
		}
		log.Info(kind+" completed", "duration", elapsed)
	}
	return ctx, done, nil
}

// ImportRequest selects how header labels are mapped.
type ImportRequest struct {
	// FormKey applies the import label map of a registered form.
	FormKey string
	// Mapping adds to or overrides the form's label map.
	Mapping LabelMap
}

// LabelMap merges the form's label map with the request mapping.
func (r ImportRequest) LabelMap() (LabelMap, error) {
	var m LabelMap
	if r.FormKey != "" {
		def, err := lookup("import", r.FormKey, false)
		if err != nil {
			return nil, err
		}
		m = make(LabelMap, len(def.Import)+len(r.Mapping))
		for k, v := range def.Import {
			m[k] = v
		}
	}
	if len(r.Mapping) > 0 {
		if m == nil {
			m = make(LabelMap, len(r.Mapping))
		}
		for k, v := range r.Mapping {
			m[k] = v
		}
	}
	return m, nil
}

// Import reads an uploaded workbook into records.
func (s *Service) Import(ctx context.Context, src workbook.Source, req ImportRequest) (res *ImportResult, err error) {
	m, err := req.LabelMap()
	if err != nil {
		return nil, err
	}

	ctx, done, err := s.job(ctx, "import", "form", req.FormKey)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	return s.importer.Import(ctx, src, m)
}

// ImportHeaders reads only the header labels of an uploaded workbook.
func (s *Service) ImportHeaders(ctx context.Context, src workbook.Source) (h HeaderSet, err error) {
	ctx, done, err := s.job(ctx, "import headers")
	if err != nil {
		return HeaderSet{}, err
	}
	defer func() { done(err) }()

	return s.importer.ImportHeaders(ctx, src)
}

// ImportGrid reads the primary sheet of an uploaded workbook as raw rows.
func (s *Service) ImportGrid(ctx context.Context, src workbook.Source) (sheet string, rows [][]any, err error) {
	ctx, done, err := s.job(ctx, "import grid")
	if err != nil {
		return "", nil, err
	}
	defer func() { done(err) }()

	return s.importer.ImportGrid(ctx, src)
}

// ImportLetters reads an uploaded workbook keyed by column letters.
func (s *Service) ImportLetters(ctx context.Context, src workbook.Source, opts LetterOptions) (recs []Record, err error) {
	ctx, done, err := s.job(ctx, "import letters")
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	return s.importer.ImportLetters(ctx, src, opts)
}

// FormSpec assembles the column spec of a form, including its data-driven
// columns.
func (s *Service) FormSpec(ctx context.Context, def FormDefinition, opts ExportOptions) (ColumnSpec, error) {
	switch def.Dynamic {
	case DynamicNotify:
		var items []CodeLabel
		if opts.AssortCode != "" {
			if s.source == nil {
				return nil, fail("export", KindUnknownForm, fmt.Errorf("form %q needs a column source", def.Info.Key))
			}
			var err error
			items, err = s.source.NotifyColumns(ctx, opts.AssortCode)
			if err != nil {
				return nil, fail("export", KindWriteFailed, fmt.Errorf("notify columns %s: %w", opts.AssortCode, err))
			}
		}
		prefix := def.Columns
		if len(prefix) == 0 {
			prefix = notifyPrefix
		}
		label := def.DynamicLabel
		if label == "" {
			label = NotifyAssortLabel
		}
		return NotifyColumns(prefix, label, opts.AssortCode, items), nil

	case DynamicMalls:
		if !opts.WithMalls {
			return def.Columns, nil
		}
		if s.source == nil {
			return nil, fail("export", KindUnknownForm, fmt.Errorf("form %q needs a column source", def.Info.Key))
		}
		malls, err := s.source.MallColumns(ctx)
		if err != nil {
			return nil, fail("export", KindWriteFailed, fmt.Errorf("mall columns: %w", err))
		}
		return MallColumns(def.Columns, malls), nil
	}
	return def.Columns, nil
}

// Export writes records through the column spec of a registered form.
func (s *Service) Export(ctx context.Context, w io.Writer, formKey string, opts ExportOptions, records []Record) (stats ExportStats, err error) {
	def, err := lookup("export", formKey, true)
	if err != nil {
		return ExportStats{}, err
	}

	ctx, done, err := s.job(ctx, "export", "form", formKey, "records", len(records))
	if err != nil {
		return ExportStats{}, err
	}
	defer func() { done(err) }()

	spec, err := s.FormSpec(ctx, def, opts)
	if err != nil {
		return ExportStats{}, err
	}

	filename := opts.Filename
	if filename == "" {
		filename = def.Info.Filename
	}
	return s.emitter.Emit(ctx, w, ExportRequest{
		Spec:     spec,
		Records:  records,
		GroupKey: def.GroupKey,
		SortBy:   def.SortBy,
		Filename: filename + ".xlsx",
	})
}

// ExportOrders writes records through a stored order download form. Forms
// with a packing rule sort rows by the rule's fields and highlight orders
// that ship together.
func (s *Service) ExportOrders(ctx context.Context, w io.Writer, formID int64, filename string, records []Record) (stats ExportStats, err error) {
	if s.source == nil {
		return ExportStats{}, fail("export", KindUnknownForm, fmt.Errorf("order form %d: no column source", formID))
	}

	ctx, done, err := s.job(ctx, "export orders", "order_form", formID, "records", len(records))
	if err != nil {
		return ExportStats{}, err
	}
	defer func() { done(err) }()

	form, err := s.source.OrderForm(ctx, formID)
	if err != nil {
		return ExportStats{}, err
	}
	spec, err := form.Compile()
	if err != nil {
		return ExportStats{}, fail("export", KindUnknownForm, err)
	}

	var groupKey []string
	if form.Packing > 0 {
		groupKey, err = s.source.PackingRule(ctx, form.Packing)
		if err != nil {
			return ExportStats{}, err
		}
	}

	if filename == "" {
		filename = form.Name
	}
	if filename == "" {
		filename = "orders_" + strconv.FormatInt(formID, 10)
	}
	return s.emitter.Emit(ctx, w, ExportRequest{
		Spec:     spec,
		Records:  records,
		GroupKey: groupKey,
		Filename: filename + ".xlsx",
	})
}

// ExportSpec writes records through a caller-built request.
func (s *Service) ExportSpec(ctx context.Context, w io.Writer, req ExportRequest) (stats ExportStats, err error) {
	ctx, done, err := s.job(ctx, "export", "file", req.Filename, "records", len(req.Records))
	if err != nil {
		return ExportStats{}, err
	}
	defer func() { done(err) }()

	return s.emitter.Emit(ctx, w, req)
}

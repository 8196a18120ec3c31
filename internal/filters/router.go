package filters

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

// DefaultOrder 未配置时的过滤器顺序
var DefaultOrder = []string{HTMLID, TableID}

// RouterOptions 路由器选项
type RouterOptions struct {
	// Order 过滤器尝试顺序，默认过滤器总是排在最后
	Order         []string
	Registry      *Registry
	Reconstructor *xliff.Reconstructor
}

// Router 过滤器路由
type Router struct {
	filters       []Filter
	byID          map[string]Filter
	reconstructor *xliff.Reconstructor
	converter     xliff.FormatConverter
	logger        *zap.Logger
}

// NewRouter 按顺序实例化过滤器。顺序中出现未注册的标识时返回 ConfigurationError。
func NewRouter(deps Deps, opts RouterOptions) (*Router, error) {
	reg := opts.Registry
	if reg == nil {
		reg = globalRegistry
	}
	order := opts.Order
	if len(order) == 0 {
		order = DefaultOrder
	}

	r := &Router{
		byID:          make(map[string]Filter),
		reconstructor: opts.Reconstructor,
		converter:     deps.Converter,
		logger:        deps.logger(),
	}
	for _, id := range order {
		id = strings.TrimSpace(id)
		if id == DefaultID {
			continue
		}
		if _, dup := r.byID[id]; dup {
			continue
		}
		factory, ok := reg.Get(id)
		if !ok {
			return nil, errs.Configuration("unknown filter '%s' in filters.order%s", id, suggestion(id, reg.IDs()))
		}
		f := factory(deps)
		r.filters = append(r.filters, f)
		r.byID[id] = f
	}

	factory, ok := reg.Get(DefaultID)
	if !ok {
		factory = NewDefaultFilter
	}
	def := factory(deps)
	r.filters = append(r.filters, def)
	r.byID[DefaultID] = def
	return r, nil
}

// Filters 按尝试顺序返回过滤器
func (r *Router) Filters() []Filter {
	out := make([]Filter, len(r.filters))
	copy(out, r.filters)
	return out
}

// Extract 交给第一个支持该文件的过滤器
func (r *Router) Extract(req ExtractRequest) (string, error) {
	for _, f := range r.filters {
		if !f.IsSupported(req.File) {
			continue
		}
		if f.ID() != DefaultID {
			r.logger.Info("using custom filter", zap.String("filter", f.ID()))
		}
		return f.Extract(req)
	}
	return "", errs.New(errs.CodeUnsupportedFormat, "no registered filter supports the source file").
		WithFile(filepath.Base(req.File))
}

// Processor 为容器创建处理器
func (r *Router) Processor(containerPath string) (*xliff.Processor, error) {
	opts := []xliff.ProcessorOption{xliff.WithLogger(r.logger)}
	if r.converter != nil {
		opts = append(opts, xliff.WithConverter(r.converter))
	}
	return xliff.NewProcessor(containerPath, r.reconstructor, opts...)
}

// Merge 按容器记录的过滤器标识生成译文
func (r *Router) Merge(containerPath string) (string, error) {
	proc, err := r.Processor(containerPath)
	if err != nil {
		return "", err
	}
	f, err := r.Resolve(proc)
	if err != nil {
		return "", err
	}
	return f.Merge(proc)
}

// Resolve 找到容器对应的过滤器。没有标识时退回默认过滤器。
func (r *Router) Resolve(proc *xliff.Processor) (Filter, error) {
	id, ok, err := proc.Filter()
	if err != nil {
		return nil, err
	}
	if !ok || id == "" {
		r.logger.Warn("missing filter identity in container, using default filter",
			zap.String("file", filepath.Base(proc.Path())))
		return r.byID[DefaultID], nil
	}

	f, found := r.byID[id]
	if !found {
		known := make([]string, 0, len(r.byID))
		for k := range r.byID {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, errs.Newf(errs.CodeUnknownFilter, "unknown filter '%s'%s", id, suggestion(id, known)).
			WithFile(filepath.Base(proc.Path()))
	}
	if id != DefaultID {
		r.logger.Info("using custom filter", zap.String("filter", id))
	}
	return f, nil
}

// suggestion 返回 ", did you mean ..." 提示，没有相近的标识时为空
func suggestion(id string, known []string) string {
	ranks := fuzzy.RankFindFold(id, known)
	for _, k := range known {
		if fuzzy.MatchFold(k, id) {
			ranks = append(ranks, fuzzy.Rank{Source: k, Target: k, Distance: fuzzy.LevenshteinDistance(k, id)})
		}
	}
	if len(ranks) == 0 {
		return ""
	}

	best := ranks[0]
	for _, rk := range ranks[1:] {
		if rk.Distance < best.Distance {
			best = rk
		}
	}
	return ", did you mean '" + best.Target + "'?"
}

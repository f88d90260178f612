// Package views turns aggregated upstream text into view models: structured
// cards when a JSON document can be recovered, formatted segments otherwise.
package views

import (
	"valsia/internal/pkg/metrics"
	"valsia/pkg/extract"
	"valsia/pkg/format"
)

const strategyNone = "none"

type Presenter struct {
	extractor *extract.Extractor
	formatter *format.Formatter
}

func NewPresenter(extractor *extract.Extractor, formatter *format.Formatter) *Presenter {
	if extractor == nil {
		extractor = extract.Default()
	}
	if formatter == nil {
		formatter = format.New(nil, format.DefaultMinLength)
	}
	return &Presenter{extractor: extractor, formatter: formatter}
}

// decode 提取文档并解码到 target；文档不是对象、缺少 requiredKey 或解码失败都视为提取失败
func (p *Presenter) decode(view, text, requiredKey string, target any) (string, bool) {
	doc, ok := p.extractor.Extract(text, requiredKey)
	if ok {
		if _, isObject := doc.Value.(map[string]any); !isObject {
			ok = false
		}
	}
	if ok && requiredKey != "" && !doc.Has(requiredKey) {
		ok = false
	}
	if ok && doc.DecodeInto(target) != nil {
		ok = false
	}
	if !ok {
		metrics.ExtractionTotal.WithLabelValues(view, strategyNone).Inc()
		return "", false
	}
	metrics.ExtractionTotal.WithLabelValues(view, doc.Strategy).Inc()
	return doc.Strategy, true
}

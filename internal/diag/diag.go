// Package diag 定义编译流水线各阶段共用的诊断记录和接收器
package diag

import (
	"fmt"

	"github.com/tangzhangming/starbytes/internal/i18n"
)

// Severity 诊断级别
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Phase 产生诊断的阶段
type Phase int

const (
	PhaseLex Phase = iota
	PhaseSyntax
	PhaseSemantic
	PhaseCodegen
	PhaseRuntime
)

func (p Phase) String() string {
	switch p {
	case PhaseLex:
		return "lexer"
	case PhaseSyntax:
		return "parser"
	case PhaseSemantic:
		return "sema"
	case PhaseCodegen:
		return "codegen"
	case PhaseRuntime:
		return "runtime"
	}
	return "unknown"
}

// Region 源码区域，行列均从 1 开始，EndCol 为闭区间
type Region struct {
	StartLine int `json:"startLine"`
	StartCol  int `json:"startCol"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

func (r Region) String() string {
	return fmt.Sprintf("%d:%d", r.StartLine, r.StartCol)
}

// Span 合并两个区域
func Span(start, end Region) Region {
	return Region{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// Diagnostic 一条诊断记录
type Diagnostic struct {
	Code     string   // 稳定的诊断码，如 SB3002
	Key      string   // i18n 消息键
	Severity Severity
	Phase    Phase
	Message  string
	File     string
	Region   *Region // 可选
}

func (d *Diagnostic) Error() string {
	if d.Region == nil {
		return fmt.Sprintf("%s %s[%s]: %s", d.File, d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s:%s: %s[%s]: %s", d.File, d.Region, d.Severity, d.Code, d.Message)
}

// Sink 诊断接收器
type Sink interface {
	Report(d *Diagnostic)
}

// New 根据消息键创建诊断，诊断码由消息键决定
func New(sev Severity, phase Phase, region *Region, key string, args ...any) *Diagnostic {
	return &Diagnostic{
		Code:     CodeOf(key),
		Key:      key,
		Severity: sev,
		Phase:    phase,
		Message:  i18n.T(key, args...),
		Region:   region,
	}
}

// Errorf 创建错误级别的诊断
func Errorf(phase Phase, region *Region, key string, args ...any) *Diagnostic {
	return New(SeverityError, phase, region, key, args...)
}

// Warnf 创建警告级别的诊断
func Warnf(phase Phase, region *Region, key string, args ...any) *Diagnostic {
	return New(SeverityWarning, phase, region, key, args...)
}

// discard 丢弃所有诊断
type discard struct{}

func (discard) Report(*Diagnostic) {}

// Discard 丢弃所有诊断的接收器
var Discard Sink = discard{}

// fileSink 为诊断补充文件名
type fileSink struct {
	file string
	next Sink
}

func (f *fileSink) Report(d *Diagnostic) {
	if d.File == "" {
		d.File = f.file
	}
	f.next.Report(d)
}

// WithFile 返回一个为诊断填写文件名的接收器
func WithFile(sink Sink, file string) Sink {
	return &fileSink{file: file, next: sink}
}

// Collector 收集诊断并统计数量
type Collector struct {
	items    []*Diagnostic
	errors   int
	warnings int
}

// NewCollector 创建诊断收集器
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(d *Diagnostic) {
	c.items = append(c.items, d)
	if d.Severity == SeverityError {
		c.errors++
	} else {
		c.warnings++
	}
}

// Diagnostics 按上报顺序返回全部诊断
func (c *Collector) Diagnostics() []*Diagnostic {
	return c.items
}

// ErrorCount 返回错误数量
func (c *Collector) ErrorCount() int {
	return c.errors
}

// WarningCount 返回警告数量
func (c *Collector) WarningCount() int {
	return c.warnings
}

// HasErrors 是否存在错误
func (c *Collector) HasErrors() bool {
	return c.errors > 0
}

// ByKey 返回指定消息键的诊断
func (c *Collector) ByKey(key string) []*Diagnostic {
	var result []*Diagnostic
	for _, d := range c.items {
		if d.Key == key {
			result = append(result, d)
		}
	}
	return result
}

// Tee 把诊断同时转发给多个接收器
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

type tee []Sink

func (t tee) Report(d *Diagnostic) {
	for _, s := range t {
		s.Report(d)
	}
}

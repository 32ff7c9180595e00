package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// TextRenderer 以 "file:line:col: error[code]: message" 加源码插入符的形式输出诊断
type TextRenderer struct {
	Out     io.Writer
	Sources map[string]string // 文件名 -> 源码副本，用于显示出错行
}

// NewTextRenderer 创建文本渲染器
func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{Out: out, Sources: make(map[string]string)}
}

// AddSource 登记源码副本
func (r *TextRenderer) AddSource(file, source string) {
	r.Sources[file] = source
}

func (r *TextRenderer) Report(d *Diagnostic) {
	fmt.Fprintln(r.Out, d.Error())

	if d.Region == nil {
		return
	}
	src, ok := r.Sources[d.File]
	if !ok {
		return
	}
	lines := strings.Split(src, "\n")
	if d.Region.StartLine < 1 || d.Region.StartLine > len(lines) {
		return
	}
	line := strings.TrimRight(lines[d.Region.StartLine-1], "\r")
	gutter := fmt.Sprintf("%4d | ", d.Region.StartLine)
	fmt.Fprintf(r.Out, "%s%s\n", gutter, line)

	width := 1
	if d.Region.EndLine == d.Region.StartLine && d.Region.EndCol >= d.Region.StartCol {
		width = d.Region.EndCol - d.Region.StartCol + 1
	}
	pad := strings.Repeat(" ", len(gutter)+max(d.Region.StartCol-1, 0))
	fmt.Fprintf(r.Out, "%s%s\n", pad, strings.Repeat("^", width))
}

// jsonDiagnostic JSON 输出格式
type jsonDiagnostic struct {
	Code     string  `json:"code"`
	Severity string  `json:"severity"`
	Phase    string  `json:"phase"`
	Message  string  `json:"message"`
	File     string  `json:"file,omitempty"`
	Region   *Region `json:"region,omitempty"`
}

// JSONRenderer 每条诊断输出一行 JSON
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer 创建 JSON 渲染器
func NewJSONRenderer(out io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(out)}
}

func (r *JSONRenderer) Report(d *Diagnostic) {
	_ = r.enc.Encode(jsonDiagnostic{
		Code:     d.Code,
		Severity: d.Severity.String(),
		Phase:    d.Phase.String(),
		Message:  d.Message,
		File:     d.File,
		Region:   d.Region,
	})
}

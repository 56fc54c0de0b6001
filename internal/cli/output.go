// Package cli 提供命令行输出工具
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Output 结构化的命令行输出
// 正常结果写入 out，提示类消息（成功/警告/错误）写入 errOut
type Output struct {
	out    io.Writer
	errOut io.Writer

	success *color.Color
	failure *color.Color
	warning *color.Color
	info    *color.Color
	bold    *color.Color
	faint   *color.Color
}

// NewOutput 创建输出工具，noColor 为 true 时关闭颜色
func NewOutput(out, errOut io.Writer, noColor bool) *Output {
	o := &Output{
		out:     out,
		errOut:  errOut,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		warning: color.New(color.FgYellow),
		info:    color.New(color.FgCyan),
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{o.success, o.failure, o.warning, o.info, o.bold, o.faint} {
			c.DisableColor()
		}
	}
	return o
}

// Writer 返回结果输出目标
func (o *Output) Writer() io.Writer {
	return o.out
}

// Success 输出成功消息
func (o *Output) Success(format string, args ...interface{}) {
	fmt.Fprintf(o.errOut, "%s %s\n", o.success.Sprint("OK"), fmt.Sprintf(format, args...))
}

// Error 输出错误消息
func (o *Output) Error(format string, args ...interface{}) {
	fmt.Fprintf(o.errOut, "%s %s\n", o.failure.Sprint("ERROR"), fmt.Sprintf(format, args...))
}

// Warning 输出警告消息
func (o *Output) Warning(format string, args ...interface{}) {
	fmt.Fprintf(o.errOut, "%s %s\n", o.warning.Sprint("WARN"), fmt.Sprintf(format, args...))
}

// Info 输出信息消息
func (o *Output) Info(format string, args ...interface{}) {
	fmt.Fprintf(o.errOut, "%s %s\n", o.info.Sprint("INFO"), fmt.Sprintf(format, args...))
}

// Plain 输出普通结果（无颜色）
func (o *Output) Plain(format string, args ...interface{}) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// Header 输出标题
func (o *Output) Header(title string) {
	fmt.Fprintln(o.out, o.bold.Sprint(title))
	fmt.Fprintln(o.out, strings.Repeat("━", min(len(title), 80)))
}

// KeyValue 输出键值对
func (o *Output) KeyValue(key, value string) {
	fmt.Fprintf(o.out, "  %s %s\n", o.bold.Sprint(pad(key+":", 20)), value)
}

// Separator 输出分隔线
func (o *Output) Separator() {
	fmt.Fprintln(o.out, o.faint.Sprint(strings.Repeat("━", 80)))
}

// Table 输出表格
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable 创建新表格
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		widths:  widths,
	}
}

// AddRow 添加行，多余的列被忽略
func (t *Table) AddRow(cols ...string) {
	for i, col := range cols {
		if i < len(t.widths) && len(col) > t.widths[i] {
			t.widths[i] = len(col)
		}
	}
	t.rows = append(t.rows, cols)
}

// Len 返回数据行数
func (t *Table) Len() int {
	return len(t.rows)
}

// Render 渲染表格
// 先补齐宽度再上色，避免颜色控制符打乱对齐
func (o *Output) Render(t *Table) {
	cells := make([]string, len(t.headers))
	for i, h := range t.headers {
		cells[i] = o.bold.Sprint(pad(h, t.widths[i]))
	}
	fmt.Fprintln(o.out, strings.TrimRight(strings.Join(cells, "  "), " "))

	total := 0
	for _, w := range t.widths {
		total += w + 2
	}
	fmt.Fprintln(o.out, strings.Repeat("─", min(total, 120)))

	for _, row := range t.rows {
		cells = cells[:0]
		for i := range t.widths {
			col := ""
			if i < len(row) {
				col = row[i]
			}
			cells = append(cells, pad(col, t.widths[i]))
		}
		fmt.Fprintln(o.out, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

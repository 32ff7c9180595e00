package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/tangzhangming/starbytes/internal/compiler"
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/runtime"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

const (
	historyFile = ".starbytes_history"
	promptMain  = "sb> "
	promptCont  = "... "
	replFile    = "<repl>"
)

// replCmd 交互式会话
func replCmd(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	fmt.Println(i18n.T(i18n.MsgReplBanner, version))

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := newSession(os.Stdout, os.Stderr)
	defer s.close()

	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Println()
			return
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.ToLower(trimmed) == ":quit" {
				return
			}
			printError(i18n.T(i18n.MsgReplUnknown))
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if err := s.eval(src); err != nil {
			printError(err.Error())
		}
	}
}

// readEntry 读取一条完整的输入，块或参数列表未闭合时继续读下一行。
// Ctrl+D 返回 false，Ctrl+C 放弃当前输入。
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete 输入是否在块、参数列表、字符串或注释中途结束
func incomplete(src string) bool {
	c := diag.NewCollector()
	parser.ParseSource(src, c)
	for _, key := range []string{
		i18n.ErrUnterminatedBlock,
		i18n.ErrUnterminatedArgs,
		i18n.ErrUnterminatedString,
		i18n.ErrUnterminatedComment,
	} {
		if len(c.ByKey(key)) > 0 {
			return true
		}
	}
	return false
}

// session 交互会话。每条输入编译成一个模块，之前成功编译的输入
// 无需 import 即可见；全局变量保存在同一个解释器里。
type session struct {
	in      *runtime.Interp
	diags   io.Writer
	prelude []*symbol.Table
	count   int
}

func newSession(stdout, diags io.Writer) *session {
	return &session{
		in:    runtime.New(runtime.Options{Stdout: stdout}),
		diags: diags,
	}
}

// eval 编译并执行一条输入
func (s *session) eval(src string) error {
	s.count++
	name := fmt.Sprintf("repl%d", s.count)

	r := diag.NewTextRenderer(s.diags)
	r.AddSource(replFile, src)
	mod, err := compiler.Compile(name, replFile, src, compiler.Options{
		Sink:    r,
		Prelude: s.prelude,
	})
	if err != nil {
		return err
	}

	t, err := symbol.Import(mod.Name, mod.Interface)
	if err != nil {
		return err
	}
	s.prelude = append(s.prelude, t)

	if err := compiler.Execute(s.in, mod); err != nil {
		return errors.New(i18n.T(i18n.ErrRunError, err))
	}
	return nil
}

func (s *session) close() {
	s.in.Close()
}

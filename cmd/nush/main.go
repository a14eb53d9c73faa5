// Command nush is the interactive shell built on the engine. It reads one
// line at a time, compiles and commits it against the shared engine state,
// and evaluates it on a session-wide stack so definitions persist across
// lines.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/PoopyPooOS/nushell/internal/commands"
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
	"github.com/PoopyPooOS/nushell/internal/history"
	"github.com/PoopyPooOS/nushell/internal/jobs"
)

func main() {
	os.Exit(run())
}

type session struct {
	cfg   *config.Config
	state *engine.EngineState
	stack *engine.Stack
	store *history.Store
	color bool
}

func run() int {
	var command string
	var configPath string
	flag.StringVar(&command, "c", "", "run a single command and exit")
	flag.StringVar(&configPath, "config", "", "path to nush.yaml")
	flag.Parse()

	cfg := config.LoadDefault()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cfg = loaded
	}

	state, err := commands.DefaultContext()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	interactive := command == "" && flag.NArg() == 0 &&
		isatty.IsTerminal(os.Stdin.Fd())

	sess := &session{
		cfg:   cfg,
		state: state,
		stack: engine.NewStack(),
		color: !cfg.NoColor && isatty.IsTerminal(os.Stderr.Fd()),
	}

	reg := jobs.NewRegistry()
	extra := []engine.Command{
		commands.JobSpawn{Reg: reg},
		commands.JobList{Reg: reg},
	}
	if interactive {
		store, err := history.Open(config.ExpandHome(cfg.HistoryFile))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			sess.store = store
			defer store.Close()
		}
	}
	extra = append(extra, commands.History{Store: sess.store, Max: cfg.MaxHistory})
	if err := commands.Register(state, extra...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if wd, err := os.Getwd(); err == nil {
		state.AddEnvVar(config.PwdEnvVar, &engine.String{Value: wd, ValSpan: engine.UnknownSpan()})
	}
	state.AddEnvVar(config.LastExitEnvVar, &engine.Int{Value: 0, ValSpan: engine.UnknownSpan()})

	// Ctrl-C raises the cooperative interrupt flag; running streams and
	// loops observe it at their next checkpoint.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigCh {
			state.Signals().Trigger()
		}
	}()

	switch {
	case command != "":
		return sess.evalUnit("command", []byte(command))
	case flag.NArg() > 0:
		path := flag.Arg(0)
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return sess.evalUnit(path, src)
	case !interactive:
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return sess.evalUnit("stdin", src)
	default:
		return sess.repl()
	}
}

func (s *session) repl() int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if s.store != nil {
		if entries, err := s.store.List(s.cfg.MaxHistory); err == nil {
			for _, e := range entries {
				line.AppendHistory(e.Command)
			}
		}
	}

	for {
		s.state.Signals().Reset()
		src, err := line.Prompt(s.cfg.Prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			// io.EOF on Ctrl-D ends the session.
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		line.AppendHistory(src)
		if s.store != nil {
			if err := s.store.Add(src); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		code := s.evalUnit("repl", []byte(src))
		s.stack.AddEnvVar(config.LastExitEnvVar, &engine.Int{Value: int64(code), ValSpan: engine.UnknownSpan()})
	}
}

// evalUnit compiles, commits and runs one unit of input, printing the
// result or the failure.
func (s *session) evalUnit(name string, src []byte) int {
	data, err := eval.Source(s.state, s.stack, name, src, engine.Empty{})
	if err != nil {
		if ret, ok := err.(*engine.ReturnSignal); ok {
			s.printValue(ret.Value)
			return 0
		}
		s.printError(err)
		return 1
	}
	v, err := data.IntoValue(engine.UnknownSpan())
	if err != nil {
		s.printError(err)
		return 1
	}
	s.printValue(v)
	return 0
}

func (s *session) printValue(v engine.Value) {
	if v == nil {
		return
	}
	if _, ok := v.(*engine.Nothing); ok {
		return
	}
	fmt.Println(v.String())
}

func (s *session) printError(err error) {
	msg := err.Error()
	if e, ok := err.(*engine.Error); ok {
		if file, line, col, ok := s.state.LineCol(e.Span); ok {
			msg = fmt.Sprintf("%s:%d:%d: %s", file, line, col, msg)
		}
		if e.Help != "" {
			msg += "\n  help: " + e.Help
		}
	}
	if s.color {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
}

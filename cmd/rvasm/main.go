// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/ezrec/rvasm/assembler"
	"github.com/ezrec/rvasm/config"
	"github.com/ezrec/rvasm/console"
	"github.com/ezrec/rvasm/cpu"
	"github.com/ezrec/rvasm/emulator"
	"github.com/ezrec/rvasm/translate"
)

func loadConfig(path string) (cfg *config.Config, err error) {
	if len(path) == 0 {
		cfg = config.Default()
		return
	}

	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return config.Load(inf)
}

// build assembles every source file concurrently, one emulator each.
func build(cfg *config.Config, files []string, dump bool, verbose bool) (emus []*emulator.Emulator, dumps []string, err error) {
	emus = make([]*emulator.Emulator, len(files))
	dumps = make([]string, len(files))

	var group errgroup.Group
	for n, file := range files {
		group.Go(func() (err error) {
			source, err := os.ReadFile(file)
			if err != nil {
				return
			}

			emu := emulator.NewEmulator(cfg)
			emu.Verbose = verbose
			emus[n] = emu

			if dump {
				var image *assembler.Dump
				image, err = emu.Dump(string(source))
				if err == nil {
					dumps[n] = image.TextString() + "\n" + image.DataString() + "\n"
				}
			} else {
				err = emu.Build(string(source))
			}
			if err != nil {
				err = fmt.Errorf("%v: %w", file, err)
			}
			return
		})
	}

	err = group.Wait()
	return
}

// listing prints the address, word and disassembly of each instruction.
func listing(emu *emulator.Emulator) {
	for _, inst := range emu.Program.Instructions {
		fmt.Printf("%08x: %08x  %-24s # line %d\n", inst.Address, inst.Word, inst.Display, inst.Line)
	}
}

// run executes the program until it stops, reporting each pause.
func run(ctx context.Context, emu *emulator.Emulator) (code int, err error) {
	for {
		var state cpu.State
		state, err = emu.RunConsole(ctx)
		if err != nil {
			return
		}

		switch state.Kind {
		case cpu.STATE_STOPPED:
			code = int(state.ExitCode)
			return
		case cpu.STATE_PAUSED:
			fmt.Fprintf(os.Stderr, "%v at line %d\n%v", state, emu.LineNo(), emu.Cpu)
			if state.Pause == cpu.PAUSE_INTERRUPT {
				code = 1
				return
			}
		}
	}
}

func main() {
	var configFile string
	var dump bool
	var execute bool
	var verbose bool
	var lang string
	var breakpoints []uint32

	flag.StringVar(&configFile, "config", "", "Memory layout .toml file")
	flag.BoolVar(&dump, "dump", false, "Print the text and data segments as binary words")
	flag.BoolVar(&execute, "run", false, "Run the program")
	flag.Func("b", "Breakpoint address (repeatable)", func(value string) error {
		addr, err := strconv.ParseUint(value, 0, 32)
		if err == nil {
			breakpoints = append(breakpoints, uint32(addr))
		}
		return err
	})
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "lang", "", "Message language, overriding the locale")

	flag.Parse()

	if len(lang) != 0 {
		translate.SetLanguage(lang)
	}

	if flag.NArg() == 0 {
		log.Fatalf("%v: No source files", os.Args[0])
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("%v: %v", configFile, err)
	}

	emus, dumps, err := build(cfg, flag.Args(), dump, verbose)
	if err != nil {
		log.Fatal(err)
	}

	if dump {
		for _, text := range dumps {
			fmt.Print(text)
		}
		return
	}

	if !execute {
		for _, emu := range emus {
			listing(emu)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tape := &console.Tape{
		Input:  os.Stdin,
		Output: os.Stdout,
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		tape.Prompt = "? "
	}

	var code int
	for n, emu := range emus {
		emu.Console = tape
		for _, addr := range breakpoints {
			emu.Cpu.SetBreakpoint(addr)
		}

		code, err = run(ctx, emu)
		if err != nil {
			log.Fatalf("%v: %v", flag.Arg(n), err)
		}
	}

	os.Exit(code)
}

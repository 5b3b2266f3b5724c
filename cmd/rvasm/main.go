package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"rvasm/debug"
	"rvasm/internal/arch"
	"rvasm/internal/arch/riscv"
	"rvasm/internal/asm"
	"rvasm/internal/format"
	"rvasm/internal/format/elf"
	"rvasm/internal/format/ihex"
)

type options struct {
	errorLimit int
	werror     bool
	noPseudo   bool
	textBase   uint32
	dataBase   uint32
	arch       string
	format     string
	output     string
	listing    bool
	dump       bool
	checksum   bool
}

func newRootCmd() *cobra.Command {
	cfg := asm.DefaultConfig()
	opts := &options{
		errorLimit: cfg.ErrorLimit,
		textBase:   cfg.Layout.TextBase,
		dataBase:   cfg.Layout.DataBase,
	}

	cmd := &cobra.Command{
		Use:   "rvasm [flags] source...",
		Short: "Two-pass assembler for RV32IM",
		Long: `Rvasm assembles one or more RISC-V source files into a single memory
image. Labels made global with .globl in one file are visible to the
others. The image is written as an ELF32 executable, a raw binary or an
Intel HEX file.
`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.errorLimit, "error-limit", opts.errorLimit, "stop after this many errors")
	f.BoolVar(&opts.werror, "werror", false, "treat warnings as errors")
	f.BoolVar(&opts.noPseudo, "no-pseudo", false, "reject pseudo-instructions")
	f.Uint32Var(&opts.textBase, "text-base", opts.textBase, "address of the first text word")
	f.Uint32Var(&opts.dataBase, "data-base", opts.dataBase, "address of the first data byte")
	f.StringVar(&opts.arch, "arch", arch.ArchRV32.String(), "target architecture")
	f.StringVar(&opts.format, "format", "elf", "output format: elf, raw, hex")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: first source without extension)")
	f.BoolVarP(&opts.listing, "listing", "l", false, "print the assembled statements")
	f.BoolVar(&opts.dump, "dump", false, "pretty-print statements and symbols")
	f.BoolVar(&opts.checksum, "checksum", false, "print the SHA-256 of the memory image")
	return cmd
}

func builderFor(f format.Format, a arch.Arch) (format.Builder, error) {
	switch f {
	case format.FormatELF:
		return elf.NewBuilder(a), nil
	case format.FormatRaw:
		return format.RawBuilder{}, nil
	case format.FormatHex:
		return ihex.NewBuilder(), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", f)
}

func outputName(input string, b format.Builder) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + b.Extension()
}

func run(opts *options, args []string) error {
	target := arch.ParseArch(opts.arch)
	if target != arch.ArchRV32 {
		return fmt.Errorf("unsupported architecture: %s", opts.arch)
	}
	builder, err := builderFor(format.ParseFormat(opts.format), target)
	if err != nil {
		return err
	}

	cfg := asm.DefaultConfig()
	cfg.ErrorLimit = opts.errorLimit
	cfg.WarningsAreErrors = opts.werror
	cfg.ExtendedInstructions = !opts.noPseudo
	cfg.Layout.TextBase = opts.textBase
	cfg.Layout.DataBase = opts.dataBase

	var files []asm.SourceFile
	for _, p := range args {
		src, err := asm.LoadSource(os.DirFS(filepath.Dir(p)), filepath.Base(p))
		if err != nil {
			return err
		}
		files = append(files, src)
	}

	a := asm.NewAssembler(cfg, riscv.NewRegistry())
	res, err := a.Assemble(files...)
	if err != nil {
		var ae *asm.Error
		if errors.As(err, &ae) {
			fmt.Fprint(os.Stderr, ae.List.Report())
			return fmt.Errorf("assembly failed with %d error(s)", ae.List.ErrorCount())
		}
		return err
	}
	if res.Errors.WarningsOccurred() {
		fmt.Fprint(os.Stderr, res.Errors.WarningReport())
	}
	glog.V(1).Infof("assembled %d statement(s), entry 0x%08x", len(res.Statements), res.Entry)

	if opts.listing {
		for _, s := range res.Statements {
			fmt.Println(s)
		}
	}
	if opts.dump {
		dump(res)
	}
	if opts.checksum {
		fmt.Println(debug.CheckSum(res.Memory.Dump()))
	}

	out, err := builder.Build(format.NewInput(res.Memory, res.Global, res.Entry))
	if err != nil {
		return err
	}
	name := opts.output
	if name == "" {
		name = outputName(args[0], builder)
	}
	perm := os.FileMode(0o644)
	if builder.Format() == format.FormatELF {
		perm = 0o755
	}
	return os.WriteFile(name, out, perm)
}

type dumpLine struct {
	Address string
	Code    string
	Basic   string
	Source  string
}

func dump(res *asm.Result) {
	printer := pp.New()
	printer.SetColoringEnabled(term.IsTerminal(int(os.Stdout.Fd())))

	lines := make([]dumpLine, 0, len(res.Statements))
	for _, s := range res.Statements {
		l := dumpLine{
			Address: fmt.Sprintf("0x%08x", s.Address),
			Code:    fmt.Sprintf("0x%08x", s.Code),
			Basic:   s.BasicText,
		}
		if s.Source != nil {
			l.Source = fmt.Sprintf("%s:%d: %s", s.Source.File, s.Source.Line, strings.TrimSpace(s.Source.Text))
		}
		lines = append(lines, l)
	}
	printer.Println(lines)
	printer.Println(res.Global.Symbols())
	for _, t := range res.Locals {
		printer.Println(t.Name(), t.Symbols())
	}
}

func main() {
	// glog's -v, -logtostderr and friends; cobra picks them up from
	// pflag.CommandLine.
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	// glog wants flag.Parse to have run; cobra does the real parsing.
	_ = flag.CommandLine.Parse(nil)

	err := newRootCmd().Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rvasm:", err)
		os.Exit(1)
	}
}

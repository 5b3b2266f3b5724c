package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rvasm/internal/arch"
	"rvasm/internal/format"
)

func check(t *testing.T, got any, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", got, want)
	}
}

func TestBuilderFor(t *testing.T) {
	for _, f := range []format.Format{format.FormatELF, format.FormatRaw, format.FormatHex} {
		b, err := builderFor(f, arch.ArchRV32)
		check(t, err, nil)
		check(t, b.Format(), f)
	}
	_, err := builderFor(format.FormatUnknown, arch.ArchRV32)
	check(t, err != nil, true)
}

func TestOutputName(t *testing.T) {
	b, _ := builderFor(format.FormatHex, arch.ArchRV32)
	check(t, outputName("src/prog.s", b), "prog.hex")
	b, _ = builderFor(format.FormatELF, arch.ArchRV32)
	check(t, outputName("prog.asm", b), "prog")
}

func writeSource(t *testing.T, text string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "prog.s")
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRun(t *testing.T) {
	src := writeSource(t, ".text\n.globl main\nmain: li a0, 10\necall\n")
	out := filepath.Join(t.TempDir(), "prog.hex")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--format", "hex", "-o", out, src})
	check(t, cmd.Execute(), nil)

	data, err := os.ReadFile(out)
	check(t, err, nil)
	text := string(data)
	check(t, strings.HasPrefix(text, ":020000040040BA\n"), true)
	check(t, strings.HasSuffix(text, ":00000001FF\n"), true)
}

func TestRunFailures(t *testing.T) {
	src := writeSource(t, ".data\n.byte 300\n")
	out := filepath.Join(t.TempDir(), "prog.bin")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--werror", "--format", "raw", "-o", out, src})
	check(t, cmd.Execute() != nil, true)
	_, err := os.Stat(out)
	check(t, os.IsNotExist(err), true)

	cmd = newRootCmd()
	cmd.SetArgs([]string{"--arch", "x86_64", src})
	check(t, cmd.Execute() != nil, true)

	cmd = newRootCmd()
	cmd.SetArgs([]string{"--format", "pe", src})
	check(t, cmd.Execute() != nil, true)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/term"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/internal/gen"
	"github.com/wippyai/bitfield/internal/layout"
	"github.com/wippyai/bitfield/schema"
	"github.com/wippyai/bitfield/wasmhost"
	"github.com/wippyai/bitfield/witflags"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "emit Go accessors for every definition",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "out", Usage: "output file, stdout when empty"},
			&cli.StringFlag{Name: "package", Usage: "package name of the generated file"},
		},
		Action: func(c *cli.Context) error {
			in := c.String("in")
			file, err := schema.Load(in)
			if err != nil {
				return err
			}
			src, err := gen.Generate(file, gen.Options{Package: c.String("package"), Source: filepath.Base(in)})
			if err != nil {
				return err
			}
			out := c.String("out")
			if out == "" {
				_, err = c.App.Writer.Write(src)
				return err
			}
			if err := os.WriteFile(out, src, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(c.App.Writer, "wrote %d bitfields to %s\n", len(file.Definitions), out)
			return nil
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "validate definitions and print their resolved layouts",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			file, err := schema.Load(c.String("in"))
			if err != nil {
				return err
			}

			w := c.App.Writer
			for _, def := range file.Definitions {
				if res, err := def.Resolve(); err == nil {
					printResolved(w, res)
				}
			}

			if errs := multierr.Errors(file.Validate()); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(c.App.ErrWriter, "  %v\n", e)
				}
				return cli.Exit(fmt.Sprintf("%d problem(s) in %s", len(errs), c.String("in")), 1)
			}
			fmt.Fprintf(w, "%d bitfields ok\n", len(file.Definitions))
			return nil
		},
	}
}

func printResolved(w io.Writer, res *layout.Result) {
	fmt.Fprintf(w, "%s %s: %d/%d bits used, %d fields\n", res.Name, res.Base, res.Used, res.Capacity, len(res.Fields))
	rows := make([][]string, len(res.Fields))
	for i, f := range res.Fields {
		rows[i] = []string{f.Name, bitSpan(f.Offset, f.Width), strconv.Itoa(f.Width)}
	}
	fmt.Fprintln(w, newTable("FIELD", "BITS", "WIDTH").Rows(rows...).Render())
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "decode a value with one definition",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "name", Usage: "bitfield name", Required: true},
			&cli.StringFlag{Name: "value", Usage: "aggregate value (decimal, 0x, 0o or 0b)", Value: "0"},
			&cli.StringSliceFlag{Name: "set", Usage: "field=value to write before printing"},
			&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "edit the value in a terminal UI"},
		},
		Action: func(c *cli.Context) error {
			file, err := schema.Load(c.String("in"))
			if err != nil {
				return err
			}
			def, ok := file.Lookup(c.String("name"))
			if !ok {
				return fmt.Errorf("bitfield %q not defined in %s", c.String("name"), c.String("in"))
			}

			if def.Base == bitfield.U128 {
				if c.Bool("interactive") {
					return cli.Exit("interactive mode supports bases up to 64 bits", 1)
				}
				return inspect128(c, def)
			}

			l, err := def.Layout()
			if err != nil {
				return err
			}
			v, err := parseValue(c.String("value"), def.Base.Bits())
			if err != nil {
				return err
			}
			for _, assign := range c.StringSlice("set") {
				if v, err = applySet(l, v, assign); err != nil {
					return err
				}
			}

			if c.Bool("interactive") {
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					return cli.Exit("interactive mode needs a terminal", 1)
				}
				return runInteractive(l, v)
			}
			printValue(c.App.Writer, def, l, v)
			return nil
		},
	}
}

func printValue(w io.Writer, def schema.Definition, l *bitfield.Layout[uint64], v uint64) {
	fmt.Fprintf(w, "%s (%s) = %d (%#x, %#b)\n", l.Name(), l.Kind(), v, v, v)
	rows := make([][]string, 0, len(l.Fields()))
	for _, fv := range l.Values(v) {
		rows = append(rows, []string{fv.Name, bitSpan(fv.Offset, fv.Width), strconv.FormatUint(fv.Value, 10), fmt.Sprintf("%#x", fv.Value)})
	}
	fmt.Fprintln(w, newTable("FIELD", "BITS", "VALUE", "HEX").Rows(rows...).Render())
	if _, err := witflags.ToTypeDef(def); err == nil && len(def.Decls) > 0 {
		fmt.Fprintf(w, "flags: {%s}\n", strings.Join(witflags.Decode(l, v), ", "))
	}
}

func inspect128(c *cli.Context, def schema.Definition) error {
	l, err := def.Layout128()
	if err != nil {
		return err
	}
	v, ok := bitfield.ParseUint128(c.String("value"), 0)
	if !ok {
		return fmt.Errorf("invalid 128-bit value %q", c.String("value"))
	}
	for _, assign := range c.StringSlice("set") {
		name, raw, found := strings.Cut(assign, "=")
		if !found {
			return fmt.Errorf("--set %q: want field=value", assign)
		}
		f, err := l.Lookup(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		x, ok := bitfield.ParseUint128(strings.TrimSpace(raw), 0)
		if !ok {
			return fmt.Errorf("--set %q: invalid value", assign)
		}
		f.Set(&v, x)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%s (%s) = %s\n", l.Name(), l.Kind(), v)
	var rows [][]string
	for _, f := range l.Fields() {
		rows = append(rows, []string{f.Name(), bitSpan(f.Offset(), f.Size()), f.Get(v).String()})
	}
	fmt.Fprintln(w, newTable("FIELD", "BITS", "VALUE").Rows(rows...).Render())
	return nil
}

func exportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "exports",
		Usage: "list the WebAssembly host functions for a definition file",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "module", Usage: "host module name", Value: wasmhost.DefaultModuleName},
		},
		Action: func(c *cli.Context) error {
			r, err := loadRegistry(c)
			if err != nil {
				return err
			}
			h := wasmhost.New(r, wasmhost.WithModuleName(c.String("module")))
			var rows [][]string
			for _, e := range h.Exports() {
				rows = append(rows, []string{h.ModuleName(), e.Name, valueTypes(e.Params) + " -> " + valueTypes(e.Results)})
			}
			fmt.Fprintln(c.App.Writer, newTable("MODULE", "FUNCTION", "SIGNATURE").Rows(rows...).Render())
			return nil
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "call a guest WebAssembly function with the host module linked",
		ArgsUsage: "[i64 args...]",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "wasm", Usage: "guest module", Required: true},
			&cli.StringFlag{Name: "func", Usage: "exported function to call", Value: "run"},
			&cli.StringFlag{Name: "module", Usage: "host module name", Value: wasmhost.DefaultModuleName},
		},
		Action: func(c *cli.Context) error {
			r, err := loadRegistry(c)
			if err != nil {
				return err
			}
			guest, err := os.ReadFile(c.String("wasm"))
			if err != nil {
				return fmt.Errorf("read guest: %w", err)
			}
			args := make([]uint64, c.NArg())
			for i, a := range c.Args().Slice() {
				if args[i], err = strconv.ParseUint(a, 0, 64); err != nil {
					return fmt.Errorf("argument %d: %w", i, err)
				}
			}

			ctx := context.Background()
			rt := wazero.NewRuntime(ctx)
			defer rt.Close(ctx)

			if _, err := wasmhost.New(r, wasmhost.WithModuleName(c.String("module"))).Instantiate(ctx, rt); err != nil {
				return err
			}
			mod, err := rt.Instantiate(ctx, guest)
			if err != nil {
				return fmt.Errorf("instantiate guest: %w", err)
			}
			fn := mod.ExportedFunction(c.String("func"))
			if fn == nil {
				return fmt.Errorf("guest does not export %q", c.String("func"))
			}
			results, err := fn.Call(ctx, args...)
			if err != nil {
				return fmt.Errorf("call %s: %w", c.String("func"), err)
			}
			for _, res := range results {
				fmt.Fprintf(c.App.Writer, "%d (%#x)\n", res, res)
			}
			return nil
		},
	}
}

// loadRegistry registers every definition that fits in 64 bits; wider ones
// are skipped with a warning.
func loadRegistry(c *cli.Context) (*bitfield.Registry, error) {
	file, err := schema.Load(c.String("in"))
	if err != nil {
		return nil, err
	}
	r := bitfield.NewRegistry()
	for _, def := range file.Definitions {
		if def.Base == bitfield.U128 {
			fmt.Fprintf(c.App.ErrWriter, "skipping %s: 128-bit layouts are not exported\n", def.Name)
			continue
		}
		if _, err := r.Define(def.Name, def.Base, def.Decls...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func parseValue(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(strings.ReplaceAll(strings.TrimSpace(s), "_", ""), 0, bits)
	if err != nil {
		return 0, fmt.Errorf("value %q does not fit %d bits: %w", s, bits, err)
	}
	return v, nil
}

func applySet(l *bitfield.Layout[uint64], v uint64, assign string) (uint64, error) {
	name, raw, ok := strings.Cut(assign, "=")
	if !ok {
		return v, fmt.Errorf("--set %q: want field=value", assign)
	}
	f, err := l.Lookup(strings.TrimSpace(name))
	if err != nil {
		return v, err
	}
	x, err := parseValue(raw, 64)
	if err != nil {
		return v, err
	}
	return f.With(v, x), nil
}

func bitSpan(offset, width int) string {
	if width == 1 {
		return strconv.Itoa(offset)
	}
	return fmt.Sprintf("%d..%d", offset, offset+width-1)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().PaddingRight(1)
		})
}

func valueTypes(types []api.ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = api.ValueTypeName(t)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

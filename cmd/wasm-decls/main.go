package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-aot/backend"
	"github.com/wippyai/wasm-aot/bindings"
	"github.com/wippyai/wasm-aot/decls"
	"github.com/wippyai/wasm-aot/moduleinfo"
)

// bindFlags collects repeated -bind module.field=symbol flags.
type bindFlags []string

func (f *bindFlags) String() string { return strings.Join(*f, ",") }

func (f *bindFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

type options struct {
	wasmFile     string
	bindingsFile string
	binds        []string
	ptrWidth     int
	validate     bool
	verbose      bool
	interactive  bool
}

func main() {
	var (
		opts  options
		binds bindFlags
	)
	flag.StringVar(&opts.wasmFile, "wasm", "", "Path to core module wasm file")
	flag.StringVar(&opts.bindingsFile, "bindings", "", "JSON file mapping import modules and fields to symbols")
	flag.Var(&binds, "bind", "Import binding module.field=symbol (repeatable)")
	flag.IntVar(&opts.ptrWidth, "ptr-width", 64, "Target pointer width in bits (32 or 64)")
	flag.BoolVar(&opts.validate, "validate", false, "Compile the module with wazero before declaring it")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()
	opts.binds = binds

	if opts.wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: wasm-decls -wasm <file.wasm> [-bindings file.json] [-bind m.f=symbol ...]")
		fmt.Fprintln(os.Stderr, "       wasm-decls -wasm <file.wasm> -validate")
		fmt.Fprintln(os.Stderr, "       wasm-decls -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx := context.Background()

	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer logger.Sync()
		decls.SetLogger(logger.Named("decls"))
		backend.SetLogger(logger.Named("backend"))
	}

	target, err := targetConfig(opts.ptrWidth)
	if err != nil {
		return err
	}

	b, err := loadBindings(opts.bindingsFile, opts.binds)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	info, err := moduleinfo.Parse(data, target)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if opts.validate {
		if err := validate(ctx, data, info); err != nil {
			return fmt.Errorf("validate: %w", err)
		}
	}

	st := backend.NewSymbolTable()
	d, err := decls.Declare(info, st, b)
	if err != nil {
		return fmt.Errorf("declare: %w", err)
	}

	rows, err := collectRows(d, st)
	if err != nil {
		return err
	}

	if opts.interactive {
		return runInteractive(opts.wasmFile, info, rows)
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Printf("Module: %s\n", opts.wasmFile)
	fmt.Printf("Target: %d-bit, %s\n", target.PointerWidth.Bits(), target.CallConv)
	fmt.Printf("Contents: %s\n\n", info.Describe())
	return writeReport(os.Stdout, rows, styled)
}

func targetConfig(bits int) (moduleinfo.TargetConfig, error) {
	target := moduleinfo.DefaultTargetConfig()
	switch bits {
	case 32:
		target.PointerWidth = moduleinfo.PointerWidth32
	case 64:
		target.PointerWidth = moduleinfo.PointerWidth64
	default:
		return target, fmt.Errorf("unsupported pointer width %d", bits)
	}
	return target, nil
}

// loadBindings reads the bindings file, if any, and applies the -bind flags
// on top of it.
func loadBindings(path string, binds []string) (*bindings.Bindings, error) {
	b := bindings.Empty()
	if path != "" {
		var err error
		if b, err = bindings.FromFile(path); err != nil {
			return nil, err
		}
	}
	for _, arg := range binds {
		module, field, symbol, err := parseBind(arg)
		if err != nil {
			return nil, err
		}
		if err := b.Bind(module, field, symbol); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// parseBind splits "module.field=symbol". The module name ends at the first dot.
func parseBind(arg string) (module, field, symbol string, err error) {
	pair, symbol, ok := strings.Cut(arg, "=")
	if !ok || symbol == "" {
		return "", "", "", fmt.Errorf("invalid binding %q: expected module.field=symbol", arg)
	}
	module, field, ok = strings.Cut(pair, ".")
	if !ok || module == "" || field == "" {
		return "", "", "", fmt.Errorf("invalid binding %q: expected module.field=symbol", arg)
	}
	return module, field, symbol, nil
}

// validate compiles the module with wazero and checks that both sides agree
// on the imported and exported functions.
func validate(ctx context.Context, data []byte, info *moduleinfo.Info) error {
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return err
	}
	defer compiled.Close(ctx)

	if got, want := len(compiled.ImportedFunctions()), len(info.ImportedFuncs); got != want {
		return fmt.Errorf("wazero sees %d imported functions, expected %d", got, want)
	}

	exported := 0
	for _, f := range info.Functions {
		exported += len(f.ExportNames)
	}
	if got := len(compiled.ExportedFunctions()); got != exported {
		return fmt.Errorf("wazero sees %d exported functions, expected %d", got, exported)
	}
	return nil
}

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	sundial "github.com/sundialdb/sundial-go"
	"github.com/sundialdb/sundial-go/internal/observability"
	"github.com/sundialdb/sundial-go/transport"
	"github.com/sundialdb/sundial-go/wire"
)

func main() {
	var (
		configPath  string
		addr        string
		callTimeout time.Duration
		asJSON      bool
	)
	flag.StringVar(&configPath, "config", "", "path to a sundialctl config.toml")
	flag.StringVar(&addr, "addr", "", "server host:port (overrides config)")
	flag.DurationVar(&callTimeout, "timeout", 0, "per-request protocol timeout (overrides config)")
	flag.BoolVar(&asJSON, "json", false, "print results as JSON")
	flag.Usage = usage
	flag.Parse()

	log := observability.InitLogger("sundialctl")

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg := defaultCtlConfig()
	if configPath != "" {
		loaded, err := loadClientConfig(configPath)
		if err != nil {
			fatalf("%v", err)
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Transport.Addr = addr
	}
	if callTimeout > 0 {
		cfg.CallTimeout = callTimeout
	}
	cfg.Transport.Logger = log

	if err := run(cfg, log, asJSON, args[0], args[1:]); err != nil {
		fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: sundialctl [flags] <command> [args]

commands:
  query [-params '{"name": value}'] <text>
  put   [-rows file] [-columns a,b,c] <table>     (rows: JSON arrays, one per line, stdin default)
  get   <table> <key-json>
  delete [-vclock hex] <table> <key-json>
  keys  <table>

flags:
`)
	flag.PrintDefaults()
}

func run(cfg ctlConfig, log zerolog.Logger, asJSON bool, cmd string, args []string) error {
	ctx := context.Background()
	conn, err := transport.Dial(ctx, cfg.Transport)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := sundial.NewClient(conn, sundial.Config{Logger: log, WaitMargin: cfg.WaitMargin})
	if err != nil {
		return err
	}
	opts := &sundial.Options{Timeout: cfg.CallTimeout}

	switch cmd {
	case "query":
		return runQuery(ctx, client, asJSON, args)
	case "put":
		return runPut(ctx, client, args)
	case "get":
		return runGet(ctx, client, opts, asJSON, args)
	case "delete":
		return runDelete(ctx, client, opts, args)
	case "keys":
		return runKeys(ctx, client, opts, asJSON, args)
	default:
		return fmt.Errorf("unknown command %q (supported: query, put, get, delete, keys)", cmd)
	}
}

func runQuery(ctx context.Context, client *sundial.Client, asJSON bool, args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	paramsJSON := fs.String("params", "", "named parameters as a JSON object")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: sundialctl query [-params '{...}'] <text>")
	}

	params, err := parseParams(*paramsJSON)
	if err != nil {
		return err
	}
	res, err := client.Query(ctx, fs.Arg(0), params)
	if err != nil {
		return err
	}
	return printTable(asJSON, res.Columns, res.Rows)
}

func runPut(ctx context.Context, client *sundial.Client, args []string) error {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	rowsPath := fs.String("rows", "", "file of JSON-array rows, one per line (default stdin)")
	columns := fs.String("columns", "", "comma-separated column names")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: sundialctl put [-rows file] [-columns a,b,c] <table>")
	}
	table := fs.Arg(0)

	var src io.Reader = os.Stdin
	if *rowsPath != "" {
		f, err := os.Open(*rowsPath)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	rows, err := readRows(src)
	if err != nil {
		return err
	}

	var opts *sundial.PutOptions
	if *columns != "" {
		opts = &sundial.PutOptions{Columns: splitList(*columns)}
	}
	if err := client.Put(ctx, table, rows, opts); err != nil {
		return err
	}
	fmt.Printf("put %d rows into %s\n", len(rows), table)
	return nil
}

func runGet(ctx context.Context, client *sundial.Client, opts *sundial.Options, asJSON bool, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: sundialctl get <table> <key-json>")
	}
	key, err := recordFromJSON([]byte(args[1]))
	if err != nil {
		return err
	}
	res, err := client.Get(ctx, args[0], key, opts)
	if err != nil {
		return err
	}
	if len(res.Rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}
	if err := printTable(asJSON, res.Columns, res.Rows); err != nil {
		return err
	}
	if len(res.Vclock) > 0 {
		fmt.Printf("vclock: %s\n", hex.EncodeToString(res.Vclock))
	}
	return nil
}

func runDelete(ctx context.Context, client *sundial.Client, opts *sundial.Options, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	vclockHex := fs.String("vclock", "", "causal context from a prior get, hex encoded")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: sundialctl delete [-vclock hex] <table> <key-json>")
	}
	key, err := recordFromJSON([]byte(fs.Arg(1)))
	if err != nil {
		return err
	}
	if *vclockHex != "" {
		vc, err := hex.DecodeString(*vclockHex)
		if err != nil {
			return fmt.Errorf("parse vclock: %w", err)
		}
		opts = &sundial.Options{Timeout: opts.Timeout, Vclock: vc}
	}
	if err := client.Delete(ctx, fs.Arg(0), key, opts); err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}

func runKeys(ctx context.Context, client *sundial.Client, opts *sundial.Options, asJSON bool, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: sundialctl keys <table>")
	}
	keys, err := client.ListKeys(ctx, args[0], opts)
	if err != nil {
		return err
	}
	return printTable(asJSON, nil, keys)
}

// parseParams turns a JSON object into named query parameters, sorted
// by name so requests are stable.
func parseParams(s string) ([]sundial.Param, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]sundial.Param, 0, len(names))
	for _, name := range names {
		c, err := cellFromJSON(obj[name])
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}
		params = append(params, sundial.Param{Name: name, Value: c})
	}
	return params, nil
}

func readRows(src io.Reader) ([]sundial.Record, error) {
	rows := make([]sundial.Record, 0)
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		rec, err := recordFromJSON(text)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		rows = append(rows, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// recordFromJSON decodes one JSON array into a record. Numbers without
// a fraction become int64 cells, everything else double.
func recordFromJSON(data []byte) (sundial.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var arr []any
	if err := dec.Decode(&arr); err != nil {
		return nil, fmt.Errorf("parse JSON array: %w", err)
	}
	rec := make(sundial.Record, 0, len(arr))
	for i, v := range arr {
		c, err := cellFromJSON(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		rec = append(rec, c)
	}
	return rec, nil
}

func cellFromJSON(v any) (wire.Cell, error) {
	switch x := v.(type) {
	case nil:
		return wire.Null(), nil
	case bool:
		return wire.Bool(x), nil
	case string:
		return wire.Text(x), nil
	case json.Number:
		if n, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return wire.Int64(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return wire.Cell{}, fmt.Errorf("parse number %q: %w", x.String(), err)
		}
		return wire.Double(f), nil
	default:
		return wire.Cell{}, fmt.Errorf("unsupported JSON value of type %T", v)
	}
}

func printTable(asJSON bool, columns []string, rows []sundial.Record) error {
	if asJSON {
		out := struct {
			Columns []string `json:"columns,omitempty"`
			Rows    [][]any  `json:"rows"`
		}{Columns: columns, Rows: make([][]any, 0, len(rows))}
		for _, rec := range rows {
			vals := make([]any, 0, len(rec))
			for _, c := range rec {
				vals = append(vals, cellJSON(c))
			}
			out.Rows = append(out.Rows, vals)
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	if len(columns) > 0 {
		fmt.Println(strings.Join(columns, "\t"))
	}
	for _, rec := range rows {
		parts := make([]string, 0, len(rec))
		for _, c := range rec {
			parts = append(parts, formatCell(c))
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
	return nil
}

func cellJSON(c wire.Cell) any {
	v := c.Value()
	if b, ok := v.([]byte); ok {
		return hex.EncodeToString(b)
	}
	return v
}

func formatCell(c wire.Cell) string {
	switch c.Type() {
	case wire.CellNull:
		return ""
	case wire.CellInt64:
		n, _ := c.Int64()
		return strconv.FormatInt(n, 10)
	case wire.CellDouble:
		f, _ := c.Double()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case wire.CellBool:
		b, _ := c.Bool()
		return strconv.FormatBool(b)
	case wire.CellTimestamp:
		ts, _ := c.Timestamp()
		return ts.Format(time.RFC3339Nano)
	case wire.CellText:
		s, _ := c.Text()
		return s
	case wire.CellBlob:
		b, _ := c.Blob()
		return hex.EncodeToString(b)
	default:
		return c.String()
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "sundialctl: "+format+"\n", args...)
	os.Exit(1)
}

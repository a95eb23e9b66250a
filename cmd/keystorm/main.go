// Command keystorm is a command-line test driver for the paginated
// document core: it loads layout/undo settings, replays a plain-text
// script of editor commands against an app.EditorSession, and writes
// the resulting render buffer to a file for inspection. It is a
// harness around the core, not the host UI the core is designed to be
// embedded in.
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dshills/keystorm/internal/app"
	"github.com/dshills/keystorm/internal/config"
	"github.com/dshills/keystorm/internal/font"
	"github.com/dshills/keystorm/internal/renderer/encode"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		scriptPath  string
		outPath     string
		viewportY   float64
		viewportH   float64
		logLevel    string
		pretty      bool
		showVersion bool
	)

	pflag.StringVarP(&configPath, "config", "c", "", "path to a document settings TOML file")
	pflag.StringVarP(&scriptPath, "script", "s", "-", "path to a command script (\"-\" for stdin)")
	pflag.StringVarP(&outPath, "out", "o", "", "path to write the encoded render buffer (default: no buffer written)")
	pflag.Float64Var(&viewportY, "viewport-y", 0, "viewport top offset passed to Build")
	pflag.Float64Var(&viewportH, "viewport-height", 0, "viewport height passed to Build (0 = page height)")
	pflag.StringVarP(&logLevel, "log-level", "l", "info", "log level: debug, info, warn, error")
	pflag.BoolVar(&pretty, "pretty", false, "use zerolog's human-readable console writer instead of JSON lines")
	pflag.BoolVarP(&showVersion, "version", "v", false, "print version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Println("keystorm dev")
		return 0
	}

	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(logLevel),
		Output: os.Stderr,
		Prefix: "keystorm",
		Pretty: pretty,
	})

	settings, err := config.LoadDocumentSettings(configPath)
	if err != nil {
		logger.Error("loading document settings: %v", err)
		return 1
	}

	session := app.NewSession(settings.NewEditor()).WithLogger(logger)

	script, closeScript, err := openScript(scriptPath)
	if err != nil {
		logger.Error("opening script %s: %v", scriptPath, err)
		return 1
	}
	defer closeScript()

	if err := runScript(session, script, logger); err != nil {
		logger.Error("running script: %v", err)
		return 1
	}

	if viewportH <= 0 {
		viewportH = float64(session.PageHeight())
	}
	buf := session.Build(float32(viewportY), float32(viewportH))
	logger.Info(
		"built render buffer: %d u32 slot(s), %d f32 slot(s), %d text byte(s), %d style slot(s)",
		len(buf.U32()), len(buf.F32()), len(buf.Text()), len(buf.Style()),
	)

	if outPath == "" {
		return 0
	}
	out, err := os.Create(outPath)
	if err != nil {
		logger.Error("creating output %s: %v", outPath, err)
		return 1
	}
	defer out.Close()
	if err := writeBuffer(out, buf); err != nil {
		logger.Error("writing output %s: %v", outPath, err)
		return 1
	}
	return 0
}

func openScript(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// runScript interprets one command per non-blank, non-comment line.
// Unrecognized commands are logged and skipped rather than aborting
// the whole replay, matching the core's own "a failed command is a
// no-op, never a crash" contract.
func runScript(s *app.EditorSession, r io.Reader, logger *app.Logger) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := runLine(s, line, logger); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runLine(s *app.EditorSession, line string, logger *app.Logger) error {
	fields := strings.SplitN(line, " ", 2)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "insert":
		s.InsertText(unescape(arg))
	case "paragraph":
		s.InsertParagraph()
	case "backspace":
		s.DeleteBackward()
	case "delfwd":
		s.DeleteForward()
	case "move":
		dx, dy, extend, err := parseMove(arg)
		if err != nil {
			return fmt.Errorf("move %q: %w", arg, err)
		}
		s.MoveCursor(dx, dy, extend)
	case "setcursor":
		page, x, y, err := parsePoint(arg)
		if err != nil {
			return fmt.Errorf("setcursor %q: %w", arg, err)
		}
		s.SetCursor(page, x, y)
	case "selectto":
		page, x, y, err := parsePoint(arg)
		if err != nil {
			return fmt.Errorf("selectto %q: %w", arg, err)
		}
		s.SelectTo(page, x, y)
	case "selectall":
		s.SelectAll()
	case "clearselection":
		s.ClearSelection()
	case "undo":
		s.Undo()
	case "redo":
		s.Redo()
	case "format":
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("format %q: %w", arg, err)
		}
		s.FormatSelection(font.ID(id))
	default:
		logger.Warn("unrecognized script command: %s", cmd)
	}
	return nil
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func parseMove(arg string) (dx, dy int, extend bool, err error) {
	parts := strings.Fields(arg)
	if len(parts) != 3 {
		return 0, 0, false, fmt.Errorf("expected \"dx dy extend\"")
	}
	dx, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false, err
	}
	dy, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false, err
	}
	extend, err = strconv.ParseBool(parts[2])
	if err != nil {
		return 0, 0, false, err
	}
	return dx, dy, extend, nil
}

func parsePoint(arg string) (page int, x, y float32, err error) {
	parts := strings.Fields(arg)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected \"page x y\"")
	}
	page, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, err
	}
	xf, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return 0, 0, 0, err
	}
	yf, err := strconv.ParseFloat(parts[2], 32)
	if err != nil {
		return 0, 0, 0, err
	}
	return page, float32(xf), float32(yf), nil
}

// writeBuffer serializes the four render buffers as
// [u32 count][u32 data][u32 count][f32 data][u32 count][text bytes][u32 count][style data],
// all little-endian, so an offline tool can reread exactly what a host
// would have read from pointers in-process.
func writeBuffer(w io.Writer, buf *encode.Buffers) error {
	bw := bufio.NewWriter(w)

	if err := writeU32Slice(bw, buf.U32()); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(buf.F32()))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, buf.F32()); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(buf.Text()))); err != nil {
		return err
	}
	if _, err := bw.Write(buf.Text()); err != nil {
		return err
	}
	if err := writeU32Slice(bw, buf.Style()); err != nil {
		return err
	}
	return bw.Flush()
}

func writeU32Slice(w io.Writer, s []uint32) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, s)
}

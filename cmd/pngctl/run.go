package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/danmuck/pngctl/internal/config"
	"github.com/danmuck/pngctl/internal/logging"
	"github.com/danmuck/pngctl/internal/message"
	"github.com/danmuck/pngctl/internal/png"
	"github.com/danmuck/pngctl/internal/source"
	"github.com/rs/zerolog/log"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitCorrupt  = 2
	exitNotFound = 3
)

var errUsage = errors.New("usage")

const usage = `usage: pngctl [-config path] <command> [args]

commands:
  encode <input> <type> <message> [output]   hide message in a new chunk
  decode <input> [type]                      print a hidden message, or scan for candidates
  remove <input> <type> [output]             remove the first chunk of type
  print  <input>                             print every chunk payload as text
  chunks <input>                             list chunks with type flags

input is a local path or an http(s) url. without output, encode and remove
write back to the input path.
`

type cli struct {
	cfg    config.Config
	opts   source.Options
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pngctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "path to pngctl.toml (defaults to $"+config.EnvConfigPath+")")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "pngctl: %v\n", err)
		return exitFailure
	}
	logging.SetLevel(cfg.Log.Level)

	c := &cli{cfg: cfg, opts: cfg.SourceOptions(), stdout: stdout}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return exitFailure
	}

	err = c.dispatch(ctx, rest[0], rest[1:])
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "pngctl: %v\n\n%s", err, usage)
		return exitFailure
	}
	log.Debug().Err(err).Str("command", rest[0]).Msg("command failed")
	fmt.Fprintf(stderr, "pngctl: %v\n", err)
	return exitCode(err)
}

func (c *cli) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "encode":
		if len(args) < 3 || len(args) > 4 {
			return fmt.Errorf("%w: encode takes <input> <type> <message> [output]", errUsage)
		}
		return c.encode(ctx, args[0], args[1], args[2], optional(args, 3))
	case "decode":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("%w: decode takes <input> [type]", errUsage)
		}
		return c.decode(ctx, args[0], optional(args, 1))
	case "remove":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("%w: remove takes <input> <type> [output]", errUsage)
		}
		return c.remove(ctx, args[0], args[1], optional(args, 2))
	case "print":
		if len(args) != 1 {
			return fmt.Errorf("%w: print takes <input>", errUsage)
		}
		return c.print(ctx, args[0])
	case "chunks":
		if len(args) != 1 {
			return fmt.Errorf("%w: chunks takes <input>", errUsage)
		}
		return c.chunks(ctx, args[0])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func (c *cli) encode(ctx context.Context, input, typeText, msg, output string) error {
	// Reject the type before touching the network or disk.
	if _, err := message.ParseChunkType(typeText); err != nil {
		return err
	}
	in, err := source.Load(ctx, input, c.opts)
	if err != nil {
		return err
	}
	out, err := message.Encode(in.Png, typeText, msg)
	if err != nil {
		return err
	}
	return c.store(in, output, out)
}

func (c *cli) decode(ctx context.Context, input, typeText string) error {
	if typeText != "" {
		if _, err := message.ParseChunkType(typeText); err != nil {
			return err
		}
	}
	in, err := source.Load(ctx, input, c.opts)
	if err != nil {
		return err
	}
	if typeText != "" {
		text, err := message.Decode(in.Png, typeText)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, text)
		return nil
	}
	candidates, err := message.Scan(in.Png)
	if err != nil {
		return err
	}
	for _, cand := range candidates {
		fmt.Fprintf(c.stdout, "%s\t%s\n", cand.Type, cand.Message)
	}
	return nil
}

func (c *cli) remove(ctx context.Context, input, typeText, output string) error {
	if _, err := message.ParseChunkType(typeText); err != nil {
		return err
	}
	in, err := source.Load(ctx, input, c.opts)
	if err != nil {
		return err
	}
	out, removed, err := message.Remove(in.Png, typeText)
	if err != nil {
		return err
	}
	if err := c.store(in, output, out); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "removed %s chunk (%d bytes)\n", removed.Type(), removed.Length())
	return nil
}

func (c *cli) print(ctx context.Context, input string) error {
	in, err := source.Load(ctx, input, c.opts)
	if err != nil {
		return err
	}
	return message.Print(c.stdout, in.Png)
}

func (c *cli) chunks(ctx context.Context, input string) error {
	in, err := source.Load(ctx, input, c.opts)
	if err != nil {
		return err
	}
	return message.WriteList(c.stdout, message.List(in.Png))
}

func (c *cli) store(in source.Input, output string, out *png.Png) error {
	if output == "" && !c.cfg.Output.OverwriteInput {
		return fmt.Errorf("%w: output.overwrite_input is disabled", source.ErrNoOutputPath)
	}
	path, err := source.OutputPath(in, output)
	if err != nil {
		return err
	}
	if err := source.Store(path, out, c.opts); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("chunks", out.Len()).Msg("wrote png")
	return nil
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, png.ErrChunkNotFound), errors.Is(err, message.ErrNoMessages):
		return exitNotFound
	case errors.Is(err, message.ErrInvalidChunkType):
		return exitFailure
	case png.IsStructural(err):
		return exitCorrupt
	default:
		return exitFailure
	}
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

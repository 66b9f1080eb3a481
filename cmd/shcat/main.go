package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	humanize "github.com/dustin/go-humanize"
	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-multihash"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/ipfs/go-sharedcursor/buffer"
	"github.com/ipfs/go-sharedcursor/cursor"
	"github.com/ipfs/go-sharedcursor/frame"
)

var log = logging.Logger("sharedcursor/shcat")

// loadFile reads path into a pooled buffer. The caller owns the returned
// reference.
func loadFile(path string) (*buffer.Atomic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if st.Size() > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("file too large: %d bytes", st.Size())
	}

	b := buffer.Get(int(st.Size()))
	if _, err := io.ReadFull(f, b); err != nil {
		buffer.NewAtomic(b, buffer.Pooled()).Release()
		return nil, fmt.Errorf("reading file: %w", err)
	}
	log.Debugw("loaded file", "path", path, "size", len(b))
	return buffer.NewAtomic(b, buffer.Pooled()), nil
}

// openCursor returns a cursor owning the only reference to the file.
func openCursor(cctx *cli.Context) (*cursor.AtomicCursor, error) {
	if cctx.NArg() != 1 {
		return nil, errors.New("expected exactly one file argument")
	}
	a, err := loadFile(cctx.Args().First())
	if err != nil {
		return nil, err
	}
	defer a.Release()
	return cursor.NewAtomic(a), nil
}

func parseWhence(whence string, offset int64) (cursor.SeekFrom, error) {
	switch whence {
	case "start":
		if offset < 0 {
			return cursor.SeekFrom{}, cursor.ErrNegativeOffset
		}
		return cursor.Start(uint64(offset)), nil
	case "end":
		return cursor.End(offset), nil
	case "current":
		return cursor.Current(offset), nil
	default:
		return cursor.SeekFrom{}, fmt.Errorf("unknown whence %q", whence)
	}
}

func catAction(cctx *cli.Context) (err error) {
	s, err := parseWhence(cctx.String("whence"), cctx.Int64("offset"))
	if err != nil {
		return err
	}
	c, err := openCursor(cctx)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, c.Close())
	}()

	if _, err := c.SeekTo(s); err != nil {
		return fmt.Errorf("seeking to %s: %w", s, err)
	}

	w := cctx.App.Writer
	if limit := cctx.Int64("limit"); limit >= 0 {
		if _, err := io.CopyN(w, c, limit); err != nil && err != io.EOF {
			return err
		}
		return nil
	}
	_, err = c.WriteTo(w)
	return err
}

func sumAction(cctx *cli.Context) (err error) {
	parts := cctx.Int("parts")
	if parts < 1 {
		return fmt.Errorf("--parts must be positive, got %d", parts)
	}
	base, err := openCursor(cctx)
	if err != nil {
		return err
	}

	cursors := []*cursor.AtomicCursor{base}
	defer func() {
		for _, c := range cursors {
			err = multierr.Append(err, c.Close())
		}
	}()
	for len(cursors) < parts {
		f, err := base.Fork()
		if err != nil {
			return err
		}
		cursors = append(cursors, f)
	}

	size := base.Len()
	chunk := (size + parts - 1) / parts
	for i, c := range cursors {
		if _, err := c.SeekTo(cursor.Start(uint64(i * chunk))); err != nil {
			return err
		}
	}

	lines := make([]string, parts)
	var g errgroup.Group
	for i, c := range cursors {
		i, c := i, c
		g.Go(func() error {
			view := c.Bytes()
			n := min(chunk, len(view))
			mh, err := multihash.Sum(view[:n], multihash.SHA2_256, -1)
			if err != nil {
				return err
			}
			if err := c.Consume(n); err != nil {
				return err
			}
			lines[i] = fmt.Sprintf("%d\t%s\t%s", i, humanize.Bytes(uint64(n)), mh.B58String())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, l := range lines {
		fmt.Fprintln(cctx.App.Writer, l)
	}
	return nil
}

func framesAction(cctx *cli.Context) (err error) {
	c, err := openCursor(cctx)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, c.Close())
	}()

	r := frame.NewReader(c,
		frame.MaxFrameSize(cctx.Uint64("max-size")),
		frame.ZeroLengthAsEOF(cctx.Bool("zero-eof")),
	)
	w := cctx.App.Writer
	for i := 0; ; i++ {
		if cctx.Bool("nodes") {
			id, data, err := r.ReadNode()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			fmt.Fprintf(w, "%s\t%s\n", id, humanize.Bytes(uint64(len(data))))
			continue
		}

		data, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		fmt.Fprintf(w, "%d\t%d\n", i, len(data))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shcat",
		Usage: "read files through shared cursors",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(cctx *cli.Context) error {
			if cctx.Bool("debug") {
				logging.SetAllLoggers(logging.LevelDebug)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "cat",
				Usage:     "seek into a file and print the bytes after it",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "offset",
						Usage: "seek offset relative to --whence",
					},
					&cli.StringFlag{
						Name:  "whence",
						Value: "start",
						Usage: "one of start, end or current",
					},
					&cli.Int64Flag{
						Name:  "limit",
						Value: -1,
						Usage: "maximum number of bytes to print, negative for all",
					},
				},
				Action: catAction,
			},
			{
				Name:      "sum",
				Usage:     "hash equal ranges of a file concurrently",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "parts",
						Value: 4,
					},
				},
				Action: sumAction,
			},
			{
				Name:      "frames",
				Usage:     "list the length-delimited frames of a file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "nodes",
						Usage: "decode each frame as a CID followed by block data",
					},
					&cli.BoolFlag{
						Name:  "zero-eof",
						Usage: "stop at a zero length frame",
					},
					&cli.Uint64Flag{
						Name:  "max-size",
						Value: frame.DefaultMaxFrameSize,
					},
				},
				Action: framesAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Stderr.WriteString("\n")
		os.Exit(1)
	}
}

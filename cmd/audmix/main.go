// SPDX-License-Identifier: EPL-2.0

// Command audmix decodes audio files and mixes them into one 16-bit WAV file,
// optionally streaming the mix as L16 over RTP.
//
// Usage:
//
//	audmix [-rate 44100] [-channels 2] [-frames 1024] [-o mix.wav] [-rtp host:port] [-v] <input>...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/formats/mp3"
	"github.com/ik5/audmix/formats/vorbis"
	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/internal/softengine"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/pcm"
	"github.com/ik5/audmix/rtpaudio"
)

type options struct {
	rate     float64
	channels int
	frames   int
	output   string
	rtpAddr  string
	verbose  bool
	inputs   []string
}

func parseFlags() options {
	var opts options

	flag.Float64Var(&opts.rate, "rate", 44100, "mix sample rate in Hz")
	flag.IntVar(&opts.channels, "channels", 2, "mix channel count")
	flag.IntVar(&opts.frames, "frames", 1024, "frames per render block")
	flag.StringVar(&opts.output, "o", "mix.wav", "output WAV file")
	flag.StringVar(&opts.rtpAddr, "rtp", "", "also stream the mix as L16 RTP to host:port")
	flag.BoolVar(&opts.verbose, "v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <input.{wav|aif|aiff|mp3|ogg}>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.inputs = flag.Args()

	return opts
}

func newRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})

	return reg
}

// inputID names an input after its file, adding a suffix when two files share
// a base name.
func inputID(path string, seen map[string]int) string {
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	seen[id]++
	if n := seen[id]; n > 1 {
		id = fmt.Sprintf("%s#%d", id, n)
	}

	return id
}

// openInputs decodes every input concurrently. The returned func closes the
// readers and their files; on error everything opened so far is closed.
func openInputs(ctx context.Context, reg *audio.Registry, paths []string, target pcm.Format) (map[string]*audio.Reader, func(), error) {
	readers := make([]*audio.Reader, len(paths))
	files := make([]*os.File, len(paths))

	closeAll := func() {
		for i := range paths {
			if readers[i] != nil {
				readers[i].Close()
			}
			if files[i] != nil {
				files[i].Close()
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			dec, ok := reg.Get(ext)
			if !ok {
				return fmt.Errorf("%s: unsupported format %q (known: %s)", path, ext, strings.Join(reg.Formats(), ", "))
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			files[i] = f

			src, err := dec.Decode(f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			r, err := audio.NewReader(src, target)
			if err != nil {
				src.Close()
				return fmt.Errorf("%s: %w", path, err)
			}

			readers[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		closeAll()
		return nil, nil, err
	}

	seen := make(map[string]int, len(paths))
	inputs := make(map[string]*audio.Reader, len(paths))
	for i, path := range paths {
		inputs[inputID(path, seen)] = readers[i]
	}

	return inputs, closeAll, nil
}

func run(ctx context.Context, opts options, log *logrus.Entry) error {
	if len(opts.inputs) == 0 {
		return errors.New("no inputs given")
	}

	engine := softengine.New(softengine.WithLogger(log.WithField("component", "softengine")))

	cfg := mixer.DefaultConfig(opts.rate, opts.channels)
	cfg.MaximumFrameCount = opts.frames
	cfg.Logger = log.WithField("component", "mixer")

	sess, err := mixer.New(engine, cfg)
	if err != nil {
		return err
	}

	inputs, closeInputs, err := openInputs(ctx, newRegistry(), opts.inputs, sess.Format())
	if err != nil {
		return err
	}
	defer closeInputs()

	out, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	w, err := wav.NewWriter(out, sess.Format())
	if err != nil {
		return err
	}

	sinks := []mixer.Sink{w.Sink()}

	var sender *rtpaudio.Sender
	if opts.rtpAddr != "" {
		conn, err := net.Dial("udp", opts.rtpAddr)
		if err != nil {
			return err
		}
		defer conn.Close()

		pcfg, err := rtpaudio.DefaultPacketizerConfig()
		if err != nil {
			return err
		}

		pk, err := rtpaudio.NewPacketizer(sess.Format(), pcfg)
		if err != nil {
			return err
		}

		sender = rtpaudio.NewSender(conn, pk, log.WithField("component", "rtpaudio"))
		sinks = append(sinks, sender)
	}
	sess.SetSink(mixer.Sinks(sinks...))

	blocks, err := audmix.Bounce(ctx, sess, inputs, audmix.WithLogger(log))
	if err != nil {
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}
	if err := w.Err(); err != nil {
		return err
	}

	fields := logrus.Fields{
		"output": opts.output,
		"blocks": blocks,
		"frames": w.Frames(),
	}
	if sender != nil {
		fields["packets"] = sender.Packets()
		if err := sender.Err(); err != nil {
			log.WithError(err).Warn("RTP stream incomplete")
		}
	}
	log.WithFields(fields).Info("Mix written")

	return nil
}

func main() {
	opts := parseFlags()

	logger := logrus.New()
	if opts.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logrus.NewEntry(logger).WithField("component", "audmix")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		log.WithError(err).Error("Mix failed")
		stop()
		os.Exit(1)
	}
}

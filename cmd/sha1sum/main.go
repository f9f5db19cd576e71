package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"git.scc.kit.edu/sdm/lsdf-sha1sum/report"
	"git.scc.kit.edu/sdm/lsdf-sha1sum/worker"
)

// stdinArg stands in for "-" during parsing. kingpin does not keep a lone
// "-" as a positional argument. It contains a NUL byte, so it cannot be a
// path.
const stdinArg = "\x00stdin"

var errReadFailed = errors.New("reading at least one input failed")

type commandLine struct {
	app *kingpin.Application

	files         *[]string
	configPath    *string
	concurrency   *int
	maxThroughput *int
	format        *string
	logLevel      *string
	logFormat     *string
}

func newCommandLine() *commandLine {
	app := kingpin.New("sha1sum", "Calculate sha1 sum of stdin or files.")
	app.Version("0.1.0")

	return &commandLine{
		app: app,

		files:         app.Arg("files", "The input files. Standard input is read if none are given and for '-'.").Strings(),
		configPath:    app.Flag("config", "Path to an optional configuration file.").Short('c').PlaceHolder("config.yaml").String(),
		concurrency:   app.Flag("concurrency", "Number of files digested in parallel. Output order is not affected.").Short('j').PlaceHolder("N").Int(),
		maxThroughput: app.Flag("max-throughput", "Maximum bytes per second read from all inputs together.").PlaceHolder("BYTES").Int(),
		format:        app.Flag("format", "Format of the output. text prints sha1sum compatible lines (the default). json prints JSON lines. table prints an ASCII table.").Short('f').Default("text").Enum(report.Formats...),
		logLevel:      app.Flag("log-level", "Log level (severity). All messages with lower severity are omitted.").Default("error").Enum("debug", "info", "warn", "error"),
		logFormat:     app.Flag("log-format", "Format of the log output. All formats print one message per line.").Default("text").Enum("text", "logfmt", "json"),
	}
}

func (c *commandLine) parse(args []string) (string, error) {
	rewritten := make([]string, len(args))
	for i, arg := range args {
		if arg == "-" {
			rewritten[i] = stdinArg
		} else {
			rewritten[i] = arg
		}
	}

	command, err := c.app.Parse(rewritten)
	if err != nil {
		return "", err
	}

	for i, file := range *c.files {
		if file == stdinArg {
			(*c.files)[i] = worker.StdinPath
		}
	}

	return command, nil
}

func main() {
	cmdLine := newCommandLine()
	kingpin.MustParse(cmdLine.parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	err := cmdLine.perform(ctx, os.Stdin, os.Stdout)
	stop()

	if err != nil {
		if mainErr, ok := err.(*MainError); ok {
			os.Exit(mainErr.ExitCode)
			return
		}
		os.Exit(1)
	}
}

var _ error = &MainError{}

type MainError struct {
	error
	ExitCode int
}

func (m *MainError) Cause() error {
	return m.error
}

type options struct {
	Files  []string
	Config *worker.Config
	Format string
}

func (c *commandLine) perform(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	logger := prepareLogger(*c.logLevel, *c.logFormat)

	opts, err := c.options(logger)
	if err != nil {
		return err
	}

	return run(ctx, opts, stdin, stdout)
}

// options merges the configuration file and the flags onto
// worker.DefaultConfig, flags take precedence.
func (c *commandLine) options(logger log.Interface) (*options, error) {
	config := worker.DefaultConfig.Clone()

	if len(*c.configPath) > 0 {
		file, err := os.Open(*c.configPath)
		if err != nil {
			logger.WithError(err).WithFields(log.Fields{
				"name": *c.configPath,
			}).Error("Encountered error while opening config file")

			return nil, &MainError{error: err, ExitCode: 2}
		}

		yamlConfig, err := prepareConfig(file, logger)
		if err != nil {
			return nil, err
		}
		config.Merge(&yamlConfig.Worker)
	}

	config.Merge(&worker.Config{
		Concurrency:   *c.concurrency,
		MaxThroughput: *c.maxThroughput,
		Logger:        logger,
	})

	return &options{
		Files:  *c.files,
		Config: config,
		Format: *c.format,
	}, nil
}

func run(ctx context.Context, opts *options, stdin io.Reader, stdout io.Writer) error {
	inputs := make([]worker.Input, 0, len(opts.Files))
	for _, path := range opts.Files {
		inputs = append(inputs, worker.PathInput(path))
	}
	if len(inputs) == 0 {
		inputs = append(inputs, worker.Input{
			Name: "-",
			Path: worker.StdinPath,
		})
	}

	reporter, err := report.New(opts.Format, stdout)
	if err != nil {
		return err
	}

	readFailed := false

	workr := worker.New(opts.Config, stdin)
	err = workr.Run(ctx, inputs, func(result *worker.Result) error {
		if result.Kind == worker.KindReadError {
			readFailed = true
		}

		return reporter.Report(result)
	})
	if err != nil {
		opts.Config.Logger.WithError(err).WithFields(log.Fields{}).
			Error("Encountered error while calculating hashsums")

		return err
	}

	err = reporter.Flush()
	if err != nil {
		return err
	}

	if readFailed {
		return &MainError{error: errReadFailed, ExitCode: 1}
	}

	return nil
}

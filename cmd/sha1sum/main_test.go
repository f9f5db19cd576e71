package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing/iotest"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"git.scc.kit.edu/sdm/lsdf-sha1sum/worker"
)

const abcSum = "a9993e364706816aba3e25717850c26c9cd0d89d"

var _ = Describe("run()", func() {
	var (
		dir    string
		stdout *bytes.Buffer
		opts   *options
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		opts = &options{
			Config: worker.DefaultConfig.Clone().Merge(&worker.Config{
				Logger: &log.Logger{
					Level:   log.FatalLevel,
					Handler: discard.New(),
				},
			}),
			Format: "text",
		}
	})

	It("should read the standard input when no files are given", func() {
		err := run(context.Background(), opts, strings.NewReader("abc"), stdout)

		Ω(err).ShouldNot(HaveOccurred())
		Ω(stdout.String()).Should(Equal(abcSum + "  -\n"))
	})

	It("should print the empty digest for empty standard input", func() {
		err := run(context.Background(), opts, strings.NewReader(""), stdout)

		Ω(err).ShouldNot(HaveOccurred())
		Ω(stdout.String()).Should(Equal("da39a3ee5e6b4b0d3255bfef95601890afd80709  -\n"))
	})

	It("should report a missing file and continue with the remaining files", func() {
		aPath := filepath.Join(dir, "a.txt")
		Ω(os.WriteFile(aPath, []byte("abc"), 0o644)).ShouldNot(HaveOccurred())
		missingPath := filepath.Join(dir, "missing.bin")
		opts.Files = []string{aPath, missingPath, aPath}

		err := run(context.Background(), opts, nil, stdout)
		Ω(err).ShouldNot(HaveOccurred())

		lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
		Ω(lines).Should(HaveLen(3))
		Ω(lines[0]).Should(Equal(abcSum + "  " + aPath))
		Ω(lines[1]).Should(HavePrefix("file read error: "))
		Ω(lines[1]).Should(ContainSubstring("missing.bin"))
		Ω(lines[2]).Should(Equal(abcSum + "  " + aPath))
	})

	It("should report directories as not being files", func() {
		opts.Files = []string{dir}

		err := run(context.Background(), opts, nil, stdout)

		Ω(err).ShouldNot(HaveOccurred())
		Ω(stdout.String()).Should(Equal("this is not a file: " + dir + "\n"))
	})

	It("should treat '-' as the standard input", func() {
		opts.Files = []string{"-"}

		err := run(context.Background(), opts, strings.NewReader("abc"), stdout)

		Ω(err).ShouldNot(HaveOccurred())
		Ω(stdout.String()).Should(Equal(abcSum + "  -\n"))
	})

	It("should return an exit code of 1 after a read error", func() {
		stdin := iotest.ErrReader(errors.New("broken pipe"))

		err := run(context.Background(), opts, stdin, stdout)

		var mainErr *MainError
		Ω(errors.As(err, &mainErr)).Should(BeTrue())
		Ω(mainErr.ExitCode).Should(Equal(1))
		Ω(stdout.String()).Should(HavePrefix("read error: -: "))
	})

	It("should reject unknown output formats", func() {
		opts.Format = "xml"

		err := run(context.Background(), opts, strings.NewReader("abc"), stdout)

		Ω(err).Should(HaveOccurred())
	})
})

var _ = Describe("readConfig()", func() {
	writeConfig := func(content string) *os.File {
		path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		Ω(os.WriteFile(path, []byte(content), 0o644)).ShouldNot(HaveOccurred())

		file, err := os.Open(path)
		Ω(err).ShouldNot(HaveOccurred())
		DeferCleanup(file.Close)

		return file
	}

	It("should decode the worker configuration", func() {
		config, err := readConfig(writeConfig("worker:\n  concurrency: 4\n  maxthroughput: 1048576\n"))

		Ω(err).ShouldNot(HaveOccurred())
		Ω(config.Worker.Concurrency).Should(Equal(4))
		Ω(config.Worker.MaxThroughput).Should(Equal(1048576))
	})

	It("should accept an empty file", func() {
		config, err := readConfig(writeConfig(""))

		Ω(err).ShouldNot(HaveOccurred())
		Ω(config.Worker).Should(Equal(worker.Config{}))
	})

	It("should reject unknown fields", func() {
		_, err := readConfig(writeConfig("worker:\n  threads: 4\n"))

		Ω(err).Should(HaveOccurred())
	})
})

var _ = Describe("commandLine", func() {
	var (
		dir    string
		stdout *bytes.Buffer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
	})

	parse := func(args ...string) *commandLine {
		cmdLine := newCommandLine()
		_, err := cmdLine.parse(args)
		Ω(err).ShouldNot(HaveOccurred())
		return cmdLine
	}

	discardLogger := func() log.Interface {
		return &log.Logger{
			Level:   log.FatalLevel,
			Handler: discard.New(),
		}
	}

	Describe("parse()", func() {
		It("should keep a lone '-' as standard input", func() {
			cmdLine := parse("-")

			Ω(*cmdLine.files).Should(Equal([]string{"-"}))
		})

		It("should keep '-' between file arguments", func() {
			cmdLine := parse("a.txt", "-", "b.txt")

			Ω(*cmdLine.files).Should(Equal([]string{"a.txt", "-", "b.txt"}))
		})

		It("should accept no arguments", func() {
			cmdLine := parse()

			Ω(*cmdLine.files).Should(BeEmpty())
			Ω(*cmdLine.format).Should(Equal("text"))
		})

		It("should reject unknown formats", func() {
			_, err := newCommandLine().parse([]string{"--format", "xml"})

			Ω(err).Should(HaveOccurred())
		})
	})

	Describe("options()", func() {
		It("should use the default config without flags", func() {
			opts, err := parse().options(discardLogger())

			Ω(err).ShouldNot(HaveOccurred())
			Ω(opts.Config.Concurrency).Should(Equal(1))
			Ω(opts.Config.MaxThroughput).Should(Equal(0))
		})

		It("should merge flags into the worker config", func() {
			opts, err := parse("-j", "2", "--max-throughput", "1048576", "a.txt").options(discardLogger())

			Ω(err).ShouldNot(HaveOccurred())
			Ω(opts.Config.Concurrency).Should(Equal(2))
			Ω(opts.Config.MaxThroughput).Should(Equal(1048576))
			Ω(opts.Files).Should(Equal([]string{"a.txt"}))
		})

		It("should let flags take precedence over the config file", func() {
			configPath := filepath.Join(dir, "config.yaml")
			content := "worker:\n  concurrency: 4\n  maxthroughput: 2048\n"
			Ω(os.WriteFile(configPath, []byte(content), 0o644)).ShouldNot(HaveOccurred())

			opts, err := parse("--config", configPath, "-j", "3").options(discardLogger())

			Ω(err).ShouldNot(HaveOccurred())
			Ω(opts.Config.Concurrency).Should(Equal(3))
			Ω(opts.Config.MaxThroughput).Should(Equal(2048))
		})

		It("should return exit code 2 for a missing config file", func() {
			cmdLine := parse("--config", filepath.Join(dir, "nonexistent.yaml"))

			_, err := cmdLine.options(discardLogger())

			var mainErr *MainError
			Ω(errors.As(err, &mainErr)).Should(BeTrue())
			Ω(mainErr.ExitCode).Should(Equal(2))
		})

		It("should return exit code 2 for an invalid config file", func() {
			configPath := filepath.Join(dir, "config.yaml")
			Ω(os.WriteFile(configPath, []byte("worker:\n  threads: 4\n"), 0o644)).ShouldNot(HaveOccurred())

			_, err := parse("--config", configPath).options(discardLogger())

			var mainErr *MainError
			Ω(errors.As(err, &mainErr)).Should(BeTrue())
			Ω(mainErr.ExitCode).Should(Equal(2))
		})
	})

	Describe("perform()", func() {
		It("should digest the standard input without arguments", func() {
			err := parse().perform(context.Background(), strings.NewReader("abc"), stdout)

			Ω(err).ShouldNot(HaveOccurred())
			Ω(stdout.String()).Should(Equal(abcSum + "  -\n"))
		})

		It("should digest the standard input for '-'", func() {
			err := parse("-").perform(context.Background(), strings.NewReader("abc"), stdout)

			Ω(err).ShouldNot(HaveOccurred())
			Ω(stdout.String()).Should(Equal(abcSum + "  -\n"))
		})

		It("should report a missing file and continue with concurrent workers", func() {
			aPath := filepath.Join(dir, "a.txt")
			Ω(os.WriteFile(aPath, []byte("abc"), 0o644)).ShouldNot(HaveOccurred())
			missingPath := filepath.Join(dir, "missing.bin")

			err := parse("-j", "2", aPath, missingPath).perform(context.Background(), nil, stdout)
			Ω(err).ShouldNot(HaveOccurred())

			lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
			Ω(lines).Should(HaveLen(2))
			Ω(lines[0]).Should(Equal(abcSum + "  " + aPath))
			Ω(lines[1]).Should(HavePrefix("file read error: "))
			Ω(lines[1]).Should(ContainSubstring("missing.bin"))
		})
	})
})

package main

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"time"

	refsha1 "git.scc.kit.edu/sdm/lsdf-sha1sum/sha1"
)

// Reads the whole input into memory, then digests it with crypto/sha1 and the
// reference implementation and prints both results with their throughput.
func main() {
	var in io.Reader
	var name string

	if len(os.Args) == 1 || os.Args[1] == "-" {
		in = os.Stdin
		name = "-"
	} else {
		f, err := os.Open(os.Args[1])
		if err != nil {
			panic(err)
		}
		defer f.Close()

		in = f
		name = os.Args[1]
	}

	data, err := io.ReadAll(in)
	if err != nil {
		panic(err)
	}

	start := time.Now()
	stdSum := sha1.Sum(data)
	stdElapsed := time.Since(start)

	start = time.Now()
	refSum, err := refsha1.Digest(bytes.NewReader(data))
	if err != nil {
		panic(err)
	}
	refElapsed := time.Since(start)

	fmt.Printf("%x\t%s\tcrypto/sha1\t%s\t%.1f MiB/s\n", stdSum, name, stdElapsed, throughput(len(data), stdElapsed))
	fmt.Printf("%s\t%s\treference\t%s\t%.1f MiB/s\n", refSum, name, refElapsed, throughput(len(data), refElapsed))

	if refsha1.Sum(stdSum) != refSum {
		fmt.Fprintln(os.Stderr, "digests differ")
		os.Exit(1)
	}
}

func throughput(n int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(n) / (1024 * 1024) / elapsed.Seconds()
}

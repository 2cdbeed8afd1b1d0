package main

// tracegen generates deterministic block-address traces for driving
// pkg/cachecoh.Core outside of `go test` — the out-of-scope trace-replay
// front-end spec.md's Non-goals name consumes exactly this format. Each
// output line is "<op> <addr>", op one of R/W/F (read/write/flush), addr a
// decimal, block-aligned uint64.
//
// Usage:
//   go run ./tools/tracegen -n 1000000 -dist=zipf -seed=42 -out trace.txt
//
// Flags:
//   -n       number of accesses to generate (default 1e6)
//   -dist    distribution: "uniform" or "zipf" (default uniform)
//   -zipfs   Zipf s parameter (>1)  (default 1.2)
//   -zipfv   Zipf v parameter (>=1)  (default 1.0)
//   -block   block size in bytes, addresses are aligned to this (default 64)
//   -writep  fraction of accesses that are writes, in [0,1] (default 0.1)
//   -flushp  fraction of accesses that are flushes, in [0,1] (default 0.01)
//   -seed    RNG seed (default current time)
//   -out     output file (default stdout)

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

func main() {
	var (
		n = flag.Int("n", 1_000_000, "number of accesses to generate")
		dist = flag.String("dist", "uniform", "distribution: uniform or zipf")
		zipfS = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
		block = flag.Int("block", 64, "block size in bytes; generated addresses are aligned to it")
		writeP = flag.Float64("writep", 0.1, "fraction of accesses that are writes")
		flushP = flag.Float64("flushp", 0.01, "fraction of accesses that are flushes")
		seedVal = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if *block <= 0 {
		fmt.Fprintln(os.Stderr, "block must be > 0")
		os.Exit(1)
	}
	if *writeP < 0 || *writeP > 1 || *flushP < 0 || *flushP > 1 || *writeP+*flushP > 1 {
		fmt.Fprintln(os.Stderr, "writep/flushp must be in [0,1] and not sum past 1")
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(*seedVal))

	var genIndex func() uint64
	switch *dist {
	case "uniform":
		genIndex = rnd.Uint64
	case "zipf":
		if *zipfS <= 1.0 || *zipfV < 1 {
			fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
			os.Exit(1)
		}
		z := rand.NewZipf(rnd, *zipfS, *zipfV, ^uint64(0))
		genIndex = z.Uint64
	default:
		fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
		os.Exit(1)
	}

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()

	blockBytes := uint64(*block)
	for i := 0; i < *n; i++ {
		addr := genIndex() * blockBytes
		op := opFor(rnd.Float64(), *writeP, *flushP)
		fmt.Fprintf(w, "%c %d\n", op, addr)
	}
}

func opFor(roll, writeP, flushP float64) byte {
	switch {
	case roll < flushP:
		return 'F'
	case roll < flushP+writeP:
		return 'W'
	default:
		return 'R'
	}
}

// Command perft is a correctness and timing harness for goosemg's move
// generator: it drives Position.Perft/PerftDivide directly and, with
// -verify, checks the generator against the engine's known-good node
// counts instead of trusting a single ad-hoc run.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	eng "github.com/kshade/chessforge/goosemg"
)

type perftCase struct {
	name  string
	fen   string
	nodes []uint64 // nodes[i] is the expected count at depth i+1
}

// referenceCases mirrors the engine's authoritative perft equality table:
// startpos, Kiwipete, and two further Chess Programming Wiki positions
// exercising en passant (with no castling rights) and promotion-heavy
// tactics respectively.
var referenceCases = []perftCase{
	{"startpos", eng.FENStartPos, []uint64{20, 400, 8902, 197281, 4865609}},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		[]uint64{48, 2039, 97862, 4085603}},
	{"ep-castle", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		[]uint64{14, 191, 2812, 43238, 674624}},
	{"promotion", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		[]uint64{6, 264, 9467, 422333}},
}

type config struct {
	fen      string
	depth    int
	divide   bool
	repeat   int
	label    string
	cpuProf  string
	memProf  string
	verify   bool
	maxDepth int
}

func parseConfig() config {
	var c config
	flag.StringVar(&c.fen, "fen", eng.FENStartPos, "FEN string (defaults to initial position)")
	flag.IntVar(&c.depth, "depth", 0, "Perft depth (required unless -verify)")
	flag.BoolVar(&c.divide, "divide", false, "Print per-move node counts at root")
	flag.IntVar(&c.repeat, "repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	flag.StringVar(&c.label, "label", "", "Optional label prefix for one-line output")
	flag.StringVar(&c.cpuProf, "cpuprofile", "", "Write CPU profile to file during run")
	flag.StringVar(&c.memProf, "memprofile", "", "Write heap profile to file after run")
	flag.BoolVar(&c.verify, "verify", false, "Check move generator against known perft node counts and exit")
	flag.IntVar(&c.maxDepth, "verify-max-depth", 4, "Deepest ply checked per position under -verify")
	flag.Parse()
	return c
}

func main() {
	cfg := parseConfig()

	if cfg.verify {
		if ok := runVerify(cfg.maxDepth); !ok {
			os.Exit(1)
		}
		return
	}

	if cfg.depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0 (or pass -verify)")
		os.Exit(2)
	}

	board, err := eng.ParseFEN(cfg.fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}

	if cfg.divide {
		printDivide(board, cfg.depth)
		return
	}

	stopProfile, err := startCPUProfile(cfg.cpuProf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	defer stopProfile()

	nodes, elapsed := timedPerft(board, cfg.depth, cfg.repeat)
	printSummary(cfg.label, cfg.depth, nodes, elapsed)

	if err := writeHeapProfile(cfg.memProf); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
}

// runVerify walks every reference position to min(maxDepth, len(expected))
// and reports every mismatch; it exists so a generator regression fails
// loudly instead of needing a hand-run depth-5 startpos check each time.
func runVerify(maxDepth int) bool {
	allOK := true
	for _, tc := range referenceCases {
		board, err := eng.ParseFEN(tc.fen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: ParseFEN error: %v\n", tc.name, err)
			allOK = false
			continue
		}
		limit := maxDepth
		if limit > len(tc.nodes) {
			limit = len(tc.nodes)
		}
		for d := 1; d <= limit; d++ {
			got := eng.Perft(board, d)
			want := tc.nodes[d-1]
			if got != want {
				fmt.Printf("FAIL %-10s depth=%d got=%d want=%d\n", tc.name, d, got, want)
				allOK = false
				continue
			}
			fmt.Printf("ok   %-10s depth=%d nodes=%d\n", tc.name, d, got)
		}
	}
	return allOK
}

func printDivide(board *eng.Board, depth int) {
	div := eng.PerftDivide(board, depth)
	type kv struct {
		m eng.Move
		n uint64
	}
	arr := make([]kv, 0, len(div))
	var sum uint64
	for m, n := range div {
		arr = append(arr, kv{m, n})
		sum += n
	}
	sort.Slice(arr, func(i, j int) bool { return arr[i].m.String() < arr[j].m.String() })
	for _, x := range arr {
		fmt.Printf("%s: %d\n", x.m.String(), x.n)
	}
	fmt.Printf("Total: %d\n", sum)
}

func timedPerft(board *eng.Board, depth, repeat int) (totalNodes uint64, elapsed time.Duration) {
	start := time.Now()
	for i := 0; i < repeat; i++ {
		totalNodes += eng.Perft(board, depth)
	}
	return totalNodes, time.Since(start)
}

func printSummary(label string, depth int, nodes uint64, elapsed time.Duration) {
	nps := float64(nodes) / elapsed.Seconds()
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", label, depth, nodes, elapsed, nps)
}

func startCPUProfile(path string) (stop func(), err error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating cpuprofile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func writeHeapProfile(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating memprofile: %w", err)
	}
	defer f.Close()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	return nil
}

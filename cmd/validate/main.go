// Command validate runs the HSDA engine offline over a volume fixture and
// checks the refined grid against the engine's output contract: untouched
// non-candidates, decision overrides, summary bookkeeping, and determinism
// across worker counts.
//
// Usage:
//
//	go run ./cmd/validate -volume data/mock/volume_ktlx_20240426.json
//
// Files ending in .zst are read as zstd-compressed volumes.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
	"github.com/couchcryptid/storm-data-hsda/internal/hsda"
	"github.com/couchcryptid/storm-data-hsda/internal/sounding"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	volumePath := flag.String("volume", "", "path to a volume fixture (.json or .json.zst)")
	tablePath := flag.String("table", "", "optional membership table JSON; defaults to the built-in table")
	codes := flag.String("hail-codes", "9", "comma-separated hail candidate codes")
	workers := flag.Int("workers", 4, "parallel workers for the main run")
	flag.Parse()

	if *volumePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*volumePath, *tablePath, *codes, *workers); code != 0 {
		os.Exit(code)
	}
}

func run(volumePath, tablePath, codeList string, workers int) int {
	fmt.Println("=== HSDA Fixture Validation ===")
	fmt.Println()

	msg, err := loadVolume(volumePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load volume: %v\n", err)
		return 1
	}
	set, err := loadTable(tablePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load table: %v\n", err)
		return 1
	}
	hailCodes, err := parseCodes(codeList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	resolver := sounding.NewResolver(sounding.NewCache(sounding.DefaultWindow, 1))
	thresholds, source, err := resolver.Resolve(msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: resolve sounding: %v\n", err)
		return 1
	}
	vol, err := msg.ToVolume()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: build volume: %v\n", err)
		return 1
	}

	consts := hsda.DefaultConstants(thresholds)
	consts.HailCodes = hailCodes
	if msg.DZDROffset != nil {
		consts.DZDROffset = *msg.DZDROffset
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFakeClockAt(msg.ScanTime)
	engine := hsda.NewEngine(set, hsda.WithWorkers(workers), hsda.WithLogger(logger), hsda.WithClock(clock))
	serial := hsda.NewEngine(set, hsda.WithWorkers(1), hsda.WithLogger(logger), hsda.WithClock(clock))

	res, err := engine.Classify(vol, consts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: classify: %v\n", err)
		return 1
	}
	serialRes, err := serial.Classify(vol, consts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: classify (serial): %v\n", err)
		return 1
	}

	phases := []*phase{
		validateNonCandidates(vol, res, hailCodes),
		validateCandidates(vol, res, hailCodes),
		validateOverrides(vol, res),
		validateSummary(res),
		validateDeterminism(res, serialRes),
	}

	fmt.Printf("Volume: %s (%s, %s)\n", msg.VolumeID, msg.Station, msg.ScanTime.Format(time.RFC3339))
	fmt.Printf("Sounding: -25C=%.3f km, 0C=%.3f km (source=%s)\n", thresholds.WBTMinus25C, thresholds.WBT0C, source)
	fmt.Println()

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	s := res.Summary
	fmt.Println()
	fmt.Printf("Candidates: %d, classified: %d, skipped: %d, failed: %d\n", s.Candidates, s.Classified, s.Skipped, s.Failed)
	fmt.Printf("By size: small=%d, large=%d, giant=%d (mean top score %.3f)\n",
		s.BySize[0], s.BySize[1], s.BySize[2], s.MeanScore)
	fmt.Printf("Status: %s\n", s.Status)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Loading ──

func loadVolume(path string) (domain.VolumeMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.VolumeMessage{}, err
	}
	headers := map[string]string{}
	if strings.HasSuffix(path, ".zst") {
		headers[domain.HeaderContentEncoding] = domain.EncodingZstd
	}
	return domain.ParseVolumeMessage(domain.RawEvent{Value: data, Headers: headers})
}

func loadTable(path string) (*hsda.MembershipSet, error) {
	if path == "" {
		return hsda.DefaultMembershipSet(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return hsda.LoadMembershipSet(f)
}

func parseCodes(s string) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var c int
		if _, err := fmt.Sscanf(part, "%d", &c); err != nil {
			return nil, fmt.Errorf("invalid hail code %q", part)
		}
		codes = append(codes, c)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no hail codes given")
	}
	return codes, nil
}

// ── Phases ──

func isCandidate(code int, hailCodes []int) bool {
	for _, c := range hailCodes {
		if code == c {
			return true
		}
	}
	return false
}

func validateNonCandidates(vol *domain.Volume, res *hsda.Result, hailCodes []int) *phase {
	p := &phase{name: "Non-candidates unchanged"}
	for i, in := range vol.Classification {
		if isCandidate(in, hailCodes) {
			continue
		}
		if got := res.Classification[i]; got != in {
			p.errorf("voxel %d: code %d changed to %d", i, in, got)
		}
	}
	return p
}

func validateCandidates(vol *domain.Volume, res *hsda.Result, hailCodes []int) *phase {
	p := &phase{name: "Candidates refined or skipped"}
	seen := make(map[int]bool, len(res.Voxels))
	for _, v := range res.Voxels {
		seen[v.Index] = true
		got := res.Classification[v.Index]
		switch v.Status {
		case hsda.StatusClassified:
			if got != int(v.Size.Code()) {
				p.errorf("voxel %d: classified as %s but grid holds %d", v.Index, v.Size, got)
			}
		default:
			if got != vol.Classification[v.Index] {
				p.errorf("voxel %d: %s but grid changed to %d", v.Index, v.Status, got)
			}
		}
	}
	for i, in := range vol.Classification {
		if isCandidate(in, hailCodes) && !seen[i] {
			p.errorf("voxel %d: candidate has no result", i)
		}
	}
	return p
}

func validateOverrides(vol *domain.Volume, res *hsda.Result) *phase {
	p := &phase{name: "Decision overrides respected"}
	zdr := vol.Field(domain.FieldDifferentialReflectivity)
	for _, v := range res.Voxels {
		if v.Status != hsda.StatusClassified {
			continue
		}
		if v.Scores.Max() < 0.6 && v.Size != hsda.Small {
			p.errorf("voxel %d: top score %.3f below 0.6 but size %s", v.Index, v.Scores.Max(), v.Size)
		}
		if zdr[v.Index] >= 2 && v.Size != hsda.Small {
			p.errorf("voxel %d: zdr %.2f dB but size %s", v.Index, zdr[v.Index], v.Size)
		}
		for h, s := range v.Scores {
			if s < 0 || s > 1 {
				p.errorf("voxel %d: score[%d]=%g outside [0,1]", v.Index, h, s)
			}
		}
	}
	return p
}

func validateSummary(res *hsda.Result) *phase {
	p := &phase{name: "Summary bookkeeping"}
	s := res.Summary
	if s.Candidates != len(res.Voxels) {
		p.errorf("candidates=%d but %d voxel results", s.Candidates, len(res.Voxels))
	}
	if s.Classified+s.Skipped+s.Failed != s.Candidates {
		p.errorf("classified+skipped+failed=%d, candidates=%d", s.Classified+s.Skipped+s.Failed, s.Candidates)
	}
	if got := s.BySize[0] + s.BySize[1] + s.BySize[2]; got != s.Classified {
		p.errorf("by-size total %d, classified %d", got, s.Classified)
	}
	want := hsda.RunNoHail
	if s.Classified > 0 {
		want = hsda.RunHailFound
	}
	if s.Status != want {
		p.errorf("status %s, want %s", s.Status, want)
	}
	return p
}

func validateDeterminism(parallel, serial *hsda.Result) *phase {
	p := &phase{name: "Parallel run matches serial run"}
	if diff := cmp.Diff(serial.Classification, parallel.Classification); diff != "" {
		p.errorf("classification differs (-serial +parallel):\n%s", diff)
	}
	if diff := cmp.Diff(serial.Voxels, parallel.Voxels); diff != "" {
		p.errorf("voxel results differ (-serial +parallel):\n%s", diff)
	}
	return p
}

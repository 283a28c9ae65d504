package hsda

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

// VoxelStatus is the outcome of scoring one hail candidate.
type VoxelStatus string

const (
	StatusClassified     VoxelStatus = "classified"
	StatusSkippedMissing VoxelStatus = "skipped_missing"
	StatusFailed         VoxelStatus = "failed"
)

// VoxelResult records what happened to one hail candidate. Band, Scores and
// Size are only meaningful when Status is StatusClassified.
type VoxelResult struct {
	Index  int
	Status VoxelStatus
	Band   Band
	Scores Scores
	Size   HailSize
	Reason string
}

// RunStatus distinguishes a run that refined hail from one that found none.
type RunStatus string

const (
	RunHailFound RunStatus = "hail_found"
	RunNoHail    RunStatus = "no_hail"
)

// Summary aggregates the voxel results of one run.
type Summary struct {
	RunID      string
	Status     RunStatus
	Candidates int
	Classified int
	Skipped    int
	Failed     int
	BySize     [NumSizes]int
	// MeanScore is the mean top aggregate over classified voxels, 0 when none.
	MeanScore float64
	Elapsed   time.Duration
}

// Result is the output of Engine.Classify.
type Result struct {
	Shape []int
	// Classification is a fresh grid; only classified candidates differ from
	// the input.
	Classification []int
	Voxels         []VoxelResult
	Summary        Summary
}

// Legend returns the human-readable legend of every output code.
func (r *Result) Legend() string {
	return domain.Legend
}

// Max returns the highest aggregate.
func (s Scores) Max() float64 {
	return max(s[0], s[1], s[2])
}

func summarize(runID string, voxels []VoxelResult, elapsed time.Duration) Summary {
	sum := Summary{RunID: runID, Candidates: len(voxels), Elapsed: elapsed}
	top := make([]float64, 0, len(voxels))
	for _, v := range voxels {
		switch v.Status {
		case StatusClassified:
			sum.Classified++
			sum.BySize[v.Size-1]++
			top = append(top, v.Scores.Max())
		case StatusSkippedMissing:
			sum.Skipped++
		case StatusFailed:
			sum.Failed++
		}
	}

	sum.Status = RunNoHail
	if sum.Classified > 0 {
		sum.Status = RunHailFound
		sum.MeanScore = stat.Mean(top, nil)
	}
	return sum
}

// ToWire converts the summary to its message form.
func (s Summary) ToWire() domain.Summary {
	bySize := make(map[string]int, NumSizes)
	for h := Small; h <= Giant; h++ {
		if n := s.BySize[h-1]; n > 0 {
			bySize[h.String()] = n
		}
	}
	return domain.Summary{
		RunID:      s.RunID,
		Status:     string(s.Status),
		Candidates: s.Candidates,
		Classified: s.Classified,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
		BySize:     bySize,
		MeanScore:  s.MeanScore,
		ElapsedMS:  float64(s.Elapsed) / float64(time.Millisecond),
	}
}

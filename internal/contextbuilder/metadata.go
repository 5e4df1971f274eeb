package contextbuilder

import (
	"math"
	"os"
	"path/filepath"

	"github.com/standardbeagle/mantic/internal/types"
)

const (
	bytesPerLineEstimate  = 40.0
	bytesPerTokenEstimate = 4.0
)

// attachFileMetadata stats each file under root and fills in size/line/
// token estimates and the on-disk modification time. A stat failure
// leaves Metadata nil for that file — a transient per-file omission, not
// a pipeline error.
func attachFileMetadata(root string, files []types.ScoredFile) {
	for i := range files {
		info, err := os.Stat(filepath.Join(root, files[i].Path))
		if err != nil {
			continue
		}
		files[i].Metadata = &types.FileMetadata{
			Bytes:        info.Size(),
			LineEstimate: estimateLines(info.Size()),
			TokenEstimate: estimateTokens(info.Size()),
			LastModified: info.ModTime(),
		}
	}
}

func estimateLines(size int64) int {
	if size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(size) / bytesPerLineEstimate))
}

func estimateTokens(size int64) int {
	if size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(size) / bytesPerTokenEstimate))
}

// attachConfidence computes the per-file confidence score from the
// result set's score distribution: clamp(0, 1, (score/median*0.6 +
// score/mean*0.4) / 2) (spec §4.9).
func attachConfidence(files []types.ScoredFile) {
	if len(files) == 0 {
		return
	}

	scores := make([]float64, len(files))
	sum := 0.0
	for i, f := range files {
		scores[i] = f.Score
		sum += f.Score
	}
	mean := sum / float64(len(scores))
	median := medianOf(scores)

	for i := range files {
		medianRatio := 0.0
		if median != 0 {
			medianRatio = files[i].Score / median
		}
		meanRatio := 0.0
		if mean != 0 {
			meanRatio = files[i].Score / mean
		}
		confidence := clamp01((medianRatio*0.6 + meanRatio*0.4) / 2)

		if files[i].Metadata == nil {
			files[i].Metadata = &types.FileMetadata{}
		}
		files[i].Metadata.Confidence = confidence
	}
}

func medianOf(values []float64) float64 {
	sorted := append([]float64{}, values...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

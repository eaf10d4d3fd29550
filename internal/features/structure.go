package features

import "github.com/standardbeagle/valknut-go/internal/types"

// FileStructureStats is the per-file input to the Structure feature
// schema: counts the pipeline already has after entity extraction, no
// re-parsing required.
type FileStructureStats struct {
	Path             string
	Directory        string
	FunctionCount    int
	ClassCount       int
	LinesOfCode      int
}

// DirectoryStructureFeatures rolls per-file stats up to one feature map
// per directory, publishing the fixed Structure schema plus a
// logistic-normalized variant of each raw count so downstream scoring
// gets a [0,1]-bounded signal without needing its own normalizer pass.
func DirectoryStructureFeatures(files []FileStructureStats) map[string]map[string]float64 {
	byDir := make(map[string][]FileStructureStats)
	for _, f := range files {
		byDir[f.Directory] = append(byDir[f.Directory], f)
	}

	out := make(map[string]map[string]float64, len(byDir))
	for dir, group := range byDir {
		var funcs, classes, loc float64
		for _, f := range group {
			funcs += float64(f.FunctionCount)
			classes += float64(f.ClassCount)
			loc += float64(f.LinesOfCode)
		}
		n := float64(len(group))
		filesPerDir := n
		functionsPerFile := safeDiv(funcs, n)
		classesPerFile := safeDiv(classes, n)

		out[dir] = map[string]float64{
			"files_per_directory":            filesPerDir,
			"functions_per_file":              functionsPerFile,
			"classes_per_file":                classesPerFile,
			"lines_of_code":                   loc,
			"files_per_directory_logistic":    logistic(filesPerDir, 20),
			"functions_per_file_logistic":     logistic(functionsPerFile, 10),
			"classes_per_file_logistic":       logistic(classesPerFile, 5),
			"lines_of_code_logistic":          logistic(loc, 500),
		}
	}
	return out
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// logistic centers a raw count around a "typical" midpoint and squashes
// it to (0,1), giving scoring a bounded structural-size signal without a
// corpus-wide normalization pass.
func logistic(x, midpoint float64) float64 {
	t := (x - midpoint) / midpoint
	// 1/(1+e^-t) via a dependency-free exp approximation (bounded inputs
	// here, so a short series is accurate enough for a scoring signal).
	return 1 / (1 + expApprox(-t))
}

func expApprox(x float64) float64 {
	if x > 20 {
		x = 20
	}
	if x < -20 {
		x = -20
	}
	// exp(x) via repeated squaring of exp(x/2^k), k chosen so the
	// remaining term is small enough for a short Taylor series.
	const k = 10
	x /= float64(int(1) << k)
	term := 1.0
	sum := 1.0
	for i := 1; i <= 6; i++ {
		term *= x / float64(i)
		sum += term
	}
	for i := 0; i < k; i++ {
		sum *= sum
	}
	return sum
}

// FileStructureFromEntities derives FileStructureStats from a file's
// extracted entities, counting functions/methods and classes/structs
// directly rather than re-deriving them from source text.
func FileStructureFromEntities(path, directory string, entities []types.CodeEntity, loc int) FileStructureStats {
	stats := FileStructureStats{Path: path, Directory: directory, LinesOfCode: loc}
	for _, e := range entities {
		switch e.EntityType {
		case types.EntityFunction, types.EntityMethod:
			stats.FunctionCount++
		case types.EntityClass, types.EntityStruct:
			stats.ClassCount++
		}
	}
	return stats
}

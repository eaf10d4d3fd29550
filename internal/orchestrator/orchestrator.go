// Package orchestrator implements the Stage Orchestrator capability
// (spec.md §4.9): it wires discovery, language adapters, feature
// extraction, scoring, clone detection, structure partitioning, coverage
// discovery, and result aggregation into one run, producing a single
// types.ComprehensiveAnalysisResult. Grounded in the teacher's
// internal/analysis/relationship_analyzer.go cooperative worker-pool
// pattern, generalized here from a hand-rolled channel semaphore to
// golang.org/x/sync's errgroup+semaphore so every concurrent stage shares
// one cancellation-aware idiom instead of each stage inventing its own.
package orchestrator

import (
	"context"
	"path"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/valknut-go/internal/aggregator"
	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/coverage"
	"github.com/standardbeagle/valknut-go/internal/discovery"
	"github.com/standardbeagle/valknut-go/internal/features"
	"github.com/standardbeagle/valknut-go/internal/lsh"
	"github.com/standardbeagle/valknut-go/internal/scoring"
	"github.com/standardbeagle/valknut-go/internal/structure"
	"github.com/standardbeagle/valknut-go/internal/types"
	"github.com/standardbeagle/valknut-go/internal/vctx"
	"github.com/standardbeagle/valknut-go/internal/verrors"
	"github.com/standardbeagle/valknut-go/internal/vlog"
)

// Options configures one analysis run.
type Options struct {
	Root            string
	Config          *config.Config
	ASTCacheEntries int
	BatchSize       int
}

// defaultBatchSize mirrors spec.md §5's default cooperative-batch size
// for file-level work.
const defaultBatchSize = 200

// Run executes the full pipeline over Root and returns the assembled
// result. A stage failure never aborts the run outright: it is recorded
// as a types.StageWarning and the run continues with that stage's
// contribution degraded (empty result, defaulted score), matching
// spec.md §7's partial-result contract. Run only returns a non-nil error
// when file discovery itself fails, since every later stage has a
// meaningful empty/degraded fallback but an unusable file list does not.
func Run(ctx context.Context, opts Options) (*types.ComprehensiveAnalysisResult, error) {
	start := time.Now()
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var warnings []types.StageWarning
	warn := func(stage string, err error) {
		vlog.Warnf("orchestrator: stage %q degraded: %v", stage, err)
		warnings = append(warnings, types.StageWarning{Stage: stage, Message: err.Error()})
	}

	files, err := discovery.Discover(opts.Root, cfg.Analysis)
	if err != nil {
		return nil, verrors.NewAnalysisError("discovery", err)
	}

	actx := vctx.New(vctx.Options{ASTCacheEntries: opts.ASTCacheEntries})

	units, fileWarnings := extractFiles(ctx, actx, files, batchSize)
	for _, w := range fileWarnings {
		warn("extract:"+w.path, w.err)
	}

	var allEntities []types.CodeEntity
	fileInputs := make([]structure.FileInput, 0, len(units))
	langByFile := make(map[string]string, len(units))
	for _, u := range units {
		fileInputs = append(fileInputs, structure.FileInput{Path: u.Path, Loc: u.LOC, Imports: u.Imports})
		langByFile[u.Path] = u.Language
		allEntities = append(allEntities, u.Entities...)
	}

	extensions := actx.Adapters.Extensions()
	graph := structure.BuildGraph(fileInputs, extensions)

	var impactResult *types.ImpactResult
	var graphFeatures map[string]features.GraphFeatures
	if cfg.Analysis.EnableGraphAnalysis {
		graphFeatures = features.ComputeGraphFeatures(graph)
		impactResult = &types.ImpactResult{PerEntity: graphFeaturesToPerEntityMap(graphFeatures), Enabled: true}
	}

	var structureResult *types.StructureResult
	if cfg.Analysis.EnableStructureAnalysis {
		partitions := structure.Partition(graph, cfg.Structure)
		structureResult = &types.StructureResult{Graph: graph, Partitions: partitions, Enabled: true}
	}

	dirFeatures := features.DirectoryStructureFeatures(buildDirStats(units))

	complexityByEntity, opportunities, docByEntity := computeEntityFeatures(ctx, actx, units, batchSize)
	cohesionPerEntity := computeCohesion(units)

	vectors := buildFeatureVectors(allEntities, complexityByEntity, graphFeatures, dirFeatures, cohesionPerEntity, docByEntity)

	if cfg.Analysis.EnableScoring && len(vectors) > 0 {
		normalizer := scoring.New(cfg.Scoring.NormalizationScheme)
		if err := normalizer.Fit(vectors); err != nil {
			warn("scoring", err)
		} else {
			normalizer.Normalize(vectors)
		}
	}

	categories, weights := scoringSchema(cfg.Scoring.Weights)
	scoresByID := make(map[string]types.ScoringResult, len(vectors))
	scores := make([]types.ScoringResult, 0, len(vectors))
	for _, v := range vectors {
		sr := scoring.ComposeResult(v, categories, weights)
		scoresByID[sr.EntityID] = sr
		scores = append(scores, sr)
	}

	var lshResult *types.LSHResult
	if cfg.Analysis.EnableLSHAnalysis {
		pairs := runLSH(actx, cfg.LSH, units)
		lshResult = &types.LSHResult{Pairs: pairs, Enabled: true}
	}

	var coverageResult *types.CoverageResult
	if cfg.Analysis.EnableCoverageAnalysis {
		discovered, err := coverage.Discover(cfg.Coverage)
		if err != nil {
			warn("coverage", err)
		} else {
			coverageResult = &types.CoverageResult{Discovered: discovered, Enabled: true}
		}
	}

	entityInfos := make([]aggregator.EntityInfo, 0, len(allEntities))
	for _, e := range allEntities {
		entityInfos = append(entityInfos, aggregator.EntityInfo{
			ID:          e.ID,
			FilePath:    e.FilePath,
			Language:    langByFile[e.FilePath],
			LinesOfCode: entityLOC(e),
		})
	}

	summary := aggregator.Summarize(entityInfos, opportunities, scores)
	health := aggregator.ComputeHealthMetrics(scores)
	healthTree := aggregator.BuildHealthTree(entityInfos, scoresByID, groupOpportunitiesByEntity(opportunities))
	qualityGate := aggregator.EvaluateQualityGate(cfg.QualityGate, health, summary)

	docOverall := 100.0
	if len(docByEntity) > 0 {
		sum := 0.0
		for _, v := range docByEntity {
			sum += v
		}
		docOverall = 100 * sum / float64(len(docByEntity))
	}

	result := &types.ComprehensiveAnalysisResult{
		AnalysisID:     runID(opts.Root, start),
		Timestamp:      start,
		ProcessingTime: time.Since(start),
		Summary:        summary,
		Structure:      structureResult,
		Complexity:     &types.ComplexityResult{PerEntity: complexityByEntity, Enabled: cfg.Analysis.EnableGraphAnalysis || true},
		Refactoring:    opportunities,
		Impact:         impactResult,
		LSH:            lshResult,
		Coverage:       coverageResult,
		Documentation:  &types.DocumentationResult{PerEntity: docByEntity, Overall: docOverall, Enabled: cfg.Analysis.EnableNamesAnalysis},
		Cohesion:       &types.CohesionResult{PerEntity: cohesionPerEntity, Enabled: true},
		HealthMetrics:  health,
		HealthTree:     healthTree,
		QualityGate:    &qualityGate,
		Warnings:       warnings,
		Partial:        ctx.Err() != nil,
		Scores:         scores,
	}
	return result, nil
}

func entityLOC(e types.CodeEntity) int {
	if e.LineRange == nil {
		return 0
	}
	n := e.LineRange.End - e.LineRange.Start + 1
	if n < 0 {
		return 0
	}
	return n
}

func groupOpportunitiesByEntity(opps []types.RefactoringOpportunity) map[string][]types.RefactoringOpportunity {
	out := make(map[string][]types.RefactoringOpportunity)
	for _, o := range opps {
		out[o.EntityID] = append(out[o.EntityID], o)
	}
	return out
}

func graphFeaturesToPerEntityMap(gf map[string]features.GraphFeatures) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(gf))
	for path, f := range gf {
		out[path] = map[string]float64{
			"fan_in":               f.FanIn,
			"fan_out":              f.FanOut,
			"in_cycle":             f.InCycle,
			"betweenness_approx":   f.BetweennessApprox,
			"closeness_centrality": f.ClosenessCentrality,
		}
	}
	return out
}

func buildDirStats(units []fileUnit) []features.FileStructureStats {
	out := make([]features.FileStructureStats, 0, len(units))
	for _, u := range units {
		out = append(out, features.FileStructureFromEntities(u.Path, path.Dir(u.Path), u.Entities, u.LOC))
	}
	return out
}

// scoringSchema maps the five fixed health categories spec.md §4.10 fixes
// onto the raw feature names each extractor publishes, and derives a
// per-category weight from config.ScoringWeights' five independent knobs
// (complexity/graph/structure/style/coverage don't line up 1:1 with the
// health categories, so structure absorbs both graph and structure
// weights, and style stands in for the documentation weight since no
// dedicated doc weight exists in config).
func scoringSchema(w config.ScoringWeights) (map[string][]string, scoring.CategoryWeights) {
	categories := map[string][]string{
		"complexity":      {"cyclomatic", "cognitive", "max_nesting_depth"},
		"maintainability": {"maintainability_index"},
		"technical_debt":  {"technical_debt_score"},
		"structure":       {"fan_in", "fan_out", "in_cycle", "betweenness_approx", "closeness_centrality", "functions_per_file", "classes_per_file"},
		"documentation":   {"has_doc_comment", "cohesion_score"},
	}
	weights := scoring.CategoryWeights{
		"complexity":      w.Complexity,
		"maintainability": w.Complexity,
		"technical_debt":  w.Complexity,
		"structure":        w.Structure + w.Graph,
		"documentation":    w.Style,
	}
	return categories, weights
}

func runID(root string, t time.Time) string {
	h := xxhash.Sum64String(root + t.String())
	return "vk-" + strconv.FormatUint(h, 16)
}

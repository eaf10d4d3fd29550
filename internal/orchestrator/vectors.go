package orchestrator

import (
	"path"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/features"
	"github.com/standardbeagle/valknut-go/internal/lsh"
	"github.com/standardbeagle/valknut-go/internal/types"
	"github.com/standardbeagle/valknut-go/internal/vctx"
)

// buildFeatureVectors assembles one FeatureVector per entity out of the
// per-entity (complexity, doc, cohesion) and per-file/per-directory
// (graph, structure) feature maps the earlier stages produced.
func buildFeatureVectors(
	entities []types.CodeEntity,
	complexityByEntity map[string]map[string]float64,
	graphFeatures map[string]features.GraphFeatures,
	dirFeatures map[string]map[string]float64,
	cohesionByEntity map[string]float64,
	docByEntity map[string]float64,
) []types.FeatureVector {
	vectors := make([]types.FeatureVector, 0, len(entities))
	for _, e := range entities {
		fv := types.NewFeatureVector(e.ID)
		for k, v := range complexityByEntity[e.ID] {
			fv.RawFeatures[k] = v
		}
		if gf, ok := graphFeatures[e.FilePath]; ok {
			fv.RawFeatures["fan_in"] = gf.FanIn
			fv.RawFeatures["fan_out"] = gf.FanOut
			fv.RawFeatures["in_cycle"] = gf.InCycle
			fv.RawFeatures["betweenness_approx"] = gf.BetweennessApprox
			fv.RawFeatures["closeness_centrality"] = gf.ClosenessCentrality
		}
		if sf, ok := dirFeatures[path.Dir(e.FilePath)]; ok {
			for k, v := range sf {
				fv.RawFeatures[k] = v
			}
		}
		fv.RawFeatures["cohesion_score"] = cohesionByEntity[e.ID]
		fv.RawFeatures["has_doc_comment"] = docByEntity[e.ID]
		vectors = append(vectors, *fv)
	}
	return vectors
}

// computeCohesion groups entities by directory and assigns every entity
// in a directory that directory's mean-to-centroid cohesion score (a
// group-level proxy, not a true per-entity similarity, since the
// per-entity term vector and centroid math in internal/features are
// package-private helpers behind the CohesionScore/RobustCentroid
// entry points).
func computeCohesion(units []fileUnit) map[string]float64 {
	byDir := make(map[string][]features.SymbolBag)
	for _, u := range units {
		dir := path.Dir(u.Path)
		for _, e := range u.Entities {
			referenced := make([]string, 0, len(u.Imports))
			for _, imp := range u.Imports {
				referenced = append(referenced, imp.Module)
			}
			byDir[dir] = append(byDir[dir], features.BuildSymbolBag(e, referenced))
		}
	}

	out := make(map[string]float64)
	for _, bags := range byDir {
		corpus := features.NewTfIdfCorpus()
		for _, bag := range bags {
			corpus.AddDocument(bag.Tokens)
		}
		vectors := make([]map[string]float64, len(bags))
		for i, bag := range bags {
			v := make(map[string]float64, len(bag.Tokens))
			for _, t := range bag.Tokens {
				v[t] += corpus.Weight(t, bag.Tokens)
			}
			vectors[i] = v
		}
		score := features.CohesionScore(vectors, 0.1)
		for _, bag := range bags {
			out[bag.EntityID] = score
		}
	}
	return out
}

// runLSH reparses each entity's own source snippet (per the
// NewParser()-on-interface design: whole-file byte-range descendant
// lookup is not available without a verified go-tree-sitter API, so every
// consumer that needs a types.CodeEntity's AST root reparses its
// standalone SourceCode) to obtain the AST root APTED verification needs,
// then runs the clone-detection engine.
func runLSH(actx *vctx.AnalysisContext, cfg config.LSHConfig, units []fileUnit) []types.ClonePairReport {
	engine := lsh.NewEngine(lsh.Config{
		NumHashes:              cfg.NumHashes,
		NumBands:               cfg.NumBands,
		ShingleSize:            cfg.ShingleSize,
		SimilarityThreshold:    cfg.SimilarityThreshold,
		MaxCandidates:          cfg.MaxCandidates,
		UseWeighted:            cfg.UseSemanticSimilarity,
		APTEDMaxNodes:          cfg.AptedMaxNodes,
		MinASTNodes:            cfg.MinASTNodes,
		APTEDMaxPairsPerEntity: cfg.AptedMaxPairsPerEntity,
	}, 2048)

	var inputs []lsh.EntityInput
	for _, u := range units {
		ext := path.Ext(u.Path)
		adapter, ok := actx.Adapters.For(ext)
		if !ok {
			continue
		}
		for _, e := range u.Entities {
			input := lsh.EntityInput{ID: e.ID, FilePath: e.FilePath, Name: e.Name, Source: e.SourceCode}
			if cfg.AptedMaxNodes > 0 {
				if root := parseEntityRoot(adapter, e); root != nil {
					input.ASTRoot = root
				}
			}
			inputs = append(inputs, input)
		}
	}
	return engine.DetectClones(inputs)
}

func parseEntityRoot(adapter interface {
	NewParser() *tree_sitter.Parser
}, e types.CodeEntity) *tree_sitter.Node {
	parser := adapter.NewParser()
	tree := parser.Parse([]byte(e.SourceCode), nil)
	if tree == nil {
		return nil
	}
	root := tree.RootNode()
	return &root
}

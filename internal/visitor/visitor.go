// Package visitor implements the Unified Visitor capability: a single
// iterative AST traversal per entity that dispatches to every registered
// detector, the way the teacher's UnifiedExtractor folds six separate
// tree walks into one to cut redundant cgo node-accessor calls. Detectors
// here are a closed, constructor-registered set rather than the teacher's
// single extractor struct, so feature extraction packages can each own
// their slice of the walk without recursion or repeated traversal.
package visitor

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/valknut-go/internal/types"
	"github.com/standardbeagle/valknut-go/internal/vlog"
)

// AstVisitable is the detector contract. Detectors are stateless between
// entities: Begin resets any per-entity state, Visit runs once per AST
// node in document order, End flushes accumulated features.
type AstVisitable interface {
	Name() string
	BeginEntity(entity *types.CodeEntity)
	VisitNode(node tree_sitter.Node, source []byte, entity *types.CodeEntity) map[string]float64
	EndEntity(entity *types.CodeEntity) map[string]float64
}

// stackFrame is one entry of the explicit traversal stack; reused across
// entities via Visitor.stack's capacity the way the teacher reuses
// scopeStack/loopStack slices instead of reallocating per call.
type stackFrame struct {
	node tree_sitter.Node
}

// Visitor runs every registered detector over one entity's subtree in a
// single pass.
type Visitor struct {
	detectors []AstVisitable
	stack     []stackFrame
}

// New returns a Visitor dispatching to the given detectors, in the order
// given, for every node visited.
func New(detectors ...AstVisitable) *Visitor {
	return &Visitor{
		detectors: detectors,
		stack:     make([]stackFrame, 0, 64),
	}
}

// Walk traverses root iteratively (explicit stack, no recursion),
// calling BeginEntity once, VisitNode once per node per detector, and
// EndEntity once per detector, merging same-named features across
// detectors by taking the max and logging the conflict — the composition
// rule every feature extractor relies on when two detectors happen to
// publish the same feature name.
func (v *Visitor) Walk(root tree_sitter.Node, source []byte, entity *types.CodeEntity) map[string]float64 {
	for _, d := range v.detectors {
		d.BeginEntity(entity)
	}

	merged := make(map[string]float64)
	v.stack = v.stack[:0]
	v.stack = append(v.stack, stackFrame{node: root})

	for len(v.stack) > 0 {
		frame := v.stack[len(v.stack)-1]
		v.stack = v.stack[:len(v.stack)-1]

		for _, d := range v.detectors {
			out := d.VisitNode(frame.node, source, entity)
			mergeInto(merged, out, d.Name())
		}

		childCount := int(frame.node.ChildCount())
		for i := childCount - 1; i >= 0; i-- {
			child := frame.node.Child(uint(i))
			if child != nil {
				v.stack = append(v.stack, stackFrame{node: *child})
			}
		}
	}

	for _, d := range v.detectors {
		out := d.EndEntity(entity)
		mergeInto(merged, out, d.Name())
	}
	return merged
}

// mergeInto folds src into dst, taking the max on key collisions and
// logging the conflict once per key per call.
func mergeInto(dst map[string]float64, src map[string]float64, detector string) {
	for k, v := range src {
		if existing, ok := dst[k]; ok {
			if v > existing {
				dst[k] = v
			}
			if v != existing {
				vlog.Debugf("visitor: feature %q conflict from detector %s (%.4f vs %.4f), keeping max", k, detector, v, existing)
			}
			continue
		}
		dst[k] = v
	}
}

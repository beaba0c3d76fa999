package index

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/xlab/treeprint"

	"github.com/openmcf/mcfls/resource"
)

// CallTree renders the transitive call graph rooted at a function
// resource. Cycles are marked "cycle" and targets without a backing
// file are marked "missing"; neither is recursed into.
func (ix *Index) CallTree(ctx context.Context, finder *resource.Finder, name string) (treeprint.Tree, error) {
	ref, ok := ix.classifier.resolver.Resolve(name)
	if !ok {
		return nil, errors.Errorf("invalid resource reference %q", name)
	}

	tree := treeprint.New()
	tree.SetValue(ref.String())

	loc, ok := finder.Find(ctx, ref.String(), resource.KindFunction)
	if !ok {
		return tree, errors.Errorf("function %q not found in any workspace root", ref)
	}

	ix.growTree(ctx, finder, tree, loc.Filename, map[string]bool{ref.String(): true})
	return tree, nil
}

func (ix *Index) growTree(ctx context.Context, finder *resource.Finder, node treeprint.Tree, filename string, seen map[string]bool) {
	dispatches := ix.Dispatches(filename)
	lines := make([]int, 0, len(dispatches))
	for line := range dispatches {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	for _, line := range lines {
		if ctx.Err() != nil {
			return
		}
		callee := dispatches[line]
		if seen[callee] {
			node.AddMetaBranch("cycle", callee)
			continue
		}
		seen[callee] = true

		loc, ok := finder.Find(ctx, callee, resource.KindFunction)
		if !ok {
			node.AddMetaBranch("missing", callee)
			continue
		}
		ix.growTree(ctx, finder, node.AddBranch(callee), loc.Filename, seen)
	}
}

package shader

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// ViewerTemplate is the annotated WGSL source of the viewer pipeline. It must be run through
// a PreProcessor before compilation.
//
//go:embed assets/viewer.wgsl
var ViewerTemplate string

// ViewerSource pre-processes ViewerTemplate and checks its declarations against the fixed
// bind group layouts.
//
// Returns:
//   - string: the compilable WGSL module with vs_main and fs_main
//   - error: an error if pre-processing fails or a binding is missing from either side
func ViewerSource() (string, error) {
	pp := NewPreProcessor()
	src, err := pp.Process(ViewerTemplate)
	if err != nil {
		return "", fmt.Errorf("viewer shader: %w", err)
	}
	if err := CheckLayout(pp.Declarations()); err != nil {
		return "", fmt.Errorf("viewer shader: %w", err)
	}
	return src, nil
}

// CheckLayout verifies that declarations cover exactly the bindings of the camera, model and
// material bind group layouts.
//
// Parameters:
//   - declarations: the group and provider annotations of a processed shader
//
// Returns:
//   - error: an error naming the first binding declared without a layout entry, or laid out without a declaration
func CheckLayout(declarations []Annotation) error {
	declared := map[[2]int]bool{}
	for _, d := range declarations {
		if d.Group == nil || d.Binding == nil {
			continue
		}
		slot := [2]int{*d.Group, *d.Binding}
		if !hasLayoutEntry(slot[0], slot[1]) {
			return fmt.Errorf("line %d: @group(%d) @binding(%d) has no layout entry", d.Line, slot[0], slot[1])
		}
		declared[slot] = true
	}
	for _, group := range []int{renderer.GroupCamera, renderer.GroupModel, renderer.GroupMaterial} {
		for _, entry := range renderer.BindGroupLayoutEntries(group) {
			if !declared[[2]int{group, int(entry.Binding)}] {
				return fmt.Errorf("@group(%d) @binding(%d) is not declared", group, entry.Binding)
			}
		}
	}
	return nil
}

func hasLayoutEntry(group, binding int) bool {
	for _, entry := range renderer.BindGroupLayoutEntries(group) {
		if int(entry.Binding) == binding {
			return true
		}
	}
	return false
}

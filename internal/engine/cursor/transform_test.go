package cursor

import "testing"

func TestTransformOffsetInsertBefore(t *testing.T) {
	edit := Edit{Range: Range{Start: 0, End: 0}, NewText: "Hello"}
	offset := TransformOffset(10, edit)
	if offset != 15 {
		t.Errorf("offset should shift right by 5, got %d", offset)
	}
}

func TestTransformOffsetInsertAfter(t *testing.T) {
	edit := Edit{Range: Range{Start: 20, End: 20}, NewText: "Hello"}
	offset := TransformOffset(10, edit)
	if offset != 10 {
		t.Errorf("offset should be unchanged, got %d", offset)
	}
}

func TestTransformOffsetDeleteBefore(t *testing.T) {
	edit := Edit{Range: Range{Start: 0, End: 5}, NewText: ""}
	offset := TransformOffset(10, edit)
	if offset != 5 {
		t.Errorf("offset should shift left by 5, got %d", offset)
	}
}

func TestTransformOffsetDeleteSpanning(t *testing.T) {
	edit := Edit{Range: Range{Start: 5, End: 15}, NewText: ""}
	offset := TransformOffset(10, edit)
	if offset != 5 {
		t.Errorf("offset should move to start of deletion, got %d", offset)
	}
}

func TestTransformOffsetReplace(t *testing.T) {
	edit := Edit{Range: Range{Start: 0, End: 5}, NewText: "0123456789"}
	offset := TransformOffset(10, edit)
	if offset != 15 {
		t.Errorf("expected offset 15, got %d", offset)
	}
}

func TestTransformOffsetStickyAtInsertPoint(t *testing.T) {
	edit := Edit{Range: Range{Start: 10, End: 10}, NewText: "Hello"}

	sticky := TransformOffsetSticky(10, edit, true)
	if sticky != 10 {
		t.Errorf("sticky offset should stay at 10, got %d", sticky)
	}

	notSticky := TransformOffsetSticky(10, edit, false)
	if notSticky != 15 {
		t.Errorf("non-sticky offset should move to 15, got %d", notSticky)
	}
}

func TestTransformSelection(t *testing.T) {
	sel := NewSelection(10, 20)
	edit := Edit{Range: Range{Start: 0, End: 0}, NewText: "Hello"}

	transformed := TransformSelection(sel, edit)
	if transformed.Anchor != 15 || transformed.Head != 25 {
		t.Errorf("selection should shift by 5, got [%d:%d]", transformed.Anchor, transformed.Head)
	}
}

func TestTransformSelectionWithBias(t *testing.T) {
	sel := NewCursorSelection(10)
	edit := Edit{Range: Range{Start: 10, End: 10}, NewText: "Hello"}

	transformed := TransformSelectionWithBias(sel, edit, true, false)
	if transformed.Anchor != 10 {
		t.Errorf("sticky anchor should stay at 10, got %d", transformed.Anchor)
	}
	if transformed.Head != 15 {
		t.Errorf("non-sticky head should move to 15, got %d", transformed.Head)
	}
}

func TestTransformRanges(t *testing.T) {
	ranges := []Range{{Start: 10, End: 20}, {Start: 30, End: 40}}
	edit := Edit{Range: Range{Start: 0, End: 0}, NewText: "Hello"}

	got := TransformRanges(ranges, edit)
	if got[0].Start != 15 || got[0].End != 25 {
		t.Errorf("first range should shift by 5, got [%d:%d)", got[0].Start, got[0].End)
	}
	if got[1].Start != 35 || got[1].End != 45 {
		t.Errorf("second range should shift by 5, got [%d:%d)", got[1].Start, got[1].End)
	}
}

func TestAdjustForDeletion(t *testing.T) {
	r := Range{Start: 5, End: 15}

	if got := AdjustForDeletion(3, r); got != 3 {
		t.Errorf("offset before deletion should be unchanged, got %d", got)
	}
	if got := AdjustForDeletion(10, r); got != 5 {
		t.Errorf("offset within deletion should move to start, got %d", got)
	}
	if got := AdjustForDeletion(20, r); got != 10 {
		t.Errorf("offset after deletion should shift left, got %d", got)
	}
}

func TestAdjustForInsertion(t *testing.T) {
	if got := AdjustForInsertion(5, 10, 5); got != 5 {
		t.Errorf("offset before insertion should be unchanged, got %d", got)
	}
	if got := AdjustForInsertion(10, 10, 5); got != 15 {
		t.Errorf("offset at insertion point should shift right, got %d", got)
	}
}

func TestComputeEditDelta(t *testing.T) {
	insert := Edit{Range: Range{Start: 0, End: 0}, NewText: "Hello"}
	if ComputeEditDelta(insert) != 5 {
		t.Error("insert delta should be 5")
	}

	del := Edit{Range: Range{Start: 0, End: 10}, NewText: ""}
	if ComputeEditDelta(del) != -10 {
		t.Error("delete delta should be -10")
	}

	replace := Edit{Range: Range{Start: 0, End: 5}, NewText: "HelloWorld"}
	if ComputeEditDelta(replace) != 5 {
		t.Error("replace delta should be 5 (10 - 5)")
	}
}

func TestEditsInReverseOrder(t *testing.T) {
	correct := []Edit{
		{Range: Range{Start: 30, End: 35}},
		{Range: Range{Start: 20, End: 25}},
		{Range: Range{Start: 10, End: 15}},
	}
	if !EditsInReverseOrder(correct) {
		t.Error("should be in reverse order")
	}

	incorrect := []Edit{
		{Range: Range{Start: 10, End: 15}},
		{Range: Range{Start: 20, End: 25}},
	}
	if EditsInReverseOrder(incorrect) {
		t.Error("should not be in reverse order")
	}
}

func TestSortEditsReverse(t *testing.T) {
	edits := []Edit{
		{Range: Range{Start: 10, End: 15}},
		{Range: Range{Start: 30, End: 35}},
		{Range: Range{Start: 20, End: 25}},
	}

	SortEditsReverse(edits)

	if edits[0].Range.Start != 30 || edits[1].Range.Start != 20 || edits[2].Range.Start != 10 {
		t.Error("edits should be sorted in descending order by start")
	}
}

func TestTransformDeleteEntireSelection(t *testing.T) {
	sel := NewSelection(10, 20)
	edit := Edit{Range: Range{Start: 10, End: 20}, NewText: ""}

	transformed := TransformSelection(sel, edit)
	if transformed.Anchor != 10 || transformed.Head != 10 {
		t.Errorf("expected collapsed at 10, got [%d:%d]", transformed.Anchor, transformed.Head)
	}
}

func TestTransformInsertAtCursor(t *testing.T) {
	sel := NewCursorSelection(10)
	edit := Edit{Range: Range{Start: 10, End: 10}, NewText: "Hello"}

	transformed := TransformSelection(sel, edit)
	if transformed.Head != 15 {
		t.Errorf("cursor should move to 15, got %d", transformed.Head)
	}
}

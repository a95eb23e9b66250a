package document

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dshills/keystorm/internal/engine/buffer"
	"github.com/dshills/keystorm/internal/font"
)

// EditResult reports the effect of a single Store mutation: which
// paragraphs must be relaid-out, and whether paragraphs were added or
// removed (which forces repagination even when no height changed,
// because page composition itself changed).
type EditResult struct {
	TouchedParagraphIDs []ID
	StructuralChange    bool
	NewCursorHint       Position
}

// Position names a byte offset local to a paragraph; it is the unit
// the store reports cursor hints in after an edit.
type Position struct {
	ParagraphID ID
	LocalOffset int64
}

func touching(ids ...ID) []ID {
	out := make([]ID, 0, len(ids))
	seen := make(map[ID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Store is the ordered, rope-backed paragraph store. Paragraph
// identity is by stable id, not by index; the index used for
// abs-offset resolution is rebuilt incrementally as edits land.
type Store struct {
	paragraphs  []*Para
	offsets     []int64 // offsets[i] = abs start offset of paragraphs[i]
	version     uint64
	defaultFont font.ID
}

// New creates a Store with a single empty paragraph.
func New(defaultFont font.ID) *Store {
	s := &Store{defaultFont: defaultFont}
	p := newPara(Paragraph(), "", nil, defaultFont)
	s.paragraphs = []*Para{p}
	s.offsets = []int64{0}
	return s
}

// DocumentVersion returns the monotonic counter incremented on every
// successful edit.
func (s *Store) DocumentVersion() uint64 { return s.version }

// Paragraphs returns the paragraphs in document order. Callers must
// not mutate the returned slice or its elements' exported state.
func (s *Store) Paragraphs() []*Para { return s.paragraphs }

// Text returns the full document text: paragraph texts joined by "\n".
func (s *Store) Text() string {
	var b strings.Builder
	for i, p := range s.paragraphs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Text())
	}
	return b.String()
}

// Len returns the length in bytes of Text().
func (s *Store) Len() int64 {
	if len(s.paragraphs) == 0 {
		return 0
	}
	last := len(s.paragraphs) - 1
	return s.offsets[last] + s.paragraphs[last].LenBytes()
}

func (s *Store) indexOf(id ID) int {
	for i, p := range s.paragraphs {
		if p.id == id {
			return i
		}
	}
	return -1
}

// ParagraphAt resolves an absolute document offset to a paragraph id
// and an offset local to that paragraph. Offsets exactly at a
// paragraph boundary resolve to the end of the earlier paragraph.
func (s *Store) ParagraphAt(abs int64) (ID, int64, error) {
	if abs < 0 || abs > s.Len() {
		return 0, 0, ErrInvalidOffset
	}
	// binary search for the last paragraph whose start offset <= abs
	i := sort.Search(len(s.offsets), func(i int) bool { return s.offsets[i] > abs }) - 1
	if i < 0 {
		i = 0
	}
	p := s.paragraphs[i]
	local := abs - s.offsets[i]
	if local > p.LenBytes() {
		local = p.LenBytes()
	}
	return p.id, local, nil
}

// TextOf returns the text of the paragraph with the given id.
func (s *Store) TextOf(id ID) (string, error) {
	i := s.indexOf(id)
	if i < 0 {
		return "", ErrParagraphNotFound
	}
	return s.paragraphs[i].Text(), nil
}

// AbsoluteOffsetOf resolves a paragraph-local offset to a document
// absolute offset.
func (s *Store) AbsoluteOffsetOf(id ID, local int64) (int64, error) {
	i := s.indexOf(id)
	if i < 0 {
		return 0, ErrParagraphNotFound
	}
	if local < 0 || local > s.paragraphs[i].LenBytes() {
		return 0, ErrInvalidOffset
	}
	return s.offsets[i] + local, nil
}

// ParaByID returns the paragraph and its index, or ok=false.
func (s *Store) ParaByID(id ID) (*Para, int, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, 0, false
	}
	return s.paragraphs[i], i, true
}

// rebuildOffsetsFrom recomputes offsets[from:] from the current
// paragraph lengths. Used after structural changes.
func (s *Store) rebuildOffsetsFrom(from int) {
	if from < 0 {
		from = 0
	}
	if from == 0 {
		s.offsets = make([]int64, len(s.paragraphs))
	}
	var start int64
	if from > 0 {
		start = s.offsets[from-1] + s.paragraphs[from-1].LenBytes() + 1
	}
	for i := from; i < len(s.paragraphs); i++ {
		s.offsets[i] = start
		start += s.paragraphs[i].LenBytes() + 1
	}
}

// shiftOffsetsAfter adds delta to every paragraph start offset after index i.
func (s *Store) shiftOffsetsAfter(i int, delta int64) {
	for j := i + 1; j < len(s.offsets); j++ {
		s.offsets[j] += delta
	}
}

func validUTF8Boundary(s string, at int64) bool {
	if at < 0 || at > int64(len(s)) {
		return false
	}
	if at == int64(len(s)) || at == 0 {
		return true
	}
	return utf8.RuneStart(s[at])
}

// InsertAt inserts text at the given absolute document offset.
// Text without newlines is a single-paragraph rope insert. Text
// containing newlines splits the origin paragraph: the first segment
// stays in the origin paragraph's id and block kind, later segments
// become new paragraphs with the default Paragraph block kind; style
// runs (including the origin's font ids) carry across every segment.
func (s *Store) InsertAt(abs int64, text string) (EditResult, error) {
	id, local, err := s.ParagraphAt(abs)
	if err != nil {
		return EditResult{}, err
	}
	i := s.indexOf(id)
	p := s.paragraphs[i]

	if !strings.Contains(text, "\n") {
		if _, err := p.text.Insert(local, text); err != nil {
			if errors.Is(err, buffer.ErrInvalidBoundary) {
				return EditResult{}, ErrInvalidBoundary
			}
			return EditResult{}, ErrInvalidOffset
		}
		p.styles = insertSpan(p.styles, local, int64(len(text)), s.defaultFont)
		s.shiftOffsetsAfter(i, int64(len(text)))
		s.version++
		return EditResult{
			TouchedParagraphIDs: touching(id),
			StructuralChange:    false,
			NewCursorHint:       Position{ParagraphID: id, LocalOffset: local + int64(len(text))},
		}, nil
	}

	// The segments below are produced by slicing p's text directly
	// rather than going through Buffer.Insert, so the boundary
	// invariant Buffer enforces on its own writes has to be checked
	// here explicitly before any raw slicing happens.
	if !validUTF8Boundary(p.Text(), local) {
		return EditResult{}, ErrInvalidBoundary
	}

	origText := p.Text()
	combined := origText[:local] + text + origText[local:]
	combinedStyles := insertSpan(p.styles, local, int64(len(text)), s.defaultFont)

	segments := strings.Split(combined, "\n")
	origKind := p.kind

	newParas := make([]*Para, 0, len(segments))
	touched := make([]ID, 0, len(segments))
	var segStart int64
	for si, seg := range segments {
		segEnd := segStart + int64(len(seg))
		segStyles := slice(combinedStyles, segStart, segEnd)
		if si == 0 {
			np, err := rebuildParaText(p, seg, segStyles)
			if err != nil {
				return EditResult{}, err
			}
			np.kind = origKind
			newParas = append(newParas, np)
			touched = append(touched, np.id)
		} else {
			np := newPara(Paragraph(), seg, segStyles, s.defaultFont)
			newParas = append(newParas, np)
			touched = append(touched, np.id)
		}
		segStart = segEnd + 1
	}

	s.paragraphs = append(s.paragraphs[:i], append(newParas, s.paragraphs[i+1:]...)...)
	s.rebuildOffsetsFrom(i)
	s.version++

	lastNew := newParas[len(newParas)-1]
	lastSegLen := int64(len(segments[len(segments)-1]))
	// The cursor lands at the end of the inserted text, which is the
	// boundary between the last inserted segment and the paragraph's
	// original trailing content; that boundary is always at
	// lastSegLen - len(origText[local:]).
	trailingLen := int64(len(origText)) - local
	cursorLocal := lastSegLen - trailingLen
	if cursorLocal < 0 {
		cursorLocal = 0
	}

	return EditResult{
		TouchedParagraphIDs: touched,
		StructuralChange:    true,
		NewCursorHint:       Position{ParagraphID: lastNew.id, LocalOffset: cursorLocal},
	}, nil
}

// rebuildParaText replaces a paragraph's text and styles in place,
// keeping its id and (caller-assigned) kind.
func rebuildParaText(p *Para, text string, styles StyleRuns) (*Para, error) {
	p.text = buffer.NewBufferFromString(text)
	p.styles = normalize(styles)
	return p, nil
}

// DeleteRange deletes [absStart, absEnd). A range within one
// paragraph is a plain rope delete. A range spanning paragraphs
// removes every fully-covered interior paragraph and merges the
// first and last surviving paragraphs, keeping the first's block kind.
func (s *Store) DeleteRange(absStart, absEnd int64) (EditResult, error) {
	if absEnd < absStart {
		return EditResult{}, ErrInvalidOffset
	}
	if absStart == absEnd {
		id, local, err := s.ParagraphAt(absStart)
		if err != nil {
			return EditResult{}, err
		}
		return EditResult{TouchedParagraphIDs: nil, NewCursorHint: Position{id, local}}, nil
	}

	startID, startLocal, err := s.ParagraphAt(absStart)
	if err != nil {
		return EditResult{}, err
	}
	endID, endLocal, err := s.ParagraphAt(absEnd)
	if err != nil {
		return EditResult{}, err
	}
	si := s.indexOf(startID)
	ei := s.indexOf(endID)

	startPara := s.paragraphs[si]
	endPara := s.paragraphs[ei]

	if si == ei {
		p := startPara
		if err := p.text.Delete(startLocal, endLocal); err != nil {
			if errors.Is(err, buffer.ErrInvalidBoundary) {
				return EditResult{}, ErrInvalidBoundary
			}
			return EditResult{}, ErrInvalidOffset
		}
		p.styles = deleteSpan(p.styles, startLocal, endLocal)
		s.shiftOffsetsAfter(si, -(endLocal - startLocal))
		s.version++
		return EditResult{
			TouchedParagraphIDs: touching(startID),
			StructuralChange:    false,
			NewCursorHint:       Position{ParagraphID: startID, LocalOffset: startLocal},
		}, nil
	}

	// Cross-paragraph delete merges surviving head+tail by slicing
	// startPara/endPara's text directly, so (unlike the single-paragraph
	// case above) the boundary invariant has to be checked explicitly
	// before any raw slicing happens.
	if !validUTF8Boundary(startPara.Text(), startLocal) || !validUTF8Boundary(endPara.Text(), endLocal) {
		return EditResult{}, ErrInvalidBoundary
	}
	headKeep := startPara.Text()[:startLocal]
	headStyles := slice(startPara.styles, 0, startLocal)
	tailKeep := endPara.Text()[endLocal:]
	tailStyles := slice(endPara.styles, endLocal, endPara.LenBytes())

	mergedText := headKeep + tailKeep
	mergedStyles := concat(headStyles, tailStyles, int64(len(headKeep)))

	merged, err := rebuildParaText(startPara, mergedText, mergedStyles)
	if err != nil {
		return EditResult{}, err
	}
	merged.kind = startPara.kind

	s.paragraphs = append(s.paragraphs[:si+1], s.paragraphs[ei+1:]...)
	s.rebuildOffsetsFrom(si)
	s.version++

	return EditResult{
		TouchedParagraphIDs: touching(startID),
		StructuralChange:    true,
		NewCursorHint:       Position{ParagraphID: startID, LocalOffset: startLocal},
	}, nil
}

// ReplaceRange deletes [absStart, absEnd) and inserts text at absStart.
func (s *Store) ReplaceRange(absStart, absEnd int64, text string) (EditResult, error) {
	delRes, err := s.DeleteRange(absStart, absEnd)
	if err != nil {
		return EditResult{}, err
	}
	if text == "" {
		return delRes, nil
	}
	insRes, err := s.InsertAt(absStart, text)
	if err != nil {
		return EditResult{}, err
	}
	merged := touching(append(append([]ID{}, delRes.TouchedParagraphIDs...), insRes.TouchedParagraphIDs...)...)
	return EditResult{
		TouchedParagraphIDs: merged,
		StructuralChange:    delRes.StructuralChange || insRes.StructuralChange,
		NewCursorHint:       insRes.NewCursorHint,
	}, nil
}

// SplitParagraphAt splits the paragraph containing abs at that offset
// into two paragraphs. The first keeps the original id and block
// kind; the second is a fresh paragraph with the default Paragraph
// kind. Equivalent to InsertAt(abs, "\n") but never stores a newline byte.
func (s *Store) SplitParagraphAt(abs int64) (EditResult, error) {
	return s.InsertAt(abs, "\n")
}

// MergeParagraphs merges secondID's text into firstID, which must
// immediately precede it in document order. The merged paragraph
// keeps firstID's id and block kind.
func (s *Store) MergeParagraphs(firstID, secondID ID) (EditResult, error) {
	fi := s.indexOf(firstID)
	si := s.indexOf(secondID)
	if fi < 0 || si < 0 {
		return EditResult{}, ErrParagraphNotFound
	}
	if si != fi+1 {
		return EditResult{}, ErrInvalidOffset
	}
	first := s.paragraphs[fi]
	second := s.paragraphs[si]

	mergedText := first.Text() + second.Text()
	mergedStyles := concat(first.styles, second.styles, first.LenBytes())
	cursorLocal := first.LenBytes()

	merged, err := rebuildParaText(first, mergedText, mergedStyles)
	if err != nil {
		return EditResult{}, err
	}
	merged.kind = first.kind

	s.paragraphs = append(s.paragraphs[:fi+1], s.paragraphs[si+1:]...)
	s.rebuildOffsetsFrom(fi)
	s.version++

	return EditResult{
		TouchedParagraphIDs: touching(firstID),
		StructuralChange:    true,
		NewCursorHint:       Position{ParagraphID: firstID, LocalOffset: cursorLocal},
	}, nil
}

// SetStyleRuns overwrites a paragraph's style run cover directly. Used
// by the editor's undo stack to restore a heterogeneous run cover a
// single FormatRange call can't reconstruct.
func (s *Store) SetStyleRuns(id ID, runs StyleRuns) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrParagraphNotFound
	}
	s.paragraphs[i].styles = normalize(append(StyleRuns(nil), runs...))
	s.version++
	return nil
}

// FormatRange overwrites the font id of [absStart, absEnd) with fontID.
// The range must fall within a single paragraph.
func (s *Store) FormatRange(absStart, absEnd int64, fontID font.ID) (EditResult, error) {
	startID, startLocal, err := s.ParagraphAt(absStart)
	if err != nil {
		return EditResult{}, err
	}
	endID, endLocal, err := s.ParagraphAt(absEnd)
	if err != nil {
		return EditResult{}, err
	}
	if startID != endID {
		return EditResult{}, ErrInvalidOffset
	}
	i := s.indexOf(startID)
	p := s.paragraphs[i]
	p.styles = formatRange(p.styles, startLocal, endLocal, fontID)
	s.version++
	return EditResult{
		TouchedParagraphIDs: touching(startID),
		StructuralChange:    false,
		NewCursorHint:       Position{ParagraphID: startID, LocalOffset: endLocal},
	}, nil
}

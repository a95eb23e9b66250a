package encode

// Buffers holds the render encoder's three parallel buffers plus the
// fourth style-run buffer. They are populated by Encoder.Build and
// read by the host via the exported accessors.
type Buffers struct {
	u32   []uint32
	f32   []float32
	text  []byte
	style []uint32

	// textUTF16Len tracks the running UTF-16 code-unit length of text
	// written so far, so writeText never has to re-scan the whole
	// buffer to compute a new chunk's starting UTF-16 offset.
	textUTF16Len int
}

// Prepare pre-sizes the buffers so a steady-state render loop doesn't
// reallocate (and thus never moves a buffer the host still holds a
// pointer into) mid-build. It is an optimization hint only: Build
// always produces a correct result regardless of whether capacity was
// pre-sized correctly.
func (b *Buffers) Prepare(estimatedU32, estimatedF32, estimatedText int) {
	if cap(b.u32) < estimatedU32 {
		grown := make([]uint32, len(b.u32), estimatedU32)
		copy(grown, b.u32)
		b.u32 = grown
	}
	if cap(b.f32) < estimatedF32 {
		grown := make([]float32, len(b.f32), estimatedF32)
		copy(grown, b.f32)
		b.f32 = grown
	}
	if cap(b.text) < estimatedText {
		grown := make([]byte, len(b.text), estimatedText)
		copy(grown, b.text)
		b.text = grown
	}
}

// reset clears all four buffers in place, keeping their capacity.
func (b *Buffers) reset() {
	b.u32 = b.u32[:0]
	b.f32 = b.f32[:0]
	b.text = b.text[:0]
	b.style = b.style[:0]
	b.textUTF16Len = 0
}

// U32 returns the u32 buffer: header, then per-page/per-line records.
func (b *Buffers) U32() []uint32 { return b.u32 }

// F32 returns the f32 geometry buffer.
func (b *Buffers) F32() []float32 { return b.f32 }

// Text returns the UTF-8 text buffer every byte/UTF-16 offset indexes into.
func (b *Buffers) Text() []byte { return b.text }

// Style returns the packed [utf16_start, utf16_len, font_id] style buffer.
func (b *Buffers) Style() []uint32 { return b.style }

func (b *Buffers) writeText(s string) (byteOff, byteLen, utf16Off, utf16Length int) {
	byteOff = len(b.text)
	utf16Off = b.textUTF16Len
	b.text = append(b.text, s...)
	byteLen = len(s)
	utf16Length = utf16Len(s)
	b.textUTF16Len += utf16Length
	return
}

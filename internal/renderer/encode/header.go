package encode

// Magic identifies the start of a render buffer's u32 header. Readers
// must validate it before trusting the rest of the buffer.
const Magic uint32 = 0x4D575244

// SchemaVersion is the wire format version. Block-type and flag
// constants are wire-stable; changing them requires bumping this.
const SchemaVersion uint32 = 1

// Fixed header slot indices into the u32 buffer.
const (
	hdrMagic uint32 = iota
	hdrSchemaVersion
	hdrDocVersionLow
	hdrDocVersionHigh
	hdrPageCount
	hdrCursorPresent
	hdrSelectionPresent
	hdrTextBufferLen
	hdrU32CursorOffset
	hdrReserved1
	hdrF32CursorOffset
	hdrReserved2

	headerSlots // total fixed header size, in u32 slots
)

// BlockType is the wire encoding of a paragraph's block kind.
type BlockType uint32

// Block type constants, wire-stable.
const (
	BlockParagraph BlockType = 0
	// BlockHeading1..BlockHeading6 occupy values 1..6.
	BlockListItem BlockType = 7
)

// Per-line flag bits, wire-stable.
const (
	FlagIsHeading  uint32 = 1 << 0
	FlagIsListItem uint32 = 1 << 1
)

// noSelection is the sentinel written for sel_start_utf16/sel_end_utf16
// when a line carries no selection.
const noSelection uint32 = 0xFFFFFFFF

// lineRecordSlots is the u32 width of one per-line record.
const lineRecordSlots = 14

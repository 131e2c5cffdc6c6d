package metadata

type FontGlyph struct {
	Codepoint int32
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 int32
	Codepoint1 int32
	Amount     int16
}

type FontData struct {
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Glyphs     []*FontGlyph
	Kernings   []*FontKerning
}

type BitmapFontPage struct {
	ID   int8
	File string
}

type BitmapFontResourceData struct {
	Data  *FontData
	Pages []*BitmapFontPage
}

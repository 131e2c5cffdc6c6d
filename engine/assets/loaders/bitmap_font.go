package loaders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
)

var ErrFontNotFound = errors.New("bitmap font not found")

type BitmapFontLoader struct {
	ResourcePath string
}

type BitmapFontFileType int

const (
	BITMAP_FONT_FILE_TYPE_NOT_FOUND BitmapFontFileType = iota
	BITMAP_FONT_FILE_TYPE_FNT
)

type SupportedBitmapFontFileType struct {
	Extension  string
	BitmapType BitmapFontFileType
}

// Supported extensions, in order of priority when looked up.
var supportedFileTypes = []SupportedBitmapFontFileType{
	{
		Extension:  ".fnt",
		BitmapType: BITMAP_FONT_FILE_TYPE_FNT,
	},
}

// BitmapFontParams selects the font to load from <ResourcePath>/fonts.
type BitmapFontParams struct {
	Name string
}

// FontPath returns the descriptor file for name, or ErrFontNotFound.
func (fl *BitmapFontLoader) FontPath(name string) (string, BitmapFontFileType, error) {
	for _, ft := range supportedFileTypes {
		path := filepath.Join(fl.ResourcePath, "fonts", name+ft.Extension)
		if _, err := os.Stat(path); err == nil {
			return path, ft.BitmapType, nil
		}
	}
	return "", BITMAP_FONT_FILE_TYPE_NOT_FOUND, fmt.Errorf("%w: unable to find bitmap font of supported type called '%s'", ErrFontNotFound, name)
}

func (fl *BitmapFontLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	p, ok := params.(*BitmapFontParams)
	if !ok {
		return nil, fmt.Errorf("failed to cast params in bitmap font loader")
	}

	fullPath, bitmapType, err := fl.FontPath(p.Name)
	if err != nil {
		return nil, err
	}

	var resourceData *metadata.BitmapFontResourceData
	switch bitmapType {
	case BITMAP_FONT_FILE_TYPE_FNT:
		resourceData, err = fl.importFNTFile(fullPath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrFontNotFound, p.Name)
	}

	// page files are relative to the descriptor
	for _, page := range resourceData.Pages {
		page.File = filepath.Join(filepath.Dir(fullPath), page.File)
	}

	return &metadata.Resource{
		Type:     metadata.ResourceTypeBitmapFont,
		Name:     p.Name,
		FullPath: fullPath,
		Data:     resourceData,
		DataSize: uint64(len(resourceData.Data.Glyphs)),
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *metadata.Resource) error {
	if resource.Data != nil {
		data := resource.Data.(*metadata.BitmapFontResourceData)
		data.Data.Glyphs = nil
		data.Pages = nil
		data.Data.Kernings = nil
		resource.Data = nil
		resource.DataSize = 0
		resource.FullPath = ""
	}
	return nil
}

func (fl *BitmapFontLoader) importFNTFile(fntFileName string) (*metadata.BitmapFontResourceData, error) {
	font, err := bmfont.Load(fntFileName)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", fntFileName, err)
	}
	d := font.Descriptor

	outData := &metadata.BitmapFontResourceData{
		Data: &metadata.FontData{
			Face:       d.Info.Face,
			Size:       uint32(d.Info.Size),
			LineHeight: int32(d.Common.LineHeight),
			Baseline:   int32(d.Common.Base),
			AtlasSizeX: int32(d.Common.ScaleW),
			AtlasSizeY: int32(d.Common.ScaleH),
			Glyphs:     make([]*metadata.FontGlyph, 0, len(d.Chars)),
			Kernings:   make([]*metadata.FontKerning, 0, len(d.Kerning)),
		},
		Pages: make([]*metadata.BitmapFontPage, 0, len(d.Pages)),
	}

	for _, p := range d.Pages {
		outData.Pages = append(outData.Pages, &metadata.BitmapFontPage{
			ID:   int8(p.ID),
			File: p.File,
		})
	}

	for _, g := range d.Chars {
		outData.Data.Glyphs = append(outData.Data.Glyphs, &metadata.FontGlyph{
			Codepoint: int32(g.ID),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		})
	}

	for p, k := range d.Kerning {
		outData.Data.Kernings = append(outData.Data.Kernings, &metadata.FontKerning{
			Codepoint0: int32(p.First),
			Codepoint1: int32(p.Second),
			Amount:     int16(k.Amount),
		})
	}

	// map iteration order is random, keep the output stable
	sort.Slice(outData.Pages, func(i, j int) bool { return outData.Pages[i].ID < outData.Pages[j].ID })
	sort.Slice(outData.Data.Glyphs, func(i, j int) bool {
		return outData.Data.Glyphs[i].Codepoint < outData.Data.Glyphs[j].Codepoint
	})

	return outData, nil
}

package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima-ui/engine/assets"
	"github.com/spaghettifunk/anima-ui/engine/assets/loaders"
	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/engine/math"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-ui/engine/ui"
	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

type FontSystemConfig struct {
	/** @brief The font loaded on Initialize. Empty loads nothing. */
	DefaultBitmapFont string
	/** @brief The maximum number of bitmap fonts that can be loaded at once. */
	MaxBitmapFontCount int
}

type kerningPair struct {
	first, second rune
}

// BitmapFont is a loaded bitmap font whose pages are registered textures.
type BitmapFont struct {
	Name string
	Data *metadata.FontData

	glyphs   map[rune]*metadata.FontGlyph
	kernings map[kerningPair]int16
	pages    map[uint8]texture.ID
	// texture system names of the pages, released on shutdown
	pageTextures []string
	resource     *metadata.Resource
}

func newBitmapFont(name string, data *metadata.FontData, pages map[uint8]texture.ID) *BitmapFont {
	f := &BitmapFont{
		Name:     name,
		Data:     data,
		glyphs:   make(map[rune]*metadata.FontGlyph, len(data.Glyphs)),
		kernings: make(map[kerningPair]int16, len(data.Kernings)),
		pages:    pages,
	}
	for _, g := range data.Glyphs {
		f.glyphs[rune(g.Codepoint)] = g
	}
	for _, k := range data.Kernings {
		f.kernings[kerningPair{rune(k.Codepoint0), rune(k.Codepoint1)}] = k.Amount
	}
	return f
}

// Glyph returns the glyph of r, falling back to '?' for missing codepoints.
func (f *BitmapFont) Glyph(r rune) (*metadata.FontGlyph, bool) {
	if g, ok := f.glyphs[r]; ok {
		return g, true
	}
	g, ok := f.glyphs['?']
	return g, ok
}

func (f *BitmapFont) Kerning(first, second rune) int16 {
	return f.kernings[kerningPair{first, second}]
}

// Page returns the texture of an atlas page.
func (f *BitmapFont) Page(id uint8) (texture.ID, error) {
	t, ok := f.pages[id]
	if !ok {
		return 0, fmt.Errorf("font '%s' page %d: %w", f.Name, id, texture.ErrTextureNotFound)
	}
	return t, nil
}

// uv returns the rectangle of g inside its atlas page in normalized coordinates.
func (f *BitmapFont) uv(g *metadata.FontGlyph) (math.Vec2, math.Vec2) {
	w, h := float32(f.Data.AtlasSizeX), float32(f.Data.AtlasSizeY)
	if w <= 0 || h <= 0 {
		return math.Vec2Zero(), math.Vec2One()
	}
	uv0 := math.Vec2{X: float32(g.X) / w, Y: float32(g.Y) / h}
	uv1 := math.Vec2{X: float32(g.X+g.Width) / w, Y: float32(g.Y+g.Height) / h}
	return uv0, uv1
}

type FontSystem struct {
	Config      *FontSystemConfig
	bitmapFonts map[string]*BitmapFont

	assetManager  *assets.AssetManager
	textureSystem *TextureSystem
}

func NewFontSystem(config *FontSystemConfig, am *assets.AssetManager, ts *TextureSystem) (*FontSystem, error) {
	if config.MaxBitmapFontCount <= 0 {
		return nil, fmt.Errorf("func NewFontSystem - config.MaxBitmapFontCount must be > 0")
	}
	return &FontSystem{
		Config:        config,
		bitmapFonts:   make(map[string]*BitmapFont),
		assetManager:  am,
		textureSystem: ts,
	}, nil
}

func (fs *FontSystem) Initialize() error {
	if fs.Config.DefaultBitmapFont == "" {
		return nil
	}
	if err := fs.LoadBitmapFont(fs.Config.DefaultBitmapFont); err != nil {
		core.LogError("failed to load bitmap font: %s", fs.Config.DefaultBitmapFont)
		return err
	}
	return nil
}

func (fs *FontSystem) Shutdown() error {
	for name, f := range fs.bitmapFonts {
		fs.cleanup(f)
		delete(fs.bitmapFonts, name)
	}
	return nil
}

func (fs *FontSystem) cleanup(f *BitmapFont) {
	if fs.textureSystem != nil {
		for _, name := range f.pageTextures {
			if err := fs.textureSystem.Release(name); err != nil {
				core.LogWarn("font '%s': %s", f.Name, err)
			}
		}
	}
	if f.resource != nil && fs.assetManager != nil {
		if err := fs.assetManager.UnloadAsset(f.resource); err != nil {
			core.LogWarn("font '%s': %s", f.Name, err)
		}
	}
	f.pageTextures = nil
	f.resource = nil
}

// LoadBitmapFont loads <assets>/fonts/<name>.fnt and registers every atlas
// page as a texture.
func (fs *FontSystem) LoadBitmapFont(name string) error {
	if _, ok := fs.bitmapFonts[name]; ok {
		core.LogWarn("a font named '%s' already exists and will not be loaded again", name)
		// Not a hard error, it already exists and can be used.
		return nil
	}
	if len(fs.bitmapFonts) >= fs.Config.MaxBitmapFontCount {
		return fmt.Errorf("no space left to allocate a new bitmap font. Increase maximum number allowed in font system config")
	}
	if fs.assetManager == nil || fs.textureSystem == nil {
		return fmt.Errorf("load bitmap font '%s': font system has no asset manager or texture system", name)
	}

	res, err := fs.assetManager.Load(metadata.ResourceTypeBitmapFont, "", &loaders.BitmapFontParams{Name: name})
	if err != nil {
		return err
	}
	data, ok := res.Data.(*metadata.BitmapFontResourceData)
	if !ok {
		return fmt.Errorf("resource %s is not a bitmap font", res.FullPath)
	}

	pages := make(map[uint8]texture.ID, len(data.Pages))
	var pageTextures []string
	for _, p := range data.Pages {
		t, err := fs.textureSystem.Load(p.File)
		if err != nil {
			core.LogError("font '%s' page %d: %s", name, p.ID, err)
			continue
		}
		if _, err := fs.textureSystem.Acquire(t.Name, true); err != nil {
			return err
		}
		pages[uint8(p.ID)] = t.ID
		pageTextures = append(pageTextures, t.Name)
	}

	f := newBitmapFont(name, data.Data, pages)
	f.pageTextures = pageTextures
	f.resource = res
	fs.bitmapFonts[name] = f
	core.LogInfo("bitmap font '%s' loaded: %d glyphs, %d pages", name, len(data.Data.Glyphs), len(pages))
	return nil
}

// RegisterBitmapFont adds a font whose pages were uploaded by the caller.
func (fs *FontSystem) RegisterBitmapFont(name string, data *metadata.FontData, pages map[uint8]texture.ID) (*BitmapFont, error) {
	if _, ok := fs.bitmapFonts[name]; ok {
		return nil, fmt.Errorf("a font named '%s' already exists", name)
	}
	if len(fs.bitmapFonts) >= fs.Config.MaxBitmapFontCount {
		return nil, fmt.Errorf("no space left to allocate a new bitmap font. Increase maximum number allowed in font system config")
	}
	f := newBitmapFont(name, data, pages)
	fs.bitmapFonts[name] = f
	return f, nil
}

func (fs *FontSystem) Font(name string) (*BitmapFont, error) {
	f, ok := fs.bitmapFonts[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' is not loaded", loaders.ErrFontNotFound, name)
	}
	return f, nil
}

/**
 * @brief Draws text at the cursor of the frame, one image per glyph.
 * Newlines go back to the starting column. Afterwards the cursor sits
 * below the last line.
 */
func (fs *FontSystem) Text(frame ui.Frame, fontName, text string, colour math.Vec4) error {
	f, err := fs.Font(fontName)
	if err != nil {
		return err
	}

	origin := frame.Cursor()
	lineHeight := float32(f.Data.LineHeight)
	x, y := origin.X, origin.Y
	prev := rune(-1)

	for _, r := range text {
		if r == '\n' {
			x = origin.X
			y += lineHeight
			prev = -1
			continue
		}
		g, ok := f.Glyph(r)
		if !ok {
			prev = -1
			continue
		}
		// a missing rune is drawn and kerned as the fallback glyph
		r = rune(g.Codepoint)
		if prev >= 0 {
			x += float32(f.Kerning(prev, r))
		}
		if g.Width > 0 && g.Height > 0 {
			id, pageErr := f.Page(g.PageID)
			uv0, uv1 := f.uv(g)
			frame.SetCursor(math.Vec2{X: x + float32(g.XOffset), Y: y + float32(g.YOffset)})
			err := ui.NewDeferredImage(id, pageErr, math.NewVec2(g.Width, g.Height)).
				UV0(uv0).
				UV1(uv1).
				TintCol(colour).
				Build(frame)
			if err != nil {
				frame.SetCursor(origin)
				return err
			}
		}
		x += float32(g.XAdvance)
		prev = r
	}

	frame.SetCursor(math.Vec2{X: origin.X, Y: y + lineHeight})
	return nil
}

// Measure returns the size Text would cover.
func (fs *FontSystem) Measure(fontName, text string) (math.Vec2, error) {
	f, err := fs.Font(fontName)
	if err != nil {
		return math.Vec2{}, err
	}
	var width, lineWidth float32
	lines := 1
	prev := rune(-1)
	for _, r := range text {
		if r == '\n' {
			width = max(width, lineWidth)
			lineWidth = 0
			lines++
			prev = -1
			continue
		}
		g, ok := f.Glyph(r)
		if !ok {
			prev = -1
			continue
		}
		r = rune(g.Codepoint)
		if prev >= 0 {
			lineWidth += float32(f.Kerning(prev, r))
		}
		lineWidth += float32(g.XAdvance)
		prev = r
	}
	width = max(width, lineWidth)
	return math.Vec2{X: width, Y: float32(lines) * float32(f.Data.LineHeight)}, nil
}

package mdrtf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jlaffaye/ftp"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Image size limits to prevent memory exhaustion.
const (
	maxImageDimension  = 8192
	maxImagePixelBytes = 64 * 1024 * 1024
	defaultMaxFetch    = 16 * 1024 * 1024
	twipsPerPixel      = 15
	pictHexLineWidth   = 128
	placeholderGlyph   = '▣'
)

// ErrUnsupportedScheme reports an image reference whose URL scheme cannot be
// loaded.
var ErrUnsupportedScheme = errors.New("unsupported image scheme")

// ImageResolver loads the bytes of an image reference such as a relative
// path, a file:// URL or an http(s) URL.
type ImageResolver interface {
	ResolveImage(ctx context.Context, ref string) ([]byte, error)
}

// ImageResolverFunc adapts a function to ImageResolver.
type ImageResolverFunc func(ctx context.Context, ref string) ([]byte, error)

// ResolveImage calls f.
func (f ImageResolverFunc) ResolveImage(ctx context.Context, ref string) ([]byte, error) {
	return f(ctx, ref)
}

// Resolver is the default ImageResolver. Relative references resolve against
// BaseURL when set, otherwise against BaseDir.
type Resolver struct {
	BaseDir  string
	BaseURL  *url.URL
	Client   *http.Client
	MaxBytes int64
}

// ResolveImage loads ref from disk, over HTTP(S) or over FTP.
func (r *Resolver) ResolveImage(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("resolve image: empty reference")
	}
	u, err := url.Parse(ref)
	if err == nil && len(u.Scheme) > 1 {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return r.fetch(ctx, u)
		case "ftp":
			return r.fetchFTP(ctx, u)
		case "file":
			return r.readFile(filepath.FromSlash(u.Path))
		default:
			return nil, fmt.Errorf("resolve image %q: %w", ref, ErrUnsupportedScheme)
		}
	}
	if r.BaseURL != nil && err == nil {
		return r.fetch(ctx, r.BaseURL.ResolveReference(u))
	}
	path := ref
	if !filepath.IsAbs(path) && r.BaseDir != "" {
		path = filepath.Join(r.BaseDir, path)
	}
	return r.readFile(path)
}

func (r *Resolver) limit() int64 {
	if r.MaxBytes > 0 {
		return r.MaxBytes
	}
	return defaultMaxFetch
}

func (r *Resolver) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("resolve image: %w", err)
	}
	defer f.Close()
	return r.readLimited(f, path)
}

func (r *Resolver) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("resolve image %q: %w", u.String(), ErrUnsupportedScheme)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("resolve image: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve image: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("resolve image %q: status %s", u.String(), resp.Status)
	}
	return r.readLimited(resp.Body, u.String())
}

// fetchFTP retrieves u in binary mode. Credentials come from the URL user
// info, otherwise the anonymous login is used.
func (r *Resolver) fetchFTP(ctx context.Context, u *url.URL) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "21")
	}
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("resolve image: dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Quit() }()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, fmt.Errorf("resolve image: login %s: %w", addr, err)
	}
	resp, err := conn.Retr(u.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve image %q: %w", u.Redacted(), err)
	}
	data, err := r.readLimited(resp, u.Redacted())
	if closeErr := resp.Close(); err == nil && closeErr != nil {
		return nil, fmt.Errorf("resolve image %q: %w", u.Redacted(), closeErr)
	}
	return data, err
}

func (r *Resolver) readLimited(src io.Reader, name string) ([]byte, error) {
	limit := r.limit()
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, fmt.Errorf("resolve image %q: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("resolve image %q: larger than %d bytes", name, limit)
	}
	return data, nil
}

// picture is a PNG ready to embed with its pixel size.
type picture struct {
	data          []byte
	width, height int
}

// decodePicture decodes any registered format and returns it as PNG, scaled
// down to maxWidth pixels when wider. PNG input that needs no scaling is
// embedded as is.
func decodePicture(data []byte, maxWidth int) (picture, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return picture{}, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return picture{}, fmt.Errorf("decode image: empty %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width > maxImageDimension || cfg.Height > maxImageDimension {
		return picture{}, fmt.Errorf("image too large: %dx%d (max %dx%d)",
			cfg.Width, cfg.Height, maxImageDimension, maxImageDimension)
	}
	if size := cfg.Width * cfg.Height * 4; size > maxImagePixelBytes {
		return picture{}, fmt.Errorf("image uncompressed size exceeds limit: %d bytes (max %d bytes)",
			size, maxImagePixelBytes)
	}
	scale := maxWidth > 0 && cfg.Width > maxWidth
	if format == "png" && !scale {
		return picture{data: data, width: cfg.Width, height: cfg.Height}, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return picture{}, fmt.Errorf("decode image: %w", err)
	}
	if scale {
		img = scaleImageToWidth(img, maxWidth)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return picture{}, fmt.Errorf("encode image: %w", err)
	}
	b := img.Bounds()
	return picture{data: buf.Bytes(), width: b.Dx(), height: b.Dy()}, nil
}

func scaleImageToWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}
	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height <= 0 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// writeRTF writes the picture as a \pict group with hex encoded PNG data.
func (p picture) writeRTF(b *strings.Builder) {
	b.WriteString(`{\pict\pngblip`)
	b.WriteString(`\picw` + strconv.Itoa(p.width))
	b.WriteString(`\pich` + strconv.Itoa(p.height))
	b.WriteString(`\picwgoal` + strconv.Itoa(p.width*twipsPerPixel))
	b.WriteString(`\pichgoal` + strconv.Itoa(p.height*twipsPerPixel))
	b.WriteByte('\n')
	for i, c := range p.data {
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
		if (i+1)%(pictHexLineWidth/2) == 0 && i+1 < len(p.data) {
			b.WriteByte('\n')
		}
	}
	b.WriteString("}")
}

// imageStage leaves a table's first line alone; its cells are rendered, images
// included, by the table stage.
func imageStage(s *session, ln *line) error {
	if ln.tableRows > 0 {
		return nil
	}
	ln.text = s.renderImages(ln.text, ln.baseColor())
	return nil
}

// renderImages replaces every "![title](ref)" with an embedded picture. An
// image that cannot be loaded becomes a link to ref showing a placeholder
// glyph and the title, followed by the reference in parentheses.
func (s *session) renderImages(text string, base ColorSlot) string {
	if !strings.Contains(text, "![") {
		return text
	}
	var b strings.Builder
	pos := 0
	for {
		ref, ok := findBracketRef(text, pos)
		if !ok {
			break
		}
		if ref.start == 0 || text[ref.start-1] != '!' {
			b.WriteString(text[pos:ref.end])
			pos = ref.end
			continue
		}
		b.WriteString(text[pos : ref.start-1])
		pic, err := s.loadPicture(ref.target)
		if err != nil {
			s.log.Warn("mdrtf: image not embedded", "ref", Unescape(ref.target), "err", err)
			result := unicodeEscape(placeholderGlyph)
			if ref.title != "" {
				result += " " + ref.title
			}
			var fallback strings.Builder
			writeLinkField(&fallback, ref.target, result)
			fallback.WriteString(base.foreground())
			fallback.WriteString(" (" + ref.target + ")")
			b.WriteString(protectCommentOpen(fallback.String()))
		} else {
			pic.writeRTF(&b)
		}
		pos = ref.end
	}
	if pos == 0 {
		return text
	}
	b.WriteString(text[pos:])
	return b.String()
}

// protectCommentOpen hex-escapes '<' so the comment stage, which runs after
// images, cannot cut a placeholder field open.
func protectCommentOpen(text string) string {
	if strings.IndexByte(text, '<') < 0 {
		return text
	}
	return strings.ReplaceAll(text, "<", hexEscape('<'))
}

func (s *session) loadPicture(target string) (picture, error) {
	if s.cfg.images == nil {
		return picture{}, errors.New("image loading disabled")
	}
	ref := Unescape(target)
	if i := strings.IndexAny(ref, " \t"); i >= 0 {
		ref = ref[:i]
	}
	data, err := s.cfg.images.ResolveImage(s.ctx, ref)
	if err != nil {
		return picture{}, err
	}
	return decodePicture(data, s.cfg.maxImageWidth)
}

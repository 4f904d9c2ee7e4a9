// Package preview renders inline terminal previews of the images embedded
// in a stored document.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	// Register image format decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	termimg "github.com/blacktop/go-termimg"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/dedene/tungsten-cli/internal/fetch"
	"github.com/dedene/tungsten-cli/internal/token"
)

const (
	defaultMax      = 3
	fetchTimeout    = 5 * time.Second
	minPreviewWidth = 16
	maxPreviewWidth = 50
)

// Options configures image preview rendering.
type Options struct {
	// Width in character cells. 0 = auto-detect from terminal.
	Width int
	// Writer receives rendered escape sequences. Typically os.Stderr.
	Writer io.Writer
	// Client fetches images. Defaults to fetch.New with default options.
	Client *fetch.Client
	// Max caps how many images ShowAll renders. 0 = 3.
	Max int
}

// imageKinds are the token kinds whose payload is an image URL.
var imageKinds = map[string]bool{"image": true, "linkedimage": true}

// ImageURLs returns the distinct image URLs carried by tokens of bitfield
// in stored text, in order of appearance.
func ImageURLs(text, bitfield string) []string {
	if bitfield == "" {
		return nil
	}

	var urls []string

	seen := make(map[string]bool)

	for _, m := range token.Scan(text) {
		if m.Bitfield != bitfield || !imageKinds[m.Kind] {
			continue
		}

		u, ok := token.DecodeURL(m.Payload)
		if !ok || seen[u] {
			continue
		}

		seen[u] = true
		urls = append(urls, u)
	}

	return urls
}

// ShowAll previews up to opts.Max images and returns how many were tried.
// Images are downloaded concurrently and rendered in order.
func ShowAll(ctx context.Context, urls []string, opts Options) int {
	limit := opts.Max
	if limit <= 0 {
		limit = defaultMax
	}

	if ctx.Err() != nil {
		return 0
	}

	if len(urls) > limit {
		urls = urls[:limit]
	}

	client := clientOf(opts)
	images := make([][]byte, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			images[i] = download(gctx, client, u)

			return nil
		})
	}

	_ = g.Wait()

	for i, u := range urls {
		if images[i] != nil {
			render(u, images[i], opts)
		}
	}

	return len(urls)
}

// Show downloads an image from imageURL and renders it to opts.Writer.
// Returns nil on any error (download, decode, render) so a broken image
// never fails the command.
func Show(ctx context.Context, imageURL string, opts Options) error {
	if data := download(ctx, clientOf(opts), imageURL); data != nil {
		render(imageURL, data, opts)
	}

	return nil
}

func clientOf(opts Options) *fetch.Client {
	if opts.Client != nil {
		return opts.Client
	}

	return fetch.New(fetch.Options{})
}

func download(ctx context.Context, client *fetch.Client, imageURL string) []byte {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	data, err := client.Image(ctx, imageURL)
	if err != nil {
		slog.Debug("preview skipped", "url", imageURL, "error", err)

		return nil
	}

	return data
}

func render(imageURL string, data []byte, opts Options) {
	img, err := termimg.From(bytes.NewReader(data))
	if err != nil {
		slog.Debug("preview decode failed", "url", imageURL, "error", err)

		return
	}

	rendered, err := img.Width(previewWidth(opts.Width)).Scale(termimg.ScaleFit).Render()
	if err != nil {
		return
	}

	fmt.Fprintln(opts.Writer, imageURL)
	fmt.Fprintln(opts.Writer, rendered)
}

func previewWidth(width int) int {
	if width > 0 {
		return width
	}

	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 40
	}

	return max(minPreviewWidth, min(maxPreviewWidth, w/3))
}

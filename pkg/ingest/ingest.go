// Package ingest decodes a coverage report of a named format and runs the
// matching parser.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/coverfang/pkg/model"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser/ncover"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser/visualstudio"
)

// Supported format names.
const (
	FormatNCover       = "ncover"
	FormatVisualStudio = "visualstudio"
)

// Sentinel errors for report ingestion.
var (
	ErrUnknownFormat  = errors.New("unknown report format")
	ErrReportTooLarge = errors.New("report exceeds size limit")
	ErrDecode         = errors.New("decode report")
)

type parseFunc func(ctx context.Context, r io.Reader, opts parser.Options) (*model.ParserResult, error)

var registry = map[string]parseFunc{
	FormatNCover:       decodeAndParse(ncover.Decode, func(o parser.Options) parser.Parser[ncover.Report] { return ncover.NewParser(o) }),
	FormatVisualStudio: decodeAndParse(visualstudio.Decode, func(o parser.Options) parser.Parser[visualstudio.Report] { return visualstudio.NewParser(o) }),
}

func decodeAndParse[D any](
	decode func(io.Reader) (*D, error),
	newParser func(parser.Options) parser.Parser[D],
) parseFunc {
	return func(ctx context.Context, r io.Reader, opts parser.Options) (*model.ParserResult, error) {
		doc, err := decode(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}

		return newParser(opts).Parse(ctx, doc)
	}
}

// Formats returns the supported format names in ascending order.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func lookup(format string) (parseFunc, error) {
	fn, ok := registry[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}

	return fn, nil
}

// Parse decodes a report of the given format from r and parses it.
func Parse(ctx context.Context, format string, r io.Reader, opts parser.Options) (*model.ParserResult, error) {
	fn, err := lookup(format)
	if err != nil {
		return nil, err
	}

	return fn(ctx, r, opts)
}

// ParseFile parses the report at path. maxBytes of zero disables the size check.
func ParseFile(ctx context.Context, format, path string, maxBytes uint64, opts parser.Options) (*model.ParserResult, error) {
	fn, err := lookup(format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat report: %w", err)
	}

	if maxBytes > 0 && info.Size() > 0 && uint64(info.Size()) > maxBytes {
		return nil, fmt.Errorf("%w: %s is %s, limit %s", ErrReportTooLarge, path,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(maxBytes))
	}

	return fn(ctx, f, opts)
}

// =============================================================================
// Sales Data Processor - Record Source
// =============================================================================
//
// This module reads delimiter-separated sales files and yields raw records.
//
// FILE FORMAT:
//   - UTF-8 text
//   - Line 1 is the header, fields separated by the delimiter (default "|")
//   - Every following non-blank line is a data row
//   - Whitespace is stripped from both ends of a line, never from the
//     values inside it
//   - Lines have no length limit
//   - Rows whose field count differs from the header are skipped
//   - Quote characters have no special meaning; a line is split on every
//     delimiter it contains
//
// ERROR HANDLING:
//   - Missing file      : ErrSourceNotFound, no records
//   - Invalid UTF-8     : ErrEncoding, no records
//   - Field count issue : row skipped, reported as a Diagnostic
//
// The reader never logs. Skipped rows are returned as diagnostics and the
// caller decides how to surface them.
//
// =============================================================================

package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ginjaninja78/sales-data-processor/internal/config"
	"github.com/ginjaninja78/sales-data-processor/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSourceNotFound is returned when the input file does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrEncoding is returned when the input is not valid UTF-8.
	ErrEncoding = errors.New("source is not valid UTF-8")
)

// utf8BOM is dropped from the start of the header line.
const utf8BOM = "\ufeff"

// =============================================================================
// BATCH
// =============================================================================

// Diagnostic reports a data row that was skipped at the source level.
type Diagnostic struct {
	// Line is the 1-based line number in the input file.
	Line int `yaml:"line"`

	// Reason is a human-readable explanation.
	Reason string `yaml:"reason"`

	// Fields is the number of fields found on the line.
	Fields int `yaml:"fields"`

	// Expected is the number of header fields.
	Expected int `yaml:"expected"`
}

// String implements fmt.Stringer.
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Reason)
}

// Batch is everything read from one input file.
type Batch struct {
	// Path is the file the batch was read from.
	Path string

	// Headers are the column names in file order.
	Headers []string

	// Records are the accepted rows in file order.
	Records []types.RawRecord

	// Lines is the number of physical lines read, header included.
	Lines int

	// Diagnostics lists the rows that were skipped.
	Diagnostics []Diagnostic
}

// =============================================================================
// FILE READING
// =============================================================================

// ReadFile reads a whole file into a Batch.
//
// On a missing file or a decoding failure the returned batch is empty (but
// never nil) and the error wraps ErrSourceNotFound or ErrEncoding.
func ReadFile(path string, settings config.SourceSettings) (*Batch, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Batch{Path: path}, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return &Batch{Path: path}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	batch, err := Read(file, settings)
	if batch != nil {
		batch.Path = path
	}
	return batch, err
}

// Read consumes r and returns every record it contains.
func Read(r io.Reader, settings config.SourceSettings) (*Batch, error) {
	reader, err := NewReader(r, settings)
	if err != nil {
		return &Batch{}, err
	}

	batch := &Batch{Headers: reader.Headers()}
	for reader.Next() {
		batch.Records = append(batch.Records, reader.Record())
	}

	if err := reader.Err(); err != nil {
		// Partial results are discarded so callers never act on half a file.
		return &Batch{Headers: batch.Headers}, err
	}

	batch.Diagnostics = reader.Diagnostics()
	batch.Lines = reader.Line()
	return batch, nil
}

// =============================================================================
// STREAMING READER
// =============================================================================

// Reader yields records one at a time.
//
// USAGE:
//   reader, err := source.NewReader(file, settings)
//   if err != nil {
//       return err
//   }
//
//   for reader.Next() {
//       rec := reader.Record()
//       // ...
//   }
//
//   if err := reader.Err(); err != nil {
//       return err
//   }
type Reader struct {
	buf         *bufio.Reader
	eof         bool
	delimiter   string
	headers     []string
	current     types.RawRecord
	line        int
	diagnostics []Diagnostic
	err         error
}

// NewReader creates a Reader and consumes the header line.
// An empty input yields a Reader with no headers and no records.
func NewReader(r io.Reader, settings config.SourceSettings) (*Reader, error) {
	delim, err := settings.DelimiterRune()
	if err != nil {
		return nil, err
	}

	reader := &Reader{
		buf:       bufio.NewReader(r),
		delimiter: string(delim),
	}

	if err := reader.readHeaders(); err != nil {
		return nil, err
	}

	return reader, nil
}

// readHeaders reads line 1 and splits it into column names.
func (p *Reader) readHeaders() error {
	text, ok := p.readLine()
	if !ok {
		return p.err
	}

	if !utf8.ValidString(text) {
		return fmt.Errorf("%w (line %d)", ErrEncoding, p.line)
	}

	text = strings.TrimPrefix(text, utf8BOM)
	p.headers = splitLine(text, p.delimiter)
	return nil
}

// Next advances to the next accepted row. Returns false when the input is
// exhausted or an error occurred.
func (p *Reader) Next() bool {
	if p.err != nil || p.headers == nil {
		return false
	}

	for {
		text, ok := p.readLine()
		if !ok {
			return false
		}

		if !utf8.ValidString(text) {
			p.err = fmt.Errorf("%w (line %d)", ErrEncoding, p.line)
			return false
		}

		// Skip blank lines.
		if strings.TrimSpace(text) == "" {
			continue
		}

		values := splitLine(text, p.delimiter)
		if len(values) != len(p.headers) {
			p.diagnostics = append(p.diagnostics, Diagnostic{
				Line:     p.line,
				Reason:   fmt.Sprintf("expected %d fields, found %d", len(p.headers), len(values)),
				Fields:   len(values),
				Expected: len(p.headers),
			})
			continue
		}

		p.current = make(types.RawRecord, len(p.headers))
		for i, header := range p.headers {
			p.current[header] = values[i]
		}
		return true
	}
}

// readLine returns the next physical line without its line terminator.
// It returns false at end of input or on a read error, which is kept in p.err.
func (p *Reader) readLine() (string, bool) {
	if p.eof || p.err != nil {
		return "", false
	}

	text, err := p.buf.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			p.err = fmt.Errorf("error reading line %d: %w", p.line+1, err)
			return "", false
		}
		p.eof = true
		if text == "" {
			return "", false
		}
	}

	p.line++
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	return text, true
}

// Record returns the current row.
func (p *Reader) Record() types.RawRecord {
	return p.current
}

// Headers returns the column names.
func (p *Reader) Headers() []string {
	return p.headers
}

// Line returns the line number of the current row (1-based). After the
// input is exhausted it is the number of lines read.
func (p *Reader) Line() int {
	return p.line
}

// Diagnostics returns the rows skipped so far.
func (p *Reader) Diagnostics() []Diagnostic {
	return p.diagnostics
}

// Err returns any error that occurred while reading.
func (p *Reader) Err() error {
	return p.err
}

// splitLine strips the ends of the line and splits it on the delimiter.
// Values keep any inner padding. A whitespace delimiter such as tab is never
// stripped, so trailing empty fields survive.
func splitLine(line, delimiter string) []string {
	line = strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) && string(r) != delimiter
	})
	return strings.Split(line, delimiter)
}

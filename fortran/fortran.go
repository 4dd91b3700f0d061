// Package fortran reads and writes Fortran unformatted sequential
// files: each record is a payload framed by a leading and trailing
// int32 byte count. This is the on-disk layout produced by the
// eigen-table generation routines (compiled Fortran writing with
// default sequential access) and consumed here one record at a time.
//
// All framing uses little-endian 4-byte markers, matching the x86
// toolchains the tables are generated with.
package fortran

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"
)

// ErrBadRecord is returned when record framing is violated: truncated
// payloads, head/tail marker disagreement, or a payload length that is
// not a whole number of values.
var ErrBadRecord = errors.New("fortran: malformed record")

// Reader decodes framed records from an underlying stream.
type Reader struct {
	r io.Reader
}

// NewReader returns a Reader decoding records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// readRecord consumes one framed record and returns its payload.
// Returns io.EOF cleanly when the stream ends on a record boundary.
func (r *Reader) readRecord() ([]byte, error) {
	var head int32
	if err := binary.Read(r.r, binary.LittleEndian, &head); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading head marker: %v", ErrBadRecord, err)
	}
	if head < 0 {
		return nil, fmt.Errorf("%w: negative record length %d", ErrBadRecord, head)
	}
	payload := make([]byte, head)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, fmt.Errorf("%w: payload truncated (want %d bytes): %v", ErrBadRecord, head, err)
	}
	var tail int32
	if err := binary.Read(r.r, binary.LittleEndian, &tail); err != nil {
		return nil, fmt.Errorf("%w: reading tail marker: %v", ErrBadRecord, err)
	}
	if tail != head {
		return nil, fmt.Errorf("%w: marker mismatch (head %d, tail %d)", ErrBadRecord, head, tail)
	}
	return payload, nil
}

// ReadInts reads one record as a vector of int32 values.
func (r *Reader) ReadInts() ([]int32, error) {
	payload, err := r.readRecord()
	if err != nil {
		return nil, err
	}
	if len(payload)%4 != 0 {
		return nil, fmt.Errorf("%w: record length %d is not a multiple of 4", ErrBadRecord, len(payload))
	}
	out := make([]int32, len(payload)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(payload[4*i:]))
	}
	return out, nil
}

// ReadReals reads one record as a vector of float64 values.
func (r *Reader) ReadReals() ([]float64, error) {
	payload, err := r.readRecord()
	if err != nil {
		return nil, err
	}
	if len(payload)%8 != 0 {
		return nil, fmt.Errorf("%w: record length %d is not a multiple of 8", ErrBadRecord, len(payload))
	}
	out := make([]float64, len(payload)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[8*i:]))
	}
	return out, nil
}

// File is a Reader over an opened (possibly gzip-compressed) file.
type File struct {
	Reader
	closers []io.Closer
}

// Close releases the underlying file and any decompression layer.
func (f *File) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens path for record reading. If path does not exist but
// path+".gz" does, the compressed form is opened transparently.
// A missing file satisfies errors.Is(err, fs.ErrNotExist).
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err == nil {
		return &File{
			Reader:  Reader{r: bufio.NewReader(f)},
			closers: []io.Closer{f},
		}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	gf, gzErr := os.Open(path + ".gz")
	if gzErr != nil {
		// Report the original path as the missing one.
		return nil, err
	}
	zr, zErr := gzip.NewReader(bufio.NewReader(gf))
	if zErr != nil {
		gf.Close()
		return nil, fmt.Errorf("%w: %s.gz: %v", ErrBadRecord, path, zErr)
	}
	return &File{
		Reader:  Reader{r: zr},
		closers: []io.Closer{zr, gf},
	}, nil
}

// Writer encodes framed records to an underlying stream.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer encoding records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) writeRecord(payload []byte) error {
	marker := int32(len(payload))
	if err := binary.Write(w.w, binary.LittleEndian, marker); err != nil {
		return err
	}
	if _, err := w.w.Write(payload); err != nil {
		return err
	}
	return binary.Write(w.w, binary.LittleEndian, marker)
}

// WriteInts writes one record holding a vector of int32 values.
func (w *Writer) WriteInts(vals []int32) error {
	payload := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(payload[4*i:], uint32(v))
	}
	return w.writeRecord(payload)
}

// WriteReals writes one record holding a vector of float64 values.
func (w *Writer) WriteReals(vals []float64) error {
	payload := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(payload[8*i:], math.Float64bits(v))
	}
	return w.writeRecord(payload)
}

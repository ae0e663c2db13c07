package base

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Serializable is a type that can read or write itself through an Archive,
// with the same method driving both directions so field order can never
// drift between the reader and the writer -- required for the action binary
// archive and the ActionHistory/SourceFileMetadataCache formats, whose exact
// on-disk byte layout is part of the wire contract.
type Serializable interface {
	Serialize(ar Archive)
}

// Archive exposes only the primitives forge's on-disk formats actually use.
type Archive interface {
	Loading() bool
	Error() error
	OnError(err error)

	Bool(v *bool)
	Byte(v *byte)
	Int32(v *int32)
	Int64(v *int64)
	Uint64(v *uint64)
	String(v *string)
	Raw(v []byte) // fixed-length, e.g. a 16-byte MD5 digest
	Bytes(v *[]byte)

	Serializable(v Serializable)
}

/***************************************
 * Binary reader / writer
 ***************************************/

type binaryWriter struct {
	w   io.Writer
	err error
}

func NewArchiveBinaryWriter(w io.Writer) Archive { return &binaryWriter{w: w} }

func (a *binaryWriter) Loading() bool { return false }
func (a *binaryWriter) Error() error  { return a.err }
func (a *binaryWriter) OnError(err error) {
	if a.err == nil {
		a.err = err
	}
}

func (a *binaryWriter) write(b []byte) {
	if a.err != nil {
		return
	}
	if _, err := a.w.Write(b); err != nil {
		a.err = err
	}
}
func (a *binaryWriter) Bool(v *bool) {
	var b byte
	if *v {
		b = 1
	}
	a.write([]byte{b})
}
func (a *binaryWriter) Byte(v *byte) { a.write([]byte{*v}) }
func (a *binaryWriter) Int32(v *int32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(*v))
	a.write(buf[:])
}
func (a *binaryWriter) Int64(v *int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(*v))
	a.write(buf[:])
}
func (a *binaryWriter) Uint64(v *uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], *v)
	a.write(buf[:])
}
func (a *binaryWriter) String(v *string) {
	n := int32(len(*v))
	a.Int32(&n)
	a.write([]byte(*v))
}
func (a *binaryWriter) Raw(v []byte) { a.write(v) }
func (a *binaryWriter) Bytes(v *[]byte) {
	n := int32(len(*v))
	a.Int32(&n)
	a.write(*v)
}
func (a *binaryWriter) Serializable(v Serializable) { v.Serialize(a) }

type binaryReader struct {
	r   io.Reader
	err error
}

func NewArchiveBinaryReader(r io.Reader) Archive { return &binaryReader{r: r} }

func (a *binaryReader) Loading() bool { return true }
func (a *binaryReader) Error() error  { return a.err }
func (a *binaryReader) OnError(err error) {
	if a.err == nil {
		a.err = err
	}
}

func (a *binaryReader) read(b []byte) {
	if a.err != nil {
		return
	}
	if _, err := io.ReadFull(a.r, b); err != nil {
		a.err = err
	}
}
func (a *binaryReader) Bool(v *bool) {
	var b [1]byte
	a.read(b[:])
	*v = b[0] != 0
}
func (a *binaryReader) Byte(v *byte) {
	var b [1]byte
	a.read(b[:])
	*v = b[0]
}
func (a *binaryReader) Int32(v *int32) {
	var buf [4]byte
	a.read(buf[:])
	*v = int32(binary.LittleEndian.Uint32(buf[:]))
}
func (a *binaryReader) Int64(v *int64) {
	var buf [8]byte
	a.read(buf[:])
	*v = int64(binary.LittleEndian.Uint64(buf[:]))
}
func (a *binaryReader) Uint64(v *uint64) {
	var buf [8]byte
	a.read(buf[:])
	*v = binary.LittleEndian.Uint64(buf[:])
}
func (a *binaryReader) String(v *string) {
	var n int32
	a.Int32(&n)
	if n < 0 || n > 1<<28 {
		a.OnError(fmt.Errorf("archive: implausible string length %d", n))
		return
	}
	buf := make([]byte, n)
	a.read(buf)
	*v = string(buf)
}
func (a *binaryReader) Raw(v []byte) { a.read(v) }
func (a *binaryReader) Bytes(v *[]byte) {
	var n int32
	a.Int32(&n)
	if n < 0 || n > 1<<28 {
		a.OnError(fmt.Errorf("archive: implausible byte length %d", n))
		return
	}
	buf := make([]byte, n)
	a.read(buf)
	*v = buf
}
func (a *binaryReader) Serializable(v Serializable) { v.Serialize(a) }

// SerializeSlice writes/reads a length-prefixed slice of Serializable
// elements.
func SerializeSlice[T Serializable](ar Archive, makeZero func() T, slice *[]T) {
	n := int32(len(*slice))
	ar.Int32(&n)
	if ar.Loading() {
		*slice = make([]T, n)
		for i := range *slice {
			(*slice)[i] = makeZero()
			ar.Serializable((*slice)[i])
		}
	} else {
		for _, it := range *slice {
			ar.Serializable(it)
		}
	}
}

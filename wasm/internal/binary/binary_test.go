package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReaderPosition(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03}, 100)

	if r.Position() != 100 {
		t.Errorf("initial position: got %d, want 100", r.Position())
	}
	if err := r.Skip(2); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if r.Position() != 102 || r.Len() != 1 {
		t.Errorf("after skip: position %d, len %d", r.Position(), r.Len())
	}
	if err := r.Skip(2); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
	if _, err := r.ReadByte(); err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if _, err := r.ReadByte(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestLEB128RoundTrip(t *testing.T) {
	u32s := []uint32{0, 1, 127, 128, 624485, 0xFFFFFFFF}
	s64s := []int64{0, -1, 63, -64, 64, -65, -123456, 1 << 40}

	for _, v := range u32s {
		w := NewWriter()
		w.WriteU32(v)
		got, err := NewReader(w.Bytes(), 0).ReadU32()
		if err != nil || got != v {
			t.Errorf("u32 %d: got %d, %v", v, got, err)
		}
	}
	for _, v := range s64s {
		w := NewWriter()
		w.WriteS64(v)
		got, err := NewReader(w.Bytes(), 0).ReadS64()
		if err != nil || got != v {
			t.Errorf("s64 %d: got %d, %v", v, got, err)
		}
	}
}

func TestReaderReadU32_Overflow(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, 0)
	if _, err := r.ReadU32(); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestReaderReadName(t *testing.T) {
	w := NewWriter()
	w.WriteName("env")
	w.WriteU32(2)
	w.WriteBytes([]byte{0xff, 0xfe})

	r := NewReader(w.Bytes(), 0)
	name, err := r.ReadName()
	if err != nil || name != "env" {
		t.Fatalf("ReadName: got %q, %v", name, err)
	}
	if _, err := r.ReadName(); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestParseError(t *testing.T) {
	r := NewReader([]byte{0x00}, 8)
	err := r.WrapError("import", io.ErrUnexpectedEOF)

	var pe *ParseError
	if !errors.As(err, &pe) || pe.Position != 8 || pe.Section != "import" {
		t.Fatalf("unexpected error %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected wrapped cause")
	}
}

func TestWriterU32LE(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(1)
	w.Byte(0xAA)
	if !bytes.Equal(w.Bytes(), []byte{1, 0, 0, 0, 0xAA}) || w.Len() != 5 {
		t.Errorf("got %x", w.Bytes())
	}
	v, err := NewReader(w.Bytes(), 0).ReadU32LE()
	if err != nil || v != 1 {
		t.Errorf("ReadU32LE: %d, %v", v, err)
	}
}

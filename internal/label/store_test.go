package label

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"
)

func TestRegister_ReturnsStableID(t *testing.T) {
	s := New()
	id, err := s.Register("wheel_speed_fl", 4)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if id != 0 {
		t.Errorf("expected first label id to be 0, got %d", id)
	}
	if s.Count() != 1 {
		t.Errorf("expected count 1, got %d", s.Count())
	}
}

func TestRegister_DuplicateNameFails(t *testing.T) {
	s := New()
	if _, err := s.Register("L", 4); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, err := s.Register("L", 4)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestWriteThenRead_RoundTrips(t *testing.T) {
	s := New()
	id, _ := s.Register("counter", 4)

	src := make([]byte, 4)
	binary.LittleEndian.PutUint32(src, 42)
	if err := s.Write(id, src); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	dst := make([]byte, 4)
	if err := s.Read(id, dst); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if binary.LittleEndian.Uint32(dst) != 42 {
		t.Errorf("expected 42, got %d", binary.LittleEndian.Uint32(dst))
	}
}

func TestRead_UnknownIDFails(t *testing.T) {
	s := New()
	err := s.Read(ID(99), make([]byte, 4))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadWrite_SizeMismatchFails(t *testing.T) {
	s := New()
	id, _ := s.Register("L", 4)

	if err := s.Read(id, make([]byte, 8)); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch on Read, got %v", err)
	}
	if err := s.Write(id, make([]byte, 8)); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch on Write, got %v", err)
	}
}

func TestLookup_ResolvesRegisteredName(t *testing.T) {
	s := New()
	id, _ := s.Register("L", 4)

	got, ok := s.Lookup("L")
	if !ok || got != id {
		t.Fatalf("expected Lookup to resolve L to %d, got %d ok=%v", id, got, ok)
	}

	if _, ok := s.Lookup("missing"); ok {
		t.Error("expected Lookup of unregistered name to fail")
	}
}

// TestConcurrentReadWrite_NoTornReads exercises the per-label RWMutex
// under concurrent readers and a single writer to check for torn reads:
// every write fills all four bytes with the same value, so every observed
// value must have four equal bytes, never a mix of two writes' bytes.
func TestConcurrentReadWrite_NoTornReads(t *testing.T) {
	s := New()
	id, _ := s.Register("L", 4)

	const iterations = 2000
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, 4)
		for i := 0; i < iterations; i++ {
			b := byte(i)
			buf[0], buf[1], buf[2], buf[3] = b, b, b, b
			_ = s.Write(id, buf)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dst := make([]byte, 4)
			for i := 0; i < iterations; i++ {
				if err := s.Read(id, dst); err != nil {
					t.Errorf("unexpected read error: %v", err)
					return
				}
				if dst[1] != dst[0] || dst[2] != dst[0] || dst[3] != dst[0] {
					t.Errorf("torn read: %v", dst)
					return
				}
			}
		}()
	}

	wg.Wait()
}

func TestSizeAndName(t *testing.T) {
	s := New()
	id, _ := s.Register("wheel_speed_fl", 4)

	size, err := s.Size(id)
	if err != nil || size != 4 {
		t.Fatalf("expected size 4, got %d err=%v", size, err)
	}
	if got := s.Name(id); got != "wheel_speed_fl" {
		t.Errorf("expected name wheel_speed_fl, got %s", got)
	}
	if got := s.Name(ID(99)); got != "" {
		t.Errorf("expected empty name for unknown id, got %s", got)
	}
}

package channel

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// useLoopback swaps activeFactory for the hermetic in-process transport
// for the duration of a test, regardless of platform, so these tests
// never depend on POSIX message queue kernel support being present.
func useLoopback(t *testing.T) {
	t.Helper()
	prev := activeFactory
	activeFactory = newLoopbackFactory()
	t.Cleanup(func() { activeFactory = prev })
}

func TestCreateConnect_RoundTripsMessage(t *testing.T) {
	useLoopback(t)

	srv, err := Create("brake_cmd", 64, 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer srv.Cleanup()

	cli, err := Connect("brake_cmd", 64)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer cli.Cleanup()

	want := []byte("apply brake 40%")
	if err := cli.Send(want); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	buf := make([]byte, 64)
	n, err := srv.Receive(buf)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if string(buf[:n]) != string(want) {
		t.Fatalf("expected %q, got %q", want, buf[:n])
	}
}

func TestConnect_MissingServerFails(t *testing.T) {
	useLoopback(t)

	_, err := Connect("nonexistent", 64)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_DuplicateNameFails(t *testing.T) {
	useLoopback(t)

	srv, err := Create("dup", 64, 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer srv.Cleanup()

	_, err = Create("dup", 64, 4)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSend_ExceedsMaxPayloadFails(t *testing.T) {
	useLoopback(t)

	srv, err := Create("small", 8, 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer srv.Cleanup()

	cli, err := Connect("small", 8)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer cli.Cleanup()

	err = cli.Send(make([]byte, 9))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestReceive_NonBlockingReturnsWouldBlockWhenEmpty(t *testing.T) {
	useLoopback(t)

	srv, err := Create("empty", 64, 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer srv.Cleanup()
	srv.SetBlocking(false)

	_, err = srv.Receive(make([]byte, 64))
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("expected ErrWouldBlock, got %v", err)
	}
}

func TestSend_NonBlockingReturnsWouldBlockWhenFull(t *testing.T) {
	useLoopback(t)

	srv, err := Create("full", 64, 1)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer srv.Cleanup()

	cli, err := Connect("full", 64)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer cli.Cleanup()
	cli.SetBlocking(false)

	if err := cli.Send([]byte("one")); err != nil {
		t.Fatalf("first Send failed: %v", err)
	}
	err = cli.Send([]byte("two"))
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("expected ErrWouldBlock on full queue, got %v", err)
	}
}

func TestCleanup_Idempotent(t *testing.T) {
	useLoopback(t)

	srv, err := Create("cleanup", 64, 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := srv.Cleanup(); err != nil {
		t.Fatalf("first Cleanup failed: %v", err)
	}
	if err := srv.Cleanup(); err != nil {
		t.Fatalf("second Cleanup should be a no-op, got %v", err)
	}
}

func TestCleanup_UnlinksServerSoNameCanBeReused(t *testing.T) {
	useLoopback(t)

	srv, err := Create("reuse", 64, 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := srv.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	srv2, err := Create("reuse", 64, 4)
	if err != nil {
		t.Fatalf("expected name to be reusable after Cleanup, got %v", err)
	}
	defer srv2.Cleanup()
}

func TestReceive_BlocksUntilSendArrives(t *testing.T) {
	useLoopback(t)

	srv, err := Create("blocking", 64, 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer srv.Cleanup()
	cli, err := Connect("blocking", 64)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer cli.Cleanup()

	var wg sync.WaitGroup
	wg.Add(1)
	var gotN int
	var gotErr error
	go func() {
		defer wg.Done()
		buf := make([]byte, 64)
		gotN, gotErr = srv.Receive(buf)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := cli.Send([]byte("late")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	wg.Wait()

	if gotErr != nil {
		t.Fatalf("Receive failed: %v", gotErr)
	}
	if gotN != len("late") {
		t.Fatalf("expected %d bytes, got %d", len("late"), gotN)
	}
}

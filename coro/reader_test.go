// File: coro/reader_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package coro

import (
	"bytes"
	"testing"

	"github.com/momentics/hioload-http/api"
)

// feed builds a Stream carrying the given chunks followed by end of
// stream.
func feed(chunks ...string) *Stream {
	ch := make(chan []byte, len(chunks)+1)
	for _, c := range chunks {
		ch <- []byte(c)
	}
	close(ch)
	return &Stream{ch: ch}
}

func TestReadUntilDelimiterAcrossChunks(t *testing.T) {
	r := NewReader(feed("AB", "CD\r\n", "\r\nEF"))

	got, err := r.ReadUntil("\r\n\r\n")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ABCD\r\n\r\n" {
		t.Errorf("frame %q, want %q", got, "ABCD\r\n\r\n")
	}
	if r.Buffered() != 2 {
		t.Errorf("leftover %d bytes, want 2", r.Buffered())
	}
	rest, err := r.ReadN(2)
	if err != nil {
		t.Fatal(err)
	}
	if string(rest) != "EF" {
		t.Errorf("leftover %q, want %q", rest, "EF")
	}
}

func TestReadNSpansChunksAndKeepsLeftover(t *testing.T) {
	r := NewReader(feed("12", "3456"))

	got, err := r.ReadN(4)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "1234" {
		t.Errorf("frame %q, want %q", got, "1234")
	}
	got, err = r.ReadN(2)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "56" {
		t.Errorf("frame %q, want %q", got, "56")
	}
}

func TestOneChunkMayHoldSeveralFrames(t *testing.T) {
	r := NewReader(feed("one\ntwo\nthree\n"))
	for _, want := range []string{"one\n", "two\n", "three\n"} {
		got, err := r.ReadUntil("\n")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("frame %q, want %q", got, want)
		}
	}
}

func TestFramesAreChunkingInvariant(t *testing.T) {
	stream := "first|second|0123456789rest|"
	reads := func(r *Reader) [][]byte {
		var frames [][]byte
		f1, err := r.ReadUntil("|")
		if err != nil {
			t.Fatal(err)
		}
		f2, err := r.ReadUntil("|")
		if err != nil {
			t.Fatal(err)
		}
		f3, err := r.ReadN(10)
		if err != nil {
			t.Fatal(err)
		}
		f4, err := r.ReadUntil("|")
		if err != nil {
			t.Fatal(err)
		}
		return append(frames, f1, f2, f3, f4)
	}

	// Reference: the whole stream as one chunk.
	want := reads(NewReader(feed(stream)))

	// Every split point, including byte-by-byte delivery.
	for cut := 1; cut < len(stream); cut++ {
		got := reads(NewReader(feed(stream[:cut], stream[cut:])))
		for i := range want {
			if !bytes.Equal(got[i], want[i]) {
				t.Fatalf("cut %d: frame %d = %q, want %q", cut, i, got[i], want[i])
			}
		}
	}
	var bytewise []string
	for i := 0; i < len(stream); i++ {
		bytewise = append(bytewise, stream[i:i+1])
	}
	got := reads(NewReader(feed(bytewise...)))
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("bytewise: frame %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadUntilStreamEnd(t *testing.T) {
	r := NewReader(feed("no delimiter here"))
	if _, err := r.ReadUntil("\r\n"); err != api.ErrStreamClosed {
		t.Errorf("err %v, want ErrStreamClosed", err)
	}
}

func TestReadNStreamEnd(t *testing.T) {
	r := NewReader(feed("abc"))
	if _, err := r.ReadN(4); err != api.ErrStreamClosed {
		t.Errorf("err %v, want ErrStreamClosed", err)
	}
}

func TestBufferedBytesSurviveStreamEnd(t *testing.T) {
	r := NewReader(feed("ab\ncd"))
	if _, err := r.ReadUntil("\n"); err != nil {
		t.Fatal(err)
	}
	// Leftover is still claimable after end of stream.
	got, err := r.ReadN(2)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "cd" {
		t.Errorf("leftover %q, want %q", got, "cd")
	}
}

func TestReadUntilEmptyDelimiter(t *testing.T) {
	r := NewReader(feed("x"))
	if _, err := r.ReadUntil(""); err != api.ErrInvalidArgument {
		t.Errorf("err %v, want ErrInvalidArgument", err)
	}
}

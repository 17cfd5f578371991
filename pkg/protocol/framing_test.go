package protocol_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/omochice/typing-chat/pkg/protocol"
)

func TestFramingByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "", want: "line"},
		{name: "line", want: "line"},
		{name: "varint", want: "varint"},
		{name: "raw", want: "raw"},
		{name: "json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := protocol.FramingByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FramingByName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && f.Name() != tt.want {
				t.Errorf("FramingByName() = %q, want %q", f.Name(), tt.want)
			}
		})
	}
}

func TestLineFraming_Frame(t *testing.T) {
	got, err := protocol.LineFraming{}.Frame([]byte("alice: hello"))
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if string(got) != "alice: hello\n" {
		t.Errorf("Frame() = %q", got)
	}

	if _, err := (protocol.LineFraming{}).Frame([]byte("a\nb")); !errors.Is(err, protocol.ErrDelimiterInPayload) {
		t.Errorf("Frame() error = %v, want ErrDelimiterInPayload", err)
	}
}

// feedAll splits stream into chunks of the given size and collects frames.
func feedAll(t *testing.T, f protocol.Framing, stream []byte, chunk int) []string {
	t.Helper()
	r := protocol.NewFrameReader(f)
	var out []string
	for len(stream) > 0 {
		n := min(chunk, len(stream))
		frames, err := r.Feed(stream[:n])
		if err != nil {
			t.Fatalf("Feed() error = %v", err)
		}
		for _, fr := range frames {
			out = append(out, string(fr))
		}
		stream = stream[n:]
	}
	if r.Buffered() != 0 {
		t.Errorf("Buffered() = %d after complete stream", r.Buffered())
	}
	return out
}

func TestFrameReader_ReassemblesAcrossReads(t *testing.T) {
	payloads := []string{
		"alice: hello",
		"carol is typing...<TYPING>",
		"bob: a longer message that will straddle several small reads",
		"carol stopped typing<TYPING>",
	}

	for _, f := range []protocol.Framing{protocol.LineFraming{}, protocol.VarintFraming{}} {
		var stream []byte
		for _, p := range payloads {
			framed, err := f.Frame([]byte(p))
			if err != nil {
				t.Fatalf("%s: Frame() error = %v", f.Name(), err)
			}
			stream = append(stream, framed...)
		}

		for _, chunk := range []int{1, 3, 7, 1024} {
			got := feedAll(t, f, stream, chunk)
			if len(got) != len(payloads) {
				t.Fatalf("%s chunk=%d: got %d frames, want %d", f.Name(), chunk, len(got), len(payloads))
			}
			for i := range payloads {
				if got[i] != payloads[i] {
					t.Errorf("%s chunk=%d: frame %d = %q, want %q", f.Name(), chunk, i, got[i], payloads[i])
				}
			}
		}
	}
}

func TestFrameReader_LineToleratesCRLF(t *testing.T) {
	got := feedAll(t, protocol.LineFraming{}, []byte("bob: hi\r\nbob: again\r\n"), 1024)
	want := []string{"bob: hi", "bob: again"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("frames = %q, want %q", got, want)
	}
}

func TestFrameReader_RawYieldsEachRead(t *testing.T) {
	r := protocol.NewFrameReader(protocol.RawFraming{})

	frames, err := r.Feed([]byte("bob: one"))
	if err != nil || len(frames) != 1 || string(frames[0]) != "bob: one" {
		t.Fatalf("Feed() = %q, %v", frames, err)
	}

	frames, err = r.Feed(nil)
	if err != nil || len(frames) != 0 {
		t.Errorf("Feed(nil) = %q, %v, want no frames", frames, err)
	}
}

func TestFrameReader_FramesAreCopies(t *testing.T) {
	r := protocol.NewFrameReader(protocol.LineFraming{})
	chunk := []byte("bob: hi\n")
	frames, err := r.Feed(chunk)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	copy(chunk, bytes.Repeat([]byte{'x'}, len(chunk)))
	if string(frames[0]) != "bob: hi" {
		t.Errorf("frame changed after reuse of read buffer: %q", frames[0])
	}
}

func TestFrameReader_OversizedLineIsDropped(t *testing.T) {
	r := protocol.NewFrameReader(protocol.LineFraming{})

	_, err := r.Feed(bytes.Repeat([]byte{'a'}, protocol.MaxFrameSize+1))
	if !errors.Is(err, protocol.ErrFrameTooLarge) {
		t.Fatalf("Feed() error = %v, want ErrFrameTooLarge", err)
	}
	if r.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0 after overflow", r.Buffered())
	}

	frames, err := r.Feed([]byte("bob: next\n"))
	if err != nil || len(frames) != 1 || string(frames[0]) != "bob: next" {
		t.Errorf("reader did not recover: %q, %v", frames, err)
	}
}

func TestVarintFraming_RejectsOversizedHeader(t *testing.T) {
	header := []byte{0xff, 0xff, 0x7f} // varint well above MaxFrameSize
	_, _, _, err := protocol.VarintFraming{}.Split(header)
	if !errors.Is(err, protocol.ErrFrameTooLarge) {
		t.Errorf("Split() error = %v, want ErrFrameTooLarge", err)
	}

	if _, err := (protocol.VarintFraming{}).Frame(make([]byte, protocol.MaxFrameSize+1)); !errors.Is(err, protocol.ErrFrameTooLarge) {
		t.Errorf("Frame() error = %v, want ErrFrameTooLarge", err)
	}
}

func TestVarintFraming_WaitsForTruncatedHeader(t *testing.T) {
	_, rest, ok, err := protocol.VarintFraming{}.Split([]byte{0x80})
	if err != nil || ok || len(rest) != 1 {
		t.Errorf("Split() = rest %v, ok %v, err %v; want incomplete", rest, ok, err)
	}
}

package frame

import (
	"testing"
)

// FuzzParse checks that Parse never panics, always makes progress on
// errors other than incomplete, and never consumes more than it was given.
func FuzzParse(f *testing.F) {
	f.Add(helloFrame)
	f.Add([]byte{})
	f.Add([]byte{0x00, 0xFF})
	f.Add([]byte{0x00, 0x00, 0xFF, 0x00, 0x00, 0x00})
	f.Add([]byte{0x00, 0x00, 0xFF, 0xFF, 0x01, 0xC4})
	f.Add([]byte{0xFF, 0x00, 0xFF, 0x04, 0xFC, 0xC5, 0x14, 0x01, 0x07, 0x1F, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		fr, consumed, err := Parse(data)
		if consumed < 0 || consumed > len(data) {
			t.Fatalf("consumed %d of %d bytes", consumed, len(data))
		}
		if err == nil {
			// The preamble is optional on input.
			if consumed < MinFrameLength-1 {
				t.Fatalf("frame decoded from %d bytes", consumed)
			}
			if len(fr.Payload) > MaxPayload {
				t.Fatalf("payload of %d bytes", len(fr.Payload))
			}
			return
		}
		if !IsIncomplete(err) && consumed == 0 {
			t.Fatalf("error %v without progress", err)
		}
	})
}

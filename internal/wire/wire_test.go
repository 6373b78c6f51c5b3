package wire

import "testing"

func TestDecodePeerRequest(t *testing.T) {
	data := EncodePeer("10.0.0.5:9001")
	verb, payload, ok, err := Decode(data)
	if !ok || err != nil {
		t.Fatalf("Decode(peer): ok=%v err=%v", ok, err)
	}
	if verb != VerbPeer {
		t.Fatalf("verb: got %q, want %q", verb, VerbPeer)
	}
	req, isPeer := payload.(PeerRequest)
	if !isPeer {
		t.Fatalf("payload type: got %T, want PeerRequest", payload)
	}
	if req.Addr != "10.0.0.5:9001" {
		t.Fatalf("Addr: got %q, want %q", req.Addr, "10.0.0.5:9001")
	}
}

func TestDecodeSnippetRequest(t *testing.T) {
	data := EncodeSnippet(42, "hello world")
	verb, payload, ok, err := Decode(data)
	if !ok || err != nil {
		t.Fatalf("Decode(snip): ok=%v err=%v", ok, err)
	}
	if verb != VerbSnippet {
		t.Fatalf("verb: got %q, want %q", verb, VerbSnippet)
	}
	req := payload.(SnippetRequest)
	if req.Timestamp != 42 {
		t.Fatalf("Timestamp: got %d, want 42", req.Timestamp)
	}
	if req.Text != "hello world" {
		t.Fatalf("Text: got %q, want %q", req.Text, "hello world")
	}
}

func TestDecodeSnippetWithNoText(t *testing.T) {
	_, payload, ok, err := Decode(EncodeSnippet(7, ""))
	if !ok || err != nil {
		t.Fatalf("Decode(empty snip): ok=%v err=%v", ok, err)
	}
	req := payload.(SnippetRequest)
	if req.Timestamp != 7 || req.Text != "" {
		t.Fatalf("got %+v, want Timestamp=7 Text=\"\"", req)
	}
}

func TestDecodeStopRequest(t *testing.T) {
	verb, _, ok, err := Decode(EncodeStop())
	if !ok || err != nil {
		t.Fatalf("Decode(stop): ok=%v err=%v", ok, err)
	}
	if verb != VerbStop {
		t.Fatalf("verb: got %q, want %q", verb, VerbStop)
	}
}

func TestDecodeUnknownVerbIsIgnoredSilently(t *testing.T) {
	_, _, ok, err := Decode([]byte("xyz!whatever"))
	if ok {
		t.Fatal("unknown verb: expected ok=false")
	}
	if err != nil {
		t.Fatalf("unknown verb: expected nil error, got %v", err)
	}
}

func TestDecodeTooShortIsIgnoredSilently(t *testing.T) {
	_, _, ok, err := Decode([]byte("hi"))
	if ok || err != nil {
		t.Fatalf("short datagram: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestDecodeMalformedSnippetTimestampReturnsError(t *testing.T) {
	verb, _, ok, err := Decode([]byte("snipnot-a-number rest"))
	if !ok {
		t.Fatal("malformed snip: expected ok=true (recognized verb, bad payload)")
	}
	if verb != VerbSnippet {
		t.Fatalf("verb: got %q, want %q", verb, VerbSnippet)
	}
	if err == nil {
		t.Fatal("malformed snip: expected non-nil error")
	}
}

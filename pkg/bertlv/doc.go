// Package bertlv implements streaming encoding and decoding of BER-TLV
// records.
//
// Each record is a tag, a length and a value of that many bytes:
//
//	<tag octets><length octets><value>
//
// The package frames bytes only. It does not interpret tag classes or
// numbers, and it does not descend into constructed values; a value that
// itself holds TLV records can be decoded with a new Decoder over
// bytes.NewReader(value).
//
// # Tags
//
// If the low five bits of the first tag octet are not all set, the tag is
// that single octet. Otherwise continuation octets follow until one with
// the most significant bit clear:
//
//	5A          // one octet
//	7F 74       // 0x7F starts a long tag, 0x74 ends it
//	7F 84 74    // 0x84 has the MSB set, so the tag continues
//
// # Lengths
//
// Lengths 0 to 127 use one octet. Longer lengths use 0x80|n followed by n
// big-endian octets, 1 <= n <= 126:
//
//	7E          // 126
//	81 80       // 128
//	82 FF 01    // 65281
//
// Lengths are *big.Int because the long form reaches 2^1008-1. The octet
// 0xFF (n = 127) is rejected with ErrInvalidFormat. The octet 0x80 is read
// as a long form with no length octets, so it decodes as length 0; BER
// indefinite lengths are not interpreted.
//
// # Basic Usage
//
// Encoding:
//
//	var buf bytes.Buffer
//	enc := bertlv.NewEncoder(&buf)
//	enc.Encode(bertlv.Tag{0x5A}, []byte{0x12, 0x34}) // writes 5A 02 12 34
//
// Decoding:
//
//	dec := bertlv.NewDecoder(bufio.NewReader(conn))
//	for rec, err := range dec.All() {
//		if err != nil {
//			return err
//		}
//		switch rec := rec.(type) {
//		case *bertlv.Item:
//			// rec.Tag, rec.Value
//		case *bertlv.LargeItem:
//			// stream rec.Length bytes from rec.Value
//		}
//	}
//
// Or with a Handler, via Decode.
//
// # Large Items
//
// Values longer than MaxValueSize (default 2^31-1) are not read into
// memory. They are returned as *LargeItem whose Value is a ValueReader
// bounded to the record's length. Whatever the caller leaves unread is
// discarded by the next call to Next, so the stream stays framed.
//
// # Errors
//
// Decoding errors match one of the sentinels with errors.Is:
//
//   - ErrMalformed: the stream ended inside a record
//   - ErrInvalidFormat: a length field that cannot be decoded
//
// and carry the byte offset in a *FormatError. Encoding rejects
// unrepresentable input with ErrInvalidArgument before writing anything.
package bertlv

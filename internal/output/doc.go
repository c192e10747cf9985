// Package output turns a validated palette into bytes for the consumer.
//
// The package is organized around three concerns:
//
//   - Serialization (serializer.go): compact JSON with keys in the fixed
//     base00..base0F order.
//
//   - Framing (frame.go): a 4-byte unsigned length header in a configured
//     byte order followed by the payload. There is no magic number,
//     version byte, or checksum; the byte count is the whole contract.
//
//   - Writers (writer.go): pluggable destinations via the [Writer]
//     interface, with [StdoutWriter], [FileWriter], and [FrameWriter].
package output
